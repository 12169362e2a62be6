package application

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/bnema/lineserver/internal/domain"
)

// SessionError is the failure outcome of a session goroutine.
type SessionError struct {
	ID  domain.SessionID
	Err error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %v", e.ID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// shutdownAckTimeout bounds how long a session that sent Shutdown holds its
// connection open waiting for the coordinator to close the listener.
const shutdownAckTimeout = 2 * time.Second

type sessionExit int

const (
	exitContinue sessionExit = iota
	exitHangup
	exitQuit
	exitShutdown
	exitFailed
)

// Session serves one client connection, one command at a time.
type Session struct {
	id    domain.SessionID
	conn  io.ReadWriteCloser
	bus   ControlSender
	lines *domain.Lines
	log   *slog.Logger

	shutdownWait time.Duration
}

func NewSession(id domain.SessionID, conn io.ReadWriteCloser, bus ControlSender, lines *domain.Lines, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}

	return &Session{
		id:    id,
		conn:  conn,
		bus:   bus,
		lines: lines,
		log:   log.With("session", id),

		shutdownWait: shutdownAckTimeout,
	}
}

// Run blocks until the client quits, hangs up, asks for shutdown, or the
// connection fails. Every exit except SHUTDOWN reports SessionDone exactly once.
func (s *Session) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			_ = s.conn.Close()
			s.bus.Send(domain.SessionDone{ID: s.id})
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			err = &SessionError{ID: s.id, Err: err}
		}
	}()

	s.log.Debug("session started")

	exit, err := s.serve()
	if exit == exitShutdown {
		s.bus.Send(domain.Shutdown{})
		s.awaitListenerClosed()
		if closeErr := s.conn.Close(); closeErr != nil && !errors.Is(closeErr, net.ErrClosed) {
			return fmt.Errorf("close connection: %w", closeErr)
		}
		s.log.Debug("session requested shutdown")
		return nil
	}

	closeErr := s.conn.Close()
	s.bus.Send(domain.SessionDone{ID: s.id})

	if err != nil {
		return err
	}
	if closeErr != nil {
		return fmt.Errorf("close connection: %w", closeErr)
	}

	s.log.Debug("session finished", "quit", exit == exitQuit)
	return nil
}

// awaitListenerClosed keeps the requesting client connected until the
// coordinator has closed the listener, so the client never observes EOF while
// new connections are still accepted.
func (s *Session) awaitListenerClosed() {
	timer := time.NewTimer(s.shutdownWait)
	defer timer.Stop()

	select {
	case <-s.bus.Closed():
	case <-timer.C:
		s.log.Warn("coordinator did not acknowledge shutdown", "waited", s.shutdownWait)
	}
}

func (s *Session) serve() (sessionExit, error) {
	reader := bufio.NewReader(s.conn)

	for {
		raw, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return exitFailed, fmt.Errorf("read command: %w", readErr)
		}
		if raw == "" {
			return exitHangup, nil
		}

		exit, err := s.dispatch(ParseCommand(raw))
		if err != nil {
			return exitFailed, err
		}
		if exit != exitContinue {
			return exit, nil
		}

		if readErr != nil {
			return exitHangup, nil
		}
	}
}

// dispatch answers one command and reports whether the session should end.
func (s *Session) dispatch(cmd Command) (sessionExit, error) {
	s.log.Debug("command received", "command", cmd.Kind, "input", cmd.Input)

	switch cmd.Kind {
	case CommandQuit:
		return exitQuit, nil
	case CommandShutdown:
		return exitShutdown, nil
	case CommandGet:
		return exitContinue, s.respond(s.get(cmd.Token))
	default:
		return exitContinue, s.respond(invalidCommandResponse(cmd.Input))
	}
}

func (s *Session) get(token string) string {
	index, err := ParseLineIndex(token)
	if err != nil {
		return badIndexResponse(err, token)
	}

	line, err := s.lines.Line(int(index))
	if err != nil {
		return outOfRangeResponse(index, s.lines.Len())
	}

	return okResponse(line)
}

func (s *Session) respond(response string) error {
	if _, err := io.WriteString(s.conn, response); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
