package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/bnema/lineserver/internal/domain"
)

const (
	defaultDrainTimeout = 5 * time.Second
	maxAcceptBackoff    = time.Second
)

type CoordinatorConfig struct {
	// FailOnSessionError makes a failed session fatal to Run instead of only logging it.
	FailOnSessionError bool
	// DrainTimeout bounds how long Run waits for sessions still registered at
	// shutdown. Zero means the default; a negative value closes their
	// connections without waiting.
	DrainTimeout  time.Duration
	ControlBuffer int
	Log           *slog.Logger
}

// Coordinator owns the listener and the session registry. Run multiplexes new
// connections and control messages on a single goroutine.
type Coordinator struct {
	listener net.Listener
	lines    *domain.Lines
	bus      *ControlBus
	registry *Registry
	nextID   domain.SessionID
	cfg      CoordinatorConfig
	log      *slog.Logger

	runOnce sync.Once
}

// Listen binds addr and returns a coordinator ready to Run.
func Listen(addr string, lines *domain.Lines, cfg CoordinatorConfig) (*Coordinator, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	return NewCoordinator(listener, lines, cfg), nil
}

func NewCoordinator(listener net.Listener, lines *domain.Lines, cfg CoordinatorConfig) *Coordinator {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	if cfg.DrainTimeout == 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}

	return &Coordinator{
		listener: listener,
		lines:    lines,
		bus:      NewControlBus(cfg.ControlBuffer),
		registry: NewRegistry(),
		cfg:      cfg,
		log:      log,
	}
}

func (c *Coordinator) Addr() net.Addr {
	return c.listener.Addr()
}

// Run serves until a session sends Shutdown or ctx is cancelled, then stops
// accepting and closes whatever sessions remain. It returns an error only when
// FailOnSessionError is set and a retired session failed.
func (c *Coordinator) Run(ctx context.Context) error {
	started := false
	c.runOnce.Do(func() { started = true })
	if !started {
		return domain.ErrServerStopped
	}

	accepted := make(chan net.Conn)
	acceptErrs := make(chan error)
	stop := make(chan struct{})

	var acceptors sync.WaitGroup
	acceptors.Go(func() {
		c.acceptLoop(accepted, acceptErrs, stop)
	})

	defer func() {
		close(stop)
		if err := c.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			c.log.Error("close listener", "error", err)
		}
		acceptors.Wait()
		c.bus.Close()
		c.drain()
		c.log.Info("stopped accepting connections")
	}()

	c.log.Info("accepting connections", "addr", c.Addr().String(), "lines", c.lines.Len())

	for {
		select {
		case conn := <-accepted:
			c.spawn(conn)
		case err := <-acceptErrs:
			c.log.Error("accept connection", "error", err)
		case msg := <-c.bus.Receive():
			switch msg := msg.(type) {
			case domain.Shutdown:
				c.log.Info("shutdown requested")
				return nil
			case domain.SessionDone:
				if err := c.retire(msg.ID); err != nil {
					return err
				}
			default:
				c.log.Error("unexpected control message", "message", msg)
			}
		case <-ctx.Done():
			c.log.Info("shutdown on context done", "cause", context.Cause(ctx))
			return nil
		}
	}
}

func (c *Coordinator) acceptLoop(accepted chan<- net.Conn, errs chan<- error, stop <-chan struct{}) {
	var backoff time.Duration

	for {
		conn, err := c.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			select {
			case errs <- err:
			case <-stop:
				return
			}

			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff = min(2*backoff, maxAcceptBackoff)
			}
			select {
			case <-time.After(backoff):
			case <-stop:
				return
			}
			continue
		}
		backoff = 0

		select {
		case accepted <- conn:
		case <-stop:
			_ = conn.Close()
			return
		}
	}
}

func (c *Coordinator) spawn(conn net.Conn) {
	id := c.nextID
	c.nextID = id.Next()

	handle := newSessionHandle(id, conn)
	if err := c.registry.Insert(handle); err != nil {
		c.log.Error("register session", "session", id, "error", err, "bug", true)
		_ = conn.Close()
		return
	}

	session := NewSession(id, conn, c.bus, c.lines, c.log)
	go func() {
		handle.finish(session.Run())
	}()

	c.log.Debug("session spawned", "session", id, "remote", conn.RemoteAddr().String(), "active", c.registry.Len())
}

// retire forgets id and waits for its goroutine so a failure surfaces here.
func (c *Coordinator) retire(id domain.SessionID) error {
	handle, ok := c.registry.Remove(id)
	if !ok {
		c.log.Error("session not in registry, this is a bug", "session", id, "error", domain.ErrUnknownSession, "bug", true)
		return nil
	}

	err := handle.Wait()
	if err == nil {
		c.log.Debug("session retired", "session", id, "active", c.registry.Len())
		return nil
	}

	if c.cfg.FailOnSessionError {
		return fmt.Errorf("retire session %s: %w", id, err)
	}

	c.log.Error("session failed", "session", id, "error", err)
	return nil
}

// drain closes the connections of sessions still registered at shutdown and
// waits for them up to DrainTimeout. Their outcomes are logged only.
func (c *Coordinator) drain() {
	handles := c.registry.Drain()
	if len(handles) == 0 {
		return
	}

	c.log.Info("closing remaining sessions", "count", len(handles))
	for _, h := range handles {
		_ = h.conn.Close()
	}

	if c.cfg.DrainTimeout < 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.DrainTimeout)
	defer cancel()

	for i, h := range handles {
		err := h.WaitContext(ctx)
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
			c.log.Warn("drain timeout exceeded", "remaining", len(handles)-i)
			return
		}
		if err != nil {
			c.log.Debug("session ended during shutdown", "session", h.id, "error", err)
		}
	}
}
