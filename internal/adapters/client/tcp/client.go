package tcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

const (
	okStatus  = "Ok"
	errPrefix = "Err - "
)

var ErrUnexpectedResponse = errors.New("unexpected response")

// ServerError is an Err line returned by the server for a rejected command.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return "server: " + e.Message
}

// Client speaks the line protocol over one connection. It is not safe for
// concurrent use; the server answers one command at a time.
type Client struct {
	conn   net.Conn
	reader *bufio.Reader
}

func Dial(ctx context.Context, addr string) (*Client, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return NewClient(conn), nil
}

func NewClient(conn net.Conn) *Client {
	return &Client{conn: conn, reader: bufio.NewReader(conn)}
}

// Get returns line index, or a *ServerError when the server rejects it.
func (c *Client) Get(ctx context.Context, index int) (string, error) {
	return c.get(ctx, fmt.Sprintf("GET %d", index))
}

// GetRaw sends GET with an arbitrary token, for probing the server's parser.
func (c *Client) GetRaw(ctx context.Context, token string) (string, error) {
	return c.get(ctx, "GET "+token)
}

func (c *Client) get(ctx context.Context, command string) (string, error) {
	if err := c.send(ctx, command); err != nil {
		return "", err
	}

	status, err := c.readLine()
	if err != nil {
		return "", err
	}

	switch {
	case status == okStatus:
		line, err := c.readLine()
		if err != nil {
			return "", err
		}
		return line, nil
	case strings.HasPrefix(status, errPrefix):
		return "", &ServerError{Message: strings.TrimPrefix(status, errPrefix)}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnexpectedResponse, status)
	}
}

// Send writes an arbitrary command and returns the single Err line it produces.
func (c *Client) Send(ctx context.Context, command string) error {
	if err := c.send(ctx, command); err != nil {
		return err
	}

	status, err := c.readLine()
	if err != nil {
		return err
	}
	if strings.HasPrefix(status, errPrefix) {
		return &ServerError{Message: strings.TrimPrefix(status, errPrefix)}
	}
	return fmt.Errorf("%w: %q", ErrUnexpectedResponse, status)
}

// Quit ends this session and waits for the server to close the connection.
func (c *Client) Quit(ctx context.Context) error {
	return c.terminate(ctx, "QUIT")
}

// Shutdown asks the server to stop accepting and waits for this connection to close.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.terminate(ctx, "SHUTDOWN")
}

func (c *Client) terminate(ctx context.Context, command string) error {
	if err := c.send(ctx, command); err != nil {
		return err
	}

	_, err := c.reader.ReadByte()
	if err == nil {
		return fmt.Errorf("%w: data after %s", ErrUnexpectedResponse, command)
	}
	if !errors.Is(err, io.EOF) {
		return fmt.Errorf("wait for close after %s: %w", command, err)
	}

	return c.Close()
}

func (c *Client) Close() error {
	err := c.conn.Close()
	if err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}

func (c *Client) send(ctx context.Context, command string) error {
	deadline := time.Time{}
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	if _, err := io.WriteString(c.conn, command+"\n"); err != nil {
		return fmt.Errorf("send command: %w", err)
	}
	return nil
}

func (c *Client) readLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	return strings.TrimSuffix(line, "\r\n"), nil
}
