package application

import (
	"cmp"
	"context"
	"fmt"
	"net"
	"slices"

	"github.com/bnema/lineserver/internal/domain"
)

// sessionHandle is the coordinator's view of a running session goroutine.
type sessionHandle struct {
	id   domain.SessionID
	conn net.Conn
	done chan struct{}
	err  error
}

func newSessionHandle(id domain.SessionID, conn net.Conn) *sessionHandle {
	return &sessionHandle{id: id, conn: conn, done: make(chan struct{})}
}

func (h *sessionHandle) finish(err error) {
	h.err = err
	close(h.done)
}

// Wait blocks until the session goroutine returns and yields its outcome.
func (h *sessionHandle) Wait() error {
	<-h.done
	return h.err
}

func (h *sessionHandle) WaitContext(ctx context.Context) error {
	select {
	case <-h.done:
		return h.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Registry maps live session ids to their handles. It is owned by the
// coordinator goroutine and is not safe for concurrent use.
type Registry struct {
	sessions map[domain.SessionID]*sessionHandle
}

func NewRegistry() *Registry {
	return &Registry{sessions: map[domain.SessionID]*sessionHandle{}}
}

func (r *Registry) Insert(h *sessionHandle) error {
	if _, ok := r.sessions[h.id]; ok {
		return fmt.Errorf("session %s already registered", h.id)
	}
	r.sessions[h.id] = h
	return nil
}

func (r *Registry) Remove(id domain.SessionID) (*sessionHandle, bool) {
	h, ok := r.sessions[id]
	if !ok {
		return nil, false
	}
	delete(r.sessions, id)
	return h, true
}

func (r *Registry) Len() int {
	return len(r.sessions)
}

// Drain removes every handle and returns them ordered by id.
func (r *Registry) Drain() []*sessionHandle {
	handles := make([]*sessionHandle, 0, len(r.sessions))
	for _, h := range r.sessions {
		handles = append(handles, h)
	}
	clear(r.sessions)

	slices.SortFunc(handles, func(a, b *sessionHandle) int {
		return cmp.Compare(a.id, b.id)
	})
	return handles
}
