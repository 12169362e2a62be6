package application

import (
	"sync"

	"github.com/bnema/lineserver/internal/domain"
)

const defaultControlBuffer = 1000

// ControlSender is the end of the control bus handed to sessions. Closed is
// closed once the coordinator has stopped accepting and stopped listening.
type ControlSender interface {
	Send(msg domain.ControlMessage) bool
	Closed() <-chan struct{}
}

// ControlBus carries control messages from many sessions to the single coordinator.
// Once closed, sends are dropped instead of blocking.
type ControlBus struct {
	messages  chan domain.ControlMessage
	closed    chan struct{}
	closeOnce sync.Once
}

var _ ControlSender = (*ControlBus)(nil)

func NewControlBus(capacity int) *ControlBus {
	if capacity <= 0 {
		capacity = defaultControlBuffer
	}

	return &ControlBus{
		messages: make(chan domain.ControlMessage, capacity),
		closed:   make(chan struct{}),
	}
}

// Send queues msg and reports whether it was accepted.
func (b *ControlBus) Send(msg domain.ControlMessage) bool {
	select {
	case <-b.closed:
		return false
	default:
	}

	select {
	case b.messages <- msg:
		return true
	case <-b.closed:
		return false
	}
}

func (b *ControlBus) Receive() <-chan domain.ControlMessage {
	return b.messages
}

func (b *ControlBus) Closed() <-chan struct{} {
	return b.closed
}

func (b *ControlBus) Close() {
	b.closeOnce.Do(func() {
		close(b.closed)
	})
}
