package domain

import "fmt"

// ControlMessage is a control-plane event sent by a session to the coordinator.
// The set of variants is closed: Shutdown and SessionDone.
type ControlMessage interface {
	isControlMessage()
	fmt.Stringer
}

// Shutdown asks the coordinator to stop accepting and terminate.
type Shutdown struct{}

// SessionDone reports that a session has finished and may be retired.
type SessionDone struct {
	ID SessionID
}

func (Shutdown) isControlMessage()    {}
func (SessionDone) isControlMessage() {}

func (Shutdown) String() string {
	return "shutdown"
}

func (m SessionDone) String() string {
	return fmt.Sprintf("session-done(%s)", m.ID)
}
