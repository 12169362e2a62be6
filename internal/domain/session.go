package domain

import "strconv"

// SessionID identifies one accepted connection. The coordinator assigns ids
// monotonically starting at 0, so no two live sessions share one.
type SessionID uint64

func (id SessionID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Next returns the identity allocated after id.
func (id SessionID) Next() SessionID {
	return id + 1
}
