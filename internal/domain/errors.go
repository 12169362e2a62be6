package domain

import "errors"

var (
	ErrLineOutOfRange    = errors.New("line out of range")
	ErrInvalidLineSource = errors.New("invalid line source")
	ErrServerStopped     = errors.New("server stopped")
	ErrUnknownSession    = errors.New("unknown session")
)
