package session

import "errors"

var (
	ErrAlreadyStarted = errors.New("session already started")
	ErrNoManager      = errors.New("no session manager in context")
)
