package errs

import "errors"

var (
	ErrAlreadyNotified  = errors.New("abandoned event already emitted")
	ErrUnknownEventType = errors.New("unknown event type")
)
