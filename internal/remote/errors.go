package remote

import (
	"errors"
	"fmt"
)

// Op names one of the sync operations. It is the error kind: a failed
// toggle is distinguishable from a failed delete.
type Op string

const (
	OpList   Op = "list"
	OpCreate Op = "create"
	OpToggle Op = "toggle"
	OpRename Op = "rename"
	OpDelete Op = "delete"
)

var (
	// ErrStatus marks a response with a non-2xx status.
	ErrStatus = errors.New("unexpected status")
	// ErrMalformed marks a 2xx response whose body cannot be used.
	ErrMalformed = errors.New("malformed response")
)

// Error is returned by every Client method on failure.
type Error struct {
	Op        Op
	Method    string
	URL       string
	Status    int // 0 when no response was received
	RequestID string
	Err       error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s %s: status %d: %v", e.Op, e.Method, e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// OpOf returns the operation of a sync error, or "" for other errors.
func OpOf(err error) Op {
	var re *Error
	if errors.As(err, &re) {
		return re.Op
	}
	return ""
}
