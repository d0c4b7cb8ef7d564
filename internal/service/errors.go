package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamUnavailable means ESPN could not be reached or rejected the
	// request and nothing stored could stand in.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrDataNotFound means there is no live or stored data for the request.
	ErrDataNotFound = errors.New("data not found")
	// ErrInvalidInput marks a request the caller has to fix.
	ErrInvalidInput = errors.New("invalid input")
)

// Error is the failure every query operation returns. Kind is one of the
// sentinels above and is what errors.Is matches.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func upstreamErr(op string, err error) error {
	return &Error{Kind: ErrUpstreamUnavailable, Op: op, Err: err}
}

func notFoundErr(op string, format string, args ...any) error {
	return &Error{Kind: ErrDataNotFound, Op: op, Err: fmt.Errorf(format, args...)}
}

func invalidErr(op string, format string, args ...any) error {
	return &Error{Kind: ErrInvalidInput, Op: op, Err: fmt.Errorf(format, args...)}
}
