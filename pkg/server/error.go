package server

import (
	"fmt"
)

type Error struct {
	orig error
	msg  string
	code ErrorCode
}

type ErrorCode uint

const (
	ErrUnknown ErrorCode = iota
	ErrNotFound
	ErrNoRoute
	ErrBadParamInput
	ErrUnavailable
	ErrTimeout
	ErrInternalServerError
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not found"
	case ErrNoRoute:
		return "no route"
	case ErrBadParamInput:
		return "bad param input"
	case ErrUnavailable:
		return "store unavailable"
	case ErrTimeout:
		return "timeout"
	case ErrInternalServerError:
		return "internal server error"
	default:
		return "unknown"
	}
}

// WrapErrorf returns a wrapped error.
func WrapErrorf(orig error, code ErrorCode, format string, a ...interface{}) error {
	return &Error{
		code: code,
		orig: orig,
		msg:  fmt.Sprintf(format, a...),
	}
}

// NewErrorf instantiates a new error.
func NewErrorf(code ErrorCode, format string, a ...interface{}) error {
	return WrapErrorf(nil, code, format, a...)
}

func (e *Error) Error() string {
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}

	return e.msg
}

func (e *Error) Unwrap() error {
	return e.orig
}

func (e *Error) Code() ErrorCode {
	return e.code
}

// Message user facing message without the wrapped error.
func (e *Error) Message() string {
	return e.msg
}
