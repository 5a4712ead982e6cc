// Package clierr carries process exit codes and user hints through error
// chains so main can stay small.
package clierr

import (
	"errors"
	"fmt"
)

// ExitCoder is an error that selects the process exit code.
type ExitCoder interface {
	error
	ExitCode() int
}

// Error is an error with an exit code and an optional hint printed after
// the message.
type Error struct {
	code  int
	msg   string
	hint  string
	cause error
}

func (e *Error) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return fmt.Sprintf("%s: %v", e.msg, e.cause)
}

// ExitCode returns the process exit code.
func (e *Error) ExitCode() int { return e.code }

// Hint returns the follow-up advice, if any.
func (e *Error) Hint() string { return e.hint }

func (e *Error) Unwrap() error { return e.cause }

// New creates an Error with a message.
func New(code int, msg string) error {
	return &Error{code: normalize(code), msg: msg}
}

// Wrap creates an Error around cause. A nil cause behaves like New.
func Wrap(code int, msg string, cause error) error {
	return &Error{code: normalize(code), msg: msg, cause: cause}
}

// WithHint wraps cause with a message and a hint.
func WithHint(code int, msg, hint string, cause error) error {
	return &Error{code: normalize(code), msg: msg, hint: hint, cause: cause}
}

// ExitCodeOf extracts an exit code from err: 0 for nil, 1 when no ExitCoder
// is in the chain.
func ExitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	var ec ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}

// HintOf returns the first hint in err's chain.
func HintOf(err error) string {
	var e *Error
	for err != nil {
		if !errors.As(err, &e) {
			return ""
		}
		if e.hint != "" {
			return e.hint
		}
		err = e.cause
	}
	return ""
}

func normalize(code int) int {
	if code <= 0 {
		return 1
	}
	return code
}
