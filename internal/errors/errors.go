package errors

import (
	"errors"
	"fmt"
)

// Code is a stable, machine-readable error classification mapped to process
// exit codes. Mutating-call failures and remote-index failures get distinct
// codes so callers can pick the right user-facing reply.
type Code int

const (
	CodeSuccess  Code = 0
	CodeInternal Code = 1
	CodeUsage    Code = 2

	CodeConfig              Code = 10
	CodePrecondition        Code = 11
	CodeInsufficientBalance Code = 12
	CodeInsufficientShares  Code = 13
	CodeDelegationMismatch  Code = 14
	CodeNotReady            Code = 15
	CodeSimulation          Code = 16
	CodeSignerRejected      Code = 17
	CodeGasFunds            Code = 18
	CodeReverted            Code = 19

	CodeServerError Code = 20
	CodeNotFound    Code = 21
	CodeUnavailable Code = 22
	CodeBlocked     Code = 23
	CodeUnknown     Code = 24
)

// Error is a typed error that carries a stable code alongside the message.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	if typed, ok := As(err); ok {
		return typed.Code == code
	}
	return false
}

// CodeOf returns the classification of err, CodeUnknown when untyped.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	if typed, ok := As(err); ok {
		return typed.Code
	}
	return CodeUnknown
}

func ExitCode(err error) int {
	if err == nil {
		return int(CodeSuccess)
	}
	if typed, ok := As(err); ok {
		return int(typed.Code)
	}
	return int(CodeInternal)
}
