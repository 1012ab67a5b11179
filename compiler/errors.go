package compiler

import (
	"errors"
	"fmt"
)

// Kind classifies compiler errors.
type Kind int

const (
	KindUnknown Kind = iota
	// KindConfiguration is raised before any service call.
	KindConfiguration
	// KindValidation means a service response did not satisfy its contract.
	KindValidation
	// KindExternalService wraps an error returned by a service.
	KindExternalService
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "ConfigurationError"
	case KindValidation:
		return "ValidationError"
	case KindExternalService:
		return "ExternalServiceError"
	default:
		return "UnknownError"
	}
}

// Error is the error type returned by the compiler.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// IsKind reports whether err wraps a compiler Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var cerr *Error
	return errors.As(err, &cerr) && cerr.Kind == kind
}
