// Package common defines shared constants and sentinel errors used across
// client and server layers of metakeeper. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrorInvalidParameter = errors.New("invalid parameter")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// InvalidParameterError reports a rejected handler argument. It matches
// ErrorInvalidParameter with errors.Is.
type InvalidParameterError struct {
	Operation string
	Parameter string
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("%s: invalid parameter %s: %s", e.Operation, e.Parameter, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrorInvalidParameter
}

// NewInvalidParameter is a shorthand for building an *InvalidParameterError.
func NewInvalidParameter(operation, parameter, reason string) error {
	return &InvalidParameterError{Operation: operation, Parameter: parameter, Reason: reason}
}
