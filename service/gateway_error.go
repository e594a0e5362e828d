package service

import (
	"errors"
	"fmt"
)

const (
	// ErrInternalServerError means that an internal server error has occurred.
	ErrInternalServerError = "internal_server_error"
	// ErrEntityNotFound means that a backend or session id is unknown to the gateway.
	ErrEntityNotFound = "entity_not_found"
	// ErrBadParameter means that a provided parameter is missing or malformed.
	ErrBadParameter = "bad_parameter"
	// ErrUnauthorized means the shared secret or dashboard session did not check out.
	ErrUnauthorized = "unauthorized"
	// ErrNoBackendsAvailable means a proxy attempt found no healthy backend to pin to.
	ErrNoBackendsAvailable = "no_backends_available"
	// ErrUpstreamUnreachable means the outbound proxy call to the pinned backend failed.
	ErrUpstreamUnreachable = "upstream_unreachable"
)

// GatewayError represents an error within the context of the gateway services.
type GatewayError struct {
	// Code is a machine-readable code.
	Code string `json:"code,omitempty"`
	// Message is a human-readable message.
	Message string `json:"message"`
	// Inner is a wrapped error that is never shown to API consumers.
	Inner error `json:"-"`
}

// NewGatewayError creates a new GatewayError.
func NewGatewayError(code string, message string, inner error) *GatewayError {
	return &GatewayError{
		Code:    code,
		Message: message,
		Inner:   inner,
	}
}

func NewInternalServerError(message string, inner error) *GatewayError {
	gwInner := ToGatewayError(inner)
	if gwInner != nil {
		return gwInner
	}

	return NewGatewayError(ErrInternalServerError, message, inner)
}

func NewEntityNotFoundError(message string, inner error) *GatewayError {
	gwInner := ToGatewayError(inner)
	if gwInner != nil {
		return gwInner
	}

	return NewGatewayError(ErrEntityNotFound, message, inner)
}

func NewBadParameterError(message string, inner error) *GatewayError {
	gwInner := ToGatewayError(inner)
	if gwInner != nil {
		return gwInner
	}

	return NewGatewayError(ErrBadParameter, message, inner)
}

func NewUnauthorizedError(message string) *GatewayError {
	return NewGatewayError(ErrUnauthorized, message, nil)
}

func NewNoBackendsAvailableError(message string) *GatewayError {
	return NewGatewayError(ErrNoBackendsAvailable, message, nil)
}

func NewUpstreamUnreachableError(message string, inner error) *GatewayError {
	return NewGatewayError(ErrUpstreamUnreachable, message, inner)
}

func (e GatewayError) Error() string {
	if e.Inner != nil {
		return fmt.Sprintf("%s %s: %v", e.Code, e.Message, e.Inner)
	}

	return fmt.Sprintf("%s %s", e.Code, e.Message)
}

// Unwrap the error returning the error's reason.
func (e GatewayError) Unwrap() error {
	return e.Inner
}

// ToGatewayError returns a pointer to a gateway error, or nil if it is not a gateway error.
func ToGatewayError(err error) *GatewayError {
	var e *GatewayError
	if errors.As(err, &e) {
		return e
	}

	return nil
}

// ToGatewayErrorCode returns the code of the error, if available.
func ToGatewayErrorCode(err error) string {
	gwerror := ToGatewayError(err)
	if gwerror != nil {
		return gwerror.Code
	}
	return ""
}

func IsGatewayError(err error, code string) bool {
	gwerror := ToGatewayError(err)
	if gwerror != nil {
		return gwerror.Code == code
	}
	return false
}

func IsEntityNotFoundError(err error) bool {
	return IsGatewayError(err, ErrEntityNotFound)
}

func IsUnauthorizedError(err error) bool {
	return IsGatewayError(err, ErrUnauthorized)
}

func IsBadParameterError(err error) bool {
	return IsGatewayError(err, ErrBadParameter)
}
