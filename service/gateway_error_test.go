package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGatewayError_Error(t *testing.T) {
	err := NewGatewayError(ErrBadParameter, "bad field", nil)
	assert.Equal(t, "bad_parameter bad field", err.Error())

	wrapped := NewGatewayError(ErrInternalServerError, "boom", assert.AnError)
	assert.Contains(t, wrapped.Error(), "internal_server_error boom")
	assert.Contains(t, wrapped.Error(), assert.AnError.Error())
}

func TestGatewayError_Unwrap(t *testing.T) {
	inner := assert.AnError
	err := NewGatewayError(ErrInternalServerError, "boom", inner)
	assert.ErrorIs(t, err, inner)
}

func TestToGatewayError(t *testing.T) {
	assert.Nil(t, ToGatewayError(nil))
	assert.Nil(t, ToGatewayError(assert.AnError))

	gwErr := NewEntityNotFoundError("missing", nil)
	assert.Equal(t, gwErr, ToGatewayError(gwErr))

	// Found through wrapping as well.
	wrapped := fmt.Errorf("handler failed: %w", gwErr)
	require.NotNil(t, ToGatewayError(wrapped))
	assert.Equal(t, ErrEntityNotFound, ToGatewayErrorCode(wrapped))
}

func TestConstructors_PreserveInnerGatewayError(t *testing.T) {
	orig := NewUnauthorizedError("bad key")

	// Wrapping an existing gateway error keeps the original code instead of
	// burying it under a new one.
	err := NewInternalServerError("outer", orig)
	assert.Equal(t, ErrUnauthorized, err.Code)

	err = NewBadParameterError("outer", orig)
	assert.Equal(t, ErrUnauthorized, err.Code)
}

func TestIsHelpers(t *testing.T) {
	assert.True(t, IsEntityNotFoundError(NewEntityNotFoundError("x", nil)))
	assert.True(t, IsUnauthorizedError(NewUnauthorizedError("x")))
	assert.True(t, IsBadParameterError(NewBadParameterError("x", nil)))
	assert.True(t, IsGatewayError(NewNoBackendsAvailableError("x"), ErrNoBackendsAvailable))
	assert.True(t, IsGatewayError(NewUpstreamUnreachableError("x", nil), ErrUpstreamUnreachable))
	assert.False(t, IsEntityNotFoundError(assert.AnError))
	assert.False(t, IsEntityNotFoundError(nil))
}
