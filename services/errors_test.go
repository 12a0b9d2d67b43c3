package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainError(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeNotFound, "resource not found", baseErr)

	assert.Equal(t, ErrorTypeNotFound, domainErr.Type)
	assert.Equal(t, "resource not found", domainErr.Message)
	assert.Equal(t, baseErr, domainErr.Err)
	assert.Nil(t, domainErr.Details)
}

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *DomainError
		wantMsg string
	}{
		{
			name: "error with wrapped error",
			err: &DomainError{
				Type:    ErrorTypeNotFound,
				Message: "unknown user",
				Err:     errors.New("db error"),
			},
			wantMsg: "not_found: unknown user (db error)",
		},
		{
			name: "error without wrapped error",
			err: &DomainError{
				Type:    ErrorTypeValidation,
				Message: "invalid input",
			},
			wantMsg: "validation: invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	baseErr := errors.New("base error")
	domainErr := NewDomainError(ErrorTypeInternal, "internal error", baseErr)

	assert.Equal(t, baseErr, errors.Unwrap(domainErr))
	assert.ErrorIs(t, domainErr, baseErr)
}

func TestDomainError_Is(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{"same sentinel", ErrUnknownUser, ErrUnknownUser, true},
		{"wrapped sentinel", ErrUnknownUser.Wrap(errors.New("no rows")), ErrUnknownUser, true},
		{"fmt wrapped", fmt.Errorf("login: %w", ErrUnauthorized), ErrUnauthorized, true},
		{"same type different message", ErrCreateStoreDenied, ErrDeleteStoreDenied, false},
		{"type only target", ErrCreateStoreDenied, &DomainError{Type: ErrorTypeForbidden}, true},
		{"different type", ErrUnauthorized, ErrUpdateUserDenied, false},
		{"plain error", errors.New("x"), ErrInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestDomainError_WrapDoesNotMutateSentinel(t *testing.T) {
	cause := errors.New("boom")
	wrapped := ErrFulfillmentFailed.Wrap(cause).WithDetail("reportUrl", "http://factory/report")

	assert.Nil(t, ErrFulfillmentFailed.Err)
	assert.Nil(t, ErrFulfillmentFailed.Details)
	assert.Equal(t, cause, wrapped.Err)
	assert.Equal(t, "http://factory/report", wrapped.Details["reportUrl"])
}

func TestIsNotFoundError(t *testing.T) {
	assert.True(t, IsNotFoundError(ErrUnknownUser))
	assert.True(t, IsNotFoundError(fmt.Errorf("wrapped: %w", ErrUnknownUser)))
	assert.False(t, IsNotFoundError(ErrUnauthorized))
	assert.False(t, IsNotFoundError(errors.New("plain")))
	assert.False(t, IsNotFoundError(nil))
}

func TestGetErrorType(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"not found", ErrUnknownUser, ErrorTypeNotFound},
		{"validation", ErrMissingCredentials, ErrorTypeValidation},
		{"unauthorized", ErrUnauthorized, ErrorTypeUnauthorized},
		{"forbidden", ErrAddMenuItemDenied, ErrorTypeForbidden},
		{"conflict", ErrDuplicateEmail, ErrorTypeConflict},
		{"internal", ErrInvalidMenuItem, ErrorTypeInternal},
		{"external", ErrFulfillmentFailed, ErrorTypeExternal},
		{"wrapped", fmt.Errorf("wrapped: %w", ErrDuplicateEmail), ErrorTypeConflict},
		{"plain", errors.New("plain"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorType(tt.err))
		})
	}
}

func TestGetErrorDetails(t *testing.T) {
	err := ErrInvalidInput.WithDetail("field", "email")
	assert.Equal(t, map[string]interface{}{"field": "email"}, GetErrorDetails(err))
	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}

func TestWrapInternal(t *testing.T) {
	cause := errors.New("db down")
	err := WrapInternal("failed to load menu", cause)

	require.Equal(t, ErrorTypeInternal, GetErrorType(err))
	assert.ErrorIs(t, err, cause)

	// domain errors are preserved
	assert.Equal(t, ErrUnknownUser, WrapInternal("ignored", ErrUnknownUser))
}

func TestContractMessages(t *testing.T) {
	assert.Equal(t, "name, email, and password are required", ErrMissingCredentials.Message)
	assert.Equal(t, "unknown user", ErrUnknownUser.Message)
	assert.Equal(t, "unauthorized", ErrUnauthorized.Message)
	assert.Equal(t, "unauthorized", ErrUpdateUserDenied.Message)
	assert.Equal(t, "unable to create a franchise", ErrCreateFranchiseDenied.Message)
	assert.Equal(t, "unable to create a store", ErrCreateStoreDenied.Message)
	assert.Equal(t, "unable to delete a store", ErrDeleteStoreDenied.Message)
	assert.Equal(t, "unable to add menu item", ErrAddMenuItemDenied.Message)
	assert.Contains(t, ErrFulfillmentFailed.Message, "Failed to fulfill order")
}
