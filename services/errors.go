package services

import (
	"errors"
	"fmt"
)

// ErrorType represents the type/category of error
type ErrorType string

const (
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeValidation   ErrorType = "validation"
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	ErrorTypeForbidden    ErrorType = "forbidden"
	ErrorTypeConflict     ErrorType = "conflict"
	ErrorTypeInternal     ErrorType = "internal"
	ErrorTypeExternal     ErrorType = "external"
)

// DomainError represents a structured error with additional context.
// Message is returned to clients verbatim; Err is only logged.
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error
	Details map[string]interface{}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches any DomainError of the same type and message
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && (t.Message == "" || e.Message == t.Message)
}

// Wrap returns a copy of e carrying err as its cause
func (e *DomainError) Wrap(err error) *DomainError {
	return &DomainError{
		Type:    e.Type,
		Message: e.Message,
		Err:     err,
		Details: copyDetails(e.Details),
	}
}

// WithDetail returns a copy of e with a detail added
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	cp := e.Wrap(e.Err)
	if cp.Details == nil {
		cp.Details = make(map[string]interface{})
	}
	cp.Details[key] = value
	return cp
}

func copyDetails(details map[string]interface{}) map[string]interface{} {
	if details == nil {
		return nil
	}
	cp := make(map[string]interface{}, len(details))
	for k, v := range details {
		cp[k] = v
	}
	return cp
}

// NewDomainError creates a new domain error
func NewDomainError(errType ErrorType, message string, err error) *DomainError {
	return &DomainError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// Domain error variables. Messages are part of the HTTP contract.

var (
	// Not Found Errors
	ErrUnknownUser = NewDomainError(ErrorTypeNotFound, "unknown user", nil)

	// Validation Errors
	ErrMissingCredentials = NewDomainError(ErrorTypeValidation, "name, email, and password are required", nil)
	ErrInvalidInput       = NewDomainError(ErrorTypeValidation, "invalid input", nil)

	// Authorization Errors
	ErrUnauthorized = NewDomainError(ErrorTypeUnauthorized, "unauthorized", nil)

	// Permission Errors
	ErrCreateFranchiseDenied = NewDomainError(ErrorTypeForbidden, "unable to create a franchise", nil)
	ErrCreateStoreDenied     = NewDomainError(ErrorTypeForbidden, "unable to create a store", nil)
	ErrDeleteStoreDenied     = NewDomainError(ErrorTypeForbidden, "unable to delete a store", nil)
	ErrAddMenuItemDenied     = NewDomainError(ErrorTypeForbidden, "unable to add menu item", nil)
	ErrUpdateUserDenied      = NewDomainError(ErrorTypeForbidden, "unauthorized", nil)

	// Conflict Errors
	ErrDuplicateEmail     = NewDomainError(ErrorTypeConflict, "email already registered", nil)
	ErrDuplicateFranchise = NewDomainError(ErrorTypeConflict, "franchise already exists", nil)

	// Internal Errors
	ErrInvalidMenuItem = NewDomainError(ErrorTypeInternal, "invalid menu item", nil)

	// External Errors
	ErrFulfillmentFailed = NewDomainError(ErrorTypeExternal, "Failed to fulfill order at factory", nil)
)

// Error type checking helper functions

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	return GetErrorType(err) == ErrorTypeNotFound
}

// GetErrorType returns the ErrorType of a domain error, or empty string if not a domain error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	return ""
}

// GetErrorDetails returns the details map of a domain error, or nil if not a domain error
func GetErrorDetails(err error) map[string]interface{} {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Details
	}
	return nil
}

// WrapInternal wraps an error as an internal error.
// Errors that already are domain errors pass through unchanged.
func WrapInternal(message string, err error) error {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return NewDomainError(ErrorTypeInternal, message, err)
}
