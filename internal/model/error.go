package model

import "errors"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeMissingField       = "MISSING_FIELD"
	ErrCodeTenantNotFound     = "TENANT_NOT_FOUND"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeInvalidPrice       = "INVALID_PRICE"
	ErrCodeInvalidCategory    = "INVALID_CATEGORY"
	ErrCodeInvalidDay         = "INVALID_DAY"
	ErrCodeInvalidTime        = "INVALID_TIME"
	ErrCodeInvalidAction      = "INVALID_ACTION"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeUnsupportedMedia   = "UNSUPPORTED_MEDIA"
	ErrCodeTooLarge           = "TOO_LARGE"
	ErrCodeNotConfigured      = "NOT_CONFIGURED"
	ErrCodeEmptyCart          = "EMPTY_CART"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrTenantNotFound     = NewDomainError(ErrCodeTenantNotFound, "No restaurant matches this slug")
	ErrNotFound           = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrMissingField       = NewDomainError(ErrCodeMissingField, "A required field is missing")
	ErrInvalidPrice       = NewDomainError(ErrCodeInvalidPrice, "Price must be zero or greater")
	ErrInvalidCategory    = NewDomainError(ErrCodeInvalidCategory, "Category must be one of snacks, drinks, specials, desserts")
	ErrInvalidDay         = NewDomainError(ErrCodeInvalidDay, "Day of week must be between 0 and 6")
	ErrInvalidTime        = NewDomainError(ErrCodeInvalidTime, "Times must use the HH:MM format")
	ErrInvalidAction      = NewDomainError(ErrCodeInvalidAction, "Unknown promo action type")
	ErrConflict           = NewDomainError(ErrCodeConflict, "Resource already exists")
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Email or password is incorrect")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "You do not have access to this restaurant")
	ErrUnsupportedMedia   = NewDomainError(ErrCodeUnsupportedMedia, "Only image uploads are accepted")
	ErrTooLarge           = NewDomainError(ErrCodeTooLarge, "Upload exceeds the size limit")
	ErrNotConfigured      = NewDomainError(ErrCodeNotConfigured, "This feature is not configured on the server")
	ErrEmptyCart          = NewDomainError(ErrCodeEmptyCart, "Cart has no items")
)

// CodeOf returns the domain code carried by err, or ErrCodeInternalError.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ErrCodeInternalError
}
