package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by repositories, services and controllers.
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicateSlug = errors.New("slug already in use")
	ErrAlreadyBooked = errors.New("already booked")
	ErrStorage       = errors.New("storage failure")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrUpload        = errors.New("media upload failed")
)

// Validation error codes. They double as the machine-readable code in API error responses.
const (
	CodeMissingField      = "missing_field"
	CodeInvalidField      = "invalid_field"
	CodeInvalidSlugFormat = "invalid_slug_format"
	CodeInvalidEmail      = "invalid_email"
	CodeInvalidMode       = "invalid_mode"
	CodeInvalidTags       = "invalid_tags"
	CodeInvalidAgenda     = "invalid_agenda"
	CodeMissingImage      = "missing_image"
	CodeInvalidFileType   = "invalid_file_type"
	CodeFileTooLarge      = "file_too_large"
)

// ValidationError describes a single rejected field. It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Field   string
	Code    string
	Message string
}

// NewValidationError returns a ValidationError for field with the given code and message.
func NewValidationError(field, code, message string) *ValidationError {
	return &ValidationError{Field: field, Code: code, Message: message}
}

// MissingField returns the error reported when a required field is absent or blank.
func MissingField(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Code:    CodeMissingField,
		Message: fmt.Sprintf("Missing required field: %s", field),
	}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
