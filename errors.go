package formic

import "fmt"

// ErrorType represents the category of error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Error codes
const (
	ErrCodeSchemaNotFound    = "SCHEMA_NOT_FOUND"
	ErrCodeSchemaInvalid     = "SCHEMA_INVALID"
	ErrCodeSnippetNotFound   = "SNIPPET_NOT_FOUND"
	ErrCodeStorageFailed     = "STORAGE_FAILED"
	ErrCodeConnectionFailed  = "CONNECTION_FAILED"
	ErrCodeValidationFailed  = "VALIDATION_FAILED"
	ErrCodeInternalError     = "INTERNAL_ERROR"
	ErrCodeSourceUnavailable = "SOURCE_UNAVAILABLE"
)

// FormicError is the unified error for collaborator failures: schema
// sources, snippet stores, configuration. Validation findings are never
// errors — they travel in the path-keyed error map.
type FormicError struct {
	Type    ErrorType      `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Field   string         `json:"field,omitempty"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *FormicError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s:%s] field '%s': %s", e.Type, e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

func (e *FormicError) Unwrap() error {
	return e.Cause
}

// WithDetail adds a single detail to a FormicError
func (e *FormicError) WithDetail(key string, value any) *FormicError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause adds a cause to a FormicError
func (e *FormicError) WithCause(cause error) *FormicError {
	e.Cause = cause
	return e
}

// WithField adds field context to a FormicError
func (e *FormicError) WithField(field string) *FormicError {
	e.Field = field
	return e
}

// NewFormicError creates a new FormicError
func NewFormicError(errorType ErrorType, code, message string) *FormicError {
	return &FormicError{
		Type:    errorType,
		Code:    code,
		Message: message,
	}
}

// NewSchemaNotFoundError creates a schema not found error
func NewSchemaNotFoundError(schemaName string) *FormicError {
	return &FormicError{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeSchemaNotFound,
		Message: fmt.Sprintf("schema '%s' not found", schemaName),
		Details: map[string]any{"schema_name": schemaName},
	}
}

// NewSchemaInvalidError creates an error for a schema document that fails
// structural sanity checks
func NewSchemaInvalidError(schemaName string, cause error) *FormicError {
	return &FormicError{
		Type:    ErrorTypeValidation,
		Code:    ErrCodeSchemaInvalid,
		Message: fmt.Sprintf("schema '%s' is not a valid document", schemaName),
		Details: map[string]any{"schema_name": schemaName},
		Cause:   cause,
	}
}

// NewSnippetNotFoundError creates a snippet not found error
func NewSnippetNotFoundError(id string) *FormicError {
	return &FormicError{
		Type:    ErrorTypeNotFound,
		Code:    ErrCodeSnippetNotFound,
		Message: fmt.Sprintf("snippet '%s' not found", id),
		Details: map[string]any{"snippet_id": id},
	}
}

// NewStorageError creates a snippet store failure
func NewStorageError(message string, cause error) *FormicError {
	return &FormicError{
		Type:    ErrorTypeStorage,
		Code:    ErrCodeStorageFailed,
		Message: message,
		Cause:   cause,
	}
}

// NewConnectionError creates a backend connection error
func NewConnectionError(message string, cause error) *FormicError {
	return &FormicError{
		Type:    ErrorTypeStorage,
		Code:    ErrCodeConnectionFailed,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates an internal error
func NewInternalError(message string, cause error) *FormicError {
	return &FormicError{
		Type:    ErrorTypeInternal,
		Code:    ErrCodeInternalError,
		Message: message,
		Cause:   cause,
	}
}

// IsNotFoundError checks if an error is a not-found FormicError
func IsNotFoundError(err error) bool {
	if fe, ok := err.(*FormicError); ok {
		return fe.Type == ErrorTypeNotFound
	}
	return false
}

// IsStorageError checks if an error is a storage FormicError
func IsStorageError(err error) bool {
	if fe, ok := err.(*FormicError); ok {
		return fe.Type == ErrorTypeStorage
	}
	return false
}
