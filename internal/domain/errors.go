package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Caller-facing error kinds
	CodeValidation    ErrorCode = "VALIDATION_ERROR"
	CodeProcessing    ErrorCode = "PROCESSING_ERROR"
	CodeHallucination ErrorCode = "HALLUCINATION_ERROR"

	// Internal error kinds
	CodeInternal        ErrorCode = "INTERNAL_ERROR"
	CodeLLMServiceError ErrorCode = "LLM_SERVICE_ERROR"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"details,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Details: e.Context,
	})
}

// WithContext attaches a detail entry and returns the same error.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError reports malformed or out-of-range caller input.
func NewValidationError(message string) *DomainError {
	return NewError(CodeValidation, message, nil)
}

// NewProcessingError reports a failure of the pipeline itself.
func NewProcessingError(message string, cause error) *DomainError {
	return NewError(CodeProcessing, message, cause)
}

// NewHallucinationError reports generated numbers that are absent from the source.
func NewHallucinationError(message string, numbers []float64) *DomainError {
	err := NewError(CodeHallucination, message, nil)
	if len(numbers) > 0 {
		err.WithContext("numbers", numbers)
	}
	return err
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewLLMServiceError(cause error) *DomainError {
	return NewError(CodeLLMServiceError, "Failed to process with LLM service", cause)
}

// CodeOf returns the code of the first DomainError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

func IsValidation(err error) bool    { return CodeOf(err) == CodeValidation }
func IsProcessing(err error) bool    { return CodeOf(err) == CodeProcessing }
func IsHallucination(err error) bool { return CodeOf(err) == CodeHallucination }

// FieldError describes a single invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// FieldErrors is returned by request validation; it is rendered as a 400 response.
type FieldErrors []FieldError

func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "request validation failed"
	}
	if len(fe) == 1 {
		return fmt.Sprintf("%s: %s", fe[0].Field, fe[0].Message)
	}
	return fmt.Sprintf("%s: %s (and %d more)", fe[0].Field, fe[0].Message, len(fe)-1)
}
