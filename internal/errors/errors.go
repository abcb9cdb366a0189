package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

// Error categories
const (
	// API errors (API-001 to API-099)
	ErrCodeAPITransport ErrorCode = "API-001"
	ErrCodeAPITimeout   ErrorCode = "API-002"
	ErrCodeAPIRequest   ErrorCode = "API-003"
	ErrCodeAPIDecode    ErrorCode = "API-004"

	// Auth errors (AUTH-001 to AUTH-099)
	ErrCodeAuthLoginFailed     ErrorCode = "AUTH-001"
	ErrCodeAuthNotLoggedIn     ErrorCode = "AUTH-002"
	ErrCodeAuthSessionExpired  ErrorCode = "AUTH-003"
	ErrCodeAuthTokenMalformed  ErrorCode = "AUTH-004"
	ErrCodeAuthPersistenceFail ErrorCode = "AUTH-005"

	// Navigation errors (NAV-001 to NAV-099)
	ErrCodeNavRedirected  ErrorCode = "NAV-001"
	ErrCodeNavRouteConfig ErrorCode = "NAV-002"

	// Store errors (STORE-001 to STORE-099)
	ErrCodeStoreRequestFailed ErrorCode = "STORE-001"
	ErrCodeStoreNoUser        ErrorCode = "STORE-002"
	ErrCodeStoreInvalidInput  ErrorCode = "STORE-003"

	// Config errors (CONFIG-001 to CONFIG-099)
	ErrCodeConfigInvalid ErrorCode = "CONFIG-001"
	ErrCodeConfigLoad    ErrorCode = "CONFIG-002"

	// File I/O errors (IO-001 to IO-099)
	ErrCodeFileNotFound    ErrorCode = "IO-001"
	ErrCodeFileReadFailed  ErrorCode = "IO-002"
	ErrCodeFileWriteFailed ErrorCode = "IO-003"
)

// TaskboardError represents an enhanced error with code, suggestions, and documentation
type TaskboardError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	DocsURL     string
	Cause       error
}

// Error implements the error interface
func (e *TaskboardError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(": %v", e.Cause))
	}

	if len(e.Suggestions) > 0 {
		b.WriteString("\n\nSuggestions:")
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}

	if e.DocsURL != "" {
		b.WriteString(fmt.Sprintf("\n\nDocumentation: %s", e.DocsURL))
	}

	return b.String()
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *TaskboardError) Unwrap() error {
	return e.Cause
}

// New creates a new TaskboardError
func New(code ErrorCode, message string) *TaskboardError {
	return &TaskboardError{
		Code:    code,
		Message: message,
	}
}

// Wrap creates a new TaskboardError wrapping an existing error
func Wrap(code ErrorCode, message string, cause error) *TaskboardError {
	return &TaskboardError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// WithSuggestion adds a suggestion to the error
func (e *TaskboardError) WithSuggestion(suggestion string) *TaskboardError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithSuggestions adds multiple suggestions to the error
func (e *TaskboardError) WithSuggestions(suggestions ...string) *TaskboardError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// WithDocs adds a documentation URL to the error
func (e *TaskboardError) WithDocs(url string) *TaskboardError {
	e.DocsURL = url
	return e
}

// CodeOf returns the code of the first TaskboardError in err's chain,
// or an empty code when there is none.
func CodeOf(err error) ErrorCode {
	var tbErr *TaskboardError
	if stderrors.As(err, &tbErr) {
		return tbErr.Code
	}
	return ""
}

// HasCode reports whether err's chain contains a TaskboardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	for err != nil {
		var tbErr *TaskboardError
		if !stderrors.As(err, &tbErr) {
			return false
		}
		if tbErr.Code == code {
			return true
		}
		err = tbErr.Cause
	}
	return false
}

// Common error constructors for frequently used errors

// NewTransportError creates an error for a request that never produced a response
func NewTransportError(method, path string, cause error) *TaskboardError {
	return Wrap(ErrCodeAPITransport, fmt.Sprintf("request %s %s failed", method, path), cause).
		WithSuggestion("Check that the API gateway is running and reachable").
		WithSuggestion("Verify api.base_url with 'taskboard config get api.base_url'")
}

// NewTimeoutError creates an error for a request that exceeded the client timeout
func NewTimeoutError(method, path string, cause error) *TaskboardError {
	return Wrap(ErrCodeAPITimeout, fmt.Sprintf("request %s %s timed out", method, path), cause).
		WithSuggestion("Retry the command once the backend is responsive").
		WithSuggestion("Raise api.timeout in ~/.taskboard/config.yaml")
}

// NewNotLoggedInError creates an error for operations that need a session user
func NewNotLoggedInError(operation string) *TaskboardError {
	return New(ErrCodeAuthNotLoggedIn, fmt.Sprintf("%s requires a logged in user", operation)).
		WithSuggestion("Run 'taskboard auth login' to authenticate")
}

// NewRedirectError creates an error for a navigation the gate refused
func NewRedirectError(path, target, reason string) *TaskboardError {
	return New(ErrCodeNavRedirected, fmt.Sprintf("navigation to %s redirected to %s (%s)", path, target, reason))
}

// NewFileNotFoundError creates a file not found error
func NewFileNotFoundError(path string) *TaskboardError {
	return New(ErrCodeFileNotFound, fmt.Sprintf("file not found: %s", path)).
		WithSuggestion("Check if the file path is correct").
		WithSuggestion("Verify the file exists and you have read permissions")
}

// NewFileUnmarshalError creates an unmarshal error
func NewFileUnmarshalError(path string, format string, cause error) *TaskboardError {
	return Wrap(ErrCodeConfigLoad, fmt.Sprintf("failed to parse %s file: %s", format, path), cause).
		WithSuggestion("Check the file syntax and format").
		WithSuggestion(fmt.Sprintf("Ensure the file is valid %s", format))
}
