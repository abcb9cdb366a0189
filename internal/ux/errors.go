package ux

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/felixgeelhaar/taskboard/internal/api"
	"github.com/felixgeelhaar/taskboard/internal/errors"
)

// ErrorWithSuggestion wraps an error with helpful recovery suggestions
type ErrorWithSuggestion struct {
	Err        error
	Suggestion string
}

// Error implements the error interface
func (e *ErrorWithSuggestion) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%v\n\n💡 Suggestion: %s", e.Err, e.Suggestion)
	}
	return e.Err.Error()
}

// Unwrap provides access to the underlying error
func (e *ErrorWithSuggestion) Unwrap() error {
	return e.Err
}

// NewErrorWithSuggestion creates a new error with a suggestion
func NewErrorWithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}
	return &ErrorWithSuggestion{
		Err:        err,
		Suggestion: suggestion,
	}
}

// EnhanceError analyzes an error and adds contextual suggestions.
// Coded errors that already carry suggestions are returned unchanged.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var tbErr *errors.TaskboardError
	if stderrors.As(err, &tbErr) && len(tbErr.Suggestions) > 0 {
		return err
	}

	if apiErr, ok := api.AsError(err); ok {
		if suggestion := statusSuggestion(apiErr.Status); suggestion != "" {
			return NewErrorWithSuggestion(err, suggestion)
		}
		return err
	}

	errMsg := err.Error()

	// Backend unreachable
	if strings.Contains(errMsg, "connection refused") || strings.Contains(errMsg, "no such host") ||
		strings.Contains(errMsg, "no route to host") {
		return NewErrorWithSuggestion(err,
			"Check that the backend is running and that api.base_url (or TASKBOARD_API_URL) points at it")
	}

	// File not found errors
	if strings.Contains(errMsg, "no such file or directory") {
		if strings.Contains(errMsg, "config.yaml") {
			return NewErrorWithSuggestion(err,
				"Create a configuration with 'taskboard config set api.base_url <url>'")
		}
		if strings.Contains(errMsg, "routes") {
			return NewErrorWithSuggestion(err,
				"Check the routes_file setting or remove it to use the built-in routes")
		}
	}

	// Permission errors
	if strings.Contains(errMsg, "permission denied") {
		return NewErrorWithSuggestion(err,
			"Check permissions on the taskboard home directory (TASKBOARD_HOME)")
	}

	return err
}

func statusSuggestion(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return "Your session is not valid. Run 'taskboard auth login'"
	case status == http.StatusForbidden:
		return "Your account is not allowed to do this. Ask an administrator"
	case status == http.StatusNotFound:
		return "Check the id; list available items with the matching 'list' command"
	case status == http.StatusConflict:
		return "The item changed or already exists. Refresh and try again"
	case status == http.StatusUnprocessableEntity, status == http.StatusBadRequest:
		return "The backend rejected the input. Check required fields and values"
	case status >= http.StatusInternalServerError:
		return "The backend failed to handle the request. Try again later"
	}
	return ""
}

// FormatError provides consistent error formatting with context
func FormatError(err error, context string) error {
	if err == nil {
		return nil
	}

	enhanced := EnhanceError(err)
	if context != "" {
		return fmt.Errorf("%s: %w", context, enhanced)
	}
	return enhanced
}
