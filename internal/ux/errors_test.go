package ux

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/felixgeelhaar/taskboard/internal/api"
	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
)

func TestNewErrorWithSuggestion(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		suggestion string
		wantNil    bool
	}{
		{
			name:       "nil error returns nil",
			err:        nil,
			suggestion: "some suggestion",
			wantNil:    true,
		},
		{
			name:       "error with suggestion",
			err:        errors.New("something failed"),
			suggestion: "try this fix",
			wantNil:    false,
		},
		{
			name:       "error without suggestion",
			err:        errors.New("something failed"),
			suggestion: "",
			wantNil:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewErrorWithSuggestion(tt.err, tt.suggestion)
			if tt.wantNil {
				if result != nil {
					t.Errorf("NewErrorWithSuggestion() = %v, want nil", result)
				}
				return
			}

			if result == nil {
				t.Fatal("NewErrorWithSuggestion() returned nil, want error")
			}

			errMsg := result.Error()
			if !strings.Contains(errMsg, tt.err.Error()) {
				t.Errorf("Error message %q does not contain original error %q", errMsg, tt.err.Error())
			}

			if tt.suggestion != "" && !strings.Contains(errMsg, tt.suggestion) {
				t.Errorf("Error message %q does not contain suggestion %q", errMsg, tt.suggestion)
			}
		})
	}
}

func TestErrorWithSuggestion_Error(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		suggestion string
		wantMsg    string
	}{
		{
			name:       "with suggestion",
			err:        errors.New("test error"),
			suggestion: "do this",
			wantMsg:    "test error\n\n💡 Suggestion: do this",
		},
		{
			name:       "without suggestion",
			err:        errors.New("test error"),
			suggestion: "",
			wantMsg:    "test error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &ErrorWithSuggestion{
				Err:        tt.err,
				Suggestion: tt.suggestion,
			}

			if e.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", e.Error(), tt.wantMsg)
			}
		})
	}
}

func TestErrorWithSuggestion_Unwrap(t *testing.T) {
	origErr := errors.New("original error")
	e := &ErrorWithSuggestion{
		Err:        origErr,
		Suggestion: "some suggestion",
	}

	unwrapped := e.Unwrap()
	if unwrapped != origErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, origErr)
	}
}

func TestEnhanceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantNil        bool
		wantSuggestion string
	}{
		{
			name:    "nil error returns nil",
			err:     nil,
			wantNil: true,
		},
		{
			name:           "backend unreachable",
			err:            errors.New(`Get "http://localhost:8000/api/tasks/": dial tcp: connection refused`),
			wantSuggestion: "TASKBOARD_API_URL",
		},
		{
			name:           "unknown host",
			err:            errors.New("dial tcp: lookup gateway: no such host"),
			wantSuggestion: "api.base_url",
		},
		{
			name:           "config file missing",
			err:            errors.New("open /home/me/.taskboard/config.yaml: no such file or directory"),
			wantSuggestion: "taskboard config set",
		},
		{
			name:           "routes file missing",
			err:            errors.New("open routes.yaml: no such file or directory"),
			wantSuggestion: "routes_file",
		},
		{
			name:           "permission denied",
			err:            errors.New("open auth.json: permission denied"),
			wantSuggestion: "TASKBOARD_HOME",
		},
		{
			name:           "unauthorized",
			err:            &api.Error{Status: http.StatusUnauthorized, Data: []byte(`{"detail":"Not authenticated"}`)},
			wantSuggestion: "taskboard auth login",
		},
		{
			name:           "forbidden",
			err:            &api.Error{Status: http.StatusForbidden},
			wantSuggestion: "administrator",
		},
		{
			name:           "not found",
			err:            &api.Error{Status: http.StatusNotFound, Data: []byte(`"Task not found"`)},
			wantSuggestion: "Check the id",
		},
		{
			name:           "validation rejected",
			err:            &api.Error{Status: http.StatusUnprocessableEntity},
			wantSuggestion: "required fields",
		},
		{
			name:           "backend failure",
			err:            &api.Error{Status: http.StatusBadGateway, Data: []byte(`"Bad Gateway"`)},
			wantSuggestion: "Try again later",
		},
		{
			name:           "unmapped status unchanged",
			err:            &api.Error{Status: http.StatusTeapot},
			wantSuggestion: "",
		},
		{
			name:           "unrecognized error unchanged",
			err:            errors.New("some random error"),
			wantSuggestion: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EnhanceError(tt.err)

			if tt.wantNil {
				if result != nil {
					t.Errorf("EnhanceError() = %v, want nil", result)
				}
				return
			}

			if result == nil {
				t.Fatal("EnhanceError() returned nil, want error")
			}

			errMsg := result.Error()

			// Original error should be preserved
			if !strings.Contains(errMsg, tt.err.Error()) {
				t.Errorf("Enhanced error %q does not contain original error %q", errMsg, tt.err.Error())
			}

			// Check for expected suggestion
			if tt.wantSuggestion != "" {
				if !strings.Contains(errMsg, tt.wantSuggestion) {
					t.Errorf("Enhanced error %q does not contain expected suggestion %q", errMsg, tt.wantSuggestion)
				}
			}
		})
	}
}

func TestFormatError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		context     string
		wantNil     bool
		wantContext bool
	}{
		{
			name:    "nil error returns nil",
			err:     nil,
			context: "some context",
			wantNil: true,
		},
		{
			name:        "error with context",
			err:         errors.New("something failed"),
			context:     "while processing file",
			wantContext: true,
		},
		{
			name:        "error without context",
			err:         errors.New("something failed"),
			context:     "",
			wantContext: false,
		},
		{
			name:        "enhances and adds context",
			err:         errors.New("open config.yaml: no such file or directory"),
			context:     "loading configuration",
			wantContext: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatError(tt.err, tt.context)

			if tt.wantNil {
				if result != nil {
					t.Errorf("FormatError() = %v, want nil", result)
				}
				return
			}

			if result == nil {
				t.Fatal("FormatError() returned nil, want error")
			}

			errMsg := result.Error()

			if tt.wantContext && tt.context != "" {
				if !strings.Contains(errMsg, tt.context) {
					t.Errorf("Formatted error %q does not contain context %q", errMsg, tt.context)
				}
			}

			// Should still contain original error message
			if !strings.Contains(errMsg, tt.err.Error()) {
				t.Errorf("Formatted error %q does not contain original error %q", errMsg, tt.err.Error())
			}
		})
	}
}

func TestEnhanceError_PreservesErrorChain(t *testing.T) {
	// Create a wrapped error chain
	baseErr := errors.New("base error")
	wrappedErr := NewErrorWithSuggestion(baseErr, "first suggestion")

	// Enhance it again
	enhanced := EnhanceError(wrappedErr)

	// Should be able to unwrap to get original
	if enhanced == nil {
		t.Fatal("EnhanceError() returned nil")
	}

	// EnhanceError returns the original error if it doesn't match any patterns
	// So for an unrecognized ErrorWithSuggestion, it should return it unchanged
	if enhanced.Error() != wrappedErr.Error() {
		t.Errorf("EnhanceError() changed error message: got %q, want %q", enhanced.Error(), wrappedErr.Error())
	}
}

func TestEnhanceError_KeepsCodedSuggestions(t *testing.T) {
	err := tberrors.New(tberrors.ErrCodeAuthNotLoggedIn, "tasks requires a logged in user").
		WithSuggestion("Run 'taskboard auth login'")

	enhanced := EnhanceError(err)
	if enhanced != error(err) {
		t.Errorf("EnhanceError() = %v, want the original error", enhanced)
	}

	var withSuggestion *ErrorWithSuggestion
	if errors.As(enhanced, &withSuggestion) {
		t.Error("coded error with suggestions should not be wrapped again")
	}
}

func TestEnhanceError_WrappedAPIError(t *testing.T) {
	err := tberrors.Wrap(tberrors.ErrCodeStoreRequestFailed, "tasks fetch failed",
		&api.Error{Status: http.StatusUnauthorized})

	enhanced := EnhanceError(err)
	if !strings.Contains(enhanced.Error(), "taskboard auth login") {
		t.Errorf("EnhanceError() = %q, want login suggestion", enhanced.Error())
	}
	if !errors.Is(enhanced, err) {
		t.Error("enhanced error should wrap the original")
	}
}
