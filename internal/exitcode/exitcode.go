package exitcode

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/felixgeelhaar/taskboard/internal/api"
	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution
	Success = 0

	// GeneralError indicates a general error condition
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, invalid input)
	UsageError = 2

	// NotFound indicates the backend could not find the requested item
	NotFound = 3

	// Rejected indicates the backend refused the request (validation, conflict, server failure)
	Rejected = 4

	// AuthError indicates an authentication or authorization failure,
	// including navigation redirected to the login view
	AuthError = 5

	// NetworkError indicates the backend could not be reached or timed out
	NetworkError = 6

	// Interrupted indicates the command was cancelled by a signal
	Interrupted = 130
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	if err == nil {
		Exit(Success)
		return
	}

	code := DetermineExitCode(err)
	Exit(code)
}

// DetermineExitCode analyzes an error and returns the appropriate exit code.
// Backend statuses and error codes decide first; the message is only
// inspected for errors that carry neither.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}

	if errors.Is(err, context.Canceled) {
		return Interrupted
	}

	if apiErr, ok := api.AsError(err); ok {
		return fromStatus(apiErr.Status)
	}

	if code := tberrors.CodeOf(err); code != "" {
		if exit, ok := fromCode(code); ok {
			return exit
		}
	}

	return fromMessage(strings.ToLower(err.Error()))
}

func fromStatus(status int) int {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return AuthError
	case status == http.StatusNotFound:
		return NotFound
	case status == http.StatusBadGateway, status == http.StatusServiceUnavailable,
		status == http.StatusGatewayTimeout:
		return NetworkError
	default:
		return Rejected
	}
}

func fromCode(code tberrors.ErrorCode) (int, bool) {
	switch code {
	case tberrors.ErrCodeAPITransport, tberrors.ErrCodeAPITimeout:
		return NetworkError, true
	case tberrors.ErrCodeAuthLoginFailed, tberrors.ErrCodeAuthNotLoggedIn,
		tberrors.ErrCodeAuthSessionExpired, tberrors.ErrCodeAuthTokenMalformed,
		tberrors.ErrCodeNavRedirected, tberrors.ErrCodeStoreNoUser:
		return AuthError, true
	case tberrors.ErrCodeStoreInvalidInput, tberrors.ErrCodeConfigInvalid:
		return UsageError, true
	case tberrors.ErrCodeFileNotFound:
		return NotFound, true
	}
	return 0, false
}

func fromMessage(errMsg string) int {
	// Authentication errors
	if strings.Contains(errMsg, "authentication") || strings.Contains(errMsg, "unauthorized") {
		return AuthError
	}
	if strings.Contains(errMsg, "not logged in") || strings.Contains(errMsg, "token") {
		return AuthError
	}

	// Network errors
	if strings.Contains(errMsg, "network") || strings.Contains(errMsg, "connection") {
		return NetworkError
	}
	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "unreachable") {
		return NetworkError
	}

	// Usage errors
	if strings.Contains(errMsg, "invalid flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "missing argument") {
		return UsageError
	}
	if strings.Contains(errMsg, "accepts") && strings.Contains(errMsg, "arg(s)") {
		return UsageError
	}

	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags, arguments or input)"
	case NotFound:
		return "Not found"
	case Rejected:
		return "Rejected by the backend"
	case AuthError:
		return "Authentication error"
	case NetworkError:
		return "Network error"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}
