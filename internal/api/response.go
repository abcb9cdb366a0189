package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	tberrors "github.com/felixgeelhaar/taskboard/internal/errors"
)

// Response is a successful, unwrapped backend reply.
type Response struct {
	// Status is the upstream status (the envelope's status_code when wrapped)
	Status int

	Header http.Header

	// Data is the unwrapped payload; nil when the body was empty
	Data json.RawMessage
}

// Decode unmarshals the payload into v
func (r *Response) Decode(v any) error {
	if len(r.Data) == 0 || isNull(r.Data) {
		return tberrors.New(tberrors.ErrCodeAPIDecode, "response has no body")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return tberrors.Wrap(tberrors.ErrCodeAPIDecode, "failed to decode response", err)
	}
	return nil
}

// Value returns the payload as generic JSON values (map, slice, string, ...)
func (r *Response) Value() (any, error) {
	return decodeValue(r.Data)
}

// Error is the single failure shape for a request the backend rejected,
// whether the rejection arrived as a transport status or inside an envelope.
type Error struct {
	Status int
	Data   json.RawMessage
}

// Error implements the error interface
func (e *Error) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("request failed with status %d: %s", e.Status, msg)
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// Message extracts a human readable message from the payload: the
// "detail" or "message" member of an object, or the payload itself when it
// is a plain string.
func (e *Error) Message() string {
	if len(e.Data) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(e.Data, &s); err == nil {
		return s
	}

	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(e.Data, &body); err != nil {
		return string(e.Data)
	}

	if len(body.Detail) > 0 {
		if err := json.Unmarshal(body.Detail, &s); err == nil {
			return s
		}
		// Validation errors carry a list of objects.
		return string(body.Detail)
	}
	if body.Message != "" {
		return body.Message
	}
	if body.Error != "" {
		return body.Error
	}
	return string(e.Data)
}

// IsUnauthorized reports whether the backend rejected the credentials
func (e *Error) IsUnauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsNotFound reports whether the backend could not find the resource
func (e *Error) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// AsError returns the *Error in err's chain, if any
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the backend status carried by err, or 0 when err did not
// come from a backend reply.
func StatusOf(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.Status
	}
	return 0
}

func decodeValue(data json.RawMessage) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, tberrors.Wrap(tberrors.ErrCodeAPIDecode, "failed to decode payload", err)
	}
	return v, nil
}
