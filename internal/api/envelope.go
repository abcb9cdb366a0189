package api

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Envelope is the gateway's wrapper around every upstream reply. The
// gateway always answers 200 and reports the upstream status in StatusCode;
// Content is the upstream body, usually as a JSON-encoded string.
type Envelope struct {
	StatusCode int               `json:"status_code"`
	Content    json.RawMessage   `json:"content"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// parseEnvelope reports whether body is an envelope: a JSON object with both
// a status_code and a non-null content member.
func parseEnvelope(body []byte) (*Envelope, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, false
	}

	rawStatus, hasStatus := fields["status_code"]
	rawContent, hasContent := fields["content"]
	if !hasStatus || !hasContent || isNull(rawContent) {
		return nil, false
	}

	var status int
	if err := json.Unmarshal(rawStatus, &status); err != nil {
		return nil, false
	}

	env := &Envelope{StatusCode: status, Content: rawContent}
	if rawHeaders, ok := fields["headers"]; ok {
		// Header values are informational; a malformed map is ignored.
		_ = json.Unmarshal(rawHeaders, &env.Headers)
	}
	return env, true
}

// decodeContent normalizes envelope content. A string holding JSON becomes
// that JSON; a string that does not parse stays the string; anything else is
// already decoded and is returned as-is, so decoding twice is a no-op.
func decodeContent(content json.RawMessage) json.RawMessage {
	var s string
	if err := json.Unmarshal(content, &s); err != nil {
		return content
	}

	inner := bytes.TrimSpace([]byte(s))
	if len(inner) > 0 && json.Valid(inner) {
		return json.RawMessage(inner)
	}
	return content
}

// passthroughBody turns a non-envelope body into a JSON payload. Non-JSON
// bodies (plain-text gateway errors) are carried as a JSON string.
func passthroughBody(body []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}
	if json.Valid(trimmed) {
		return json.RawMessage(trimmed)
	}
	quoted, _ := json.Marshal(string(trimmed))
	return quoted
}

// Normalize converts one raw transport outcome into either a Response or an
// *Error. It is the only place envelopes are interpreted, and it runs for
// every response regardless of transport status, so a failure reported by
// the gateway inside a 200 and a failure reported by a non-2xx transport
// status reach the caller in the same shape.
func Normalize(status int, header http.Header, body []byte) (*Response, error) {
	data := passthroughBody(body)

	if env, ok := parseEnvelope(body); ok {
		status = env.StatusCode
		data = decodeContent(env.Content)
		if len(env.Headers) > 0 {
			header = mergeHeaders(header, env.Headers)
		}
	}

	if status >= http.StatusBadRequest {
		return nil, &Error{Status: status, Data: data}
	}

	return &Response{Status: status, Header: header, Data: data}, nil
}

func mergeHeaders(transport http.Header, upstream map[string]string) http.Header {
	merged := make(http.Header, len(transport)+len(upstream))
	for k, v := range transport {
		merged[k] = append([]string(nil), v...)
	}
	for k, v := range upstream {
		merged.Set(k, v)
	}
	return merged
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
