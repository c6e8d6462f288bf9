package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError carries the HTTP status and the parsed error body of a failed
// request so callers can branch on status or error code. The backend emits
// DRF-style bodies: message/detail/error strings, an error_code, and
// per-field error arrays either under "errors" or at the top level.
type APIError struct {
	Status  int
	Message string
	Detail  string
	Code    string
	Fields  map[string][]string
	Raw     json.RawMessage
}

func (e *APIError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("api: %s (status %d)", e.Message, e.Status)
	case e.Detail != "":
		return fmt.Sprintf("api: %s (status %d)", e.Detail, e.Status)
	default:
		return fmt.Sprintf("api: request failed (status %d)", e.Status)
	}
}

// FirstFieldError returns the first per-field validation message, if any
func (e *APIError) FirstFieldError() string {
	for _, msgs := range e.Fields {
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return ""
}

// IsAuth reports an authentication failure
func (e *APIError) IsAuth() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// IsNotFound reports a missing resource
func (e *APIError) IsNotFound() bool {
	return e.Status == http.StatusNotFound
}

// IsValidation reports a 4xx failure carrying field errors
func (e *APIError) IsValidation() bool {
	return e.Status >= 400 && e.Status < 500 && len(e.Fields) > 0
}

// IsServerFault reports a 5xx failure
func (e *APIError) IsServerFault() bool {
	return e.Status >= 500
}

// AsAPIError unwraps an *APIError from an error chain
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{
		Status: status,
		Raw:    json.RawMessage(body),
		Fields: map[string][]string{},
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		apiErr.Detail = "Request failed"
		return apiErr
	}

	stringField := func(key string) string {
		var s string
		if v, ok := raw[key]; ok && json.Unmarshal(v, &s) == nil {
			return s
		}
		return ""
	}

	apiErr.Message = stringField("message")
	apiErr.Detail = stringField("detail")
	apiErr.Code = stringField("error_code")
	if apiErr.Message == "" {
		apiErr.Message = stringField("error")
	}

	if v, ok := raw["errors"]; ok {
		_ = json.Unmarshal(v, &apiErr.Fields)
	}

	// DRF serializers also report field errors at the top level
	for key, v := range raw {
		switch key {
		case "message", "detail", "error", "errors", "error_code", "status":
			continue
		}
		var msgs []string
		if json.Unmarshal(v, &msgs) == nil && len(msgs) > 0 {
			apiErr.Fields[key] = msgs
		}
	}

	return apiErr
}
