package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"unicode/utf8"

	apperrors "github.com/jrsteele09/careergap-web/internal/errors"
)

// ErrSessionExpired is returned when a 401 could not be recovered by a token
// refresh. Both tokens have been cleared from the store by then.
var ErrSessionExpired = apperrors.ErrSessionExpired

// APIError is a non-2xx response from the backend
type APIError struct {
	Status  int
	Body    []byte
	Message string
}

func newAPIError(resp *Response, fallback string) *APIError {
	if fallback == "" {
		fallback = http.StatusText(resp.Status)
	}
	return &APIError{
		Status:  resp.Status,
		Body:    resp.Body,
		Message: ErrorMessage(resp.Body, fallback),
	}
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Is maps the status code onto the shared sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case apperrors.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case apperrors.ErrForbidden:
		return e.Status == http.StatusForbidden
	case apperrors.ErrNotFound:
		return e.Status == http.StatusNotFound
	case apperrors.ErrBadRequest:
		return e.Status == http.StatusBadRequest
	case apperrors.ErrServer:
		return e.Status >= http.StatusInternalServerError
	}
	return false
}

// NetworkError means no response was received, including timeouts.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

func (e *NetworkError) Is(target error) bool {
	return target == apperrors.ErrNetwork
}

func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// Keys checked, in order, when the body is an object.
var messageKeys = []string{"non_field_errors", "detail", "error", "message", "errors"}

const maxPlainMessage = 200

// ErrorMessage turns any error body the backend produces into one message.
// Strings are used as is, arrays are joined, objects are searched for the
// usual message keys and then treated as a field-keyed validation map.
// Anything else, including HTML error pages, yields fallback.
func ErrorMessage(body []byte, fallback string) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return fallback
	}

	var v any
	if err := json.Unmarshal(trimmed, &v); err != nil {
		text := string(trimmed)
		if text[0] == '<' || len(text) > maxPlainMessage || !utf8.ValidString(text) {
			return fallback
		}
		return text
	}

	if obj, ok := v.(map[string]any); ok {
		if msg := objectMessage(obj); msg != "" {
			return msg
		}
		return fallback
	}
	if msg := message(v); msg != "" {
		return msg
	}
	return fallback
}

func message(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if m := message(item); m != "" {
				parts = append(parts, m)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return objectMessage(t)
	}
	return ""
}

func objectMessage(obj map[string]any) string {
	if len(obj) == 0 {
		return ""
	}
	for _, k := range messageKeys {
		if val, ok := obj[k]; ok {
			if m := message(val); m != "" {
				return m
			}
		}
	}

	// Field-keyed validation map, e.g. {"email": ["Enter a valid email address."]}
	fields := make([]string, 0, len(obj))
	for k := range obj {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	for _, k := range fields {
		switch obj[k].(type) {
		case string, []any:
			if m := message(obj[k]); m != "" {
				return k + ": " + m
			}
		}
	}

	b, err := json.Marshal(obj)
	if err != nil {
		return ""
	}
	return string(b)
}

// UserMessage is the text shown next to a failed form or action.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	// A failed refresh wraps its cause, which is not shown
	if errors.Is(err, ErrSessionExpired) {
		return "Your session has expired. Please log in again."
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "The request timed out. Please try again."
		}
		return "Unable to reach the server. Please check your connection."
	}
	return fallback
}
