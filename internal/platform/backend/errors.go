package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

// Error is a non-2xx answer from a backend. Message carries the backend's own
// structured message when the body had one.
type Error struct {
	Backend string
	Method  string
	Path    string
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("%s %s %s: %d %s", e.Backend, e.Method, e.Path, e.Status, msg)
}

// IsUnauthorized reports whether err is a backend 401.
func IsUnauthorized(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Status == http.StatusNotFound
}

// MessageOr returns the backend's message for err, or fallback when the backend
// did not send one (including transport failures).
func MessageOr(err error, fallback string) string {
	var be *Error
	if errors.As(err, &be) && strings.TrimSpace(be.Message) != "" {
		return be.Message
	}
	return fallback
}

type errorBody struct {
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Title   string          `json:"title"`
	Error   json.RawMessage `json:"error"`
}

type nestedError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// parseError understands {message}, {error:"..."}, {error:{code,message}} and
// problem+json {title}.
func parseError(body []byte) (code, message string) {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", ""
	}
	code = strings.TrimSpace(parsed.Code)
	message = strings.TrimSpace(parsed.Message)
	if message != "" {
		return code, message
	}
	if len(parsed.Error) > 0 {
		var text string
		if err := json.Unmarshal(parsed.Error, &text); err == nil && strings.TrimSpace(text) != "" {
			return code, strings.TrimSpace(text)
		}
		var nested nestedError
		if err := json.Unmarshal(parsed.Error, &nested); err == nil && strings.TrimSpace(nested.Message) != "" {
			if code == "" {
				code = strings.TrimSpace(nested.Code)
			}
			return code, strings.TrimSpace(nested.Message)
		}
	}
	return code, strings.TrimSpace(parsed.Title)
}
