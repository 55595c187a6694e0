package validation

import (
	"errors"
	"strings"
)

// Error carries form issues back from a service. Nothing was sent to a
// backend when it is returned.
type Error struct {
	Issues []Issue
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Field == "" {
			parts = append(parts, issue.Reason)
			continue
		}
		parts = append(parts, issue.Field+": "+issue.Reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Fields maps each field to its first reason, the shape templates render.
func (e *Error) Fields() map[string]string {
	out := make(map[string]string, len(e.Issues))
	for _, issue := range e.Issues {
		if _, ok := out[issue.Field]; !ok {
			out[issue.Field] = issue.Reason
		}
	}
	return out
}

func As(err error) (*Error, bool) {
	var verr *Error
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

// FieldError builds a single-issue error.
func FieldError(field, reason string) error {
	return &Error{Issues: []Issue{{Field: field, Reason: reason}}}
}
