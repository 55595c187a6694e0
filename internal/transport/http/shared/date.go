package shared

import (
	"time"

	"hrportal/internal/platform/validation"
)

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(validation.DateLayout, value)
}

// DisplayDate renders a backend date as "02 Jan 2006"; unparseable input is
// shown unchanged.
func DisplayDate(value string) string {
	t, err := ParseDate(value)
	if err != nil || t.IsZero() {
		return value
	}
	return t.Format("02 Jan 2006")
}
