package employee

import (
	"strings"

	"github.com/pkg/errors"
)

// Status is the employee lifecycle state. The zero value is not a valid status.
type Status int

const (
	StatusPending Status = iota + 1
	StatusActive
	StatusInactive

	statusEnd
)

type statusMeta struct {
	wire  string
	label string
	icon  string
	tone  string
}

var statusTable = [...]statusMeta{
	StatusPending:  {wire: "Pending", label: "Pending", icon: "hourglass", tone: "warning"},
	StatusActive:   {wire: "Active", label: "Active", icon: "check-circle", tone: "success"},
	StatusInactive: {wire: "Inactive", label: "Inactive", icon: "slash-circle", tone: "muted"},
}

// One table entry per status, checked at compile time.
var _ = [1]struct{}{}[len(statusTable)-int(statusEnd)]

func Statuses() []Status {
	return []Status{StatusPending, StatusActive, StatusInactive}
}

func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range Statuses() {
		if strings.EqualFold(statusTable[s].wire, raw) {
			return s, nil
		}
	}
	return 0, errors.Errorf("unknown employee status %q", raw)
}

func (s Status) Valid() bool {
	return s >= StatusPending && s < statusEnd
}

func (s Status) meta() statusMeta {
	if !s.Valid() {
		return statusMeta{}
	}
	return statusTable[s]
}

func (s Status) String() string { return s.meta().wire }
func (s Status) Label() string  { return s.meta().label }
func (s Status) Icon() string   { return s.meta().icon }
func (s Status) Tone() string   { return s.meta().tone }

// MarshalText writes the wire name. The zero value stands for "not sent" and
// round-trips as an empty string.
func (s Status) MarshalText() ([]byte, error) {
	if s == 0 {
		return []byte{}, nil
	}
	if !s.Valid() {
		return nil, errors.Errorf("invalid employee status %d", int(s))
	}
	return []byte(statusTable[s].wire), nil
}

func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
