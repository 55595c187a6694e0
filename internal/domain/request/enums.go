package request

import (
	"strings"

	"github.com/pkg/errors"
)

type enumMeta struct {
	wire  string
	label string
	icon  string
	tone  string
}

// Type is the kind of a request. Unknown wire values fail to decode.
type Type int

const (
	TypeTimesheetWeekly Type = iota + 1
	TypePaidLeave
	TypeUnpaidLeave
	TypePaidSickLeave
	TypeUnpaidSickLeave
	TypeWFH

	typeEnd
)

var typeTable = [...]enumMeta{
	TypeTimesheetWeekly: {wire: "TIMESHEET_WEEKLY", label: "Weekly timesheet", icon: "calendar-week", tone: "info"},
	TypePaidLeave:       {wire: "PAID_LEAVE", label: "Paid leave", icon: "sun", tone: "success"},
	TypeUnpaidLeave:     {wire: "UNPAID_LEAVE", label: "Unpaid leave", icon: "moon", tone: "muted"},
	TypePaidSickLeave:   {wire: "PAID_SICK_LEAVE", label: "Paid sick leave", icon: "thermometer", tone: "danger"},
	TypeUnpaidSickLeave: {wire: "UNPAID_SICK_LEAVE", label: "Unpaid sick leave", icon: "bandage", tone: "warning"},
	TypeWFH:             {wire: "WFH", label: "Work from home", icon: "house", tone: "primary"},
}

var _ = [1]struct{}{}[len(typeTable)-int(typeEnd)]

func Types() []Type {
	return []Type{TypeTimesheetWeekly, TypePaidLeave, TypeUnpaidLeave, TypePaidSickLeave, TypeUnpaidSickLeave, TypeWFH}
}

// TimeOffTypes are the types an employee can file from the time-off form.
func TimeOffTypes() []Type {
	return []Type{TypePaidLeave, TypeUnpaidLeave, TypePaidSickLeave, TypeUnpaidSickLeave, TypeWFH}
}

func ParseType(raw string) (Type, error) {
	raw = strings.TrimSpace(raw)
	for _, t := range Types() {
		if strings.EqualFold(typeTable[t].wire, raw) {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown request type %q", raw)
}

func (t Type) Valid() bool { return t >= TypeTimesheetWeekly && t < typeEnd }

func (t Type) meta() enumMeta {
	if !t.Valid() {
		return enumMeta{}
	}
	return typeTable[t]
}

func (t Type) String() string { return t.meta().wire }
func (t Type) Label() string  { return t.meta().label }
func (t Type) Icon() string   { return t.meta().icon }
func (t Type) Tone() string   { return t.meta().tone }

func (t Type) IsSickLeave() bool {
	return t == TypePaidSickLeave || t == TypeUnpaidSickLeave
}

func (t Type) IsTimeOff() bool {
	return t.Valid() && t != TypeTimesheetWeekly
}

func (t Type) MarshalText() ([]byte, error) {
	if t == 0 {
		return []byte{}, nil
	}
	if !t.Valid() {
		return nil, errors.Errorf("invalid request type %d", int(t))
	}
	return []byte(typeTable[t].wire), nil
}

func (t *Type) UnmarshalText(text []byte) error {
	parsed, err := ParseType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Status is where a request sits in the approval flow.
type Status int

const (
	StatusPending Status = iota + 1
	StatusApproved
	StatusRejected
	StatusCancelled

	statusEnd
)

var statusTable = [...]enumMeta{
	StatusPending:   {wire: "PENDING", label: "Pending", icon: "hourglass", tone: "warning"},
	StatusApproved:  {wire: "APPROVED", label: "Approved", icon: "check-circle", tone: "success"},
	StatusRejected:  {wire: "REJECTED", label: "Rejected", icon: "x-circle", tone: "danger"},
	StatusCancelled: {wire: "CANCELLED", label: "Cancelled", icon: "slash-circle", tone: "muted"},
}

var _ = [1]struct{}{}[len(statusTable)-int(statusEnd)]

func Statuses() []Status {
	return []Status{StatusPending, StatusApproved, StatusRejected, StatusCancelled}
}

func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	for _, s := range Statuses() {
		if strings.EqualFold(statusTable[s].wire, raw) {
			return s, nil
		}
	}
	return 0, errors.Errorf("unknown request status %q", raw)
}

func (s Status) Valid() bool { return s >= StatusPending && s < statusEnd }

func (s Status) meta() enumMeta {
	if !s.Valid() {
		return enumMeta{}
	}
	return statusTable[s]
}

func (s Status) String() string { return s.meta().wire }
func (s Status) Label() string  { return s.meta().label }
func (s Status) Icon() string   { return s.meta().icon }
func (s Status) Tone() string   { return s.meta().tone }

func (s Status) MarshalText() ([]byte, error) {
	if s == 0 {
		return []byte{}, nil
	}
	if !s.Valid() {
		return nil, errors.Errorf("invalid request status %d", int(s))
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
