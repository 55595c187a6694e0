package timesheet

import (
	"time"

	"hrportal/internal/domain/request"
	"hrportal/internal/platform/backend"
)

type Entry struct {
	Date    string  `json:"date"`
	Project string  `json:"project"`
	Hours   float64 `json:"hours"`
	Note    string  `json:"note,omitempty"`
}

type Timesheet struct {
	ID          string         `json:"id"`
	WeekStart   string         `json:"weekStart"`
	Status      request.Status `json:"status,omitempty"`
	Entries     []Entry        `json:"entries"`
	TotalHours  float64        `json:"totalHours"`
	SubmittedAt *time.Time     `json:"submittedAt,omitempty"`
}

// Editable mirrors the approval rule: only pending sheets can change.
func (t Timesheet) Editable() bool {
	return t.Status == request.StatusPending
}

type Page = backend.Page[Timesheet]

type Payload struct {
	WeekStart string  `json:"weekStart"`
	Entries   []Entry `json:"entries"`
}
