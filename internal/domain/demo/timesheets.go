package demo

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/pkg/errors"

	"hrportal/internal/domain/request"
	"hrportal/internal/domain/timesheet"
	"hrportal/internal/platform/validation"
)

// TimesheetStore keeps one draft week and the weeks already submitted from it.
type TimesheetStore struct {
	mu        sync.Mutex
	now       func() time.Time
	draft     timesheet.Form
	submitted []timesheet.Timesheet
	nextID    int
}

func NewTimesheetStore(now func() time.Time) *TimesheetStore {
	if now == nil {
		now = time.Now
	}
	s := &TimesheetStore{now: now}
	s.Reset()
	return s
}

// Reset restores the fixture draft for the current week and drops every
// submission.
func (s *TimesheetStore) Reset() {
	week := timesheet.WeekOf(s.now())
	draft := timesheet.Form{WeekStart: week.Format(validation.DateLayout)}
	for d := range 5 {
		draft.Entries = append(draft.Entries, timesheet.EntryForm{
			Date:    week.AddDate(0, 0, d).Format(validation.DateLayout),
			Project: "Internal",
			Hours:   8,
		})
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = draft
	s.submitted = nil
	s.nextID = 1
}

func (s *TimesheetStore) Draft() timesheet.Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneForm(s.draft)
}

// SaveDraft replaces the draft. Drafts are not validated until submit.
func (s *TimesheetStore) SaveDraft(f timesheet.Form) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = cloneForm(f)
}

// AddRow appends an empty row for the given day of the draft week.
func (s *TimesheetStore) AddRow(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft.Entries = append(s.draft.Entries, timesheet.EntryForm{Date: date})
}

func (s *TimesheetStore) RemoveRow(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.draft.Entries) {
		return errors.Errorf("demo: row %d out of range", i)
	}
	s.draft.Entries = slices.Delete(s.draft.Entries, i, i+1)
	return nil
}

// Submit validates the draft and records it as a pending sheet.
func (s *TimesheetStore) Submit() (timesheet.Timesheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.draft.Validate().Err(); err != nil {
		return timesheet.Timesheet{}, err
	}
	payload := s.draft.Payload()
	at := s.now()
	sheet := timesheet.Timesheet{
		ID:          fmt.Sprintf("demo-ts-%d", s.nextID),
		WeekStart:   payload.WeekStart,
		Status:      request.StatusPending,
		Entries:     payload.Entries,
		TotalHours:  s.draft.TotalHours(),
		SubmittedAt: &at,
	}
	s.nextID++
	s.submitted = append(s.submitted, sheet)
	return sheet, nil
}

func (s *TimesheetStore) Submitted() []timesheet.Timesheet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.submitted)
}

func cloneForm(f timesheet.Form) timesheet.Form {
	f.Entries = slices.Clone(f.Entries)
	return f
}
