package timesheet

import (
	"strconv"
	"strings"
	"time"

	"hrportal/internal/platform/validation"
)

const (
	MaxEntries   = 7 * 6
	MaxDayHours  = 24
	MaxNoteChars = 200
)

type EntryForm struct {
	Date    string  `form:"date" validate:"required"`
	Project string  `form:"project" validate:"required,max=100"`
	Hours   float64 `form:"hours" validate:"gte=0,lte=24"`
	Note    string  `form:"note" validate:"max=200"`
}

type Form struct {
	WeekStart string      `form:"weekStart" validate:"required"`
	Entries   []EntryForm `form:"entries" validate:"required,min=1,max=42,dive"`
}

// Validate checks that weekStart is a Monday and every entry falls inside
// that week.
func (f Form) Validate() *validation.Validator {
	f = f.normalized()
	v := validation.New()
	v.Struct(f)
	week, ok := v.Date("weekStart", f.WeekStart)
	if ok && week.Weekday() != time.Monday {
		v.Add("weekStart", "must be a Monday")
	}
	daily := map[string]float64{}
	for i, e := range f.Entries {
		field := "entries[" + strconv.Itoa(i) + "].date"
		d, ok := v.Date(field, e.Date)
		if !ok {
			continue
		}
		if !week.IsZero() && (d.Before(week) || d.After(week.AddDate(0, 0, 6))) {
			v.Add(field, "must fall within the selected week")
		}
		daily[e.Date] += e.Hours
	}
	for date, total := range daily {
		if total > MaxDayHours {
			v.Add("entries", "more than 24 hours logged on "+date)
		}
	}
	return v
}

func (f Form) normalized() Form {
	f.WeekStart = strings.TrimSpace(f.WeekStart)
	entries := make([]EntryForm, 0, len(f.Entries))
	for _, e := range f.Entries {
		e.Date = strings.TrimSpace(e.Date)
		e.Project = strings.TrimSpace(e.Project)
		e.Note = strings.TrimSpace(e.Note)
		// A row carrying only its prefilled date counts as blank.
		if e.Project == "" && e.Hours == 0 && e.Note == "" {
			continue
		}
		entries = append(entries, e)
	}
	f.Entries = entries
	return f
}

func (f Form) TotalHours() float64 {
	var total float64
	for _, e := range f.normalized().Entries {
		total += e.Hours
	}
	return total
}

func (f Form) Payload() Payload {
	f = f.normalized()
	out := Payload{WeekStart: f.WeekStart, Entries: make([]Entry, 0, len(f.Entries))}
	for _, e := range f.Entries {
		out.Entries = append(out.Entries, Entry{Date: e.Date, Project: e.Project, Hours: e.Hours, Note: e.Note})
	}
	return out
}

// FormFrom prefills the edit form with a stored sheet.
func FormFrom(t Timesheet) Form {
	f := Form{WeekStart: t.WeekStart, Entries: make([]EntryForm, 0, len(t.Entries))}
	for _, e := range t.Entries {
		f.Entries = append(f.Entries, EntryForm{Date: e.Date, Project: e.Project, Hours: e.Hours, Note: e.Note})
	}
	return f
}

// BlankWeek prefills one row per working day of the week starting at monday.
func BlankWeek(monday time.Time) Form {
	f := Form{WeekStart: monday.Format(validation.DateLayout), Entries: make([]EntryForm, 0, 5)}
	for i := 0; i < 5; i++ {
		f.Entries = append(f.Entries, EntryForm{Date: monday.AddDate(0, 0, i).Format(validation.DateLayout)})
	}
	return f
}

// WeekOf returns the Monday on or before d.
func WeekOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	y, m, day := d.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
