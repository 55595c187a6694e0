package validation

import (
	"errors"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

const DateLayout = "2006-01-02"

var (
	digitsPattern  = regexp.MustCompile(`^[0-9]+$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{6,19}$`)
	routingPattern = regexp.MustCompile(`^[A-Z0-9]{6,11}$`)
)

var engine, translator = newEngine()

func newEngine() (*validator.Validate, ut.Translator) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(err)
	}

	custom := []struct {
		tag     string
		pattern *regexp.Regexp
		message string
	}{
		{"digits", digitsPattern, "{0} must contain digits only"},
		{"phone", phonePattern, "{0} must be a valid phone number"},
		{"routing", routingPattern, "{0} must be 6 to 11 uppercase letters or digits"},
	}
	for _, c := range custom {
		pattern := c.pattern
		if err := v.RegisterValidation(c.tag, func(fl validator.FieldLevel) bool {
			return pattern.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}
		message := c.message
		tag := c.tag
		if err := v.RegisterTranslation(tag, trans, func(t ut.Translator) error {
			return t.Add(tag, message, true)
		}, func(t ut.Translator, fe validator.FieldError) string {
			out, _ := t.T(tag, fe.Field())
			return out
		}); err != nil {
			panic(err)
		}
	}
	return v, trans
}

type Issue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects field issues from struct tags and explicit checks.
type Validator struct {
	issues []Issue
}

func New() *Validator {
	return &Validator{issues: make([]Issue, 0, 4)}
}

// Struct runs the tag rules of s and records one issue per failing field.
func (v *Validator) Struct(s any) {
	err := engine.Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		v.Add("", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		msg := fe.Translate(translator)
		msg = strings.TrimPrefix(msg, fe.Field()+" ")
		v.Add(fieldPath(fe.Namespace()), msg)
	}
}

// fieldPath drops the struct name from a namespace such as
// "TimesheetForm.entries[1].hours".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func (v *Validator) Add(field, reason string) {
	if v == nil {
		return
	}
	field = strings.TrimSpace(field)
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return
	}
	v.issues = append(v.issues, Issue{Field: field, Reason: reason})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// Date parses a YYYY-MM-DD value. Blank values are left to the required rule.
func (v *Validator) Date(field, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	parsed, err := time.Parse(DateLayout, raw)
	if err != nil {
		v.Add(field, "must be a valid date in YYYY-MM-DD format")
		return time.Time{}, false
	}
	return parsed, true
}

func (v *Validator) DateOrder(startField string, start time.Time, endField string, end time.Time) {
	if start.IsZero() || end.IsZero() {
		return
	}
	if end.Before(start) {
		v.Add(endField, "must be on or after "+startField)
	}
}

// NotPast flags a date earlier than today's calendar date.
func (v *Validator) NotPast(field string, date, now time.Time) {
	if date.IsZero() {
		return
	}
	if date.Before(Today(now)) {
		v.Add(field, "must not be in the past")
	}
}

// InPast flags a date that is today or later.
func (v *Validator) InPast(field string, date, now time.Time) {
	if date.IsZero() {
		return
	}
	if !date.Before(Today(now)) {
		v.Add(field, "must be in the past")
	}
}

func (v *Validator) HasIssues() bool {
	return v != nil && len(v.issues) > 0
}

func (v *Validator) Issues() []Issue {
	if v == nil || len(v.issues) == 0 {
		return nil
	}
	out := make([]Issue, len(v.issues))
	copy(out, v.issues)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field == out[j].Field {
			return out[i].Reason < out[j].Reason
		}
		return out[i].Field < out[j].Field
	})
	return out
}

// Err returns nil when nothing was recorded.
func (v *Validator) Err() error {
	if !v.HasIssues() {
		return nil
	}
	return &Error{Issues: v.Issues()}
}

// Today returns now's calendar date at UTC midnight so it compares with
// parsed form dates.
func Today(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
