package request

import (
	"strings"
	"time"

	"hrportal/internal/domain/attachment"
	"hrportal/internal/platform/validation"
)

const MaxReasonLength = 500

type TimeOffForm struct {
	Type      string `form:"type" validate:"required,oneof=PAID_LEAVE UNPAID_LEAVE PAID_SICK_LEAVE UNPAID_SICK_LEAVE WFH"`
	StartDate string `form:"startDate" validate:"required"`
	EndDate   string `form:"endDate" validate:"required"`
	Reason    string `form:"reason" validate:"max=500"`
}

func (f TimeOffForm) normalized() TimeOffForm {
	f.Type = strings.TrimSpace(f.Type)
	f.StartDate = strings.TrimSpace(f.StartDate)
	f.EndDate = strings.TrimSpace(f.EndDate)
	f.Reason = strings.TrimSpace(f.Reason)
	return f
}

// Validate checks the form together with its attachments; sick leave longer
// than three days needs at least one file.
func (f TimeOffForm) Validate(now time.Time, files attachment.List) *validation.Validator {
	f = f.normalized()
	v := validation.New()
	v.Struct(f)
	start, okStart := v.Date("startDate", f.StartDate)
	end, okEnd := v.Date("endDate", f.EndDate)
	if okStart {
		v.NotPast("startDate", start, now)
	}
	if okStart && okEnd {
		v.DateOrder("startDate", start, "endDate", end)
		if t, err := ParseType(f.Type); err == nil && NeedsMedicalCertificate(t, start, end, files.Len()) {
			v.Add("attachments", MsgMedicalCertificate)
		}
	}
	return v
}

// Fields is the multipart text part of the submission.
func (f TimeOffForm) Fields() map[string]string {
	f = f.normalized()
	return map[string]string{
		"type":      f.Type,
		"startDate": f.StartDate,
		"endDate":   f.EndDate,
		"reason":    f.Reason,
	}
}

// RejectForm backs the reject dialog.
type RejectForm struct {
	Reason string `form:"reason" validate:"required,max=500"`
}

// ConfirmEnabled drives the dialog's confirm button.
func (f RejectForm) ConfirmEnabled() bool {
	return strings.TrimSpace(f.Reason) != ""
}

func (f RejectForm) Validate() *validation.Validator {
	f.Reason = strings.TrimSpace(f.Reason)
	v := validation.New()
	v.Struct(f)
	return v
}
