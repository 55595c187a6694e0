package request

import (
	"errors"
	"time"
)

const (
	SickLeaveCertificateDays = 3

	MsgMedicalCertificate = "Medical certificate is required for sick leave longer than 3 days"
)

// CalculateDays returns inclusive day count between start and end.
func CalculateDays(start, end time.Time) (float64, error) {
	if end.Before(start) {
		return 0, errors.New("end date before start date")
	}
	return end.Sub(start).Hours()/24 + 1, nil
}

// NeedsMedicalCertificate reports whether a sick leave of the given span must
// carry at least one attachment.
func NeedsMedicalCertificate(t Type, start, end time.Time, attachments int) bool {
	if !t.IsSickLeave() || attachments > 0 {
		return false
	}
	days, err := CalculateDays(start, end)
	if err != nil {
		return false
	}
	return days > SickLeaveCertificateDays
}
