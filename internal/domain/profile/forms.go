package profile

import (
	"strings"
	"time"

	"hrportal/internal/platform/validation"
)

const (
	minYear          = 1950
	maxFutureEndYear = 10
)

type PersonalForm struct {
	FullName              string `form:"fullName" validate:"required,min=2,max=100"`
	Phone                 string `form:"phone" validate:"required,phone"`
	Address               string `form:"address" validate:"max=250"`
	DateOfBirth           string `form:"dateOfBirth" validate:"required"`
	EmergencyName         string `form:"emergencyName" validate:"max=100"`
	EmergencyRelationship string `form:"emergencyRelationship" validate:"max=50"`
	EmergencyPhone        string `form:"emergencyPhone" validate:"omitempty,phone"`
	DocumentNumber        string `form:"documentNumber" validate:"max=50"`
	DocumentIssuedDate    string `form:"documentIssuedDate"`
	DocumentExpiration    string `form:"documentExpirationDate"`
}

func (f PersonalForm) normalized() PersonalForm {
	for _, p := range []*string{&f.FullName, &f.Phone, &f.Address, &f.DateOfBirth, &f.EmergencyName,
		&f.EmergencyRelationship, &f.EmergencyPhone, &f.DocumentNumber, &f.DocumentIssuedDate, &f.DocumentExpiration} {
		*p = strings.TrimSpace(*p)
	}
	return f
}

func (f PersonalForm) Validate(now time.Time) *validation.Validator {
	f = f.normalized()
	v := validation.New()
	v.Struct(f)
	if dob, ok := v.Date("dateOfBirth", f.DateOfBirth); ok {
		v.InPast("dateOfBirth", dob, now)
	}
	issued, okIssued := v.Date("documentIssuedDate", f.DocumentIssuedDate)
	expires, okExpires := v.Date("documentExpirationDate", f.DocumentExpiration)
	if okIssued {
		v.InPast("documentIssuedDate", issued, now.AddDate(0, 0, 1))
	}
	if okIssued && okExpires && !expires.After(issued) {
		v.Add("documentExpirationDate", "must be after the issued date")
	}
	if f.DocumentNumber != "" && f.DocumentIssuedDate == "" {
		v.Add("documentIssuedDate", "is required when a document number is set")
	}
	if f.EmergencyName != "" && f.EmergencyPhone == "" {
		v.Add("emergencyPhone", "is required when an emergency contact is set")
	}
	return v
}

func (f PersonalForm) Payload() Personal {
	f = f.normalized()
	return Personal{
		FullName:    f.FullName,
		Phone:       f.Phone,
		Address:     f.Address,
		DateOfBirth: f.DateOfBirth,
		EmergencyContact: EmergencyContact{
			Name:         f.EmergencyName,
			Relationship: f.EmergencyRelationship,
			Phone:        f.EmergencyPhone,
		},
		IdentityDocument: IdentityDocument{
			Number:         f.DocumentNumber,
			IssuedDate:     f.DocumentIssuedDate,
			ExpirationDate: f.DocumentExpiration,
		},
	}
}

func PersonalFormFrom(p Personal) PersonalForm {
	return PersonalForm{
		FullName:              p.FullName,
		Phone:                 p.Phone,
		Address:               p.Address,
		DateOfBirth:           p.DateOfBirth,
		EmergencyName:         p.EmergencyContact.Name,
		EmergencyRelationship: p.EmergencyContact.Relationship,
		EmergencyPhone:        p.EmergencyContact.Phone,
		DocumentNumber:        p.IdentityDocument.Number,
		DocumentIssuedDate:    p.IdentityDocument.IssuedDate,
		DocumentExpiration:    p.IdentityDocument.ExpirationDate,
	}
}

type EducationForm struct {
	Degree       string `form:"degree" validate:"required,max=100"`
	Institution  string `form:"institution" validate:"required,max=150"`
	FieldOfStudy string `form:"fieldOfStudy" validate:"max=100"`
	StartYear    int    `form:"startYear" validate:"required,gte=1950"`
	EndYear      int    `form:"endYear" validate:"omitempty,gte=1950"`
	Grade        string `form:"grade" validate:"max=20"`
}

func (f EducationForm) Validate(now time.Time) *validation.Validator {
	f.Degree = strings.TrimSpace(f.Degree)
	f.Institution = strings.TrimSpace(f.Institution)
	v := validation.New()
	v.Struct(f)
	if f.StartYear > now.Year() {
		v.Add("startYear", "must not be in the future")
	}
	if f.EndYear != 0 {
		if f.EndYear < f.StartYear {
			v.Add("endYear", "must be on or after the start year")
		}
		if f.EndYear > now.Year()+maxFutureEndYear {
			v.Add("endYear", "is too far in the future")
		}
	}
	return v
}

func (f EducationForm) Payload() EducationPayload {
	return EducationPayload{
		Degree:       strings.TrimSpace(f.Degree),
		Institution:  strings.TrimSpace(f.Institution),
		FieldOfStudy: strings.TrimSpace(f.FieldOfStudy),
		StartYear:    f.StartYear,
		EndYear:      f.EndYear,
		Grade:        strings.TrimSpace(f.Grade),
	}
}

func EducationFormFrom(e Education) EducationForm {
	return EducationForm{Degree: e.Degree, Institution: e.Institution, FieldOfStudy: e.FieldOfStudy, StartYear: e.StartYear, EndYear: e.EndYear, Grade: e.Grade}
}

type BankAccountForm struct {
	BankName      string `form:"bankName" validate:"required,max=100"`
	AccountHolder string `form:"accountHolder" validate:"required,max=100"`
	AccountNumber string `form:"accountNumber" validate:"required,digits,min=8,max=20"`
	RoutingCode   string `form:"routingCode" validate:"required,routing"`
	IsPrimary     bool   `form:"isPrimary"`
}

func (f BankAccountForm) normalized() BankAccountForm {
	f.BankName = strings.TrimSpace(f.BankName)
	f.AccountHolder = strings.TrimSpace(f.AccountHolder)
	f.AccountNumber = strings.ReplaceAll(strings.TrimSpace(f.AccountNumber), " ", "")
	f.RoutingCode = strings.ToUpper(strings.TrimSpace(f.RoutingCode))
	return f
}

func (f BankAccountForm) Validate() *validation.Validator {
	v := validation.New()
	v.Struct(f.normalized())
	return v
}

func (f BankAccountForm) Payload() BankAccountPayload {
	f = f.normalized()
	return BankAccountPayload{
		BankName:      f.BankName,
		AccountHolder: f.AccountHolder,
		AccountNumber: f.AccountNumber,
		RoutingCode:   f.RoutingCode,
		IsPrimary:     f.IsPrimary,
	}
}

func BankAccountFormFrom(b BankAccount) BankAccountForm {
	return BankAccountForm{BankName: b.BankName, AccountHolder: b.AccountHolder, AccountNumber: b.AccountNumber, RoutingCode: b.RoutingCode, IsPrimary: b.IsPrimary}
}
