package employee

import (
	"strings"
	"time"

	"hrportal/internal/platform/validation"
)

var (
	JobLevels       = []string{"Intern", "Junior", "Middle", "Senior", "Lead", "Principal"}
	EmployeeTypes   = []string{"FullTime", "PartTime", "Contract", "Intern"}
	TimeTypes       = []string{"Onsite", "Remote", "Hybrid"}
	employeeTypeMap = map[string]string{"FullTime": "Full time", "PartTime": "Part time", "Contract": "Contract", "Intern": "Intern"}
)

// EmployeeTypeLabel is the human label for an onboarding employee type.
func EmployeeTypeLabel(v string) string {
	if label, ok := employeeTypeMap[v]; ok {
		return label
	}
	return v
}

type OnboardingForm struct {
	FullName     string `form:"fullName" validate:"required,min=2,max=100"`
	Email        string `form:"email" validate:"required,email,max=254"`
	PositionID   int    `form:"positionId" validate:"required,gt=0"`
	JobLevel     string `form:"jobLevel" validate:"required,oneof=Intern Junior Middle Senior Lead Principal"`
	DepartmentID int    `form:"departmentId" validate:"required,gt=0"`
	EmployeeType string `form:"employeeType" validate:"required,oneof=FullTime PartTime Contract Intern"`
	TimeType     string `form:"timeType" validate:"required,oneof=Onsite Remote Hybrid"`
	StartDate    string `form:"startDate" validate:"required"`
}

func (f OnboardingForm) normalized() OnboardingForm {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Email = strings.TrimSpace(f.Email)
	f.StartDate = strings.TrimSpace(f.StartDate)
	return f
}

func (f OnboardingForm) Validate(now time.Time) *validation.Validator {
	f = f.normalized()
	v := validation.New()
	v.Struct(f)
	if start, ok := v.Date("startDate", f.StartDate); ok {
		v.NotPast("startDate", start, now)
	}
	return v
}

func (f OnboardingForm) Payload() InitialProfile {
	f = f.normalized()
	return InitialProfile{
		FullName:     f.FullName,
		Email:        f.Email,
		PositionID:   f.PositionID,
		JobLevel:     f.JobLevel,
		DepartmentID: f.DepartmentID,
		EmployeeType: f.EmployeeType,
		TimeType:     f.TimeType,
		StartDate:    f.StartDate,
	}
}

// PlacementForm edits org placement. Blank fields keep their current value.
type PlacementForm struct {
	DepartmentID   int    `form:"departmentId" validate:"omitempty,gt=0"`
	PositionID     int    `form:"positionId" validate:"omitempty,gt=0"`
	JobLevel       string `form:"jobLevel" validate:"omitempty,oneof=Intern Junior Middle Senior Lead Principal"`
	EmploymentType string `form:"employmentType" validate:"omitempty,oneof=FullTime PartTime Contract Intern"`
	TimeType       string `form:"timeType" validate:"omitempty,oneof=Onsite Remote Hybrid"`
}

func (f PlacementForm) Validate() *validation.Validator {
	v := validation.New()
	v.Struct(f)
	if f.Payload() == (PlacementUpdate{}) {
		v.Add("", "Change at least one field")
	}
	return v
}

func (f PlacementForm) Payload() PlacementUpdate {
	return PlacementUpdate{
		DepartmentID:   f.DepartmentID,
		PositionID:     f.PositionID,
		JobLevel:       strings.TrimSpace(f.JobLevel),
		EmploymentType: strings.TrimSpace(f.EmploymentType),
		TimeType:       strings.TrimSpace(f.TimeType),
	}
}

type StatusForm struct {
	Status string `form:"status" validate:"required,oneof=Pending Active Inactive"`
}

func (f StatusForm) Validate() *validation.Validator {
	v := validation.New()
	v.Struct(f)
	return v
}

func (f StatusForm) Payload() (StatusUpdate, error) {
	status, err := ParseStatus(f.Status)
	if err != nil {
		return StatusUpdate{}, err
	}
	return StatusUpdate{Status: status}, nil
}

type SupervisorForm struct {
	ManagerID string `form:"managerId" validate:"omitempty,max=64"`
	HRID      string `form:"hrId" validate:"omitempty,max=64"`
}

func (f SupervisorForm) Validate() *validation.Validator {
	v := validation.New()
	v.Struct(f)
	if f.Payload() == (SupervisorUpdate{}) {
		v.Add("", "Pick a manager or an HR supervisor")
	}
	return v
}

func (f SupervisorForm) Payload() SupervisorUpdate {
	return SupervisorUpdate{ManagerID: strings.TrimSpace(f.ManagerID), HRID: strings.TrimSpace(f.HRID)}
}
