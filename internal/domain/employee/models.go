package employee

import "hrportal/internal/platform/backend"

type Ref struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Person is a selectable supervisor.
type Person struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
}

type Employee struct {
	ID             string `json:"id"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	Department     Ref    `json:"department"`
	Position       Ref    `json:"position"`
	JobLevel       string `json:"jobLevel"`
	EmploymentType string `json:"employmentType"`
	TimeType       string `json:"timeType"`
	ManagerID      string `json:"managerId,omitempty"`
	ManagerName    string `json:"managerName,omitempty"`
	HRID           string `json:"hrId,omitempty"`
	HRName         string `json:"hrName,omitempty"`
	StartDate      string `json:"startDate"`
	Status         Status `json:"status,omitempty"`
}

type Page = backend.Page[Employee]

type ListParams struct {
	Page         int
	PageSize     int
	Search       string
	DepartmentID int
	Status       Status
}

// InitialProfile is the onboarding payload. It carries these eight fields and
// nothing else.
type InitialProfile struct {
	FullName     string `json:"fullName"`
	Email        string `json:"email"`
	PositionID   int    `json:"positionId"`
	JobLevel     string `json:"jobLevel"`
	DepartmentID int    `json:"departmentId"`
	EmployeeType string `json:"employeeType"`
	TimeType     string `json:"timeType"`
	StartDate    string `json:"startDate"`
}

// PlacementUpdate is a partial update; zero fields are left out of the body.
type PlacementUpdate struct {
	DepartmentID   int    `json:"departmentId,omitempty"`
	PositionID     int    `json:"positionId,omitempty"`
	JobLevel       string `json:"jobLevel,omitempty"`
	EmploymentType string `json:"employmentType,omitempty"`
	TimeType       string `json:"timeType,omitempty"`
}

type StatusUpdate struct {
	Status Status `json:"status"`
}

type SupervisorUpdate struct {
	ManagerID string `json:"managerId,omitempty"`
	HRID      string `json:"hrId,omitempty"`
}

type SupervisorKind string

const (
	KindManager SupervisorKind = "manager"
	KindHR      SupervisorKind = "hr"
)

// SearchGate mirrors the supervisor picker: lookups run only while it is open.
type SearchGate struct {
	Open bool
	Term string
}

func (g SearchGate) Enabled() bool {
	return g.Open
}
