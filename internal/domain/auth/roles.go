package auth

import "strings"

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleHR       Role = "HR"
	RoleAdmin    Role = "ADMIN"
)

// Capabilities only decide which navigation and buttons a page shows. The
// backends authorize every call on their own.
const (
	CapApproveRequests = "requests.approve"
	CapManageEmployees = "employees.manage"
	CapOnboard         = "employees.onboard"
	CapAwardCredits    = "credits.award"
	CapViewTeam        = "credits.team"
)

var roleCapabilities = map[Role][]string{
	RoleEmployee: nil,
	RoleManager:  {CapApproveRequests, CapViewTeam, CapAwardCredits},
	RoleHR:       {CapApproveRequests, CapManageEmployees, CapOnboard, CapViewTeam, CapAwardCredits},
	RoleAdmin:    {CapApproveRequests, CapManageEmployees, CapOnboard, CapViewTeam, CapAwardCredits},
}

// ParseRole normalizes a backend role name. Unknown roles fall back to the
// least privileged one.
func ParseRole(raw string) Role {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := roleCapabilities[role]; ok {
		return role
	}
	return RoleEmployee
}

func (r Role) Can(capability string) bool {
	for _, c := range roleCapabilities[r] {
		if c == capability {
			return true
		}
	}
	return false
}

func (r Role) Label() string {
	switch r {
	case RoleManager:
		return "Manager"
	case RoleHR:
		return "HR"
	case RoleAdmin:
		return "Administrator"
	default:
		return "Employee"
	}
}
