package request

import (
	"time"

	"hrportal/internal/platform/backend"
)

type Party struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Attachment struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType,omitempty"`
	Size        int64  `json:"size,omitempty"`
	URL         string `json:"url,omitempty"`
}

type Request struct {
	ID              string       `json:"id"`
	Type            Type         `json:"type,omitempty"`
	Status          Status       `json:"status,omitempty"`
	Employee        Party        `json:"employee"`
	StartDate       string       `json:"startDate"`
	EndDate         string       `json:"endDate"`
	Days            float64      `json:"days"`
	Reason          string       `json:"reason,omitempty"`
	RejectionReason string       `json:"rejectionReason,omitempty"`
	Attachments     []Attachment `json:"attachments,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
}

type Page = backend.Page[Request]

type Stats struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total"`
}

// Scope selects whose requests a list shows.
type Scope string

const (
	ScopeMine Scope = "mine"
	ScopeTeam Scope = "team"
)

func ParseScope(raw string) Scope {
	if Scope(raw) == ScopeTeam {
		return ScopeTeam
	}
	return ScopeMine
}

type ListParams struct {
	Page   int
	Limit  int
	Status Status
	Type   Type
	Scope  Scope
}

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

// AvailableActions lists what the UI may offer for r. Only pending requests
// are actionable; the backend enforces the same rule.
func (r Request) AvailableActions() []Action {
	if r.Status != StatusPending {
		return nil
	}
	return []Action{ActionApprove, ActionReject, ActionCancel}
}

// ActionsFor narrows AvailableActions to a list: the owner may cancel, an
// approver may approve or reject.
func (r Request) ActionsFor(scope Scope) []Action {
	var out []Action
	for _, a := range r.AvailableActions() {
		switch {
		case scope == ScopeMine && a == ActionCancel:
			out = append(out, a)
		case scope == ScopeTeam && a != ActionCancel:
			out = append(out, a)
		}
	}
	return out
}

func (r Request) Can(a Action) bool {
	for _, candidate := range r.AvailableActions() {
		if candidate == a {
			return true
		}
	}
	return false
}
