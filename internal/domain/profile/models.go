package profile

import "strings"

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

type IdentityDocument struct {
	Number         string `json:"number"`
	IssuedDate     string `json:"issuedDate"`
	ExpirationDate string `json:"expirationDate"`
}

type Personal struct {
	FullName         string           `json:"fullName"`
	Email            string           `json:"email,omitempty"`
	Phone            string           `json:"phone"`
	Address          string           `json:"address"`
	DateOfBirth      string           `json:"dateOfBirth"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	IdentityDocument IdentityDocument `json:"identityDocument"`
}

type Education struct {
	ID           string `json:"id"`
	Degree       string `json:"degree"`
	Institution  string `json:"institution"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartYear    int    `json:"startYear"`
	EndYear      int    `json:"endYear,omitempty"`
	Grade        string `json:"grade,omitempty"`
}

// EducationPayload is the create and update body.
type EducationPayload struct {
	Degree       string `json:"degree"`
	Institution  string `json:"institution"`
	FieldOfStudy string `json:"fieldOfStudy,omitempty"`
	StartYear    int    `json:"startYear"`
	EndYear      int    `json:"endYear,omitempty"`
	Grade        string `json:"grade,omitempty"`
}

type BankAccount struct {
	ID            string `json:"id"`
	BankName      string `json:"bankName"`
	AccountHolder string `json:"accountHolder"`
	AccountNumber string `json:"accountNumber"`
	RoutingCode   string `json:"routingCode"`
	IsPrimary     bool   `json:"isPrimary"`
}

// Masked shows only the last four digits of the account number.
func (b BankAccount) Masked() string {
	n := strings.TrimSpace(b.AccountNumber)
	if len(n) <= 4 {
		return n
	}
	return strings.Repeat("•", 4) + " " + n[len(n)-4:]
}

type BankAccountPayload struct {
	BankName      string `json:"bankName"`
	AccountHolder string `json:"accountHolder"`
	AccountNumber string `json:"accountNumber"`
	RoutingCode   string `json:"routingCode"`
	IsPrimary     bool   `json:"isPrimary"`
}
