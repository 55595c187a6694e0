package credits

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"hrportal/internal/platform/backend"
)

type Balance struct {
	Points   int                 `json:"points"`
	Amount   decimal.NullDecimal `json:"amount"`
	Currency string              `json:"currency,omitempty"`
}

func (b Balance) AmountLabel() string {
	if !b.Amount.Valid {
		return ""
	}
	return FormatAmount(b.Amount.Decimal, b.Currency)
}

type HistoryItem struct {
	ID           string              `json:"id"`
	Type         EntryType           `json:"type,omitempty"`
	Points       int                 `json:"points"`
	Counterparty string              `json:"counterparty,omitempty"`
	Amount       decimal.NullDecimal `json:"amount"`
	Currency     string              `json:"currency,omitempty"`
	Note         string              `json:"note,omitempty"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// SignedPoints applies the type's sign to the magnitude the backend sent.
func (h HistoryItem) SignedPoints() int {
	return h.Type.Sign() * h.Points
}

// PointsLabel renders the signed movement, e.g. "+50" or "-20".
func (h HistoryItem) PointsLabel() string {
	n := h.SignedPoints()
	if n > 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

func (h HistoryItem) AmountLabel() string {
	if !h.Amount.Valid {
		return ""
	}
	return FormatAmount(h.Amount.Decimal, h.Currency)
}

// View is the dashboard payload: the balance with recent movements.
type View struct {
	Balance  int           `json:"balance"`
	Currency string        `json:"currency,omitempty"`
	History  []HistoryItem `json:"history"`
}

type Settings struct {
	ConversionRate    decimal.Decimal `json:"conversionRate"`
	Currency          string          `json:"currency"`
	MinRedeemPoints   int             `json:"minRedeemPoints"`
	MaxTransferPoints int             `json:"maxTransferPoints"`
	MonthlyAllowance  int             `json:"monthlyAllowance"`
}

// RateLabel shows the backend's rate as sent, e.g. "1 point = 0.05 USD".
func (s Settings) RateLabel() string {
	if s.ConversionRate.IsZero() {
		return ""
	}
	return "1 point = " + s.ConversionRate.String() + " " + s.Currency
}

type TeamMember struct {
	EmployeeID string `json:"employeeId"`
	FullName   string `json:"fullName"`
	Balance    int    `json:"balance"`
}

type Redemption struct {
	ID          string              `json:"id"`
	Points      int                 `json:"points"`
	Amount      decimal.NullDecimal `json:"amount"`
	Currency    string              `json:"currency,omitempty"`
	Status      string              `json:"status"`
	BankAccount string              `json:"bankAccount,omitempty"`
	CreatedAt   time.Time           `json:"createdAt"`
}

func (r Redemption) AmountLabel() string {
	if !r.Amount.Valid {
		return ""
	}
	return FormatAmount(r.Amount.Decimal, r.Currency)
}

type TransferPayload struct {
	RecipientID string `json:"recipientId"`
	Points      int    `json:"points"`
	Note        string `json:"note,omitempty"`
}

type RedeemPayload struct {
	Points        int    `json:"points"`
	BankAccountID string `json:"bankAccountId"`
}

// AdjustPayload is the body for both award and deduct.
type AdjustPayload struct {
	EmployeeID string `json:"employeeId"`
	Points     int    `json:"points"`
	Note       string `json:"note"`
}

type HistoryPage = backend.Page[HistoryItem]
