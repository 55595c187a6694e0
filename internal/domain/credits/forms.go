package credits

import (
	"fmt"
	"strings"

	"hrportal/internal/platform/validation"
)

// Limits are the caller's figures a transfer or redemption is checked
// against.
type Limits struct {
	Balance  int
	Settings Settings
}

// MaxTransferPoints is the balance capped by the configured transfer limit.
// A non-positive limit means uncapped.
func (l Limits) MaxTransferPoints() int {
	max := l.Balance
	if l.Settings.MaxTransferPoints > 0 && l.Settings.MaxTransferPoints < max {
		max = l.Settings.MaxTransferPoints
	}
	if max < 0 {
		return 0
	}
	return max
}

type TransferForm struct {
	RecipientID string `form:"recipientId" validate:"required"`
	Points      int    `form:"points" validate:"required,gt=0"`
	Note        string `form:"note" validate:"max=250"`
}

func (f TransferForm) Validate(l Limits) *validation.Validator {
	f.RecipientID = strings.TrimSpace(f.RecipientID)
	v := validation.New()
	v.Struct(f)
	if max := l.MaxTransferPoints(); f.Points > 0 && f.Points > max {
		v.Add("points", fmt.Sprintf("Maximum transferable points is %d", max))
	}
	return v
}

func (f TransferForm) Payload() TransferPayload {
	return TransferPayload{
		RecipientID: strings.TrimSpace(f.RecipientID),
		Points:      f.Points,
		Note:        strings.TrimSpace(f.Note),
	}
}

type RedeemForm struct {
	Points        int    `form:"points" validate:"required,gt=0"`
	BankAccountID string `form:"bankAccountId" validate:"required"`
}

func (f RedeemForm) Validate(l Limits) *validation.Validator {
	f.BankAccountID = strings.TrimSpace(f.BankAccountID)
	v := validation.New()
	v.Struct(f)
	if f.Points <= 0 {
		return v
	}
	if min := l.Settings.MinRedeemPoints; f.Points < min {
		v.Add("points", fmt.Sprintf("Minimum redeemable points is %d", min))
	}
	if f.Points > l.Balance {
		v.Add("points", fmt.Sprintf("You only have %d points", l.Balance))
	}
	return v
}

func (f RedeemForm) Payload() RedeemPayload {
	return RedeemPayload{Points: f.Points, BankAccountID: strings.TrimSpace(f.BankAccountID)}
}

// AdjustForm backs both the award and the deduct dialogs.
type AdjustForm struct {
	EmployeeID string `form:"employeeId" validate:"required"`
	Points     int    `form:"points" validate:"required,gt=0"`
	Note       string `form:"note" validate:"required,max=250"`
}

func (f AdjustForm) Validate() *validation.Validator {
	f.EmployeeID = strings.TrimSpace(f.EmployeeID)
	f.Note = strings.TrimSpace(f.Note)
	v := validation.New()
	v.Struct(f)
	return v
}

func (f AdjustForm) Payload() AdjustPayload {
	return AdjustPayload{
		EmployeeID: strings.TrimSpace(f.EmployeeID),
		Points:     f.Points,
		Note:       strings.TrimSpace(f.Note),
	}
}
