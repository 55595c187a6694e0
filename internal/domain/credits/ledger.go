package credits

import (
	"strings"

	"github.com/pkg/errors"
)

// EntryType is the kind of a ledger movement. The backend always sends the
// magnitude; the sign comes from the type.
type EntryType int

const (
	EntryMonthly EntryType = iota + 1
	EntryAward
	EntryTransferSent
	EntryTransferReceived
	EntryRedeem
	EntryDeduct

	entryEnd
)

type entryMeta struct {
	wire  string
	label string
	icon  string
	tone  string
	sign  int
}

var entryTable = [...]entryMeta{
	EntryMonthly:          {wire: "MONTHLY", label: "Monthly allowance", icon: "calendar-plus", tone: "success", sign: 1},
	EntryAward:            {wire: "AWARD", label: "Award", icon: "trophy", tone: "success", sign: 1},
	EntryTransferSent:     {wire: "TRANSFER_SENT", label: "Transfer sent", icon: "arrow-up-right", tone: "warning", sign: -1},
	EntryTransferReceived: {wire: "TRANSFER_RECEIVED", label: "Transfer received", icon: "arrow-down-left", tone: "info", sign: 1},
	EntryRedeem:           {wire: "REDEEM", label: "Redeemed", icon: "cash", tone: "primary", sign: -1},
	EntryDeduct:           {wire: "DEDUCT", label: "Deduction", icon: "dash-circle", tone: "danger", sign: -1},
}

var _ = [1]struct{}{}[len(entryTable)-int(entryEnd)]

func EntryTypes() []EntryType {
	return []EntryType{EntryMonthly, EntryAward, EntryTransferSent, EntryTransferReceived, EntryRedeem, EntryDeduct}
}

func ParseEntryType(raw string) (EntryType, error) {
	raw = strings.TrimSpace(raw)
	for _, t := range EntryTypes() {
		if strings.EqualFold(entryTable[t].wire, raw) {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown ledger entry type %q", raw)
}

func (t EntryType) Valid() bool { return t >= EntryMonthly && t < entryEnd }

func (t EntryType) meta() entryMeta {
	if !t.Valid() {
		return entryMeta{}
	}
	return entryTable[t]
}

func (t EntryType) String() string { return t.meta().wire }
func (t EntryType) Label() string  { return t.meta().label }
func (t EntryType) Icon() string   { return t.meta().icon }
func (t EntryType) Tone() string   { return t.meta().tone }

// Sign is +1 for credits, -1 for debits and 0 for an invalid type.
func (t EntryType) Sign() int { return t.meta().sign }

func (t EntryType) MarshalText() ([]byte, error) {
	if t == 0 {
		return []byte{}, nil
	}
	if !t.Valid() {
		return nil, errors.Errorf("invalid ledger entry type %d", int(t))
	}
	return []byte(entryTable[t].wire), nil
}

func (t *EntryType) UnmarshalText(text []byte) error {
	parsed, err := ParseEntryType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
