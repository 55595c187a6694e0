package credits

import (
	"strconv"
	"time"

	"hrportal/internal/platform/export"
)

func StatementTable(holder string, view View, now time.Time) export.Table {
	t := export.Table{
		Title: "Credits statement",
		Subtitle: []string{
			holder,
			"Balance: " + strconv.Itoa(view.Balance) + " points",
			"Generated " + now.UTC().Format("2006-01-02 15:04 MST"),
		},
		Headers: []string{"Date", "Type", "Points", "Counterparty", "Amount", "Note"},
		Rows:    make([][]string, 0, len(view.History)),
	}
	for _, h := range view.History {
		t.Rows = append(t.Rows, []string{
			h.CreatedAt.UTC().Format("2006-01-02"),
			h.Type.Label(),
			h.PointsLabel(),
			h.Counterparty,
			h.AmountLabel(),
			h.Note,
		})
	}
	return t
}
