package export

import (
	"bytes"

	"github.com/jung-kurt/gofpdf"
	"github.com/pkg/errors"
)

const (
	pageWidth  = 190.0
	lineHeight = 7.0
)

// PDF renders t as an A4 document with a bordered table.
func PDF(t Table) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(t.Title, true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(t.Title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	for _, line := range t.Subtitle {
		pdf.Cell(0, lineHeight, tr(line))
		pdf.Ln(lineHeight)
	}
	pdf.Ln(3)

	if len(t.Headers) > 0 {
		width := pageWidth / float64(len(t.Headers))
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, h := range t.Headers {
			pdf.CellFormat(width, lineHeight, tr(h), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 10)
		for _, row := range t.Rows {
			for i := range t.Headers {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				pdf.CellFormat(width, lineHeight, tr(cell), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
		if len(t.Rows) == 0 {
			pdf.CellFormat(pageWidth, lineHeight, "No records", "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "render pdf")
	}
	return buf.Bytes(), nil
}
