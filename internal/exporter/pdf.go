package exporter

import (
	"bytes"

	"codeberg.org/go-pdf/fpdf"

	apperrors "svpulse/internal/errors"
)

// PDFBytes renders a table as a one-page-flowing PDF grid: centered title,
// bordered header row, bordered data cells. An empty table still produces a
// valid document with its title and header row.
func PDFBytes(t Table) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, t.Title, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	usable := pageWidth - left - right
	colWidth := usable
	if len(t.Headers) > 0 {
		colWidth = usable / float64(len(t.Headers))
	}

	pdf.SetFont("Arial", "B", 10)
	for _, header := range t.Headers {
		pdf.CellFormat(colWidth, 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, row := range t.Rows {
		for j := range t.Headers {
			value := ""
			if j < len(row) {
				value = row[j]
			}
			pdf.CellFormat(colWidth, 7, value, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.NewExportError("failed to render PDF table", err)
	}
	return buf.Bytes(), nil
}
