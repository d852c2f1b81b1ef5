package exporter

import (
	"bytes"
	"encoding/csv"

	apperrors "svpulse/internal/errors"
)

// utf8BOM helps Excel recognize UTF-8 CSV downloads.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVBytes renders a table as UTF-8 CSV with a BOM prefix. An empty table
// produces a header-only file, not an error.
func CSVBytes(t Table) ([]byte, error) {
	var buf bytes.Buffer
	buf.Write(utf8BOM)

	writer := csv.NewWriter(&buf)
	if len(t.Headers) > 0 {
		if err := writer.Write(t.Headers); err != nil {
			return nil, apperrors.NewExportError("failed to write CSV header", err)
		}
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return nil, apperrors.NewExportError("failed to write CSV row", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, apperrors.NewExportError("failed to flush CSV output", err)
	}
	return buf.Bytes(), nil
}
