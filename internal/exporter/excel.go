package exporter

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	apperrors "svpulse/internal/errors"
)

// ExcelBytes renders one or more tables as a workbook, one sheet per table.
func ExcelBytes(tables ...Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range tables {
		sheet := sheetName(t.Title, i)
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return nil, apperrors.NewExportError("failed to create workbook sheet", err)
			}
		}
		if err := writeSheet(f, sheet, t); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, apperrors.NewExportError("failed to serialize workbook", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, t Table) error {
	for j, header := range t.Headers {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return apperrors.NewExportError("failed to address workbook cell", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return apperrors.NewExportError("failed to write workbook header", err)
		}
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return apperrors.NewExportError("failed to address workbook column", err)
		}
		if err := f.SetColWidth(sheet, col, col, 22); err != nil {
			return apperrors.NewExportError("failed to size workbook column", err)
		}
	}

	for i, row := range t.Rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return apperrors.NewExportError("failed to address workbook cell", err)
			}
			// Numeric cells stay numeric so the workbook sorts and sums.
			if n, convErr := strconv.ParseFloat(value, 64); convErr == nil && value != "" {
				err = f.SetCellValue(sheet, cell, n)
			} else {
				err = f.SetCellValue(sheet, cell, value)
			}
			if err != nil {
				return apperrors.NewExportError("failed to write workbook cell", err)
			}
		}
	}
	return nil
}

// sheetName derives a sheet name within Excel's 31-character limit.
func sheetName(title string, index int) string {
	if title == "" {
		return fmt.Sprintf("Sheet%d", index+1)
	}
	name := title
	if len(name) > 28 {
		name = name[:28]
	}
	return name
}
