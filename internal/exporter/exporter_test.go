package exporter

import (
	"bytes"
	"encoding/csv"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"svpulse/internal/dataprocessing"
	apperrors "svpulse/internal/errors"
	"svpulse/pkg/contracts/domain"
)

func sampleTable() Table {
	return Table{
		Title:   "Annual Surgical Volumes & Rates",
		Headers: []string{"Region", "Procedures", "Rate per 10,000"},
		Rows: [][]string{
			{"Central", "750", "2.5"},
			{"Northern", "250", "5.0"},
		},
	}
}

func TestCSVBytes(t *testing.T) {
	data, err := CSVBytes(sampleTable())
	require.NoError(t, err)

	require.True(t, bytes.HasPrefix(data, utf8BOM))

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Region", "Procedures", "Rate per 10,000"}, records[0])
	assert.Equal(t, "Northern", records[2][0])
}

func TestCSVBytesEmptyTable(t *testing.T) {
	data, err := CSVBytes(Table{Title: "Empty", Headers: []string{"A", "B"}})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestExcelBytesMultiSheet(t *testing.T) {
	second := Table{Title: "National Trend", Headers: []string{"Year", "Procedures"}, Rows: [][]string{{"2024", "1000"}}}

	data, err := ExcelBytes(sampleTable(), second)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Len(t, sheets, 2)

	cell, err := f.GetCellValue(sheets[0], "A1")
	require.NoError(t, err)
	assert.Equal(t, "Region", cell)

	cell, err = f.GetCellValue(sheets[1], "B2")
	require.NoError(t, err)
	assert.Equal(t, "1000", cell)
}

func TestPDFBytes(t *testing.T) {
	data, err := PDFBytes(sampleTable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	// Header-only tables are valid documents too.
	data, err = PDFBytes(Table{Title: "Empty", Headers: []string{"A"}})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestTrendChart(t *testing.T) {
	series := domain.Series{
		{Year: 2020, Value: 1.8, Kind: domain.KindObserved},
		{Year: 2021, Value: 2.1, Kind: domain.KindObserved},
		{Year: 2022, Value: 2.4, Kind: domain.KindObserved},
		{Year: 2023, Value: 2.6, Kind: domain.KindForecast},
		{Year: 2024, Value: 2.9, Kind: domain.KindForecast},
	}

	data, err := TrendChart(series, "png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	_, err = TrendChart(series, "svg")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeExport))
}

func TestCategoryChart(t *testing.T) {
	rows := []domain.AggregateRow{
		{Key: "Caesarean Section", Procedures: 750},
		{Key: "Orthopaedic", Procedures: 100},
	}

	data, err := CategoryChart(rows, "png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}

func TestTablesFormatMissingRates(t *testing.T) {
	r := 2.5
	rows := []domain.AggregateRow{
		{Key: "Central", Year: 2024, Procedures: 750, Facilities: 2, Population: 3_000_000, Rate: &r},
		{Key: "Unknown", Year: 2024, Procedures: 50, Facilities: 1},
	}

	table := AnnualVolumesTable(dataprocessing.ByRegion, rows)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "Region", table.Headers[0])
	assert.Equal(t, "2.5", table.Rows[0][5])
	assert.Equal(t, "", table.Rows[1][4])
	assert.Equal(t, "", table.Rows[1][5])

	district := AnnualVolumesTable(dataprocessing.ByDistrict, nil)
	assert.Equal(t, "District", district.Headers[0])
}

func TestSeriesTableTagsKinds(t *testing.T) {
	table := SeriesTable(domain.Series{
		{Year: 2024, Value: 2.5, Kind: domain.KindObserved},
		{Year: 2025, Value: 2.8, Kind: domain.KindForecast},
	})

	require.Len(t, table.Rows, 2)
	assert.Equal(t, "observed", table.Rows[0][2])
	assert.Equal(t, "forecast", table.Rows[1][2])
}

func TestProbeCapabilities(t *testing.T) {
	resetProbeForTesting()
	caps := Probe(slog.Default())

	assert.True(t, caps.CSV)
	assert.True(t, caps.Excel)
	assert.True(t, caps.Supports("CSV"))
	assert.False(t, caps.Supports("docx"))
	assert.Contains(t, caps.Formats(), "csv")
	assert.Contains(t, caps.Formats(), "xlsx")

	// Probe is memoized.
	again := Probe(slog.Default())
	assert.Equal(t, caps, again)
}
