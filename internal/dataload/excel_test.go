package dataload

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "svpulse/internal/errors"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", sheet))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestLoadPopulationXLSX(t *testing.T) {
	path := writeWorkbook(t, "Population", [][]interface{}{
		{"District", "Region", "Total Population"},
		{"Kampala", "Central", 1652936},
		{"Gulu", "Northern", 325000},
		{"", "Central", 99},
		{"Wakiso", "Central", "not a number"},
	})

	entries, stats, err := LoadPopulationXLSX(path, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.Rows)
	assert.Equal(t, 2, stats.Malformed)
	require.Len(t, entries, 2)
	assert.Equal(t, "Kampala", entries[0].District)
	assert.Equal(t, int64(1652936), entries[0].Population)
	assert.Equal(t, "Northern", entries[1].Region)
}

func TestLoadPopulationXLSXHeaderBelowTitleRows(t *testing.T) {
	path := writeWorkbook(t, "Census", [][]interface{}{
		{"National Population and Housing Census 2024"},
		{},
		{"District", "Region", "Census Population"},
		{"Mbarara", "Western", 472629},
	})

	entries, stats, err := LoadPopulationXLSX(path, slog.Default())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Zero(t, stats.Malformed)
	assert.Equal(t, "Mbarara", entries[0].District)
}

func TestLoadFacilityXLSX(t *testing.T) {
	path := writeWorkbook(t, "MFL", [][]interface{}{
		{"MFL Code", "Facility Name", "District", "Region", "Level of Care", "Authority"},
		{"F001", "Mulago NRH", "Kampala", "Central", "NRH", "Government"},
		{"F002", "St Mary's Lacor", "Gulu", "Northern", "Hospital", "PNFP"},
		{"F003", "No Level", "Kampala", "Central", "", "Government"},
	})

	facilities, stats, err := LoadFacilityXLSX(path, slog.Default())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 1, stats.Malformed)
	require.Len(t, facilities, 2)
	assert.Equal(t, "F001", facilities[0].Code)
	assert.Equal(t, "PNFP", facilities[1].Ownership)
}

func TestOpenWorkbookErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, _, err := LoadPopulationXLSX(filepath.Join(t.TempDir(), "absent.xlsx"), slog.Default())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLoad))
	})

	t.Run("no recognizable header", func(t *testing.T) {
		path := writeWorkbook(t, "Other", [][]interface{}{
			{"alpha", "beta"},
			{"1", "2"},
		})
		_, _, err := LoadPopulationXLSX(path, slog.Default())
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeLoad))
	})
}
