package dataload

import (
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "svpulse/internal/errors"
	"svpulse/pkg/contracts/domain"
)

var populationAliases = map[string][]string{
	"district":   {"district"},
	"region":     {"region"},
	"population": {"population", "total population", "census population"},
}

var facilityAliases = map[string][]string{
	"code":      {"facility code", "mfl code", "code"},
	"name":      {"facility name", "name of facility"},
	"district":  {"district"},
	"region":    {"region"},
	"level":     {"facility level", "level of care", "level"},
	"ownership": {"ownership", "authority"},
}

// LoadPopulationXLSX reads the census population workbook. Rows without a
// district or a parsable population figure are skipped and counted.
func LoadPopulationXLSX(path string, logger *slog.Logger) ([]domain.PopulationEntry, LoadStats, error) {
	var stats LoadStats

	rows, cm, err := openWorkbook(path, populationAliases, "district", "population")
	if err != nil {
		return nil, stats, err
	}

	var entries []domain.PopulationEntry
	for _, row := range rows {
		stats.Rows++
		district := cm.get(row, "district")
		population, ok := cm.getInt(row, "population")
		if district == "" || !ok {
			stats.Malformed++
			continue
		}
		entries = append(entries, domain.PopulationEntry{
			District:   district,
			Region:     cm.get(row, "region"),
			Population: population,
		})
	}

	logger.Debug("loaded population workbook",
		slog.String("path", path),
		slog.Int("rows", stats.Rows),
		slog.Int("malformed", stats.Malformed))

	return entries, stats, nil
}

// LoadFacilityXLSX reads the master facility list survey workbook.
func LoadFacilityXLSX(path string, logger *slog.Logger) ([]domain.Facility, LoadStats, error) {
	var stats LoadStats

	rows, cm, err := openWorkbook(path, facilityAliases, "district", "level")
	if err != nil {
		return nil, stats, err
	}

	var facilities []domain.Facility
	for _, row := range rows {
		stats.Rows++
		district := cm.get(row, "district")
		level := cm.get(row, "level")
		if district == "" || level == "" {
			stats.Malformed++
			continue
		}
		facilities = append(facilities, domain.Facility{
			Code:      cm.get(row, "code"),
			Name:      cm.get(row, "name"),
			District:  district,
			Region:    cm.get(row, "region"),
			Level:     level,
			Ownership: cm.get(row, "ownership"),
		})
	}

	logger.Debug("loaded facility workbook",
		slog.String("path", path),
		slog.Int("rows", stats.Rows),
		slog.Int("malformed", stats.Malformed))

	return facilities, stats, nil
}

// openWorkbook opens an Excel file and finds the first sheet whose header row
// resolves the required columns. The workbook is closed before returning; the
// extracted rows exclude the header.
func openWorkbook(path string, aliases map[string][]string, required ...string) ([][]string, columnMap, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, apperrors.NewLoadError("failed to open workbook", err).
			WithContext("path", path)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) < 2 {
			continue
		}
		// The header is not always the first row; survey exports carry
		// title rows above it.
		for i := 0; i < len(rows) && i < 5; i++ {
			cm := mapColumns(rows[i], aliases)
			if cm.has(required...) {
				return rows[i+1:], cm, nil
			}
		}
	}

	return nil, nil, apperrors.NewLoadError("no sheet with a recognizable header", nil).
		WithContext("path", path)
}
