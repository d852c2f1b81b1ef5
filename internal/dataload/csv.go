package dataload

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"

	apperrors "svpulse/internal/errors"
	"svpulse/pkg/contracts/domain"
)

// surgicalAliases resolves the procedure file header variants observed across
// the 2020-2024 exports.
var surgicalAliases = map[string][]string{
	"facility_code": {"facility code", "facility id", "mfl code"},
	"facility_name": {"facility name", "health facility"},
	"district":      {"district"},
	"region":        {"region"},
	"category":      {"category", "procedure category", "procedure type"},
	"procedures":    {"surgical procedures", "procedures", "procedure count"},
	"level":         {"facility level", "level of care", "level"},
	"ownership":     {"ownership", "authority"},
}

// LoadStats reports how many source rows were read and how many were dropped
// as malformed. Output row count is always Rows-Malformed.
type LoadStats struct {
	Rows      int
	Malformed int
}

// LoadSurgicalCSV reads one annual surgical procedures file. Rows missing a
// facility code or a parsable procedure count are dropped and counted as
// malformed; a missing file or unrecognizable header is a LoadError.
func LoadSurgicalCSV(path string, year int, logger *slog.Logger) ([]domain.ProcedureRecord, LoadStats, error) {
	var stats LoadStats

	file, err := os.Open(path)
	if err != nil {
		return nil, stats, apperrors.NewLoadError("failed to open surgical procedures file", err).
			WithContext("path", path).
			WithContext("year", year)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // ragged rows are handled per-cell

	header, err := reader.Read()
	if err != nil {
		return nil, stats, apperrors.NewLoadError("failed to read surgical procedures header", err).
			WithContext("path", path)
	}

	cm := mapColumns(header, surgicalAliases)
	if !cm.has("district", "procedures") {
		return nil, stats, apperrors.NewLoadError("surgical procedures header not recognized", nil).
			WithContext("path", path).
			WithContext("header", header)
	}

	var records []domain.ProcedureRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.Rows++
			stats.Malformed++
			continue
		}
		stats.Rows++

		count, ok := cm.getInt(row, "procedures")
		district := cm.get(row, "district")
		if !ok || district == "" {
			stats.Malformed++
			continue
		}

		records = append(records, domain.ProcedureRecord{
			FacilityCode:  cm.get(row, "facility_code"),
			FacilityName:  cm.get(row, "facility_name"),
			District:      district,
			Region:        cm.get(row, "region"),
			Year:          year,
			Category:      cm.get(row, "category"),
			Procedures:    count,
			FacilityLevel: cm.get(row, "level"),
			Ownership:     cm.get(row, "ownership"),
		})
	}

	logger.Debug("loaded surgical procedures",
		slog.String("path", path),
		slog.Int("year", year),
		slog.Int("rows", stats.Rows),
		slog.Int("malformed", stats.Malformed))

	return records, stats, nil
}
