// Package dataload reads the fixed set of raw input files (annual procedure
// CSVs, census population and facility survey workbooks, the region
// shapefile) into typed in-memory tables with a consistent schema. It
// tolerates minor source formatting variance through header alias matching
// and reports missing or unparsable files as LoadError values rather than
// failing the process.
package dataload

import (
	"log/slog"

	"svpulse/internal/config"
	"svpulse/internal/infrastructure"
	"svpulse/pkg/contracts/domain"
)

// Loader resolves the fixed raw-data layout and reads each source table.
type Loader struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewLoader creates a loader over the configured data directory.
func NewLoader(paths *config.Paths, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &Loader{
		paths:  paths,
		logger: logger.With(slog.String("component", "loader")),
	}
}

// Surgical loads the raw procedure records for one reporting year.
func (l *Loader) Surgical(year int) ([]domain.ProcedureRecord, LoadStats, error) {
	return LoadSurgicalCSV(l.paths.SurgicalCSV(year), year, l.logger)
}

// Population loads the census population table.
func (l *Loader) Population() ([]domain.PopulationEntry, LoadStats, error) {
	return LoadPopulationXLSX(l.paths.PopulationXLSX(), l.logger)
}

// Facilities loads the master facility list.
func (l *Loader) Facilities() ([]domain.Facility, LoadStats, error) {
	return LoadFacilityXLSX(l.paths.FacilityXLSX(), l.logger)
}

// Shapes loads the district/region polygons keyed by normalized name.
func (l *Loader) Shapes() (map[string]domain.GeoShape, error) {
	return LoadShapefile(l.paths.RegionShapefile(), l.logger)
}
