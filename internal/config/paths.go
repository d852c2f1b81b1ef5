package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths is the single source of truth for every input and output file the
// application touches. The raw data layout is fixed; only the base
// directories are configurable.
type Paths struct {
	DataDir    string
	RawDir     string
	ShapeDir   string
	ResultsDir string
}

// NewPaths builds the path set from the configured base directories.
func NewPaths(cfg PathsConfig) *Paths {
	dataDir := cfg.DataDir
	return &Paths{
		DataDir:    dataDir,
		RawDir:     filepath.Join(dataDir, "raw"),
		ShapeDir:   filepath.Join(dataDir, "Uganda_Shape_files_2020"),
		ResultsDir: cfg.ResultsDir,
	}
}

// SurgicalCSV returns the raw procedure file for one reporting year.
func (p *Paths) SurgicalCSV(year int) string {
	return filepath.Join(p.RawDir, fmt.Sprintf("Uganda Surgical Procedures_raw data_%d.csv", year))
}

// PopulationXLSX returns the census population workbook.
func (p *Paths) PopulationXLSX() string {
	return filepath.Join(p.RawDir, "Uganda Population Data 2024", "Population by district_census 2024.xlsx")
}

// FacilityXLSX returns the master facility list survey workbook.
func (p *Paths) FacilityXLSX() string {
	return filepath.Join(p.ShapeDir, "GEO MFL SURVEY DATASET.xlsx")
}

// RegionShapefile returns the district/region polygon shapefile.
func (p *Paths) RegionShapefile() string {
	return filepath.Join(p.ShapeDir, "Region", "UDHS_Regions_2019.shp")
}

// ResultPath returns the path of one batch output file.
func (p *Paths) ResultPath(filename string) string {
	return filepath.Join(p.ResultsDir, filename)
}

// EnsureResultsDir creates the batch output directory when missing.
func (p *Paths) EnsureResultsDir() error {
	if err := os.MkdirAll(p.ResultsDir, 0755); err != nil {
		return fmt.Errorf("failed to create results directory %s: %w", p.ResultsDir, err)
	}
	return nil
}

// FileExists reports whether a path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
