package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"svpulse/internal/config"
	"svpulse/internal/dataload"
	"svpulse/internal/dataprocessing"
	apperrors "svpulse/internal/errors"
	"svpulse/internal/forecast"
	"svpulse/internal/infrastructure"
	"svpulse/pkg/contracts/domain"
)

// DashboardService loads the surgical dataset once and serves every
// aggregation the dashboard needs from memory. The underlying files
// change at most once a year, so the dataset is memoized until Reload
// is called.
type DashboardService struct {
	cfg    *config.Config
	loader *dataload.Loader
	proc   *dataprocessing.Processor
	logger *slog.Logger

	mu   sync.Mutex
	data *dataset
}

// dataset is the fully joined in-memory snapshot of all source files.
type dataset struct {
	byYear     map[int][]domain.ProcedureRecord
	population []domain.PopulationEntry
	pop        *dataprocessing.PopulationIndex
	facilities []domain.Facility
	shapes     map[string]domain.GeoShape
	stats      map[int]dataload.LoadStats
	warnings   []string
	loadedAt   time.Time
}

// NewDashboardService creates the service with injected dependencies.
func NewDashboardService(cfg *config.Config, loader *dataload.Loader, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &DashboardService{
		cfg:    cfg,
		loader: loader,
		proc:   dataprocessing.NewProcessor(logger),
		logger: logger,
	}
}

// load returns the memoized dataset, reading every source file on first use.
func (s *DashboardService) load(ctx context.Context) (*dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data != nil {
		return s.data, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	ds := &dataset{
		byYear: make(map[int][]domain.ProcedureRecord),
		stats:  make(map[int]dataload.LoadStats),
	}

	population, _, err := s.loader.Population()
	if err != nil {
		ds.warnings = append(ds.warnings, fmt.Sprintf("population workbook unavailable, rates omitted: %v", err))
		s.logger.Warn("population workbook unavailable", "error", err)
	} else {
		ds.population = population
	}
	ds.pop = dataprocessing.NewPopulationIndex(ds.population)

	facilities, _, err := s.loader.Facilities()
	if err != nil {
		ds.warnings = append(ds.warnings, fmt.Sprintf("facility register unavailable: %v", err))
		s.logger.Warn("facility register unavailable", "error", err)
	} else {
		ds.facilities = facilities
	}

	shapes, err := s.loader.Shapes()
	if err != nil {
		ds.warnings = append(ds.warnings, fmt.Sprintf("region shapefile unavailable: %v", err))
		s.logger.Warn("region shapefile unavailable", "error", err)
	} else {
		ds.shapes = shapes
	}

	for _, year := range s.cfg.Data.Years() {
		records, stats, err := s.loader.Surgical(year)
		if err != nil {
			ds.warnings = append(ds.warnings, fmt.Sprintf("year %d skipped: %v", year, err))
			s.logger.Warn("surgical file skipped", "year", year, "error", err)
			continue
		}
		ds.byYear[year] = records
		ds.stats[year] = stats
		if stats.Malformed > 0 {
			ds.warnings = append(ds.warnings,
				fmt.Sprintf("year %d: %d malformed rows skipped", year, stats.Malformed))
		}
	}
	if len(ds.byYear) == 0 {
		return nil, apperrors.NewLoadError("no surgical data files could be read", ErrNoData)
	}

	if latest, ok := latestYear(ds.byYear); ok {
		if err := dataprocessing.CheckJoin(ds.byYear[latest], ds.pop); err != nil {
			ds.warnings = append(ds.warnings, err.Error())
			s.logger.Warn("population join check failed", "year", latest, "error", err)
		}
	}

	ds.loadedAt = time.Now()
	s.logger.Info("dataset loaded",
		"years", len(ds.byYear),
		"facilities", len(ds.facilities),
		"shapes", len(ds.shapes),
		"warnings", len(ds.warnings),
		"duration", time.Since(start))
	s.data = ds
	return ds, nil
}

// Reload discards the memoized dataset so the next call re-reads the files.
func (s *DashboardService) Reload(ctx context.Context) error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()
	_, err := s.load(ctx)
	return err
}

func latestYear(byYear map[int][]domain.ProcedureRecord) (int, bool) {
	latest, ok := 0, false
	for y := range byYear {
		if !ok || y > latest {
			latest, ok = y, true
		}
	}
	return latest, ok
}

// Years lists the loaded years ascending.
func (s *DashboardService) Years(ctx context.Context) ([]int, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	years := make([]int, 0, len(ds.byYear))
	for y := range ds.byYear {
		years = append(years, y)
	}
	sort.Ints(years)
	return years, nil
}

// LatestYear returns the most recent loaded year.
func (s *DashboardService) LatestYear(ctx context.Context) (int, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	latest, _ := latestYear(ds.byYear)
	return latest, nil
}

// Warnings returns the non-fatal issues collected during loading.
func (s *DashboardService) Warnings(ctx context.Context) ([]string, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ds.warnings, nil
}

// Summary computes the KPI block for one year, nationally or for a single
// region. year 0 means the latest loaded year.
func (s *DashboardService) Summary(ctx context.Context, year int, region string) (dataprocessing.Summary, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return dataprocessing.Summary{}, err
	}
	year, records, err := s.yearRecords(ds, year)
	if err != nil {
		return dataprocessing.Summary{}, err
	}
	if region == "" || strings.EqualFold(region, "All") {
		return s.proc.NationalSummary(year, records, ds.pop), nil
	}
	return s.proc.RegionalSummary(year, records, ds.pop, region), nil
}

// AnnualVolumes aggregates one year by region or district, optionally
// filtered to a single region first. year 0 means the latest year.
func (s *DashboardService) AnnualVolumes(ctx context.Context, year int, dim dataprocessing.Dimension, region string) ([]domain.AggregateRow, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	year, records, err := s.yearRecords(ds, year)
	if err != nil {
		return nil, err
	}
	rows := s.proc.AnnualVolumes(dataprocessing.FilterRegion(records, region), ds.pop, dim)
	for i := range rows {
		rows[i].Year = year
	}
	return rows, nil
}

// CategoryTotals aggregates one year's procedures by category, optionally
// filtered to a region. year 0 means the latest year.
func (s *DashboardService) CategoryTotals(ctx context.Context, year int, region string) ([]domain.AggregateRow, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	year, records, err := s.yearRecords(ds, year)
	if err != nil {
		return nil, err
	}
	rows := s.proc.CategoryTotals(dataprocessing.FilterRegion(records, region))
	for i := range rows {
		rows[i].Year = year
	}
	return rows, nil
}

// FacilityDistribution counts facilities per region by level or ownership.
func (s *DashboardService) FacilityDistribution(ctx context.Context, byOwnership bool) ([]domain.DistributionRow, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(ds.facilities) == 0 {
		return nil, apperrors.NewNotFoundError("facility register", ErrNoData)
	}
	return s.proc.FacilityDistribution(ds.facilities, byOwnership), nil
}

// Heatmap joins the latest year's district volumes to the region shapes.
func (s *DashboardService) Heatmap(ctx context.Context, year int) ([]domain.HeatmapRow, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(ds.shapes) == 0 {
		return nil, apperrors.NewNotFoundError("region shapes", ErrNoData)
	}
	_, records, err := s.yearRecords(ds, year)
	if err != nil {
		return nil, err
	}
	return s.proc.Heatmap(records, ds.pop, ds.shapes), nil
}

// Trends returns the observed yearly totals and rates.
func (s *DashboardService) Trends(ctx context.Context, region string) ([]dataprocessing.TrendRow, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.proc.TrendSeries(ds.byYear, ds.pop, region), nil
}

// ForecastTrends extends the observed rate series to targetYear. A zero
// targetYear uses the configured projection year.
func (s *DashboardService) ForecastTrends(ctx context.Context, targetYear int) (domain.Series, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if targetYear == 0 {
		targetYear = s.cfg.Data.TargetYear
	}
	observed := dataprocessing.RateSeries(s.proc.TrendSeries(ds.byYear, ds.pop, ""))
	if len(observed) > 0 && targetYear <= observed[len(observed)-1].Year {
		return nil, apperrors.NewForecastError("target year is not after the observed series", nil).
			WithContext("target_year", targetYear)
	}
	return forecast.ForecastToYear(observed, targetYear)
}

// ForecastTrendsOrObserved forecasts the national rate series and falls back
// to the observed series with a warning when the data cannot support a fit.
// An invalid target year still fails.
func (s *DashboardService) ForecastTrendsOrObserved(ctx context.Context, targetYear int) (domain.Series, string, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, "", err
	}
	if targetYear == 0 {
		targetYear = s.cfg.Data.TargetYear
	}
	observed := dataprocessing.RateSeries(s.proc.TrendSeries(ds.byYear, ds.pop, ""))
	if len(observed) > 0 && targetYear <= observed[len(observed)-1].Year {
		return nil, "", apperrors.NewForecastError("target year is not after the observed series", nil).
			WithContext("target_year", targetYear)
	}
	series, err := forecast.ForecastToYear(observed, targetYear)
	if err == nil {
		return series, "", nil
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) || appErr.Type != apperrors.ErrTypeForecast {
		return nil, "", err
	}
	s.logger.Warn("forecast unavailable, serving observed series only", "reason", appErr.Message)
	return observed, appErr.Message, nil
}

// RawProcedures returns the unaggregated records for one year.
func (s *DashboardService) RawProcedures(ctx context.Context, year int) ([]domain.ProcedureRecord, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	_, records, err := s.yearRecords(ds, year)
	return records, err
}

// RawPopulation returns the district population table.
func (s *DashboardService) RawPopulation(ctx context.Context) ([]domain.PopulationEntry, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(ds.population) == 0 {
		return nil, apperrors.NewNotFoundError("population table", ErrNoData)
	}
	return ds.population, nil
}

// RawFacilities returns the facility register.
func (s *DashboardService) RawFacilities(ctx context.Context) ([]domain.Facility, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(ds.facilities) == 0 {
		return nil, apperrors.NewNotFoundError("facility register", ErrNoData)
	}
	return ds.facilities, nil
}

// LoadStats reports the per-year row counts from the last load.
func (s *DashboardService) LoadStats(ctx context.Context) (map[int]dataload.LoadStats, error) {
	ds, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return ds.stats, nil
}

func (s *DashboardService) yearRecords(ds *dataset, year int) (int, []domain.ProcedureRecord, error) {
	if year == 0 {
		year, _ = latestYear(ds.byYear)
	}
	records, ok := ds.byYear[year]
	if !ok {
		return 0, nil, apperrors.NewNotFoundError(fmt.Sprintf("year %d", year), ErrYearNotLoaded)
	}
	return year, records, nil
}
