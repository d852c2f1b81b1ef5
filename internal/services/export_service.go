package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"svpulse/internal/dataprocessing"
	apperrors "svpulse/internal/errors"
	"svpulse/internal/exporter"
	"svpulse/internal/infrastructure"
)

// ExportService renders dashboard tables and charts into downloadable
// documents. Formats that failed the startup probe are rejected with an
// ExportError before any data is loaded.
type ExportService struct {
	dashboard *DashboardService
	caps      exporter.Capabilities
	logger    *slog.Logger
}

// NewExportService creates the service. caps should come from
// exporter.Probe at startup.
func NewExportService(dashboard *DashboardService, caps exporter.Capabilities, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	return &ExportService{dashboard: dashboard, caps: caps, logger: logger}
}

// Capabilities reports the formats this process can produce.
func (s *ExportService) Capabilities() exporter.Capabilities {
	return s.caps
}

func (s *ExportService) checkFormat(format string) error {
	if !s.caps.Supports(format) {
		return apperrors.NewExportError("export format not available", ErrFormatDisabled).
			WithContext("format", format)
	}
	return nil
}

// ContentType returns the MIME type for a format name.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "csv":
		return "text/csv; charset=utf-8"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "tif", "tiff":
		return "image/tiff"
	default:
		return "application/octet-stream"
	}
}

// buildTable assembles the named dashboard table from the loaded dataset.
func (s *ExportService) buildTable(ctx context.Context, name string, year int, dim dataprocessing.Dimension, byOwnership bool) (exporter.Table, error) {
	switch name {
	case "annual-volumes":
		rows, err := s.dashboard.AnnualVolumes(ctx, year, dim, "")
		if err != nil {
			return exporter.Table{}, err
		}
		return exporter.AnnualVolumesTable(dim, rows), nil
	case "categories":
		rows, err := s.dashboard.CategoryTotals(ctx, year, "")
		if err != nil {
			return exporter.Table{}, err
		}
		return exporter.CategoryTable(rows), nil
	case "facility-distribution":
		rows, err := s.dashboard.FacilityDistribution(ctx, byOwnership)
		if err != nil {
			return exporter.Table{}, err
		}
		return exporter.DistributionTable(rows, byOwnership), nil
	case "heatmap":
		rows, err := s.dashboard.Heatmap(ctx, year)
		if err != nil {
			return exporter.Table{}, err
		}
		return exporter.HeatmapTable(rows), nil
	case "trends":
		rows, err := s.dashboard.Trends(ctx, "")
		if err != nil {
			return exporter.Table{}, err
		}
		return exporter.TrendTable(rows), nil
	case "forecast":
		series, warning, err := s.dashboard.ForecastTrendsOrObserved(ctx, 0)
		if err != nil {
			return exporter.Table{}, err
		}
		if warning != "" {
			s.logger.Warn("forecast table holds observed values only", "reason", warning)
		}
		return exporter.SeriesTable(series), nil
	default:
		return exporter.Table{}, apperrors.NewNotFoundError(fmt.Sprintf("table %q", name), ErrUnknownTable)
	}
}

// Table renders one named table as CSV, Excel or PDF.
func (s *ExportService) Table(ctx context.Context, name, format string, year int, dim dataprocessing.Dimension, byOwnership bool) ([]byte, error) {
	if err := s.checkFormat(format); err != nil {
		return nil, err
	}
	table, err := s.buildTable(ctx, name, year, dim, byOwnership)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "csv":
		return exporter.CSVBytes(table)
	case "xlsx":
		return exporter.ExcelBytes(table)
	case "pdf":
		return exporter.PDFBytes(table)
	default:
		return nil, apperrors.NewExportError("unsupported table format", nil).
			WithContext("format", format)
	}
}

// Workbook renders every dashboard table into one multi-sheet Excel file.
func (s *ExportService) Workbook(ctx context.Context) ([]byte, error) {
	names := []string{"annual-volumes", "categories", "facility-distribution", "heatmap", "trends", "forecast"}
	var tables []exporter.Table
	for _, name := range names {
		table, err := s.buildTable(ctx, name, 0, dataprocessing.ByRegion, false)
		if err != nil {
			// Optional inputs may be missing or unfit; skip the sheet.
			if apperrors.IsType(err, apperrors.ErrTypeNotFound) || apperrors.IsType(err, apperrors.ErrTypeForecast) {
				s.logger.Warn("sheet skipped", "table", name, "error", err)
				continue
			}
			return nil, err
		}
		tables = append(tables, table)
	}
	if len(tables) == 0 {
		return nil, apperrors.NewExportError("no tables available", ErrNoData)
	}
	return exporter.ExcelBytes(tables...)
}

// Chart renders one named chart as PNG or TIFF.
func (s *ExportService) Chart(ctx context.Context, name, format string) ([]byte, error) {
	if err := s.checkFormat(format); err != nil {
		return nil, err
	}
	switch name {
	case "trend":
		series, warning, err := s.dashboard.ForecastTrendsOrObserved(ctx, 0)
		if err != nil {
			return nil, err
		}
		if warning != "" {
			s.logger.Warn("trend chart holds observed values only", "reason", warning)
		}
		return exporter.TrendChart(series, format)
	case "categories":
		rows, err := s.dashboard.CategoryTotals(ctx, 0, "")
		if err != nil {
			return nil, err
		}
		return exporter.CategoryChart(rows, format)
	default:
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("chart %q", name), ErrUnknownChart)
	}
}
