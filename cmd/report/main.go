package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"svpulse/internal/config"
	"svpulse/internal/dataload"
	"svpulse/internal/dataprocessing"
	"svpulse/internal/exporter"
	"svpulse/internal/infrastructure"
	"svpulse/internal/services"
)

// reportFile pairs an output filename with its producer.
type reportFile struct {
	name  string
	build func(ctx context.Context) ([]byte, error)
}

func main() {
	outDir := flag.String("out", "", "output directory (defaults to the configured results dir)")
	target := flag.Int("target", 0, "forecast target year (defaults to the configured projection year)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *outDir != "" {
		cfg.Paths.ResultsDir = *outDir
	}
	if *target != 0 {
		cfg.Data.TargetYear = *target
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureResultsDir(); err != nil {
		logger.Error("Failed to create results directory", "error", err)
		os.Exit(1)
	}

	loader := dataload.NewLoader(paths, logger)
	dashboard := services.NewDashboardService(cfg, loader, logger)
	caps := exporter.Probe(logger)
	export := services.NewExportService(dashboard, caps, logger)

	ctx := context.Background()

	files := []reportFile{
		{"annual_volumes_region.csv", func(ctx context.Context) ([]byte, error) {
			return export.Table(ctx, "annual-volumes", "csv", 0, dataprocessing.ByRegion, false)
		}},
		{"annual_volumes_district.csv", func(ctx context.Context) ([]byte, error) {
			return export.Table(ctx, "annual-volumes", "csv", 0, dataprocessing.ByDistrict, false)
		}},
		{"categories.csv", func(ctx context.Context) ([]byte, error) {
			return export.Table(ctx, "categories", "csv", 0, dataprocessing.ByRegion, false)
		}},
		{"facility_distribution.csv", func(ctx context.Context) ([]byte, error) {
			return export.Table(ctx, "facility-distribution", "csv", 0, dataprocessing.ByRegion, false)
		}},
		{"heatmap.csv", func(ctx context.Context) ([]byte, error) {
			return export.Table(ctx, "heatmap", "csv", 0, dataprocessing.ByRegion, false)
		}},
		{"trends.csv", func(ctx context.Context) ([]byte, error) {
			return export.Table(ctx, "trends", "csv", 0, dataprocessing.ByRegion, false)
		}},
		{"forecast.csv", func(ctx context.Context) ([]byte, error) {
			return export.Table(ctx, "forecast", "csv", 0, dataprocessing.ByRegion, false)
		}},
		{"surgical_volumes.xlsx", export.Workbook},
	}
	if caps.PDF {
		files = append(files, reportFile{"trends.pdf", func(ctx context.Context) ([]byte, error) {
			return export.Table(ctx, "trends", "pdf", 0, dataprocessing.ByRegion, false)
		}})
	}
	if caps.PNG {
		files = append(files,
			reportFile{"trend_forecast.png", func(ctx context.Context) ([]byte, error) {
				return export.Chart(ctx, "trend", "png")
			}},
			reportFile{"categories.png", func(ctx context.Context) ([]byte, error) {
				return export.Chart(ctx, "categories", "png")
			}},
		)
	}

	written, failed := 0, 0
	for _, f := range files {
		data, err := f.build(ctx)
		if err != nil {
			logger.Warn("report skipped", "file", f.name, "error", err)
			failed++
			continue
		}
		path := paths.ResultPath(f.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			logger.Error("Failed to write report", "file", f.name, "error", err)
			failed++
			continue
		}
		logger.Info("report written", "file", path, "bytes", len(data))
		written++
	}

	if warnings, err := dashboard.Warnings(ctx); err == nil {
		for _, w := range warnings {
			logger.Warn("data warning", "warning", w)
		}
	}

	fmt.Printf("Reports complete: %d written, %d skipped (output: %s)\n", written, failed, paths.ResultsDir)
	if written == 0 {
		os.Exit(1)
	}
}
