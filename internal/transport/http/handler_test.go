package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"svpulse/internal/config"
	"svpulse/internal/dataload"
	apierrors "svpulse/internal/errors"
	"svpulse/internal/exporter"
	"svpulse/internal/infrastructure"
	"svpulse/internal/services"
	"svpulse/pkg/contracts"
)

// newTestRouter builds the API router over a small on-disk dataset.
func newTestRouter(t *testing.T) chi.Router {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.DataDir = t.TempDir()
	cfg.Data.FirstYear = 2023
	cfg.Data.LastYear = 2024

	paths := config.NewPaths(cfg.Paths)
	require.NoError(t, os.MkdirAll(paths.RawDir, 0o755))

	for year, rows := range map[int]string{
		2023: "F1,Mulago NRH,Kampala,Central,Caesarean Section,300\nF2,Gulu RRH,Gulu,Northern,General Surgery,100\n",
		2024: "F1,Mulago NRH,Kampala,Central,Caesarean Section,400\nF2,Gulu RRH,Gulu,Northern,General Surgery,200\n",
	} {
		content := "Facility Code,Facility Name,District,Region,Category,Surgical Procedures\n" + rows
		require.NoError(t, os.WriteFile(paths.SurgicalCSV(year), []byte(content), 0o644))
	}

	require.NoError(t, os.MkdirAll(filepath.Dir(paths.PopulationXLSX()), 0o755))
	writePopulationXLSX(t, paths.PopulationXLSX())

	logger := slog.Default()
	loader := dataload.NewLoader(paths, logger)
	dashboard := services.NewDashboardService(cfg, loader, logger)
	caps := exporter.Capabilities{CSV: true, Excel: true, PDF: true, PNG: true, TIFF: true}
	export := services.NewExportService(dashboard, caps, logger)
	health := services.NewHealthService("test", paths, dashboard, caps, logger)
	errorHandler := apierrors.NewErrorHandler(logger)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Mount("/health", NewHealthHandler(health, logger).Routes())
		r.Mount("/", NewDashboardHandler(dashboard, logger, errorHandler).Routes())
		r.Mount("/exports", NewExportHandler(export, infrastructure.NewMetrics(), logger, errorHandler).Routes())
	})
	return r
}

func writePopulationXLSX(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	rows := [][]interface{}{
		{"District", "Region", "Total Population"},
		{"Kampala", "Central", 1_000_000},
		{"Gulu", "Northern", 500_000},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func doGet(t *testing.T, router chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGetSummary(t *testing.T) {
	router := newTestRouter(t)

	w := doGet(t, router, "/api/dashboard/summary")
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeEnvelope(t, w)
	assert.Equal(t, "success", body["status"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(2024), data["year"])
	assert.Equal(t, float64(600), data["total_procedures"])
}

func TestGetAnnualVolumes(t *testing.T) {
	router := newTestRouter(t)

	w := doGet(t, router, "/api/tables/annual-volumes?by=district&year=2023")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	assert.Equal(t, float64(2), body["count"])

	w = doGet(t, router, "/api/tables/annual-volumes?by=planet")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doGet(t, router, "/api/tables/annual-volumes?year=1066")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doGet(t, router, "/api/tables/annual-volumes?year=2019")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetForecast(t *testing.T) {
	router := newTestRouter(t)

	w := doGet(t, router, "/api/trends/forecast?target=2030")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeEnvelope(t, w)
	points := body["data"].([]interface{})
	assert.Len(t, points, 8)

	w = doGet(t, router, "/api/trends/forecast?target=abc")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A target inside the observed window cannot be forecast.
	w = doGet(t, router, "/api/trends/forecast?target=2024")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestGetRaw(t *testing.T) {
	router := newTestRouter(t)

	w := doGet(t, router, "/api/raw/procedures?year=2024")
	require.Equal(t, http.StatusOK, w.Code)

	w = doGet(t, router, "/api/raw/population")
	require.Equal(t, http.StatusOK, w.Code)

	w = doGet(t, router, "/api/raw/unknown")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Facility register is absent in the fixture.
	w = doGet(t, router, "/api/raw/facilities")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExportEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doGet(t, router, "/api/exports/capabilities")
	require.Equal(t, http.StatusOK, w.Code)

	w = doGet(t, router, "/api/exports/trends.csv")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "trends.csv")

	w = doGet(t, router, "/api/exports/trends.docx")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doGet(t, router, "/api/exports/charts/trend.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = doGet(t, router, "/api/exports/charts/sparkline.png")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(t)

	w := doGet(t, router, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)
	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Equal(t, "test", status.Version)
	require.NotNil(t, status.Build)
	assert.Equal(t, contracts.Version, status.Build.Version)
	assert.NotEmpty(t, status.Build.GoVersion)
	assert.NotNil(t, status.Data)

	w = doGet(t, router, "/api/health/live")
	require.Equal(t, http.StatusOK, w.Code)
}
