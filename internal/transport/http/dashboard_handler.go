package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"svpulse/internal/dataprocessing"
	apierrors "svpulse/internal/errors"
	"svpulse/internal/services"
)

// DashboardHandler serves the aggregation, trend and forecast endpoints.
type DashboardHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates the handler.
func NewDashboardHandler(service *services.DashboardService, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/dashboard/summary", h.GetSummary)
	r.Get("/tables/annual-volumes", h.GetAnnualVolumes)
	r.Get("/tables/categories", h.GetCategories)
	r.Get("/tables/facility-distribution", h.GetFacilityDistribution)
	r.Get("/map/heatmap", h.GetHeatmap)
	r.Get("/trends", h.GetTrends)
	r.Get("/trends/forecast", h.GetForecast)
	r.Get("/raw/{table}", h.GetRaw)

	return r
}

// yearParam parses an optional ?year= query value. Zero means latest.
func yearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1900 || year > 2100 {
		return 0, apierrors.ErrValidation("year", "year must be a four digit year")
	}
	return year, nil
}

// GetSummary handles GET /api/dashboard/summary. Query: year (optional),
// region (optional filter).
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	summary, err := h.service.Summary(r.Context(), year, r.URL.Query().Get("region"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	warnings, _ := h.service.Warnings(r.Context())

	render.JSON(w, r, map[string]interface{}{
		"status":   "success",
		"data":     summary,
		"warnings": warnings,
	})
}

// GetAnnualVolumes handles GET /api/tables/annual-volumes.
// Query: year (optional), by=region|district, region (optional filter).
func (h *DashboardHandler) GetAnnualVolumes(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	dim := dataprocessing.ByRegion
	switch by := r.URL.Query().Get("by"); by {
	case "", "region":
	case "district":
		dim = dataprocessing.ByDistrict
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("by", "by must be region or district"))
		return
	}

	rows, err := h.service.AnnualVolumes(r.Context(), year, dim, r.URL.Query().Get("region"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetCategories handles GET /api/tables/categories. Query: year (optional),
// region (optional filter).
func (h *DashboardHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	rows, err := h.service.CategoryTotals(r.Context(), year, r.URL.Query().Get("region"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetFacilityDistribution handles GET /api/tables/facility-distribution.
// Query: by=level|ownership.
func (h *DashboardHandler) GetFacilityDistribution(w http.ResponseWriter, r *http.Request) {
	byOwnership := false
	switch by := r.URL.Query().Get("by"); by {
	case "", "level":
	case "ownership":
		byOwnership = true
	default:
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("by", "by must be level or ownership"))
		return
	}

	rows, err := h.service.FacilityDistribution(r.Context(), byOwnership)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetHeatmap handles GET /api/map/heatmap. Query: year (optional).
func (h *DashboardHandler) GetHeatmap(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	rows, err := h.service.Heatmap(r.Context(), year)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetTrends handles GET /api/trends. Query: region (optional filter).
func (h *DashboardHandler) GetTrends(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Trends(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   rows,
		"count":  len(rows),
	})
}

// GetForecast handles GET /api/trends/forecast. Query: target (optional
// year, defaults to the configured projection year).
func (h *DashboardHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	target := 0
	if raw := r.URL.Query().Get("target"); raw != "" {
		t, err := strconv.Atoi(raw)
		if err != nil || t < 1900 || t > 2100 {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("target", "target must be a four digit year"))
			return
		}
		target = t
	}

	series, warning, err := h.service.ForecastTrendsOrObserved(r.Context(), target)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	resp := map[string]interface{}{
		"status": "success",
		"data":   series,
		"count":  len(series),
	}
	if warning != "" {
		resp["warning"] = warning
	}
	render.JSON(w, r, resp)
}

// GetRaw handles GET /api/raw/{table} for table in
// procedures|population|facilities.
func (h *DashboardHandler) GetRaw(w http.ResponseWriter, r *http.Request) {
	var (
		data interface{}
		err  error
	)
	switch table := chi.URLParam(r, "table"); table {
	case "procedures":
		var year int
		if year, err = yearParam(r); err == nil {
			data, err = h.service.RawProcedures(r.Context(), year)
		}
	case "population":
		data, err = h.service.RawPopulation(r.Context())
	case "facilities":
		data, err = h.service.RawFacilities(r.Context())
	default:
		err = apierrors.ErrValidation("table", "table must be procedures, population or facilities")
	}
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}
