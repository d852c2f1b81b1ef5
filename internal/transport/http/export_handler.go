package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"svpulse/internal/dataprocessing"
	apierrors "svpulse/internal/errors"
	"svpulse/internal/infrastructure"
	"svpulse/internal/services"
)

// ExportHandler serves downloadable tables and charts.
type ExportHandler struct {
	service      *services.ExportService
	metrics      *infrastructure.Metrics
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// exportRequest is the validated shape of a table export URL.
type exportRequest struct {
	Table  string `validate:"required,oneof=annual-volumes categories facility-distribution heatmap trends forecast workbook"`
	Format string `validate:"required,oneof=csv xlsx pdf"`
	Year   int    `validate:"omitempty,min=1900,max=2100"`
	By     string `validate:"omitempty,oneof=region district level ownership"`
}

// chartRequest is the validated shape of a chart export URL.
type chartRequest struct {
	Chart  string `validate:"required,oneof=trend categories"`
	Format string `validate:"required,oneof=png tif tiff"`
}

// NewExportHandler creates the handler.
func NewExportHandler(service *services.ExportService, metrics *infrastructure.Metrics, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		metrics:      metrics,
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the export routes.
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/capabilities", h.GetCapabilities)
	r.Get("/charts/{chart}.{format}", h.GetChart)
	r.Get("/{table}.{format}", h.GetTable)

	return r
}

// GetCapabilities handles GET /api/exports/capabilities.
func (h *ExportHandler) GetCapabilities(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   h.service.Capabilities(),
	})
}

// GetTable handles GET /api/exports/{table}.{format}.
func (h *ExportHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	req := exportRequest{
		Table:  chi.URLParam(r, "table"),
		Format: chi.URLParam(r, "format"),
		By:     r.URL.Query().Get("by"),
	}
	if raw := r.URL.Query().Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("year", "year must be a four digit year"))
			return
		}
		req.Year = year
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "INVALID_EXPORT_REQUEST", "invalid export request", err.Error()))
		return
	}

	var (
		data []byte
		err  error
	)
	if req.Table == "workbook" {
		if req.Format != "xlsx" {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", "workbook is only available as xlsx"))
			return
		}
		data, err = h.service.Workbook(r.Context())
	} else {
		dim := dataprocessing.ByRegion
		if req.By == "district" {
			dim = dataprocessing.ByDistrict
		}
		data, err = h.service.Table(r.Context(), req.Table, req.Format, req.Year, dim, req.By == "ownership")
	}
	if err != nil {
		h.metrics.ExportsTotal.WithLabelValues(req.Format, "error").Inc()
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.metrics.ExportsTotal.WithLabelValues(req.Format, "success").Inc()

	h.logger.InfoContext(r.Context(), "table exported",
		slog.String("table", req.Table),
		slog.String("format", req.Format),
		slog.Int("bytes", len(data)),
	)
	serveAttachment(w, fmt.Sprintf("%s.%s", req.Table, req.Format), req.Format, data)
}

// GetChart handles GET /api/exports/charts/{chart}.{format}.
func (h *ExportHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	req := chartRequest{
		Chart:  chi.URLParam(r, "chart"),
		Format: chi.URLParam(r, "format"),
	}
	if err := h.validate.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusBadRequest, "INVALID_EXPORT_REQUEST", "invalid chart request", err.Error()))
		return
	}

	data, err := h.service.Chart(r.Context(), req.Chart, req.Format)
	if err != nil {
		h.metrics.ExportsTotal.WithLabelValues(req.Format, "error").Inc()
		h.errorHandler.HandleError(w, r, err)
		return
	}
	h.metrics.ExportsTotal.WithLabelValues(req.Format, "success").Inc()

	h.logger.InfoContext(r.Context(), "chart exported",
		slog.String("chart", req.Chart),
		slog.String("format", req.Format),
		slog.Int("bytes", len(data)),
	)
	serveAttachment(w, fmt.Sprintf("%s.%s", req.Chart, req.Format), req.Format, data)
}

func serveAttachment(w http.ResponseWriter, filename, format string, data []byte) {
	w.Header().Set("Content-Type", services.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
