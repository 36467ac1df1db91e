package handlers

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const uploadField = "file"

type APIHandlers struct {
	dashboard      *services.Dashboard
	demo           *services.Demo
	metrics        *observability.Metrics
	logger         *slog.Logger
	maxUploadBytes int64
}

func NewAPIHandlers(dashboard *services.Dashboard, demo *services.Demo, metrics *observability.Metrics, logger *slog.Logger, maxUploadBytes int64) *APIHandlers {
	return &APIHandlers{
		dashboard:      dashboard,
		demo:           demo,
		metrics:        metrics,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *APIHandlers) render(r *http.Request, sel *services.Selection) services.View {
	start := time.Now()
	view := h.dashboard.View(observability.GetSessionID(r.Context()), sel)
	h.metrics.ObserveRender(time.Since(start))
	return view
}

// upload reads the multipart file and hands it to the dashboard. The
// returned error is already an AppError.
func (h *APIHandlers) upload(w http.ResponseWriter, r *http.Request) (services.View, error) {
	ctx, span := observability.StartSpan(r.Context(), "upload_dataset")
	defer span.Finish()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		span.SetError(err)
		h.metrics.ObserveUpload(observability.UploadFailed, 0)
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return services.View{}, errors.PayloadTooLarge(fmt.Sprintf("upload exceeds %d bytes", h.maxUploadBytes))
		}
		return services.View{}, errors.BadRequestWrap(err, "expected a multipart form with a \"file\" field")
	}
	defer file.Close()
	span.SetTag("filename", header.Filename)

	view, err := h.dashboard.Upload(ctx, observability.GetSessionID(ctx), file, header.Filename)
	if err != nil {
		span.SetError(err)
		h.metrics.ObserveUpload(observability.UploadFailed, 0)
		return services.View{}, errors.LoadFailure(err, "could not load "+header.Filename)
	}

	h.metrics.ObserveUpload(observability.UploadOK, view.RowCount)
	return view, nil
}

type uploadSummary struct {
	Source   string        `json:"source"`
	Columns  []string      `json:"columns"`
	RowCount int           `json:"row_count"`
	KPIs     models.KPISet `json:"kpis"`
	Regions  []string      `json:"regions"`
	Notices  []string      `json:"notices"`
}

func (h *APIHandlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	view, err := h.upload(w, r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccess(w, uploadSummary{
		Source:   view.Source,
		Columns:  view.Columns,
		RowCount: view.RowCount,
		KPIs:     view.KPIs,
		Regions:  view.Regions,
		Notices:  view.Notices,
	})
}

// HandleFormUpload serves the plain HTML form. Failures are shown as a
// notice on the page it redirects back to.
func (h *APIHandlers) HandleFormUpload(w http.ResponseWriter, r *http.Request) {
	if _, err := h.upload(w, r); err != nil {
		h.logger.Warn("form upload failed",
			"error", err,
			"request_id", observability.GetRequestID(r.Context()),
		)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func selectionFromQuery(r *http.Request) *services.Selection {
	q := r.URL.Query()
	if !q.Has("region") && !q.Has("vendor") {
		return nil
	}
	return &services.Selection{Region: q.Get("region"), Vendor: q.Get("vendor")}
}

func (h *APIHandlers) HandleView(w http.ResponseWriter, r *http.Request) {
	view := h.render(r, selectionFromQuery(r))
	errors.WriteSuccess(w, view)
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	view := h.render(r, nil)
	if !view.HasDataset {
		errors.WriteError(w, h.logger, errors.NotFound(services.NoticeNoDataset), observability.GetRequestID(r.Context()))
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"kpis":  view.KPIs,
		"cards": view.Cards,
	})
}

func (h *APIHandlers) HandleRegions(w http.ResponseWriter, r *http.Request) {
	view := h.render(r, nil)
	errors.WriteSuccess(w, map[string]any{
		"regions": view.Regions,
		"notices": view.Notices,
	})
}

// HandleVendors lists vendor names for one region only. It previews the
// region without changing the session's saved selection.
func (h *APIHandlers) HandleVendors(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())
	region := r.URL.Query().Get("region")
	if region == "" {
		errors.WriteError(w, h.logger, errors.BadRequest("region query parameter is required"), requestID)
		return
	}

	start := time.Now()
	view := h.dashboard.Preview(observability.GetSessionID(r.Context()), services.Selection{Region: region})
	h.metrics.ObserveRender(time.Since(start))
	if !slices.Contains(view.Regions, region) {
		errors.WriteError(w, h.logger, errors.NotFound(fmt.Sprintf("region %q not found", region)), requestID)
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"region":  region,
		"vendors": view.Vendors,
		"notices": view.Notices,
	})
}

func (h *APIHandlers) HandleExport(w http.ResponseWriter, r *http.Request) {
	sessionID := observability.GetSessionID(r.Context())
	if !h.dashboard.HasDataset(sessionID) {
		errors.WriteError(w, h.logger, errors.NotFound(services.NoticeNoDataset), observability.GetRequestID(r.Context()))
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.ExportFilename))
	w.Header().Set("Cache-Control", "no-store")

	if err := h.dashboard.Export(w, sessionID); err != nil {
		// Headers are gone by now; all we can do is log.
		h.logger.Error("export csv", "error", err, "session_id", sessionID)
		return
	}
	h.metrics.ObserveExport()
}

func (h *APIHandlers) HandleDemo(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.demo.Panels())
}

func (h *APIHandlers) HandleFavoriteDessert(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var desserts []models.Dessert
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&desserts); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "expected a JSON array of desserts"), requestID)
		return
	}

	favorite, err := services.FavoriteDessert(desserts)
	if err != nil {
		errors.WriteError(w, h.logger, errors.Validation(err.Error()), requestID)
		return
	}

	errors.WriteSuccess(w, map[string]string{"favorite": favorite})
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.dashboard.Sessions().Stats()

	errors.WriteSuccess(w, stats)
}
