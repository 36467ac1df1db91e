package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

type SSEHandlers struct {
	dashboard *services.Dashboard
	demo      *services.Demo
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewSSEHandlers(dashboard *services.Dashboard, demo *services.Demo, metrics *observability.Metrics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		dashboard: dashboard,
		demo:      demo,
		metrics:   metrics,
		logger:    logger,
	}
}

type dashboardSignals struct {
	Region string `json:"region"`
	Vendor string `json:"vendor"`
}

func renderComponent(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	err := c.Render(ctx, &buf)
	return buf.String(), err
}

// series turns a column into chart points; missing values become nulls so
// the chart shows gaps.
func series(values []models.NullFloat) []models.NullFloat {
	if values == nil {
		return []models.NullFloat{}
	}
	return values
}

func (h *SSEHandlers) dashboardFragments(ctx context.Context, view services.View) ([]string, error) {
	components := []templ.Component{
		templates.Notices(view.Notices),
		templates.KPICards(view.Cards),
		templates.RegionSelect(view.Regions, view.Region),
		templates.VendorSelect(view.Vendors, view.Vendor, view.FilterState),
		templates.DataTable("data-table", view.Data, view.MarginalRevenue),
		templates.DataTable("filtered-table", view.Filtered, nil),
		templates.DataTable("vendor-table", view.VendorRows, nil),
	}

	fragments := make([]string, 0, len(components))
	for _, c := range components {
		html, err := renderComponent(ctx, c)
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, html)
	}
	return fragments, nil
}

// HandleDashboard re-renders the session for the region and vendor the
// browser currently has selected.
func (h *SSEHandlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	var signals dashboardSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		h.logger.Debug("no dashboard signals", "error", err)
	}

	start := time.Now()
	view := h.dashboard.View(observability.GetSessionID(r.Context()),
		&services.Selection{Region: signals.Region, Vendor: signals.Vendor})
	h.metrics.ObserveRender(time.Since(start))

	sse := datastar.NewSSE(w, r)

	fragments, err := h.dashboardFragments(r.Context(), view)
	if err != nil {
		h.logger.Error("render dashboard fragments", "error", err)
		return
	}
	for _, html := range fragments {
		sse.PatchElements(html)
	}

	var income, units []models.NullFloat
	if view.Data != nil {
		income = view.Data.Floats(view.Data.Lookup(models.FieldIncome))
		units = view.Data.Floats(view.Data.Lookup(models.FieldUnits))
	}

	// Selections are sent back so a pruned vendor clears in the browser too.
	jsonData, err := json.Marshal(map[string]any{
		"region":         view.Region,
		"vendor":         view.Vendor,
		"incomeSeries":   series(income),
		"unitsSeries":    series(units),
		"marginalSeries": series(view.MarginalRevenue),
	})
	if err != nil {
		h.logger.Error("marshal dashboard signals", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleDemo(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	panels := h.demo.Panels()
	for _, c := range []templ.Component{
		templates.DemoTable(panels.Table),
		templates.DessertPanel(panels.Desserts, panels.Favorite),
	} {
		html, err := renderComponent(r.Context(), c)
		if err != nil {
			h.logger.Error("render demo panel", "error", err)
			return
		}
		sse.PatchElements(html)
	}

	jsonData, err := json.Marshal(map[string]any{
		"tableData":     panels.Table,
		"histogramData": panels.Histogram,
		"barsData":      panels.Bars,
	})
	if err != nil {
		h.logger.Error("marshal demo signals", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
