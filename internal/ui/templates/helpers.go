package templates

import (
	"encoding/json"
	"strconv"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

//go:generate templ generate

const (
	Title    = "Sales Dashboard"
	Subtitle = "Upload a spreadsheet to explore income, units and marginal revenue"

	MaxTableRows = 50
)

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatDelta(v float64) string {
	if v >= 0 {
		return "+" + formatNumber(v)
	}
	return formatNumber(v)
}

func trendArrow(t models.Trend) string {
	if t == models.TrendPositive {
		return "▲"
	}
	return "▼"
}

func visibleRows(ds *models.Dataset) int {
	return min(ds.Len(), MaxTableRows)
}

// pageSignals seeds the Datastar store with the current selection and
// empty chart series; the SSE endpoints fill the rest.
func pageSignals(view services.View) (string, error) {
	b, err := json.Marshal(map[string]any{
		"region":         view.Region,
		"vendor":         view.Vendor,
		"incomeSeries":   []any{},
		"unitsSeries":    []any{},
		"marginalSeries": []any{},
		"tableData":      map[string]any{"columns": []string{}, "rows": []any{}},
		"histogramData":  []any{},
		"barsData":       []any{},
	})
	return string(b), err
}
