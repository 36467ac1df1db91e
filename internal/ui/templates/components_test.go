package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/services"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	if err := c.Render(context.Background(), &sb); err != nil {
		t.Fatalf("Render() failed: %v", err)
	}
	return sb.String()
}

func TestDataTable_EscapesCells(t *testing.T) {
	ds := &models.Dataset{
		Columns: []string{"NAME", "INCOME"},
		Rows:    []models.Row{{"<b>Acme</b>", "100"}, {"Globex", "150"}},
	}
	mr := []models.NullFloat{models.Missing(), models.Float(12.5)}

	out := render(t, DataTable("data-table", ds, mr))

	if strings.Contains(out, "<b>Acme</b>") {
		t.Error("cell markup should be escaped")
	}
	if !strings.Contains(out, "<th>Marginal_Revenue</th>") {
		t.Error("expected the marginal revenue header")
	}
	if !strings.Contains(out, "<td>12.5</td>") {
		t.Error("expected the marginal revenue value")
	}
}

func TestDataTable_NilDataset(t *testing.T) {
	if out := render(t, DataTable("vendor-table", nil, nil)); out != `<div id="vendor-table"></div>` {
		t.Errorf("unexpected output %q", out)
	}
}

func TestDataTable_TruncatesLongTables(t *testing.T) {
	ds := &models.Dataset{Columns: []string{"N"}}
	for range MaxTableRows + 5 {
		ds.Rows = append(ds.Rows, models.Row{"x"})
	}

	out := render(t, DataTable("data-table", ds, nil))

	if got := strings.Count(out, "<tr>"); got != MaxTableRows+1 {
		t.Errorf("expected %d rows including the header, got %d", MaxTableRows+1, got)
	}
	if !strings.Contains(out, "Showing 50 of 55 rows") {
		t.Error("expected a truncation note")
	}
}

func TestVendorSelect_DisabledUntilRegionSelected(t *testing.T) {
	if out := render(t, VendorSelect(nil, "", models.Unfiltered)); !strings.Contains(out, " disabled") {
		t.Error("vendor select should be disabled without a region")
	}

	out := render(t, VendorSelect([]string{"Acme", "Initech"}, "Initech", models.RegionSelected))
	if strings.Contains(out, " disabled") {
		t.Error("vendor select should be enabled once a region is chosen")
	}
	if !strings.Contains(out, `<option value="Initech" selected>`) {
		t.Error("selected vendor should be marked")
	}
}

func TestKPICards_Trend(t *testing.T) {
	cards := models.KPISet{TotalIncome: 460, DeltaIncome: 60, DeltaUnits: -2}.Cards()

	out := render(t, KPICards(cards))

	if !strings.Contains(out, `trend-positive`) || !strings.Contains(out, `trend-negative`) {
		t.Errorf("expected both trends in %q", out)
	}
	if !strings.Contains(out, "+60.00") || !strings.Contains(out, "-2.00") {
		t.Errorf("expected signed deltas in %q", out)
	}
}

func TestDashboard_SignalsAreEscaped(t *testing.T) {
	view := services.View{Region: `O'Hare "North"`}

	out := render(t, Dashboard(view, models.DemoPanels{}))

	if strings.Contains(out, `O'Hare`) {
		t.Error("selection should be escaped inside data-signals")
	}
	if !strings.Contains(out, `data-signals="{&#34;`) {
		t.Errorf("expected JSON signals in the body attribute")
	}
}
