package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
)

func TestRender_NoDataset(t *testing.T) {
	view, next := Render(State{Region: "West"})

	assert.False(t, view.HasDataset)
	assert.Equal(t, []string{NoticeNoDataset}, view.Notices)
	assert.Equal(t, models.Unfiltered, view.FilterState)
	assert.Equal(t, State{}, next)
}

func TestRender_Unfiltered(t *testing.T) {
	ds := regionDataset()

	view, next := Render(State{}.WithDataset(ds, "sales.csv", time.Now()))

	assert.True(t, view.HasDataset)
	assert.Equal(t, 6, view.RowCount)
	assert.Len(t, view.MarginalRevenue, 6)
	assert.Len(t, view.Cards, 3)
	assert.Equal(t, []string{"East", "West"}, view.Regions)
	assert.Empty(t, view.Vendors)
	assert.Nil(t, view.Filtered)
	assert.Equal(t, models.Unfiltered, view.FilterState)
	assert.Empty(t, view.Notices)
	assert.Equal(t, "", next.Region)
}

func TestRender_RegionThenVendor(t *testing.T) {
	st := State{}.WithDataset(regionDataset(), "sales.csv", time.Now()).WithSelection("West", "Acme")

	view, next := Render(st)

	assert.Equal(t, models.RegionSelected, view.FilterState)
	assert.Equal(t, []string{"Acme", "Initech"}, view.Vendors)
	require.NotNil(t, view.Filtered)
	assert.Equal(t, 3, view.Filtered.Len())
	require.NotNil(t, view.VendorRows)
	assert.Equal(t, 2, view.VendorRows.Len())
	assert.Equal(t, "West", next.Region)
	assert.Equal(t, "Acme", next.Vendor)
}

func TestRender_DropsVendorFromAnotherRegion(t *testing.T) {
	st := State{}.WithDataset(regionDataset(), "sales.csv", time.Now()).WithSelection("West", "Globex")

	view, next := Render(st)

	assert.Equal(t, "", view.Vendor)
	assert.Nil(t, view.VendorRows)
	assert.Equal(t, "West", next.Region)
	assert.Equal(t, "", next.Vendor)
}

func TestRender_DropsUnknownRegion(t *testing.T) {
	st := State{}.WithDataset(regionDataset(), "sales.csv", time.Now()).WithSelection("Atlantis", "Acme")

	view, next := Render(st)

	assert.Equal(t, models.Unfiltered, view.FilterState)
	assert.Equal(t, "", next.Region)
	assert.Equal(t, "", next.Vendor)
}

func TestRender_MissingColumnNotices(t *testing.T) {
	ds := newDataset([]string{"Date", "Amount"}, []string{"2024-01-01", "5"})

	view, _ := Render(State{}.WithDataset(ds, "odd.csv", time.Now()))

	assert.Equal(t, []string{NoticeNoIncome, NoticeNoUnits, NoticeNoName, NoticeNoRegion}, view.Notices)
	assert.False(t, view.MarginalRevenue[0].Valid)
	assert.Equal(t, 0.0, view.KPIs.AvgMarginalRevenue)
}

func TestRender_LoadErrorShownOnce(t *testing.T) {
	st := State{}.WithLoadError("zip: not a valid zip file")

	view, next := Render(st)
	assert.Equal(t, []string{"load failed: zip: not a valid zip file", NoticeNoDataset}, view.Notices)
	assert.False(t, view.HasDataset)
	assert.Equal(t, models.KPISet{}, view.KPIs)
	assert.Nil(t, view.MarginalRevenue)

	view, _ = Render(next)
	assert.Equal(t, []string{NoticeNoDataset}, view.Notices)
}

func TestRender_DoesNotMutateDataset(t *testing.T) {
	ds := regionDataset()
	before := len(ds.Rows)

	Render(State{}.WithDataset(ds, "sales.csv", time.Now()).WithSelection("East", "Globex"))

	assert.Equal(t, before, len(ds.Rows))
	assert.Equal(t, "West", ds.Rows[0][1])
}
