package services

import (
	"errors"
	"slices"
	"time"

	"sales-dashboard/internal/models"
)

const (
	NoticeNoDataset = "no dataset loaded"
	NoticeNoIncome  = "income column not found; marginal revenue unavailable"
	NoticeNoUnits   = "sold units column not found; marginal revenue unavailable"
	NoticeNoRegion  = "no region field"
	NoticeNoName    = "no name field"
)

// State is everything one session carries between interactions. The
// dataset is never mutated; an upload replaces it.
type State struct {
	Dataset  *models.Dataset `json:"-"`
	Source   string          `json:"source,omitempty"`
	LoadedAt time.Time       `json:"loaded_at,omitzero"`
	Region   string          `json:"region,omitempty"`
	Vendor   string          `json:"vendor,omitempty"`

	// LoadError is the last failed upload, shown once.
	LoadError string `json:"load_error,omitempty"`
}

// WithDataset returns a fresh state for a newly loaded dataset. Earlier
// selections do not carry over.
func (s State) WithDataset(ds *models.Dataset, source string, at time.Time) State {
	return State{Dataset: ds, Source: source, LoadedAt: at}
}

// WithLoadError records why the last upload failed; it is reported once.
func (s State) WithLoadError(msg string) State {
	s.LoadError = msg
	return s
}

func (s State) WithSelection(region, vendor string) State {
	s.Region = region
	s.Vendor = vendor
	return s
}

type View struct {
	Source          string             `json:"source,omitempty"`
	Columns         []string           `json:"columns"`
	Data            *models.Dataset    `json:"-"`
	RowCount        int                `json:"row_count"`
	MarginalRevenue []models.NullFloat `json:"marginal_revenue"`
	KPIs            models.KPISet      `json:"kpis"`
	Cards           []models.KPI       `json:"cards"`
	FilterState     models.FilterState `json:"filter_state"`
	Regions         []string           `json:"regions"`
	Region          string             `json:"region,omitempty"`
	Vendors         []string           `json:"vendors"`
	Vendor          string             `json:"vendor,omitempty"`
	Filtered        *models.Dataset    `json:"filtered,omitempty"`
	VendorRows      *models.Dataset    `json:"vendor_rows,omitempty"`
	Notices         []string           `json:"notices"`
	HasDataset      bool               `json:"has_dataset"`
}

// Render derives everything the page shows from state. It has no side
// effects. The returned state drops selections the dataset no longer
// offers, so a vendor never outlives a change of region.
func Render(state State) (View, State) {
	view := View{
		Source:      state.Source,
		FilterState: models.Unfiltered,
		Regions:     []string{},
		Vendors:     []string{},
		Notices:     []string{},
	}

	if state.LoadError != "" {
		view.Notices = append(view.Notices, "load failed: "+state.LoadError)
	}

	ds := state.Dataset
	if ds == nil {
		view.Notices = append(view.Notices, NoticeNoDataset)
		return view, State{}
	}

	view.HasDataset = true
	view.Data = ds
	view.Columns = ds.Columns
	view.RowCount = ds.Len()

	if ds.Lookup(models.FieldIncome) == models.Absent {
		view.Notices = append(view.Notices, NoticeNoIncome)
	}
	if ds.Lookup(models.FieldUnits) == models.Absent {
		view.Notices = append(view.Notices, NoticeNoUnits)
	}

	view.MarginalRevenue = MarginalRevenue(ds)
	view.KPIs = ComputeKPIs(ds, view.MarginalRevenue)
	view.Cards = view.KPIs.Cards()

	next := state
	next.LoadError = ""
	chain := NewFilterChain(ds)
	if !chain.HasName() {
		view.Notices = append(view.Notices, NoticeNoName)
	}

	regions, err := chain.Regions()
	if errors.Is(err, ErrNoRegionField) {
		view.Notices = append(view.Notices, NoticeNoRegion)
		next.Region, next.Vendor = "", ""
		return view, next
	}
	view.Regions = regions

	if !slices.Contains(regions, state.Region) {
		next.Region, next.Vendor = "", ""
		return view, next
	}

	filtered, _ := chain.SelectRegion(state.Region)
	view.FilterState = models.RegionSelected
	view.Region = state.Region
	view.Filtered = filtered

	vendors, err := chain.Vendors(filtered)
	if err != nil {
		next.Vendor = ""
		return view, next
	}
	view.Vendors = vendors

	if !slices.Contains(vendors, state.Vendor) {
		next.Vendor = ""
		return view, next
	}

	view.Vendor = state.Vendor
	view.VendorRows, _ = chain.SelectVendor(filtered, state.Vendor)
	return view, next
}
