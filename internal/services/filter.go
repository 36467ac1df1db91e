package services

import (
	"errors"
	"slices"

	"sales-dashboard/internal/models"
)

var (
	ErrNoRegionField = errors.New("no region field")
	ErrNoNameField   = errors.New("no name field")
)

// FilterChain narrows a dataset by region and then by vendor name. Vendor
// choices are always drawn from the region-filtered rows.
type FilterChain struct {
	dataset   *models.Dataset
	regionCol int
	nameCol   int
}

func NewFilterChain(ds *models.Dataset) FilterChain {
	return FilterChain{
		dataset:   ds,
		regionCol: ds.Lookup(models.FieldRegion),
		nameCol:   ds.Lookup(models.FieldName),
	}
}

func (c FilterChain) HasRegion() bool { return c.regionCol != models.Absent }

func (c FilterChain) HasName() bool { return c.nameCol != models.Absent }

func (c FilterChain) Regions() ([]string, error) {
	if !c.HasRegion() {
		return nil, ErrNoRegionField
	}
	return distinct(c.dataset, c.regionCol), nil
}

func (c FilterChain) SelectRegion(region string) (*models.Dataset, error) {
	if !c.HasRegion() {
		return nil, ErrNoRegionField
	}
	col := c.regionCol
	return c.dataset.Subset(func(r models.Row) bool {
		return col < len(r) && r[col] == region
	}), nil
}

func (c FilterChain) Vendors(filtered *models.Dataset) ([]string, error) {
	if !c.HasRegion() {
		return nil, ErrNoRegionField
	}
	if !c.HasName() {
		return nil, ErrNoNameField
	}
	return distinct(filtered, c.nameCol), nil
}

func (c FilterChain) SelectVendor(filtered *models.Dataset, vendor string) (*models.Dataset, error) {
	if !c.HasRegion() {
		return nil, ErrNoRegionField
	}
	if !c.HasName() {
		return nil, ErrNoNameField
	}
	col := c.nameCol
	return filtered.Subset(func(r models.Row) bool {
		return col < len(r) && r[col] == vendor
	}), nil
}

func distinct(ds *models.Dataset, col int) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := range ds.Rows {
		v := ds.Cell(i, col)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
