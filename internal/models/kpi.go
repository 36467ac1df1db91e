package models

type Trend string

const (
	TrendPositive Trend = "positive"
	TrendNegative Trend = "negative"
)

// TrendOf treats a zero delta as positive.
func TrendOf(delta float64) Trend {
	if delta >= 0 {
		return TrendPositive
	}
	return TrendNegative
}

type KPI struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Delta float64 `json:"delta"`
	Trend Trend   `json:"trend"`
}

type KPISet struct {
	TotalIncome          float64 `json:"total_income"`
	TotalUnits           float64 `json:"total_units"`
	AvgMarginalRevenue   float64 `json:"avg_marginal_revenue"`
	DeltaIncome          float64 `json:"delta_income"`
	DeltaUnits           float64 `json:"delta_units"`
	DeltaMarginalRevenue float64 `json:"delta_marginal_revenue"`
}

// Cards returns the three KPI cards in display order.
func (k KPISet) Cards() []KPI {
	return []KPI{
		{Label: "Total Income", Value: k.TotalIncome, Delta: k.DeltaIncome, Trend: TrendOf(k.DeltaIncome)},
		{Label: "Units Sold", Value: k.TotalUnits, Delta: k.DeltaUnits, Trend: TrendOf(k.DeltaUnits)},
		{Label: "Avg Marginal Revenue", Value: k.AvgMarginalRevenue, Delta: k.DeltaMarginalRevenue, Trend: TrendOf(k.DeltaMarginalRevenue)},
	}
}

type FilterState string

const (
	Unfiltered     FilterState = "unfiltered"
	RegionSelected FilterState = "region_selected"
)
