package services

import (
	"github.com/shopspring/decimal"

	"sales-dashboard/internal/models"
)

func ComputeKPIs(ds *models.Dataset, mr []models.NullFloat) models.KPISet {
	income := present(ds.Floats(ds.Lookup(models.FieldIncome)))
	units := present(ds.Floats(ds.Lookup(models.FieldUnits)))
	marginal := present(mr)

	return models.KPISet{
		TotalIncome:          sum(income),
		TotalUnits:           sum(units),
		AvgMarginalRevenue:   mean(marginal),
		DeltaIncome:          lastDelta(income),
		DeltaUnits:           lastDelta(units),
		DeltaMarginalRevenue: lastDelta(marginal),
	}
}

func present(values []models.NullFloat) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if v.Valid {
			out = append(out, v.Value)
		}
	}
	return out
}

// sum adds in decimal so totals of currency amounts do not pick up binary
// noise (0.1 + 0.2 is 0.3).
func sum(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	f, _ := total.Float64()
	return f
}

// mean is 0 for an empty slice so cards always have a value.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return sum(values) / float64(len(values))
}

func lastDelta(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	return values[n-1] - values[n-2]
}
