package services

import (
	"math"

	"sales-dashboard/internal/models"
)

const MarginalRevenueColumn = "Marginal_Revenue"

// MarginalRevenue returns, per row, the change in income over the change
// in units sold versus the previous row, rounded half to even at 2
// decimals of the binary value (2.675 gives 2.67). Row 0,
// rows with a zero units delta and rows with a non-numeric operand are
// missing. Without an income or units column every entry is missing.
func MarginalRevenue(ds *models.Dataset) []models.NullFloat {
	out := make([]models.NullFloat, ds.Len())

	incomeCol := ds.Lookup(models.FieldIncome)
	unitsCol := ds.Lookup(models.FieldUnits)
	if incomeCol == models.Absent || unitsCol == models.Absent {
		return out
	}

	income := ds.Floats(incomeCol)
	units := ds.Floats(unitsCol)

	for i := 1; i < len(out); i++ {
		if !income[i].Valid || !income[i-1].Valid || !units[i].Valid || !units[i-1].Valid {
			continue
		}
		du := units[i].Value - units[i-1].Value
		if du == 0 {
			continue
		}
		out[i] = round2((income[i].Value - income[i-1].Value) / du)
	}
	return out
}

func round2(v float64) models.NullFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return models.Missing()
	}
	r := math.RoundToEven(v*100) / 100
	if math.IsInf(r, 0) {
		return models.Float(v)
	}
	return models.Float(r)
}
