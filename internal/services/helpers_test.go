package services

import (
	"strconv"

	"sales-dashboard/internal/models"
)

func newDataset(columns []string, rows ...[]string) *models.Dataset {
	ds := &models.Dataset{Columns: columns, Rows: make([]models.Row, 0, len(rows))}
	for _, r := range rows {
		ds.Rows = append(ds.Rows, models.Row(r))
	}
	return ds
}

// salesDataset builds INCOME / SOLD UNITS rows from parallel slices.
func salesDataset(income, units []float64) *models.Dataset {
	ds := &models.Dataset{Columns: []string{"INCOME", "SOLD UNITS"}}
	for i := range income {
		ds.Rows = append(ds.Rows, models.Row{
			strconv.FormatFloat(income[i], 'f', -1, 64),
			strconv.FormatFloat(units[i], 'f', -1, 64),
		})
	}
	return ds
}

func regionDataset() *models.Dataset {
	return newDataset(
		[]string{"Date", "REGION", "NAME", "INCOME", "SOLD UNITS"},
		[]string{"2024-01-01", "West", "Acme", "100", "10"},
		[]string{"2024-01-02", "East", "Globex", "150", "15"},
		[]string{"2024-01-03", "West", "Initech", "210", "18"},
		[]string{"2024-01-04", "East", "Umbrella", "260", "20"},
		[]string{"2024-01-05", "West", "Acme", "300", "25"},
		[]string{"2024-01-06", "", "Hooli", "310", "26"},
	)
}
