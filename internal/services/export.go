package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"

	"sales-dashboard/internal/models"
)

const ExportFilename = "data_with_marginal_revenue.csv"

// WriteCSV writes the dataset plus its marginal revenue column as
// comma-separated UTF-8 text with a header row. Missing values are empty.
// A dataset that already carries the column (a re-uploaded export) has it
// overwritten in place.
func WriteCSV(w io.Writer, ds *models.Dataset, mr []models.NullFloat) error {
	if ds == nil {
		return ErrEmptyDataset
	}
	if len(mr) != ds.Len() {
		return fmt.Errorf("marginal revenue has %d values for %d rows", len(mr), ds.Len())
	}

	cw := csv.NewWriter(w)

	header := slices.Clone(ds.Columns)
	mrCol := slices.Index(header, MarginalRevenueColumn)
	if mrCol == -1 {
		header = append(header, MarginalRevenueColumn)
		mrCol = len(header) - 1
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(header))
	for i := range ds.Rows {
		for j := range ds.Columns {
			record[j] = ds.Cell(i, j)
		}
		record[mrCol] = mr[i].String()
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
