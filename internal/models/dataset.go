package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Row holds one record's cells, aligned to Dataset.Columns.
type Row []string

type Dataset struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Rows)
}

// Cell returns the trimmed text at (row, col), or "" when col is absent
// or the row is short.
func (d *Dataset) Cell(row, col int) string {
	if d == nil || col < 0 || row < 0 || row >= len(d.Rows) || col >= len(d.Rows[row]) {
		return ""
	}
	return d.Rows[row][col]
}

// Floats interprets a column as numbers. Absent columns and non-numeric
// cells yield missing values.
func (d *Dataset) Floats(col int) []NullFloat {
	out := make([]NullFloat, d.Len())
	if col < 0 {
		return out
	}
	for i := range out {
		out[i] = ParseNullFloat(d.Cell(i, col))
	}
	return out
}

// Subset returns a new dataset sharing the header and the selected rows.
func (d *Dataset) Subset(keep func(Row) bool) *Dataset {
	out := &Dataset{Columns: d.Columns, Rows: make([]Row, 0)}
	for _, r := range d.Rows {
		if keep(r) {
			out.Rows = append(out.Rows, r)
		}
	}
	return out
}

// NullFloat is a float that may be missing. Missing is distinct from zero.
type NullFloat struct {
	Value float64
	Valid bool
}

func Float(v float64) NullFloat { return NullFloat{Value: v, Valid: true} }

func Missing() NullFloat { return NullFloat{} }

func ParseNullFloat(s string) NullFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return Missing()
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing()
	}
	return Float(v)
}

func (n NullFloat) String() string {
	if !n.Valid {
		return ""
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Missing()
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Float(v)
	return nil
}
