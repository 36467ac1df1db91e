package models

import "strings"

type Field string

const (
	FieldIncome Field = "income"
	FieldUnits  Field = "units_sold"
	FieldRegion Field = "region"
	FieldName   Field = "name"
	FieldDate   Field = "date"
)

// Absent is the column index reported for a field the header does not carry.
const Absent = -1

// Accepted header spellings per field, in lookup order.
var fieldSpellings = map[Field][]string{
	FieldIncome: {"INCOME", "Income", "income", "INGRESOS", "Ingresos", "ingresos", "REVENUE", "Revenue", "revenue"},
	FieldUnits:  {"SOLD UNITS", "Sold Units", "sold units", "sold_units", "UNITS SOLD", "Units Sold", "units_sold", "UNIDADES VENDIDAS", "Unidades Vendidas"},
	FieldRegion: {"REGION", "Region", "region", "REGIÓN", "Región", "región"},
	FieldName:   {"NAME", "Name", "name", "VENDOR", "Vendor", "vendor", "NOMBRE", "Nombre", "nombre"},
	FieldDate:   {"Date", "DATE", "date", "FECHA", "Fecha", "fecha"},
}

func Spellings(f Field) []string {
	return fieldSpellings[f]
}

// Lookup returns the index of the first accepted spelling of f present in
// columns, or Absent.
func Lookup(columns []string, f Field) int {
	for _, spelling := range fieldSpellings[f] {
		for i, c := range columns {
			if strings.TrimSpace(c) == spelling {
				return i
			}
		}
	}
	return Absent
}

func (d *Dataset) Lookup(f Field) int {
	if d == nil {
		return Absent
	}
	return Lookup(d.Columns, f)
}
