package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newTestLoader() *Loader {
	return NewLoader(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// workbook builds an xlsx in memory with rows written from A1 down.
func workbook(t *testing.T, rows ...[]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestLoader_Workbook(t *testing.T) {
	data := workbook(t,
		[]any{"REGION", "NAME", "INCOME", "SOLD UNITS"},
		[]any{"West", "Acme", 100, 10},
		[]any{"East", "Globex", 150.5, 15},
	)

	ds, err := newTestLoader().Load(context.Background(), bytes.NewReader(data), "sales.xlsx")

	require.NoError(t, err)
	assert.Equal(t, []string{"REGION", "NAME", "INCOME", "SOLD UNITS"}, ds.Columns)
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, "West", ds.Cell(0, 0))
	assert.Equal(t, "150.5", ds.Cell(1, 2))
}

func TestLoader_WorkbookSortsBySerialDate(t *testing.T) {
	data := workbook(t,
		[]any{"Date", "INCOME"},
		[]any{44960.0, 3},
		[]any{44930.0, 1},
		[]any{44945.0, 2},
	)

	ds, err := newTestLoader().Load(context.Background(), bytes.NewReader(data), "sales.xlsx")

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, []string{ds.Cell(0, 1), ds.Cell(1, 1), ds.Cell(2, 1)})
}

func TestLoader_CSV(t *testing.T) {
	csv := "\ufeffDate,REGION,INCOME,SOLD UNITS\n" +
		"2024-03-01,West,300,30\n" +
		"2024-01-01,East,100,10\n" +
		"not a date,North,999,99\n" +
		"2024-02-01,West,200,20\n" +
		",,,\n"

	ds, err := newTestLoader().Load(context.Background(), strings.NewReader(csv), "sales.csv")

	require.NoError(t, err)
	assert.Equal(t, "Date", ds.Columns[0])
	require.Equal(t, 4, ds.Len(), "blank rows are dropped")

	got := make([]string, ds.Len())
	for i := range got {
		got[i] = ds.Cell(i, 2)
	}
	assert.Equal(t, []string{"100", "200", "300", "999"}, got)
}

func TestLoader_KeepsOrderWithoutDateColumn(t *testing.T) {
	csv := "INCOME,SOLD UNITS\n3,1\n1,2\n2,3\n"

	ds, err := newTestLoader().Load(context.Background(), strings.NewReader(csv), "sales.csv")

	require.NoError(t, err)
	assert.Equal(t, "3", ds.Cell(0, 0))
	assert.Equal(t, "1", ds.Cell(1, 0))
	assert.Equal(t, "2", ds.Cell(2, 0))
}

func TestLoader_PadsShortRows(t *testing.T) {
	csv := "A,B,C\n1\n4,5,6\n"

	ds, err := newTestLoader().Load(context.Background(), strings.NewReader(csv), "short.csv")

	require.NoError(t, err)
	assert.Len(t, ds.Rows[0], 3)
	assert.Equal(t, "", ds.Cell(0, 2))
}

func TestLoader_UnknownExtensionFallsBackToCSV(t *testing.T) {
	ds, err := newTestLoader().Load(context.Background(), strings.NewReader("INCOME\n5\n"), "upload.bin")

	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestLoader_Failures(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		filename string
		wantErr  error
	}{
		{"empty", "", "sales.csv", ErrEmptyDataset},
		{"whitespace", "  \n\n", "sales.xlsx", ErrEmptyDataset},
		{"header only", "INCOME,SOLD UNITS\n", "sales.csv", ErrEmptyDataset},
		{"not a workbook", "definitely not a zip", "sales.xlsx", ErrUnsupportedFormat},
		{"broken csv", "a,\"b\n1,2", "sales.csv", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := newTestLoader().Load(context.Background(), strings.NewReader(tt.data), tt.filename)

			require.Error(t, err)
			assert.Nil(t, ds)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.csv")
	require.NoError(t, os.WriteFile(path, []byte("INCOME,SOLD UNITS\n1,2\n"), 0o644))

	ds, err := newTestLoader().LoadFile(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())

	_, err = newTestLoader().LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in     string
		wantOK bool
		want   string
	}{
		{"2024-02-29", true, "2024-02-29"},
		{"2024-02-29 10:30:00", true, "2024-02-29"},
		{"02/29/2024", true, "2024-02-29"},
		{"45351", true, "2024-02-29"},
		{"", false, ""},
		{"yesterday", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, got.Format("2006-01-02"))
			}
		})
	}
}
