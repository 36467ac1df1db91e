package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/sync/errgroup"

	"sales-dashboard/internal/models"
)

const (
	batchSize  = 10000
	maxWorkers = 10
)

var (
	ErrEmptyDataset      = errors.New("dataset has no data rows")
	ErrUnsupportedFormat = errors.New("not a spreadsheet or csv file")
)

var workbookExts = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"01-02-06",
	"1/2/06",
	"2006/01/02",
}

type Loader struct {
	logger *slog.Logger
}

func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

func (l *Loader) LoadFile(ctx context.Context, path string) (*models.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return l.Load(ctx, f, filepath.Base(path))
}

// Load parses a workbook or csv stream into a dataset. The filename's
// extension picks the parser; unknown extensions try workbook then csv.
// On any failure no dataset is returned.
func (l *Loader) Load(ctx context.Context, r io.Reader, filename string) (*models.Dataset, error) {
	start := time.Now()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDataset
	}

	var raw [][]string
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".csv":
		raw, err = readCSV(data)
	case slices.Contains(workbookExts, ext):
		raw, err = readWorkbook(data)
	default:
		raw, err = readWorkbook(data)
		if err != nil {
			raw, err = readCSV(data)
		}
	}
	if err != nil {
		return nil, err
	}

	ds, err := buildDataset(ctx, raw)
	if err != nil {
		return nil, err
	}

	sorted := sortByDate(ds)
	l.logger.Info("dataset loaded",
		"filename", filename,
		"rows", ds.Len(),
		"columns", len(ds.Columns),
		"sorted_by_date", sorted,
		"duration", time.Since(start),
	)
	return ds, nil
}

func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrUnsupportedFormat)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	return rows, nil
}

func buildDataset(ctx context.Context, raw [][]string) (*models.Dataset, error) {
	header := -1
	for i, row := range raw {
		if !blank(row) {
			header = i
			break
		}
	}
	if header == -1 {
		return nil, ErrEmptyDataset
	}

	columns := make([]string, len(raw[header]))
	for i, c := range raw[header] {
		columns[i] = strings.TrimSpace(c)
	}

	body := raw[header+1:]
	rows := make([]models.Row, len(body))

	// Convert in batches; each worker owns a disjoint index range so row
	// order survives.
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for lo := 0; lo < len(body); lo += batchSize {
		hi := min(lo+batchSize, len(body))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if i%1000 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				rows[i] = normalizeRow(body[i], len(columns))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("convert rows: %w", err)
	}

	rows = slices.DeleteFunc(rows, func(r models.Row) bool { return blank(r) })
	if len(rows) == 0 {
		return nil, ErrEmptyDataset
	}

	return &models.Dataset{Columns: columns, Rows: rows}, nil
}

func normalizeRow(cells []string, width int) models.Row {
	row := make(models.Row, width)
	for i := 0; i < width && i < len(cells); i++ {
		row[i] = strings.TrimSpace(cells[i])
	}
	return row
}

func blank[S ~[]string](cells S) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// sortByDate stably orders rows ascending by the date field. Rows whose
// date cannot be read keep their relative order after the dated ones.
func sortByDate(ds *models.Dataset) bool {
	col := ds.Lookup(models.FieldDate)
	if col == models.Absent {
		return false
	}

	type keyed struct {
		row models.Row
		at  time.Time
		ok  bool
	}
	items := make([]keyed, len(ds.Rows))
	for i, r := range ds.Rows {
		at, ok := ParseDate(ds.Cell(i, col))
		items[i] = keyed{row: r, at: at, ok: ok}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		switch {
		case a.ok && b.ok:
			return a.at.Compare(b.at)
		case a.ok:
			return -1
		case b.ok:
			return 1
		default:
			return 0
		}
	})

	for i := range items {
		ds.Rows[i] = items[i].row
	}
	return true
}

// ParseDate accepts Excel serial numbers and a handful of text layouts.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
