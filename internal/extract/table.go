package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// ErrMissingColumn is returned when a required column is absent from a table.
var ErrMissingColumn = errors.New("missing column")

// Table is a parsed CSV file with a header row.
type Table struct {
	Name   string
	header []string
	index  map[string]int
	rows   [][]string
}

// ReadTable loads a CSV file.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading table: %w", err)
	}
	defer f.Close()
	return ParseTable(f, path)
}

// ParseTable parses CSV data; the first record is the header.
func ParseTable(r io.Reader, name string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("parsing %s: no header row", name)
	}

	t := &Table{
		Name:   name,
		header: lo.Map(records[0], func(h string, _ int) string { return strings.TrimSpace(h) }),
		index:  make(map[string]int, len(records[0])),
	}
	for i, h := range t.header {
		if _, dup := t.index[h]; !dup {
			t.index[h] = i
		}
	}
	t.rows = lo.Filter(records[1:], func(row []string, _ int) bool {
		return !lo.EveryBy(row, func(cell string) bool { return strings.TrimSpace(cell) == "" })
	})
	return t, nil
}

// Len returns the number of data rows.
func (t *Table) Len() int { return len(t.rows) }

// Columns returns the header names.
func (t *Table) Columns() []string { return append([]string(nil), t.header...) }

// HasColumn reports whether the header contains name.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.index[name]
	return ok
}

func (t *Table) column(name string) (int, error) {
	i, ok := t.index[name]
	if !ok {
		return 0, t.missing(name)
	}
	return i, nil
}

func (t *Table) missing(name string) error {
	return fmt.Errorf("%w %q in %s (have %s)", ErrMissingColumn, name, t.Name, strings.Join(t.Columns(), ", "))
}

// Floats returns the numeric values of a column. Empty and NaN cells are
// treated as missing and skipped; any other non-numeric cell is an error.
func (t *Table) Floats(name string) ([]float64, error) {
	i, err := t.column(name)
	if err != nil {
		return nil, err
	}

	values := make([]float64, 0, len(t.rows))
	for n, row := range t.rows {
		if i >= len(row) {
			continue
		}
		cell := strings.TrimSpace(row[i])
		if cell == "" || strings.EqualFold(cell, "nan") {
			continue
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d column %q: %w", t.Name, n+2, name, err)
		}
		if math.IsNaN(v) {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// Where returns the rows whose key columns equal the given values.
func (t *Table) Where(keys map[string]string) (*Table, error) {
	idx := make(map[int]string, len(keys))
	for col, want := range keys {
		i, err := t.column(col)
		if err != nil {
			return nil, err
		}
		idx[i] = want
	}

	out := &Table{Name: t.Name, header: t.header, index: t.index}
	out.rows = lo.Filter(t.rows, func(row []string, _ int) bool {
		for i, want := range idx {
			if i >= len(row) || strings.TrimSpace(row[i]) != want {
				return false
			}
		}
		return true
	})
	return out, nil
}

// Mean is the arithmetic mean; it is NaN for an empty set.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return lo.Sum(values) / float64(len(values))
}

// ColumnMean returns the mean of a numeric column.
func (t *Table) ColumnMean(name string) (float64, error) {
	values, err := t.Floats(name)
	if err != nil {
		return math.NaN(), err
	}
	return Mean(values), nil
}
