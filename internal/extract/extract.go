// Package extract reduces tabular tool output to scalar metrics.
package extract

import (
	"fmt"

	"github.com/sznuper/repro/internal/result"
)

// Direction says which way a metric improves. It decides whether a speedup
// is treatment/baseline or baseline/treatment.
type Direction string

const (
	HigherIsBetter Direction = "higher_is_better"
	LowerIsBetter  Direction = "lower_is_better"
)

// Ratio derives a speedup from the mean of one column in two tables.
type Ratio struct {
	Name      string
	Label     string
	Column    string
	Baseline  string
	Treatment string
	Direction Direction
}

// Group derives one metric per (system, category) pair: the mean of
// ValueColumn over rows matching both keys.
type Group struct {
	File           string
	ValueColumn    string
	SystemColumn   string
	CategoryColumn string
	Systems        []string
	Categories     []string
}

// Spec lists every metric of one figure.
type Spec struct {
	Ratios []Ratio
	Groups []Group
}

// GroupFieldName is the record field name for a grouped metric.
func GroupFieldName(system, category string) string {
	return system + "/" + category
}

// Extract reads the tables referenced by spec and computes its record.
// Ratio fields come first in spec order, followed by grouped fields.
// Groups with no matching rows produce NaN rather than an error.
func Extract(spec Spec) (result.Record, error) {
	tables := make(map[string]*Table)
	load := func(path string) (*Table, error) {
		if t, ok := tables[path]; ok {
			return t, nil
		}
		t, err := ReadTable(path)
		if err != nil {
			return nil, err
		}
		tables[path] = t
		return t, nil
	}

	var fields []result.Field
	for _, r := range spec.Ratios {
		v, err := ratio(r, load)
		if err != nil {
			return result.Record{}, fmt.Errorf("metric %s: %w", r.Name, err)
		}
		fields = append(fields, result.Field{Name: r.Name, Label: r.Label, Value: v})
	}

	for _, g := range spec.Groups {
		t, err := load(g.File)
		if err != nil {
			return result.Record{}, err
		}
		gf, err := groupMeans(t, g)
		if err != nil {
			return result.Record{}, err
		}
		fields = append(fields, gf...)
	}

	return result.NewRecord(fields...)
}

func ratio(r Ratio, load func(string) (*Table, error)) (float64, error) {
	base, err := load(r.Baseline)
	if err != nil {
		return 0, err
	}
	treat, err := load(r.Treatment)
	if err != nil {
		return 0, err
	}

	bm, err := base.ColumnMean(r.Column)
	if err != nil {
		return 0, err
	}
	tm, err := treat.ColumnMean(r.Column)
	if err != nil {
		return 0, err
	}

	if r.Direction == LowerIsBetter {
		return bm / tm, nil
	}
	return tm / bm, nil
}

func groupMeans(t *Table, g Group) ([]result.Field, error) {
	sysCol := g.SystemColumn
	if sysCol == "" {
		sysCol = "system"
	}
	catCol := g.CategoryColumn
	if catCol == "" {
		catCol = "function"
	}
	for _, col := range []string{g.ValueColumn, sysCol, catCol} {
		if !t.HasColumn(col) {
			return nil, t.missing(col)
		}
	}

	var fields []result.Field
	for _, sys := range g.Systems {
		for _, cat := range g.Categories {
			rows, err := t.Where(map[string]string{sysCol: sys, catCol: cat})
			if err != nil {
				return nil, err
			}
			mean, err := rows.ColumnMean(g.ValueColumn)
			if err != nil {
				return nil, err
			}
			fields = append(fields, result.Field{
				Name:  GroupFieldName(sys, cat),
				Label: fmt.Sprintf("%s (%s)", cat, sys),
				Value: mean,
			})
		}
	}
	return fields, nil
}
