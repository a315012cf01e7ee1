package reference

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/sznuper/repro/internal/result"
)

// File is a file-backed store. The format is chosen by extension:
// .yaml/.yml, .json, .toml, or .csv.
//
// Structured formats hold either a flat metric map or a map keyed by figure
// name. A metric is a number or an object with "value" and "label":
//
//	figure18:
//	  ipc_speedup: 1.0447
//	  pgwalk_speedup: {value: 1.2243, label: Page walk speedup}
//
// A CSV file has metric names as columns and the first data row as values.
type File struct {
	Path string
}

// Load implements Store. A missing or empty file is reported as ErrNotFound.
// A file keyed by figure that lacks name is an error.
func (f File) Load(ctx context.Context, name string) (result.Record, error) {
	if err := ctx.Err(); err != nil {
		return result.Record{}, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result.Record{}, fmt.Errorf("%w: %s (no file %s)", ErrNotFound, name, f.Path)
		}
		return result.Record{}, fmt.Errorf("reading reference file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".csv":
		return parseCSV(data, f.Path)
	case ".json":
		var raw map[string]any
		if err := json.Unmarshal(data, &raw); err != nil {
			return result.Record{}, fmt.Errorf("parsing %s: %w", f.Path, err)
		}
		return fromMap(raw, name, f.Path)
	case ".toml":
		var raw map[string]any
		if err := toml.Unmarshal(data, &raw); err != nil {
			return result.Record{}, fmt.Errorf("parsing %s: %w", f.Path, err)
		}
		return fromMap(raw, name, f.Path)
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return result.Record{}, fmt.Errorf("parsing %s: %w", f.Path, err)
		}
		return fromMap(raw, name, f.Path)
	default:
		return result.Record{}, fmt.Errorf("unsupported reference file type: %s", f.Path)
	}
}

func fromMap(raw map[string]any, name, path string) (result.Record, error) {
	if nested, ok := raw[name].(map[string]any); ok {
		raw = nested
	} else if keyedByFigure(raw) {
		// The figure points at this file, so a missing section is a
		// configuration error rather than a reason to try the next store.
		return result.Record{}, fmt.Errorf("%s: no section for %s (has %s)", path, name, strings.Join(sortedKeys(raw), ", "))
	}
	if len(raw) == 0 {
		return result.Record{}, fmt.Errorf("%w: %s (empty %s)", ErrNotFound, name, path)
	}

	keys := sortedKeys(raw)
	fields := make([]result.Field, 0, len(keys))
	for _, k := range keys {
		f, err := toField(k, raw[k])
		if err != nil {
			return result.Record{}, fmt.Errorf("%s: %w", path, err)
		}
		fields = append(fields, f)
	}
	return result.NewRecord(fields...)
}

// keyedByFigure reports whether raw maps figure names to metric maps rather
// than metric names to values. Every nested map must itself hold only
// metrics, so a flat file with a misspelled "value" key fails to parse.
func keyedByFigure(raw map[string]any) bool {
	for _, v := range raw {
		obj, ok := v.(map[string]any)
		if !ok || len(obj) == 0 {
			return false
		}
		if _, has := obj["value"]; has {
			return false
		}
		for _, m := range obj {
			if !isMetric(m) {
				return false
			}
		}
	}
	return len(raw) > 0
}

// isMetric reports whether v is a number or an object carrying a value.
func isMetric(v any) bool {
	if obj, ok := v.(map[string]any); ok {
		_, has := obj["value"]
		return has
	}
	_, err := toFloat(v)
	return err == nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toField(name string, v any) (result.Field, error) {
	if obj, ok := v.(map[string]any); ok {
		val, err := toFloat(obj["value"])
		if err != nil {
			return result.Field{}, fmt.Errorf("metric %q: %w", name, err)
		}
		label, _ := obj["label"].(string)
		return result.Field{Name: name, Label: label, Value: val}, nil
	}
	val, err := toFloat(v)
	if err != nil {
		return result.Field{}, fmt.Errorf("metric %q: %w", name, err)
	}
	return result.Field{Name: name, Value: val}, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

func parseCSV(data []byte, path string) (result.Record, error) {
	cr := csv.NewReader(strings.NewReader(string(data)))
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return result.Record{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) < 2 {
		return result.Record{}, fmt.Errorf("parsing %s: want a header and one data row", path)
	}

	header, row := records[0], records[1]
	fields := make([]result.Field, 0, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" || i >= len(row) {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return result.Record{}, fmt.Errorf("%s column %q: %w", path, h, err)
		}
		fields = append(fields, result.Field{Name: h, Value: v})
	}
	return result.NewRecord(fields...)
}
