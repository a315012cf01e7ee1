package result

import (
	"fmt"
	"slices"
	"sort"
)

// Field is a single named scalar metric.
type Field struct {
	Name  string
	Label string
	Value float64
}

// Record is an ordered, immutable set of named metrics. Both measured results
// and reference expectations use it, so comparisons are always field by field
// between records of the same shape.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord builds a record from fields in the given order.
// Field names must be non-empty and unique.
func NewRecord(fields ...Field) (Record, error) {
	r := Record{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return Record{}, fmt.Errorf("record field with empty name")
		}
		if _, dup := r.index[f.Name]; dup {
			return Record{}, fmt.Errorf("duplicate record field %q", f.Name)
		}
		r.index[f.Name] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r, nil
}

// FromMap builds a record from name → value pairs, ordered by name.
func FromMap(values map[string]float64) Record {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, len(names))
	for i, name := range names {
		fields[i] = Field{Name: name, Value: values[name]}
	}
	r, _ := NewRecord(fields...)
	return r
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Fields returns a copy of the fields in record order.
func (r Record) Fields() []Field { return slices.Clone(r.fields) }

// Names returns field names in record order.
func (r Record) Names() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Value returns the value of the named field.
func (r Record) Value(name string) (float64, bool) {
	i, ok := r.index[name]
	if !ok {
		return 0, false
	}
	return r.fields[i].Value, true
}

// Label returns the human label of a field, falling back to its name.
func (r Record) Label(name string) string {
	if i, ok := r.index[name]; ok && r.fields[i].Label != "" {
		return r.fields[i].Label
	}
	return name
}

// Has reports whether the record carries the named field.
func (r Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}
