package result

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNewRecord_Order(t *testing.T) {
	r, err := NewRecord(
		Field{Name: "ipc_speedup", Label: "IPC speedup", Value: 1.05},
		Field{Name: "e2e_speedup", Value: 1.01},
	)
	if err != nil {
		t.Fatalf("NewRecord: %v", err)
	}
	if diff := cmp.Diff([]string{"ipc_speedup", "e2e_speedup"}, r.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if v, ok := r.Value("e2e_speedup"); !ok || v != 1.01 {
		t.Errorf("Value(e2e_speedup) = %v, %v", v, ok)
	}
	if got := r.Label("ipc_speedup"); got != "IPC speedup" {
		t.Errorf("Label = %q", got)
	}
	if got := r.Label("e2e_speedup"); got != "e2e_speedup" {
		t.Errorf("Label fallback = %q", got)
	}
}

func TestNewRecord_Rejects(t *testing.T) {
	if _, err := NewRecord(Field{Name: "a"}, Field{Name: "a"}); err == nil {
		t.Error("expected duplicate name error")
	}
	if _, err := NewRecord(Field{Name: ""}); err == nil {
		t.Error("expected empty name error")
	}
}

func TestRecord_FieldsIsCopy(t *testing.T) {
	r, _ := NewRecord(Field{Name: "a", Value: 1})
	f := r.Fields()
	f[0].Value = 99
	if v, _ := r.Value("a"); v != 1 {
		t.Errorf("record mutated through Fields(): %v", v)
	}
}

func TestFromMap_SortedNames(t *testing.T) {
	r := FromMap(map[string]float64{"b": 2, "a": 1, "c": 3})
	if diff := cmp.Diff([]string{"a", "b", "c"}, r.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}
