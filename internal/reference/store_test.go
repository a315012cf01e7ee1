package reference

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBuiltin_Figure18(t *testing.T) {
	rec, err := Builtin().Load(context.Background(), "figure18")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"ipc_speedup", "e2e_speedup", "pgwalk_speedup"}, rec.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if v, _ := rec.Value("pgwalk_speedup"); v != 1.224302584 {
		t.Errorf("pgwalk_speedup = %v", v)
	}
	if rec.Label("pgwalk_speedup") != "Page walk speedup" {
		t.Errorf("label = %q", rec.Label("pgwalk_speedup"))
	}
}

func TestStatic_NotFound(t *testing.T) {
	_, err := Builtin().Load(context.Background(), "figure99")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestStatic_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Builtin().Load(ctx, "figure18"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestChain(t *testing.T) {
	override := Inline("figure18", map[string]float64{"ipc_speedup": 2})
	chain := Chain{override, nil, Builtin()}

	rec, err := chain.Load(context.Background(), "figure18")
	if err != nil {
		t.Fatal(err)
	}
	if rec.Len() != 1 {
		t.Errorf("expected inline override to win, got %v", rec.Names())
	}

	if _, err := chain.Load(context.Background(), "other"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestChain_StopsOnHardError(t *testing.T) {
	bad := File{Path: writeFile(t, "refs.yaml", "figure18: [not, a, map")}
	_, err := Chain{bad, Builtin()}.Load(context.Background(), "figure18")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want parse error", err)
	}
}

func TestFile_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"yaml nested", "refs.yaml", "figure18:\n  ipc_speedup: 1.0447\n  e2e_speedup: 1\n"},
		{"yaml flat", "refs.yml", "ipc_speedup: 1.0447\ne2e_speedup: 1\n"},
		{"json", "refs.json", `{"figure18": {"ipc_speedup": 1.0447, "e2e_speedup": 1}}`},
		{"toml", "refs.toml", "[figure18]\nipc_speedup = 1.0447\ne2e_speedup = 1\n"},
		{"csv", "refs.csv", "ipc_speedup,e2e_speedup\n1.0447,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := File{Path: writeFile(t, tt.file, tt.content)}
			rec, err := store.Load(context.Background(), "figure18")
			if err != nil {
				t.Fatal(err)
			}
			if rec.Len() != 2 {
				t.Fatalf("fields = %v", rec.Names())
			}
			if v, _ := rec.Value("ipc_speedup"); v != 1.0447 {
				t.Errorf("ipc_speedup = %v", v)
			}
			if v, _ := rec.Value("e2e_speedup"); v != 1 {
				t.Errorf("e2e_speedup = %v", v)
			}
		})
	}
}

func TestFile_LabelledValues(t *testing.T) {
	store := File{Path: writeFile(t, "refs.yaml", `
kernel_inst:
  "radix/Page Faults":
    value: 1200
    label: Page Faults (radix)
`)}
	rec, err := store.Load(context.Background(), "kernel_inst")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := rec.Value("radix/Page Faults"); v != 1200 {
		t.Errorf("value = %v", v)
	}
	if rec.Label("radix/Page Faults") != "Page Faults (radix)" {
		t.Errorf("label = %q", rec.Label("radix/Page Faults"))
	}
}

func TestFile_Missing(t *testing.T) {
	store := File{Path: filepath.Join(t.TempDir(), "nope.yaml")}
	if _, err := store.Load(context.Background(), "figure18"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFile_BadValue(t *testing.T) {
	store := File{Path: writeFile(t, "refs.yaml", "figure18:\n  ipc_speedup: fast\n")}
	if _, err := store.Load(context.Background(), "figure18"); err == nil {
		t.Error("expected error for non-numeric value")
	}
}

func TestFile_UnsupportedExtension(t *testing.T) {
	store := File{Path: writeFile(t, "refs.ini", "x=1")}
	if _, err := store.Load(context.Background(), "figure18"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestFile_MissingFigureSection(t *testing.T) {
	store := File{Path: writeFile(t, "refs.yaml", "kernel_inst:\n  \"radix/Timers\": 10\n")}
	_, err := Chain{store, Builtin()}.Load(context.Background(), "figure18")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want a hard error", err)
	}
	if !strings.Contains(err.Error(), "kernel_inst") {
		t.Errorf("err = %v, should list the sections present", err)
	}
}

func TestFile_MalformedMetricDoesNotFallBack(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"misspelled value key", "ipc_speedup: {val: 9.0}\npgwalk_speedup: {val: 9.0}\n"},
		{"misspelled value key with label", "ipc_speedup: {val: 9.0, label: IPC speedup}\n"},
		{"nested without value", "figure18:\n  ipc_speedup: {label: IPC speedup}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := File{Path: writeFile(t, "refs.yaml", tt.content)}
			rec, err := Chain{store, Builtin()}.Load(context.Background(), "figure18")
			if err == nil {
				t.Fatalf("loaded %v, want an error", rec.Names())
			}
			if errors.Is(err, ErrNotFound) {
				t.Errorf("err = %v, must not fall through to the built-in values", err)
			}
		})
	}
}
