package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExpand(t *testing.T) {
	vars := Vars{
		RepoDir: "/srv/emt",
		EvalDir: "/srv/eval",
		Figure:  "figure18",
		Globals: map[string]any{"thp": "never"},
	}

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"{{.RepoDir}}/VM-Bench", "/srv/emt/VM-Bench"},
		{"{{.EvalDir}}/refs/{{.Figure}}.ref.yaml", "/srv/eval/refs/figure18.ref.yaml"},
		{"--thp={{.Globals.thp}}", "--thp=never"},
		{"{{.Figure | upper}}", "FIGURE18"},
		{`{{.Globals.missing | default "always"}}`, "always"},
	}
	for _, tt := range tests {
		got, err := Expand(tt.in, vars)
		if err != nil {
			t.Errorf("Expand(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Expand(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestExpand_Errors(t *testing.T) {
	if _, err := Expand("{{.RepoDir", Vars{}); err == nil {
		t.Error("expected parse error")
	}
	if _, err := Expand("{{.Nope}}", Vars{}); err == nil {
		t.Error("expected execution error for unknown field")
	}
}

func TestExpandAll(t *testing.T) {
	got, err := ExpandAll([]string{"python", "ipc_with_inst.py", "--output", "{{.RepoDir}}/ipc_stats"}, Vars{RepoDir: "/r"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"python", "ipc_with_inst.py", "--output", "/r/ipc_stats"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ExpandAll mismatch (-want +got):\n%s", diff)
	}
}
