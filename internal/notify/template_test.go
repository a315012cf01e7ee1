package notify

import (
	"math"
	"strings"
	"testing"
)

func failVerdict() map[string]string {
	return map[string]string{
		"status":  "fail",
		"figure":  "figure18",
		"stage":   "compare",
		"cause":   "Page walk speedup does not match reference",
		"summary": "Figure 18: Page walk speedup does not match reference",
	}
}

func TestRender_Basic(t *testing.T) {
	data := BuildTemplateData(map[string]any{"hostname": "bench-01"}, failVerdict())

	result, err := Render(`{{verdict.status | upper}} {{globals.hostname}}: {{verdict.cause}}`, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "FAIL bench-01: Page walk speedup does not match reference"; result != want {
		t.Errorf("result = %q, want %q", result, want)
	}
}

func TestRender_StatusEmoji(t *testing.T) {
	tests := []struct {
		status string
		emoji  string
	}{
		{"pass", "\U0001f7e2"},
		{"fail", "\U0001f534"},
		{"unknown", "❓"},
	}
	for _, tt := range tests {
		data := BuildTemplateData(nil, map[string]string{"status": tt.status})
		result, err := Render(`{{verdict.status_emoji}}`, data)
		if err != nil {
			t.Fatalf("unexpected error for %s: %v", tt.status, err)
		}
		if result != tt.emoji {
			t.Errorf("status=%s: emoji = %q, want %q", tt.status, result, tt.emoji)
		}
	}
}

func TestRender_DefaultTemplate(t *testing.T) {
	data := BuildTemplateData(map[string]any{"hostname": "bench-01"}, map[string]string{
		"status":  "pass",
		"summary": "2 figures reproduced",
	})
	result, err := Render(DefaultTemplate, data)
	if err != nil {
		t.Fatal(err)
	}
	if want := "\U0001f7e2 PASS on bench-01: 2 figures reproduced"; result != want {
		t.Errorf("result = %q, want %q", result, want)
	}
}

func TestRender_DefaultTemplateFigures(t *testing.T) {
	data := BuildTemplateData(map[string]any{"hostname": "bench-01"}, failVerdict(),
		Figure{Name: "figure18", Title: "Figure 18", Stage: "compare", Cause: "Page walk speedup does not match reference",
			Metric: "Page walk speedup", Measured: 1.5, Reference: 1.2243, Ratio: 1.2252},
		Figure{Name: "kernel_inst", Title: "Kernel instructions", Stage: "collect", Cause: "data collection failed"},
	)
	result, err := Render(DefaultTemplate, data)
	if err != nil {
		t.Fatal(err)
	}
	want := "\U0001f534 FAIL on bench-01: Figure 18: Page walk speedup does not match reference\n" +
		"✗ Figure 18: Page walk speedup measured 1.5000, reference 1.2243 (+22.5%)\n" +
		"✗ Kernel instructions [collect]: data collection failed"
	if result != want {
		t.Errorf("result =\n%s\nwant\n%s", result, want)
	}
}

func TestRender_PassingFigureLine(t *testing.T) {
	data := BuildTemplateData(map[string]any{"hostname": "bench-01"},
		map[string]string{"status": "pass", "summary": "Figure 18 reproduced within tolerance"},
		Figure{Name: "figure18", Title: "Figure 18", OK: true},
	)
	result, err := Render(DefaultTemplate, data)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(result, "\n✓ Figure 18") {
		t.Errorf("result = %q", result)
	}
}

func TestDeviation(t *testing.T) {
	tests := []struct {
		ratio float64
		want  string
	}{
		{1.2252, "+22.5%"},
		{0.8, "-20.0%"},
		{1, "+0.0%"},
		{math.NaN(), "n/a"},
		{math.Inf(1), "n/a"},
	}
	for _, tt := range tests {
		if got := deviation(tt.ratio); got != tt.want {
			t.Errorf("deviation(%v) = %q, want %q", tt.ratio, got, tt.want)
		}
	}
	if got := num(math.NaN()); got != "NaN" {
		t.Errorf("num(NaN) = %q", got)
	}
}

func TestRender_SprigFunctions(t *testing.T) {
	data := BuildTemplateData(nil, map[string]string{"figure": "fig"})

	result, err := Render(`{{verdict.figure | upper | repeat 2}}`, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "FIGFIG" {
		t.Errorf("result = %q, want %q", result, "FIGFIG")
	}
}

func TestRender_InvalidTemplate(t *testing.T) {
	data := BuildTemplateData(nil, failVerdict())

	if _, err := Render(`{{verdict.status | nonexistent}}`, data); err == nil {
		t.Fatal("expected error for invalid template function")
	}
}

func TestRender_DefaultSprigFunc(t *testing.T) {
	data := BuildTemplateData(nil, map[string]string{"status": "pass"})

	result, err := Render(`{{verdict.cause | default "none"}}`, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "none" {
		t.Errorf("result = %q, want %q", result, "none")
	}
}

func TestBuildTemplateData_DoesNotMutateInput(t *testing.T) {
	in := map[string]string{"status": "pass"}
	BuildTemplateData(nil, in)
	if _, ok := in["status_emoji"]; ok {
		t.Error("input verdict map was mutated")
	}
}
