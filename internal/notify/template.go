package notify

import (
	"bytes"
	"fmt"
	"maps"
	"math"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// DefaultTemplate is used when neither the config nor the target sets one.
// It leads with the verdict and lists one line per figure that ran; a figure
// that failed its comparison shows the offending metric.
const DefaultTemplate = `{{verdict.status_emoji}} {{verdict.status | upper}} on {{globals.hostname}}: {{verdict.summary}}
{{- range figures}}
{{if .OK}}✓{{else}}✗{{end}} {{.Title}}
{{- if .Metric}}: {{.Metric}} measured {{num .Measured}}, reference {{num .Reference}} ({{deviation .Ratio}}){{else if .Cause}} [{{.Stage}}]: {{.Cause}}{{end}}
{{- end}}`

// Figure is one figure's outcome as exposed to templates via {{figures}}.
// Metric and the values are set only for a failed comparison.
type Figure struct {
	Name      string
	Title     string
	OK        bool
	Stage     string
	Cause     string
	Metric    string
	Measured  float64
	Reference float64
	Ratio     float64
}

// TemplateData holds all data available to notification templates.
type TemplateData struct {
	Globals map[string]any
	Verdict map[string]string
	Figures []Figure
}

// BuildTemplateData constructs template data from a run verdict, the
// per-figure outcomes and the config globals. It adds the derived
// status_emoji key.
func BuildTemplateData(globals map[string]any, verdict map[string]string, figures ...Figure) TemplateData {
	v := make(map[string]string, len(verdict)+1)
	maps.Copy(v, verdict)
	v["status_emoji"] = statusEmoji(v["status"])

	if globals == nil {
		globals = map[string]any{}
	}
	return TemplateData{
		Globals: globals,
		Verdict: v,
		Figures: figures,
	}
}

func statusEmoji(status string) string {
	switch status {
	case "fail":
		return "\U0001f534" // 🔴
	case "pass":
		return "\U0001f7e2" // 🟢
	default:
		return "❓" // ❓
	}
}

// num formats a metric value the way the report table does.
func num(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4f", v)
}

// deviation formats a measured/reference ratio as a signed percentage,
// e.g. 1.225 → "+22.5%".
func deviation(ratio float64) string {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", (ratio-1)*100)
}

// Render executes a Go text/template string with Sprig functions plus the
// accessors verdict, globals and figures and the num and deviation
// formatters, so {{verdict.cause}} works.
func Render(tmplStr string, data TemplateData) (string, error) {
	funcMap := sprig.TxtFuncMap()
	funcMap["verdict"] = func() map[string]string { return data.Verdict }
	funcMap["globals"] = func() map[string]any { return data.Globals }
	funcMap["figures"] = func() []Figure { return data.Figures }
	funcMap["num"] = num
	funcMap["deviation"] = deviation

	t, err := template.New("notify").Funcs(funcMap).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}

	return buf.String(), nil
}
