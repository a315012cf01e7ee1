package ui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/sznuper/repro/internal/result"
	"github.com/sznuper/repro/internal/runner"
	"github.com/sznuper/repro/internal/tolerance"
)

// RenderResult formats one figure's outcome: a ✓/✗ headline, the failing
// stage and cause, and a measured-vs-reference table when both are known.
func RenderResult(r runner.Result, st Styles) string {
	var b strings.Builder

	name := r.Title
	if r.Title != r.Figure {
		name = fmt.Sprintf("%s (%s)", r.Title, r.Figure)
	}

	if r.OK() {
		fmt.Fprintf(&b, "%s %s\n", st.Pass.Render("✓"), st.Title.Render(name))
	} else {
		fmt.Fprintf(&b, "%s %s\n", st.Fail.Render("✗"), st.Title.Render(name))
		fmt.Fprintf(&b, "  Error (%s): %s\n", r.ErrStage, r.Cause)
		if r.Err != nil && r.Err.Error() != r.Cause && !strings.Contains(r.Cause, r.Err.Error()) {
			fmt.Fprintf(&b, "  %s\n", st.Dim.Render(r.Err.Error()))
		}
		if s := strings.TrimSpace(r.Stderr); s != "" {
			fmt.Fprintf(&b, "  Stderr: %s\n", st.Dim.Render(s))
		}
	}

	measured, mok := r.Measured.Record()
	reference, rok := r.Reference.Record()
	if mok && rok {
		b.WriteString(indent(metricTable(measured, reference, r, st), "  "))
		b.WriteString("\n")
	}
	if r.Duration > 0 {
		fmt.Fprintf(&b, "  %s\n", st.Dim.Render(fmt.Sprintf("tolerance ±%g%%, took %s", r.Tolerance*100, r.Duration.Round(time.Millisecond))))
	}
	return b.String()
}

// RenderReport formats every figure of a report followed by the verdict line
// and the notification outcome.
func RenderReport(rep runner.Report, st Styles) string {
	var b strings.Builder
	for _, r := range rep.Results {
		b.WriteString(RenderResult(r, st))
	}

	if rep.OK() {
		fmt.Fprintf(&b, "%s %s\n", st.Pass.Render("PASS"), rep.Summary())
	} else {
		fmt.Fprintf(&b, "%s %s\n", st.Fail.Render("FAIL"), rep.Summary())
	}

	if rep.NotifyErr != nil {
		fmt.Fprintf(&b, "%s notify: %s\n", st.Fail.Render("✗"), rep.NotifyErr)
	}
	if len(rep.Notified) > 0 {
		label := "Notified"
		if rep.DryRun {
			label = "Would notify"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, strings.Join(rep.Notified, ", "))
	}
	return b.String()
}

func metricTable(measured, reference result.Record, r runner.Result, st Styles) string {
	rows := make([][]string, 0, reference.Len())
	failed := -1
	for i, f := range reference.Fields() {
		m, ok := measured.Value(f.Name)
		mv := "-"
		ratio := "-"
		if ok {
			mv = formatValue(m)
			ratio = formatValue(tolerance.Ratio(m, f.Value))
		}
		if f.Name == r.Verdict.Field && !r.OK() {
			failed = i
		}
		rows = append(rows, []string{reference.Label(f.Name), mv, formatValue(f.Value), ratio})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.Border).
		Headers("Metric", "Measured", "Reference", "Ratio").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == failed {
				return s.Inherit(st.Fail)
			}
			return s
		}).
		String()
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.4f", v)
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
