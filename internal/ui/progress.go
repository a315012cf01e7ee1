package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sznuper/repro/internal/runner"
)

// StageMsg reports that a figure entered a pipeline stage.
type StageMsg struct {
	Figure string
	Stage  runner.Stage
}

// DoneMsg carries the finished report and ends the program.
type DoneMsg struct {
	Report runner.Report
}

// Progress is a bubbletea model that shows a spinner next to the running
// figure and stage, and a ✓ line for each figure already past compare.
type Progress struct {
	spinner spinner.Model
	styles  Styles
	figure  string
	stage   runner.Stage
	done    []string
	report  *runner.Report
}

// NewProgress creates the progress model.
func NewProgress(st Styles) Progress {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = st.Spinner
	return Progress{spinner: sp, styles: st}
}

func (m Progress) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Progress) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StageMsg:
		if m.figure != "" && msg.Figure != m.figure {
			m.done = append(m.done, m.figure)
		}
		m.figure = msg.Figure
		m.stage = msg.Stage
		return m, nil

	case DoneMsg:
		m.report = &msg.Report
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View shows the finished figures and the current stage. It is empty once
// the report arrives; the caller prints the full verdict afterwards.
func (m Progress) View() string {
	if m.report != nil {
		return ""
	}
	var b strings.Builder
	for _, f := range m.done {
		fmt.Fprintf(&b, "%s %s\n", m.styles.Pass.Render("✓"), f)
	}
	if m.figure == "" {
		fmt.Fprintf(&b, "%s starting\n", m.spinner.View())
	} else {
		fmt.Fprintf(&b, "%s %s: %s\n", m.spinner.View(), m.figure, m.styles.Dim.Render(string(m.stage)))
	}
	return b.String()
}

// RunWithProgress calls run with an observer wired to a spinner drawn on out,
// and returns run's report once both have finished.
func RunWithProgress(out io.Writer, st Styles, run func(runner.Observer) runner.Report) (runner.Report, error) {
	p := tea.NewProgram(NewProgress(st), tea.WithOutput(out), tea.WithInput(nil))

	reports := make(chan runner.Report, 1)
	go func() {
		rep := run(func(figure string, stage runner.Stage) {
			p.Send(StageMsg{Figure: figure, Stage: stage})
		})
		reports <- rep
		p.Send(DoneMsg{Report: rep})
	}()

	if _, err := p.Run(); err != nil {
		return <-reports, fmt.Errorf("progress display: %w", err)
	}
	return <-reports, nil
}
