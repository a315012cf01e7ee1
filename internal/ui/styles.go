// Package ui renders verification progress and verdicts for the terminal.
package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Semantic colors.
var (
	Success = lipgloss.Color("#8BC34A")
	Failure = lipgloss.Color("#e53935")
	Info    = lipgloss.Color("#2196F3")
	Muted   = lipgloss.Color("#7a8594")
)

// Styles holds the styles used for verdict output. The zero value renders
// plain text.
type Styles struct {
	Pass    lipgloss.Style
	Fail    lipgloss.Style
	Title   lipgloss.Style
	Dim     lipgloss.Style
	Spinner lipgloss.Style
	Border  lipgloss.Style
}

// NewStyles returns colored styles, or plain ones when color is false.
func NewStyles(color bool) Styles {
	if !color {
		plain := lipgloss.NewStyle()
		return Styles{Pass: plain, Fail: plain, Title: plain, Dim: plain, Spinner: plain, Border: plain}
	}
	return Styles{
		Pass:    lipgloss.NewStyle().Foreground(Success).Bold(true),
		Fail:    lipgloss.NewStyle().Foreground(Failure).Bold(true),
		Title:   lipgloss.NewStyle().Bold(true),
		Dim:     lipgloss.NewStyle().Foreground(Muted),
		Spinner: lipgloss.NewStyle().Foreground(Info),
		Border:  lipgloss.NewStyle().Foreground(Muted),
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
