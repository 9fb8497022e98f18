package logger

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/linkchecker-go/linkcheck/urlitem"
)

// TextFormatter renders the teacher's plain-text style, optionally colored
// with lipgloss when the destination is a terminal (component design §6:
// "text (human-readable, optional ANSI color)").
type TextFormatter struct {
	w     io.Writer
	color bool

	validStyle   lipgloss.Style
	invalidStyle lipgloss.Style
	warnStyle    lipgloss.Style
}

// NewTextFormatter builds a formatter writing to w; color enables ANSI
// styling (the caller decides this via terminal capability detection,
// e.g. golang.org/x/term.IsTerminal).
func NewTextFormatter(w io.Writer, color bool) *TextFormatter {
	return &TextFormatter{
		w:            w,
		color:        color,
		validStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		invalidStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warnStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (f *TextFormatter) Start() {}

func (f *TextFormatter) WriteItem(w urlitem.Wire) {
	status := "valid"
	if !w.Checked {
		status = "unchecked"
	} else if !w.Valid {
		status = "invalid"
	}
	if f.color {
		status = f.colorize(status, w)
	}

	fmt.Fprintf(f.w, "%s %s\n", status, w.Canonical)
	if w.ParentURL != "" {
		fmt.Fprintf(f.w, "  from %s:%d\n", w.ParentURL, w.ParentLine)
	}
	for _, info := range w.Info {
		fmt.Fprintf(f.w, "  info: %s\n", info)
	}
	for _, warn := range w.Warnings {
		line := fmt.Sprintf("  warning %s: %s", warn.Tag, warn.Text)
		if f.color {
			line = f.warnStyle.Render(line)
		}
		fmt.Fprintln(f.w, line)
	}
}

func (f *TextFormatter) colorize(status string, w urlitem.Wire) string {
	switch {
	case !w.Checked:
		return status
	case w.Valid:
		return f.validStyle.Render(status)
	default:
		return f.invalidStyle.Render(status)
	}
}

func (f *TextFormatter) End(s Summary) {
	fmt.Fprintf(f.w, "Checked %d URLs, %d invalid, %d cached\n", s.Checked, s.Invalid, s.Cached)
}
