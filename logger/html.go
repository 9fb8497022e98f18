package logger

import (
	"fmt"
	"io"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// HTMLFormatter emits a standalone document with colored cells per row
// (component design §6: "HTML (standalone document with colored cells)").
type HTMLFormatter struct {
	w io.Writer
}

func NewHTMLFormatter(w io.Writer) *HTMLFormatter { return &HTMLFormatter{w: w} }

func (f *HTMLFormatter) Start() {
	fmt.Fprintln(f.w, "<html><head><title>LinkChecker results</title></head><body>")
	fmt.Fprintln(f.w, "<table border=\"1\">")
	fmt.Fprintln(f.w, "<tr><th>URL</th><th>Parent</th><th>Result</th></tr>")
}

func (f *HTMLFormatter) WriteItem(w urlitem.Wire) {
	color := "#d4edda"
	status := "valid"
	if w.Checked && !w.Valid {
		color = "#f8d7da"
		status = "invalid"
	} else if !w.Checked {
		color = "#e2e3e5"
		status = "unchecked"
	}
	fmt.Fprintf(f.w, "<tr style=\"background-color:%s\"><td>%s</td><td>%s</td><td>%s", color, xmlEscape(w.Canonical), xmlEscape(w.ParentURL), status)
	for _, warn := range w.Warnings {
		fmt.Fprintf(f.w, "<br>%s: %s", warn.Tag, xmlEscape(warn.Text))
	}
	fmt.Fprintln(f.w, "</td></tr>")
}

func (f *HTMLFormatter) End(s Summary) {
	fmt.Fprintf(f.w, "</table><p>Checked %d, invalid %d, cached %d</p>\n", s.Checked, s.Invalid, s.Cached)
	fmt.Fprintln(f.w, "</body></html>")
}
