package logger

import (
	"fmt"
	"io"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// DOTFormatter emits the crawl graph in Graphviz's DOT language
// (component design §6: "DOT"), coloring edges by validity.
type DOTFormatter struct {
	w io.Writer
}

func NewDOTFormatter(w io.Writer) *DOTFormatter { return &DOTFormatter{w: w} }

func (f *DOTFormatter) Start() {
	fmt.Fprintln(f.w, "digraph linkchecker {")
}

func (f *DOTFormatter) WriteItem(w urlitem.Wire) {
	if w.ParentURL == "" {
		return
	}
	color := "black"
	if w.Checked && !w.Valid {
		color = "red"
	}
	fmt.Fprintf(f.w, "  %q -> %q [color=%s];\n", w.ParentURL, w.Canonical, color)
}

func (f *DOTFormatter) End(Summary) {
	fmt.Fprintln(f.w, "}")
}
