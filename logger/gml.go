package logger

import (
	"fmt"
	"io"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// GMLFormatter emits the crawl graph in the Graph Modelling Language,
// assigning each distinct canonical URL a stable node id (component
// design §6: "GML").
type GMLFormatter struct {
	w      io.Writer
	ids    map[string]int
	edges  []string
	nextID int
}

func NewGMLFormatter(w io.Writer) *GMLFormatter {
	return &GMLFormatter{w: w, ids: make(map[string]int)}
}

func (f *GMLFormatter) Start() {
	fmt.Fprintln(f.w, "graph [")
	fmt.Fprintln(f.w, "  directed 1")
}

func (f *GMLFormatter) idFor(url string) int {
	if id, ok := f.ids[url]; ok {
		return id
	}
	id := f.nextID
	f.nextID++
	f.ids[url] = id
	fmt.Fprintf(f.w, "  node [ id %d label %q ]\n", id, url)
	return id
}

func (f *GMLFormatter) WriteItem(w urlitem.Wire) {
	target := f.idFor(w.Canonical)
	if w.ParentURL == "" {
		return
	}
	source := f.idFor(w.ParentURL)
	valid := 0
	if w.Valid {
		valid = 1
	}
	f.edges = append(f.edges, fmt.Sprintf("  edge [ source %d target %d valid %d ]", source, target, valid))
}

func (f *GMLFormatter) End(Summary) {
	for _, e := range f.edges {
		fmt.Fprintln(f.w, e)
	}
	fmt.Fprintln(f.w, "]")
}
