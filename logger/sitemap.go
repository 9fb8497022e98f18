package logger

import (
	"fmt"
	"io"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// SitemapFormatter emits sitemap-xml for every valid, intern item
// (component design §6: "sitemap-xml").
type SitemapFormatter struct {
	w io.Writer
}

func NewSitemapFormatter(w io.Writer) *SitemapFormatter { return &SitemapFormatter{w: w} }

func (f *SitemapFormatter) Start() {
	fmt.Fprintln(f.w, `<?xml version="1.0" encoding="utf-8"?>`)
	fmt.Fprintln(f.w, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
}

func (f *SitemapFormatter) WriteItem(w urlitem.Wire) {
	if !w.Valid || !w.Intern {
		return
	}
	fmt.Fprintf(f.w, "  <url><loc>%s</loc></url>\n", xmlEscape(w.Canonical))
}

func (f *SitemapFormatter) End(Summary) {
	fmt.Fprintln(f.w, "</urlset>")
}
