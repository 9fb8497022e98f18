package logger

import (
	"fmt"
	"io"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// XMLFormatter emits one <url> element per logged item inside a single
// <linkchecker> document (component design §6: "XML").
type XMLFormatter struct {
	w io.Writer
}

func NewXMLFormatter(w io.Writer) *XMLFormatter { return &XMLFormatter{w: w} }

func (f *XMLFormatter) Start() {
	fmt.Fprintln(f.w, `<?xml version="1.0" encoding="utf-8"?>`)
	fmt.Fprintln(f.w, `<linkchecker>`)
}

func (f *XMLFormatter) WriteItem(w urlitem.Wire) {
	fmt.Fprintf(f.w, `  <url valid=%q parent=%q anchor=%q>`+"\n", boolAttr(w.Valid), w.ParentURL, w.Anchor)
	fmt.Fprintf(f.w, "    <canonical>%s</canonical>\n", xmlEscape(w.Canonical))
	for _, info := range w.Info {
		fmt.Fprintf(f.w, "    <info>%s</info>\n", xmlEscape(info))
	}
	for _, warn := range w.Warnings {
		fmt.Fprintf(f.w, "    <warning tag=%q>%s</warning>\n", string(warn.Tag), xmlEscape(warn.Text))
	}
	fmt.Fprintln(f.w, "  </url>")
}

func (f *XMLFormatter) End(s Summary) {
	fmt.Fprintf(f.w, "  <summary checked=\"%d\" invalid=\"%d\" cached=\"%d\"/>\n", s.Checked, s.Invalid, s.Cached)
	fmt.Fprintln(f.w, "</linkchecker>")
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func xmlEscape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '&':
			out = append(out, []byte("&amp;")...)
		case '<':
			out = append(out, []byte("&lt;")...)
		case '>':
			out = append(out, []byte("&gt;")...)
		case '"':
			out = append(out, []byte("&quot;")...)
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
