package logger

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// CSVFormatter writes one row per logged item (component design §6: "CSV
// (configurable separator)").
type CSVFormatter struct {
	w *csv.Writer
}

// NewCSVFormatter builds a formatter writing CSV rows to w, using sep as
// the field separator (',' by default).
func NewCSVFormatter(w io.Writer, sep rune) *CSVFormatter {
	cw := csv.NewWriter(w)
	if sep != 0 {
		cw.Comma = sep
	}
	return &CSVFormatter{w: cw}
}

func (f *CSVFormatter) Start() {
	_ = f.w.Write([]string{"parenturl", "reference", "canonical", "anchor", "valid", "info", "warnings", "size", "duration_ms"})
}

func (f *CSVFormatter) WriteItem(w urlitem.Wire) {
	_ = f.w.Write([]string{
		w.ParentURL,
		w.Raw,
		w.Canonical,
		w.Anchor,
		strconv.FormatBool(w.Valid),
		joinInfo(w.Info),
		joinWarnings(w.Warnings),
		strconv.FormatInt(w.Size, 10),
		strconv.FormatInt(w.Duration.Milliseconds(), 10),
	})
}

func (f *CSVFormatter) End(Summary) {
	f.w.Flush()
}

func joinInfo(info []string) string {
	out := ""
	for i, s := range info {
		if i > 0 {
			out += "; "
		}
		out += s
	}
	return out
}

func joinWarnings(warnings []urlitem.Warning) string {
	out := ""
	for i, w := range warnings {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s: %s", w.Tag, w.Text)
	}
	return out
}
