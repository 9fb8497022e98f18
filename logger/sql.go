package logger

import (
	"fmt"
	"io"
	"strings"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// SQLFormatter emits one INSERT statement per logged item, targeting a
// "linksdb" table (component design §6: "SQL INSERT statements").
type SQLFormatter struct {
	w     io.Writer
	table string
}

func NewSQLFormatter(w io.Writer, table string) *SQLFormatter {
	if table == "" {
		table = "linksdb"
	}
	return &SQLFormatter{w: w, table: table}
}

func (f *SQLFormatter) Start() {}

func (f *SQLFormatter) WriteItem(w urlitem.Wire) {
	fmt.Fprintf(f.w, "INSERT INTO %s (parenturl, url, valid, warning) VALUES (%s, %s, %s, %s);\n",
		f.table, sqlQuote(w.ParentURL), sqlQuote(w.Canonical), sqlBool(w.Valid), sqlQuote(warningSummary(w.Warnings)))
}

func (f *SQLFormatter) End(Summary) {}

func sqlQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqlBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func warningSummary(warnings []urlitem.Warning) string {
	if len(warnings) == 0 {
		return ""
	}
	return string(warnings[0].Tag)
}
