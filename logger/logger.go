// Package logger implements the thread-safe result logger of component
// design §4.8: a fan-out over pluggable output formatters, each receiving
// an immutable urlitem.Wire snapshot, filtered by the single shared
// ShouldLog policy.
package logger

import (
	"sync"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// Summary is the end-of-run totals every formatter's End receives.
type Summary struct {
	Checked int
	Invalid int
	Cached  int
}

// Formatter is one output format (component design §6: "text, HTML, CSV,
// XML, GML, DOT, SQL INSERT statements, sitemap-xml, blacklist").
type Formatter interface {
	Start()
	WriteItem(w urlitem.Wire)
	End(Summary)
}

// Logger fans every logged item out to its formatters under a single
// mutex, guaranteeing log line order matches a global serialization of
// log_url calls (testable property §8.4) even though multiple workers
// call LogItem concurrently.
type Logger struct {
	mu         sync.Mutex
	formatters []Formatter

	complete        bool
	verbose         bool
	warningsEnabled bool
	ignored         map[urlitem.WarningTag]bool

	checked int
	invalid int
	cached  int
}

// Options configures the filtering policy shared by every formatter.
type Options struct {
	Complete        bool // log every item, bypassing the filter
	Verbose         bool
	WarningsEnabled bool
	IgnoredWarnings map[urlitem.WarningTag]bool
}

// New builds a Logger fanning out to formatters.
func New(opts Options, formatters ...Formatter) *Logger {
	return &Logger{
		formatters:      formatters,
		complete:        opts.Complete,
		verbose:         opts.Verbose,
		warningsEnabled: opts.WarningsEnabled,
		ignored:         opts.IgnoredWarnings,
	}
}

// Start begins every formatter's output (document headers, etc.).
func (l *Logger) Start() {
	for _, f := range l.formatters {
		f.Start()
	}
}

// LogItem implements engine.ResultSink: filters w through ShouldLog and,
// if it survives, fans it out to every formatter while holding the
// logger's mutex for the duration of the write.
func (l *Logger) LogItem(w urlitem.Wire) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.checked++
	if !w.Valid {
		l.invalid++
	}
	if w.Cached {
		l.cached++
	}

	if !w.ShouldLog(l.complete, l.verbose, l.warningsEnabled, l.ignored) {
		return
	}
	for _, f := range l.formatters {
		f.WriteItem(w)
	}
}

// End closes every formatter's output with the run's summary counts.
func (l *Logger) End() {
	l.mu.Lock()
	summary := Summary{Checked: l.checked, Invalid: l.invalid, Cached: l.cached}
	l.mu.Unlock()

	for _, f := range l.formatters {
		f.End(summary)
	}
}
