// Package result provides a flat, CI-friendly export of a run's broken
// links, built from the richer urlitem.Wire snapshots the engine and
// logger packages already carry.
package result

import (
	"time"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// LinkResult is one broken link, flattened for JSON/CSV export.
type LinkResult struct {
	URL        string           `json:"url"`
	ParentURL  string           `json:"parent_url,omitempty"`
	Tag        urlitem.WarningTag `json:"warning_tag,omitempty"`
	Message    string           `json:"message,omitempty"`
	IsExternal bool             `json:"is_external"`
}

// CrawlStats contains aggregate statistics for a run.
type CrawlStats struct {
	TotalChecked int           `json:"total_checked"`
	BrokenCount  int           `json:"broken_count"`
	Duration     time.Duration `json:"duration"`
}

// Result is the complete flat export of a run.
type Result struct {
	BrokenLinks []LinkResult `json:"broken_links"`
	Stats       CrawlStats   `json:"stats"`
}

// FromWires builds a Result from every wire the logger received during a
// run, keeping only the invalid ones as BrokenLinks.
func FromWires(wires []urlitem.Wire, duration time.Duration) *Result {
	res := &Result{Stats: CrawlStats{TotalChecked: len(wires), Duration: duration}}
	for _, w := range wires {
		if w.Valid {
			continue
		}
		res.Stats.BrokenCount++
		lr := LinkResult{
			URL:        w.Canonical,
			ParentURL:  w.ParentURL,
			IsExternal: !w.Intern,
		}
		if len(w.Warnings) > 0 {
			lr.Tag = w.Warnings[0].Tag
			lr.Message = w.Warnings[0].Text
		}
		res.BrokenLinks = append(res.BrokenLinks, lr)
	}
	return res
}
