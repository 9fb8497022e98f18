package urlitem

import "time"

// Wire is the immutable snapshot of an Item handed to result loggers.
// Loggers never see the live Item (component design §4.8: "Each logger
// formatter receives an immutable snapshot... never the live item"), which
// keeps formatter code free of any synchronization concern and lets the
// logger's global mutex guard only the act of publishing, not the whole
// check.
type Wire struct {
	Raw        string
	ParentURL  string
	ParentLine int
	ParentCol  int
	Depth      int

	Canonical string
	Scheme    string
	Anchor    string
	Intern    bool

	Valid   bool
	Checked bool // false only if Validity == Unchecked, e.g. an interrupted item

	Info     []string
	Warnings []Warning

	Cached      bool
	ContentType string
	Size        int64
	Duration    time.Duration

	Name string // display label; defaults to Canonical when extraction supplies none
}

// ToWire produces an immutable snapshot of it. Slices are copied so that
// later mutation of the live item cannot be observed by a logger holding
// an older Wire value.
func (it *Item) ToWire() Wire {
	w := Wire{
		Raw:         it.Raw,
		ParentURL:   it.ParentURL,
		ParentLine:  it.ParentLine,
		ParentCol:   it.ParentCol,
		Depth:       it.Depth,
		Canonical:   it.Canonical,
		Scheme:      it.Scheme,
		Anchor:      it.Anchor,
		Intern:      it.Intern,
		Valid:       it.Validity == Valid,
		Checked:     it.Validity != Unchecked,
		Cached:      it.Cached,
		ContentType: it.ContentType,
		Size:        it.Size,
		Duration:    it.Duration,
		Name:        it.Canonical,
	}
	if len(it.Info) > 0 {
		w.Info = append([]string(nil), it.Info...)
	}
	if len(it.Warnings) > 0 {
		w.Warnings = append([]Warning(nil), it.Warnings...)
	}
	return w
}

// ShouldLog implements the filtering policy of component design §4.8:
//
//	complete=true            -> log all
//	cached and valid         -> skip
//	verbose=true              -> log
//	unignored warnings        -> log (if warningsEnabled)
//	not valid                 -> log
func (w Wire) ShouldLog(complete, verbose, warningsEnabled bool, ignored map[WarningTag]bool) bool {
	if complete {
		return true
	}
	if w.Cached && w.Valid {
		return false
	}
	if verbose {
		return true
	}
	hasWarnings := false
	for _, warn := range w.Warnings {
		if !ignored[warn.Tag] {
			hasWarnings = true
			break
		}
	}
	if warningsEnabled && hasWarnings {
		return true
	}
	return !w.Valid
}
