// Package urlitem defines the URL item data model: the lifecycle of a
// single URL check, from the moment a reference is discovered to the
// moment its result is logged.
package urlitem

import "time"

// State is a URL item's position in the check lifecycle.
type State int

// The state machine of component design §4.3: new -> queued -> aggregated
// -> checked -> logged -> done.
const (
	StateNew State = iota
	StateQueued
	StateAggregated
	StateChecked
	StateLogged
	StateDone
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateQueued:
		return "queued"
	case StateAggregated:
		return "aggregated"
	case StateChecked:
		return "checked"
	case StateLogged:
		return "logged"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Validity is the outcome of a check: valid, invalid, or not yet checked.
type Validity int

const (
	Unchecked Validity = iota
	Valid
	Invalid
)

// ChildRef is one reference extracted from a parent's content: a raw
// reference string plus its source position, as produced by the opaque
// HTML/CSS extractors of component design §4.2.
type ChildRef struct {
	Raw         string
	Line        int
	Column      int
	BaseOverride string // non-empty if the extractor found an explicit <base href>
}

// Item is the live, mutable representation of one URL under check. A
// worker holds a transient reference to an Item while processing it; once
// the result is logged and children are enqueued, the worker releases it
// (ownership notes, data model §3).
//
// Item never stores a pointer to its parent — only the parent's URL string
// — so that the crawl graph can never form a reference cycle (design notes
// §9: "Cyclic parent-child references... store parents as strings +
// positions, never as owning references").
type Item struct {
	Raw        string // raw reference string as discovered
	ParentURL  string // parent's canonical URL, or "" for a seed
	ParentLine int
	ParentCol  int
	Depth      int // depth >= 0 (invariant a)
	BaseURL    string

	Canonical string // immutable once set (invariant b)
	Scheme    string
	Anchor    string // fragment, kept separately from the cache key
	Intern    bool   // classification result

	State    State
	Validity Validity

	Info     []string
	Warnings []Warning

	Cached      bool // true iff the canonical key already had a result when dequeued
	ContentType string
	Size        int64
	Duration    time.Duration

	Children []ChildRef // lazily populated by extraction
}

// AddWarning appends a (tag, text) warning. Callers should only use tags
// from the closed WarningTag enumeration.
func (it *Item) AddWarning(tag WarningTag, text string) {
	it.Warnings = append(it.Warnings, Warning{Tag: tag, Text: text})
}

// AddInfo appends an informational message.
func (it *Item) AddInfo(text string) {
	it.Info = append(it.Info, text)
}

// MarkInvalid transitions the item to Invalid and records an explaining
// warning, preserving invariant (e): invalid implies at least one info
// message.
func (it *Item) MarkInvalid(tag WarningTag, text string) {
	it.Validity = Invalid
	it.AddWarning(tag, text)
	it.AddInfo(text)
}

// MarkValid transitions the item to Valid.
func (it *Item) MarkValid() {
	it.Validity = Valid
}

// HasUnignoredWarnings reports whether the item has a warning whose tag is
// not present in ignored.
func (it *Item) HasUnignoredWarnings(ignored map[WarningTag]bool) bool {
	for _, w := range it.Warnings {
		if !ignored[w.Tag] {
			return true
		}
	}
	return false
}

// Recursable reports whether children should be extracted and enqueued:
// the item must be valid, within the recursion limit (maxDepth < 0 means
// unbounded), intern or extern-recursion allowed, and of a
// content-extractable type. extractableType is supplied by the caller
// because only protocol handlers know the fetched content type.
func (it *Item) Recursable(maxDepth int, recurseExtern bool, extractableType bool) bool {
	if it.Validity != Valid {
		return false
	}
	if maxDepth >= 0 && it.Depth >= maxDepth {
		return false
	}
	if !it.Intern && !recurseExtern {
		return false
	}
	return extractableType
}
