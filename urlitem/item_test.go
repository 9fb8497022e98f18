package urlitem_test

import (
	"testing"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

func TestMarkInvalidRecordsWarningAndInfo(t *testing.T) {
	it := &urlitem.Item{Canonical: "http://example.test/a"}
	it.MarkInvalid(urlitem.WarnUnreachable, "connection refused")

	if it.Validity != urlitem.Invalid {
		t.Fatalf("expected Invalid, got %v", it.Validity)
	}
	if len(it.Warnings) != 1 || it.Warnings[0].Tag != urlitem.WarnUnreachable {
		t.Fatalf("expected one url-unreachable warning, got %+v", it.Warnings)
	}
	if len(it.Info) != 1 {
		t.Fatalf("invariant violated: invalid item must carry an info message")
	}
}

func TestRecursableRespectsDepthLimitAndExternPolicy(t *testing.T) {
	it := &urlitem.Item{Depth: 2}
	it.MarkValid()

	if it.Recursable(2, false, true) {
		t.Fatal("item at the depth limit must not be recursable")
	}
	if !it.Recursable(3, false, true) {
		t.Fatal("item under the depth limit should be recursable")
	}
	if it.Recursable(-1, false, true) == false {
		t.Fatal("maxDepth < 0 means unbounded recursion")
	}

	it.Intern = false
	if it.Recursable(-1, false, true) {
		t.Fatal("extern item must not recurse when recurseExtern is false")
	}
	if !it.Recursable(-1, true, true) {
		t.Fatal("extern item should recurse when recurseExtern is true")
	}
}

func TestToWireCopiesSlicesAndComputesChecked(t *testing.T) {
	it := &urlitem.Item{Canonical: "http://example.test/"}
	it.MarkValid()
	it.AddInfo("200 OK")

	w := it.ToWire()
	it.AddInfo("mutated after snapshot")

	if len(w.Info) != 1 {
		t.Fatalf("wire snapshot must not observe later mutation, got %v", w.Info)
	}
	if !w.Checked || !w.Valid {
		t.Fatalf("expected checked+valid wire snapshot, got %+v", w)
	}
}

func TestShouldLogFilteringPolicy(t *testing.T) {
	valid := urlitem.Wire{Valid: true, Cached: true}
	if valid.ShouldLog(false, false, true, nil) {
		t.Fatal("cached+valid must be skipped unless complete or verbose")
	}
	if !valid.ShouldLog(true, false, true, nil) {
		t.Fatal("complete=true must log everything")
	}
	if !valid.ShouldLog(false, true, true, nil) {
		t.Fatal("verbose=true must log everything")
	}

	invalid := urlitem.Wire{Valid: false}
	if !invalid.ShouldLog(false, false, false, nil) {
		t.Fatal("invalid items must always log")
	}

	withWarning := urlitem.Wire{Valid: true, Warnings: []urlitem.Warning{{Tag: urlitem.WarnSSLError}}}
	if withWarning.ShouldLog(false, false, false, nil) {
		t.Fatal("warnings must not force logging when warningsEnabled is false")
	}
	if !withWarning.ShouldLog(false, false, true, nil) {
		t.Fatal("unignored warning with warningsEnabled must log")
	}
	ignored := map[urlitem.WarningTag]bool{urlitem.WarnSSLError: true}
	if withWarning.ShouldLog(false, false, true, ignored) {
		t.Fatal("ignored warning tag must not force logging")
	}
}
