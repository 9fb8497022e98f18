package result

import (
	"testing"
	"time"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

func TestFromWiresCountsAndFiltersBroken(t *testing.T) {
	wires := []urlitem.Wire{
		{Canonical: "https://example.test/ok", Valid: true},
		{
			Canonical: "https://example.test/broken",
			ParentURL: "https://example.test/ok",
			Valid:     false,
			Warnings:  []urlitem.Warning{{Tag: urlitem.WarnUnreachable, Text: "server returned 404 Not Found"}},
		},
		{Canonical: "https://external.test/extern", Valid: false, Intern: false},
	}

	res := FromWires(wires, 2*time.Second)

	if res.Stats.TotalChecked != 3 {
		t.Fatalf("expected 3 total checked, got %d", res.Stats.TotalChecked)
	}
	if res.Stats.BrokenCount != 2 {
		t.Fatalf("expected 2 broken, got %d", res.Stats.BrokenCount)
	}
	if len(res.BrokenLinks) != 2 {
		t.Fatalf("expected 2 broken links, got %d", len(res.BrokenLinks))
	}
	if res.BrokenLinks[0].Tag != urlitem.WarnUnreachable {
		t.Fatalf("expected first broken link tagged url-unreachable, got %v", res.BrokenLinks[0].Tag)
	}
	if !res.BrokenLinks[1].IsExternal {
		t.Fatal("expected the extern link to be marked external")
	}
}
