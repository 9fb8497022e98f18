package protocols_test

import (
	"testing"

	"github.com/linkchecker-go/linkcheck/protocols"
)

func TestExtractHTMLFindsLinkAttributes(t *testing.T) {
	doc := []byte(`<html><body>
<a href="/a">A</a>
<img src="/b.png">
<link href="/c.css" rel="stylesheet">
</body></html>`)
	children := protocols.ExtractHTML(doc)
	if len(children) != 3 {
		t.Fatalf("expected 3 extracted references, got %d: %+v", len(children), children)
	}
}

func TestExtractHTMLHonorsBaseOverride(t *testing.T) {
	doc := []byte(`<html><head><base href="/other/"></head><body><a href="x">X</a></body></html>`)
	children := protocols.ExtractHTML(doc)
	if len(children) != 1 || children[0].BaseOverride != "/other/" {
		t.Fatalf("expected base override to apply to links found after <base>, got %+v", children)
	}
}

func TestHasAnchorFindsIDAndNamedAnchor(t *testing.T) {
	doc := []byte(`<html><body><h1 id="top">Top</h1><a name="legacy"></a></body></html>`)
	if !protocols.HasAnchor(doc, "top") {
		t.Fatal("expected id=top to be found")
	}
	if !protocols.HasAnchor(doc, "legacy") {
		t.Fatal("expected <a name=legacy> to be found")
	}
	if protocols.HasAnchor(doc, "missing") {
		t.Fatal("did not expect a nonexistent anchor to be found")
	}
}

func TestExtractCSSFindsURLReferences(t *testing.T) {
	css := []byte(`
.bg { background: url('/images/bg.png'); }
@font-face { src: url(fonts/a.woff) format("woff"); }
`)
	children := protocols.ExtractCSS(css)
	if len(children) != 2 {
		t.Fatalf("expected 2 url() references, got %d: %+v", len(children), children)
	}
	if children[0].Raw != "/images/bg.png" {
		t.Fatalf("unexpected first reference: %q", children[0].Raw)
	}
	if children[1].Raw != "fonts/a.woff" {
		t.Fatalf("unexpected second reference: %q", children[1].Raw)
	}
}
