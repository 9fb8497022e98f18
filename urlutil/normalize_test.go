package urlutil_test

import (
	"testing"

	"github.com/linkchecker-go/linkcheck/urlutil"
)

func TestNormalizeLowercasesAndElidesDefaultPort(t *testing.T) {
	a, err := urlutil.Normalize("HTTP://Ex.Test/", "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	b, err := urlutil.Normalize("http://ex.test:80/", "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if a.URL != b.URL {
		t.Fatalf("expected equal cache keys, got %q vs %q", a.URL, b.URL)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	once, err := urlutil.Normalize("HTTP://Ex.Test/a/../b/", "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	twice, err := urlutil.Normalize(once.URL, "")
	if err != nil {
		t.Fatalf("normalize twice: %v", err)
	}
	if once.URL != twice.URL {
		t.Fatalf("normalize must be idempotent: %q != %q", once.URL, twice.URL)
	}
}

func TestNormalizeStripsFragmentIntoAnchor(t *testing.T) {
	c, err := urlutil.Normalize("http://ex.test/page#section", "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if c.Anchor != "section" {
		t.Fatalf("expected anchor %q, got %q", "section", c.Anchor)
	}
	if c.URL != "http://ex.test/page" {
		t.Fatalf("fragment must not remain in the cache key, got %q", c.URL)
	}
}

func TestNormalizeResolvesRelativeAgainstBase(t *testing.T) {
	c, err := urlutil.Normalize("../missing.html", "http://ex.test/dir/page.html")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if c.URL != "http://ex.test/missing.html" {
		t.Fatalf("unexpected resolved URL: %q", c.URL)
	}
}

func TestNormalizeRejectsEmpty(t *testing.T) {
	if _, err := urlutil.Normalize("", ""); err == nil {
		t.Fatal("expected error for empty URL")
	}
}

func TestCacheKeyHonorsAnchorPolicy(t *testing.T) {
	c, err := urlutil.Normalize("http://ex.test/page#a", "")
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if urlutil.CacheKey(c, false) != "http://ex.test/page" {
		t.Fatalf("fragment must not affect the default cache key")
	}
	if urlutil.CacheKey(c, true) != "http://ex.test/page#a" {
		t.Fatalf("anchor checking must fold the fragment into the cache key")
	}
}
