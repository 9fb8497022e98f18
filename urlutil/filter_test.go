package urlutil_test

import (
	"testing"

	"github.com/linkchecker-go/linkcheck/urlutil"
)

func TestPatternNegationIsComplement(t *testing.T) {
	positive, err := urlutil.Compile("example", false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	negated, err := urlutil.Compile("!example", false)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	samples := []string{"http://example.test/", "http://other.test/"}
	for _, s := range samples {
		if positive.Matches(s) == negated.Matches(s) {
			t.Fatalf("negated pattern must be the complement for %q", s)
		}
	}
}

func TestClassifyInternTakesPrecedenceOverExtern(t *testing.T) {
	intern, err := urlutil.CompileSet([]string{`^http://keep\.test/`}, false)
	if err != nil {
		t.Fatalf("compile intern set: %v", err)
	}
	extern, err := urlutil.CompileSet([]string{`^http://keep\.test/`}, false)
	if err != nil {
		t.Fatalf("compile extern set: %v", err)
	}

	if !urlutil.Classify("http://keep.test/page", intern, extern) {
		t.Fatal("a URL matching both intern and extern patterns must classify intern")
	}
}

func TestClassifyDefaultsToExternWhenUnmatched(t *testing.T) {
	intern, _ := urlutil.CompileSet([]string{`^http://keep\.test/`}, false)
	var extern urlutil.PatternSet
	if urlutil.Classify("http://elsewhere.test/", intern, extern) {
		t.Fatal("unmatched URL must default to extern")
	}
}

func TestIsSameDomainMatchesSubdomains(t *testing.T) {
	if !urlutil.IsSameDomain("http://blog.example.com/post", "example.com") {
		t.Fatal("subdomain should be considered same-domain")
	}
	if urlutil.IsSameDomain("http://example.com.evil.test/", "example.com") {
		t.Fatal("suffix-matching must not allow a lookalike domain")
	}
}

func TestSupportedScheme(t *testing.T) {
	for _, s := range []string{"http", "https", "ftp", "file", "mailto", "news", "nntp", "telnet"} {
		if !urlutil.SupportedScheme(s) {
			t.Fatalf("scheme %q should be supported", s)
		}
	}
	if urlutil.SupportedScheme("gopher") {
		t.Fatal("unsupported scheme must not be reported as supported")
	}
}
