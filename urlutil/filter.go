package urlutil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Pattern is one compiled entry of a Pattern Set (data model §3): a
// compiled regex plus a negate flag (leading "!" in the configured string)
// and a strict flag. Grounded on original_source's get_link_pat.
type Pattern struct {
	Regexp *regexp.Regexp
	Negate bool
	Strict bool
}

// Compile parses a single pattern argument of the form "regex" or
// "!regex" into a Pattern. The testable round-trip property holds:
// Compile("!X").Matches(s) == !Compile("X").Matches(s) for every s.
func Compile(arg string, strict bool) (Pattern, error) {
	negate := false
	pattern := arg
	if strings.HasPrefix(arg, "!") {
		negate = true
		pattern = arg[1:]
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Pattern{}, fmt.Errorf("compile pattern %q: %w", arg, err)
	}
	return Pattern{Regexp: re, Negate: negate, Strict: strict}, nil
}

// Matches reports whether s matches the pattern, honoring Negate.
func (p Pattern) Matches(s string) bool {
	hit := p.Regexp.MatchString(s)
	if p.Negate {
		return !hit
	}
	return hit
}

// PatternSet is an ordered list of patterns; the first match wins. It is
// used for intern/extern classification, authentication matching, and
// warning-ignore gating (data model §3).
type PatternSet []Pattern

// CompileSet compiles a list of pattern arguments in order.
func CompileSet(args []string, strict bool) (PatternSet, error) {
	set := make(PatternSet, 0, len(args))
	for _, arg := range args {
		p, err := Compile(arg, strict)
		if err != nil {
			return nil, err
		}
		set = append(set, p)
	}
	return set, nil
}

// FirstMatch returns the index of the first pattern in the set that
// matches s, or -1 if none match.
func (ps PatternSet) FirstMatch(s string) int {
	for i, p := range ps {
		if p.Matches(s) {
			return i
		}
	}
	return -1
}

// Classify implements component design §4.1's classify(canonical, config):
// intern patterns are checked first, then extern patterns (spec's Open
// Question on precedence resolved in favor of intern-first); an unmatched
// URL defaults to extern.
func Classify(canonicalURL string, intern, extern PatternSet) (isIntern bool) {
	if intern.FirstMatch(canonicalURL) != -1 {
		return true
	}
	if extern.FirstMatch(canonicalURL) != -1 {
		return false
	}
	return false
}

// IsSameDomain checks if targetURL belongs to the same domain as baseHost.
// Subdomains are considered same-domain (e.g., blog.example.com matches
// example.com). Used as the default intern rule when no explicit pattern
// set is configured.
func IsSameDomain(targetURL string, baseHost string) bool {
	parsed, err := url.Parse(targetURL)
	if err != nil {
		return false
	}

	host := parsed.Hostname()
	baseHost = strings.ToLower(baseHost)
	host = strings.ToLower(host)

	return host == baseHost || strings.HasSuffix(host, "."+baseHost)
}

// IsHTTPScheme returns true if the URL has an http or https scheme.
func IsHTTPScheme(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

// SupportedScheme reports whether scheme has a protocol handler.
func SupportedScheme(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https", "ftp", "file", "mailto", "news", "nntp", "telnet":
		return true
	default:
		return false
	}
}

// ResolveReference resolves a possibly-relative ref URL against a base URL.
func ResolveReference(base string, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base URL %q: %w", base, err)
	}

	refURL, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse ref URL %q: %w", ref, err)
	}

	resolved := baseURL.ResolveReference(refURL)
	return resolved.String(), nil
}
