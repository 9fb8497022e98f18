// Package urlutil implements URL identity: canonicalization, cache-key
// derivation, and intern/extern classification (component design §4.1).
package urlutil

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// defaultPorts maps a scheme to the port elided during normalization, per
// the data model's cache-key rule ("default-port elision").
var defaultPorts = map[string]string{
	"http":   "80",
	"https":  "443",
	"ftp":    "21",
	"news":   "119",
	"nntp":   "119",
	"telnet": "23",
}

// Canonical holds a normalized URL split into the pieces the cache key and
// the URL item both need: the key never includes the fragment, which is
// preserved separately as Anchor.
type Canonical struct {
	URL    string // canonical URL string, fragment-free
	Scheme string
	Host   string
	Anchor string // fragment, kept separately (data model §3)
}

// Normalize resolves raw against base (if raw is relative), lowercases
// scheme and host, folds internationalized hostnames to ASCII, elides the
// scheme's default port, removes "." and ".." path segments, and splits
// off the fragment as Anchor. It is idempotent: Normalize(Normalize(u).URL)
// == Normalize(u) (testable property §8).
func Normalize(raw, base string) (Canonical, error) {
	if raw == "" {
		return Canonical{}, errors.New("cannot normalize empty URL")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return Canonical{}, fmt.Errorf("parse URL %q: %w", raw, err)
	}

	if !parsed.IsAbs() && base != "" {
		baseURL, err := url.Parse(base)
		if err != nil {
			return Canonical{}, fmt.Errorf("parse base URL %q: %w", base, err)
		}
		parsed = baseURL.ResolveReference(parsed)
	}

	if parsed.Scheme == "" {
		return Canonical{}, errors.New("URL must have a scheme")
	}

	scheme := strings.ToLower(parsed.Scheme)
	parsed.Scheme = scheme

	anchor := parsed.Fragment
	parsed.Fragment = ""

	if parsed.Host != "" {
		host, err := foldHost(parsed.Host)
		if err != nil {
			return Canonical{}, fmt.Errorf("fold host %q: %w", parsed.Host, err)
		}
		parsed.Host = elideDefaultPort(scheme, host)
	}

	parsed.Path = cleanPath(parsed.Path)
	if parsed.Path != "/" && strings.HasSuffix(parsed.Path, "/") {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
		if parsed.Path == "" {
			parsed.Path = "/"
		}
	}

	return Canonical{
		URL:    parsed.String(),
		Scheme: scheme,
		Host:   parsed.Hostname(),
		Anchor: anchor,
	}, nil
}

// foldHost lowercases a host and, for hosts carrying a non-ASCII label,
// folds it to its ASCII (punycode) form via IDNA so that visually distinct
// representations of the same domain share one cache key.
func foldHost(host string) (string, error) {
	hostname, port, hasPort := splitHostPort(host)
	lower := strings.ToLower(hostname)
	if isASCII(lower) {
		if hasPort {
			return lower + ":" + port, nil
		}
		return lower, nil
	}
	ascii, err := idna.Lookup.ToASCII(lower)
	if err != nil {
		// IDNA folding is best-effort; an unfoldable label is kept as-is
		// rather than failing normalization outright.
		ascii = lower
	}
	if hasPort {
		return ascii + ":" + port, nil
	}
	return ascii, nil
}

func splitHostPort(host string) (hostname, port string, hasPort bool) {
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host[idx+1:], "]") {
		return host[:idx], host[idx+1:], true
	}
	return host, "", false
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}

func elideDefaultPort(scheme, host string) string {
	defPort, ok := defaultPorts[scheme]
	if !ok {
		return host
	}
	suffix := ":" + defPort
	if strings.HasSuffix(host, suffix) {
		return strings.TrimSuffix(host, suffix)
	}
	return host
}

// cleanPath removes "." and ".." segments without touching percent-escapes,
// so encoded bytes that are semantically significant (e.g. an encoded "/"
// inside a path segment) are never decoded.
func cleanPath(p string) string {
	if p == "" {
		return p
	}
	segments := strings.Split(p, "/")
	out := make([]string, 0, len(segments))
	for _, seg := range segments {
		switch seg {
		case ".":
			continue
		case "..":
			if len(out) > 0 && out[len(out)-1] != "" {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, seg)
		}
	}
	return strings.Join(out, "/")
}

// CacheKey derives the at-most-once-checking key for a canonical URL: the
// canonical string with the fragment already stripped, except when
// checkAnchors is true, in which case the anchor participates in the key
// (two URLs differing only by fragment must share a result unless anchor
// checking is enabled).
func CacheKey(c Canonical, checkAnchors bool) string {
	if checkAnchors && c.Anchor != "" {
		return c.URL + "#" + c.Anchor
	}
	return c.URL
}
