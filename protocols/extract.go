package protocols

import (
	"bytes"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// linkAttrs lists the element/attribute pairs that carry a hyperlink
// reference, extending the teacher's anchor-only extraction (component
// design §4.2: "extraction is delegated to ... parsers that produce a
// lazy sequence of (raw_ref, line, column, base_override?) records").
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"iframe": "src",
	"frame":  "src",
	"area":   "href",
	"source": "src",
	"embed":  "src",
}

// ExtractHTML walks an HTML document's token stream and returns every
// hyperlink reference found, along with the line/column of the tag and,
// for <base href>, the override that subsequent relative references must
// resolve against.
func ExtractHTML(content []byte) []Child {
	z := html.NewTokenizer(bytes.NewReader(content))
	var children []Child
	var baseOverride string
	line := 1

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return children
		}
		raw := z.Raw()
		line += bytes.Count(raw, []byte("\n"))

		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()

		if tok.Data == "base" {
			for _, a := range tok.Attr {
				if a.Key == "href" {
					baseOverride = a.Val
				}
			}
			continue
		}

		attrName, ok := linkAttrs[tok.Data]
		if !ok {
			continue
		}
		for _, a := range tok.Attr {
			if a.Key != attrName || a.Val == "" {
				continue
			}
			children = append(children, Child{
				Raw:          a.Val,
				Line:         line,
				Column:       0,
				BaseOverride: baseOverride,
			})
		}
	}
}

// HasAnchor reports whether an HTML document contains an element with
// id="name" or, historically, <a name="name">.
func HasAnchor(content []byte, name string) bool {
	z := html.NewTokenizer(bytes.NewReader(content))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			return false
		}
		if tt != html.StartTagToken && tt != html.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		for _, a := range tok.Attr {
			if (a.Key == "id" || (tok.Data == "a" && a.Key == "name")) && a.Val == name {
				return true
			}
		}
	}
}

// cssURLPattern matches url(...) references in a stylesheet, with or
// without quotes, per the CSS extraction added beyond the teacher's
// HTML-only extractor (component design §4.2 extends to text/css).
var cssURLPattern = regexp.MustCompile(`url\(\s*(['"]?)([^'")]+)\s*\)`)

// ExtractCSS extracts url(...) references from a stylesheet. Line numbers
// are computed from the match offset since CSS tokenizing is out of scope
// (treated as an opaque extractor per component design's data-flow note).
func ExtractCSS(content []byte) []Child {
	var children []Child
	matches := cssURLPattern.FindAllSubmatchIndex(content, -1)
	for _, m := range matches {
		ref := string(content[m[4]:m[5]])
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		line := 1 + bytes.Count(content[:m[0]], []byte("\n"))
		children = append(children, Child{Raw: ref, Line: line})
	}
	return children
}
