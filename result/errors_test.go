package result

import (
	"testing"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

func TestFormatTag(t *testing.T) {
	tests := []struct {
		tag  urlitem.WarningTag
		want string
	}{
		{urlitem.WarnTimeout, "Timeouts"},
		{urlitem.WarnDNSError, "DNS Failures"},
		{urlitem.WarnUnreachable, "Unreachable"},
		{urlitem.WarnRedirectLoop, "Redirect Loops"},
		{urlitem.WarningTag("not-a-real-tag"), "Other Errors"},
	}

	for _, tt := range tests {
		t.Run(string(tt.tag), func(t *testing.T) {
			got := FormatTag(tt.tag)
			if got != tt.want {
				t.Errorf("FormatTag(%v) = %v, want %v", tt.tag, got, tt.want)
			}
		})
	}
}

func TestTagOrderCoversEveryKnownTag(t *testing.T) {
	seen := make(map[urlitem.WarningTag]bool, len(TagOrder))
	for _, tag := range TagOrder {
		if !urlitem.KnownTag(tag) {
			t.Fatalf("TagOrder contains unknown tag %q", tag)
		}
		seen[tag] = true
	}
	if len(seen) != len(TagOrder) {
		t.Fatal("TagOrder contains a duplicate tag")
	}
}
