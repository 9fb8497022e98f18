// Package protocols implements the per-scheme fetch/validate/extract
// handlers of component design §4.2: one handler per scheme, each
// performing a check and, where applicable, extracting child references
// from the fetched content.
package protocols

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// Child is one extracted reference, with its source position, ready to be
// resolved into a urlitem.ChildRef by the caller.
type Child struct {
	Raw          string
	Line         int
	Column       int
	BaseOverride string
}

// Outcome is the result of a single protocol check: the warning (if any),
// informational messages, fetched metadata, and any extracted children.
type Outcome struct {
	Valid       bool
	Warning     *urlitem.Warning
	Info        []string
	ContentType string
	Size        int64
	Duration    time.Duration
	FinalURL    string // set when the handler followed redirects
	Children    []Child

	// RetryAfter is the server-advertised backoff from a 429/503's
	// Retry-After header (component design §4.2), if any. The caller
	// (engine.fetch) feeds this to the host's politeness.Slot so the next
	// Acquire against that host waits at least this long.
	RetryAfter time.Duration
}

// Handler is implemented once per supported scheme.
type Handler interface {
	// Check performs the scheme-specific fetch/validate and, for
	// extractable content types, the child extraction in the same pass
	// (component design §4.2's check/extract are combined here since both
	// need the same response body).
	Check(ctx context.Context, item *urlitem.Item) Outcome
}

// ClientPoolingHandler is implemented by handlers whose transport can be
// supplied by the caller instead of a handler-owned default, so a caller
// that tracks per-host connection state (the politeness package's Slot)
// can hand the same *http.Client back across fetches to the same host and
// discard it after an error (component design §4.6).
type ClientPoolingHandler interface {
	CheckWithClient(ctx context.Context, item *urlitem.Item, client *http.Client) Outcome
}

// classifyNetError maps a transport-level error to one of the closed
// warning tags (§7), grounded on the teacher's result.ClassifyError.
func classifyNetError(err error) urlitem.WarningTag {
	if err == nil {
		return urlitem.WarnUnreachable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return urlitem.WarnTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return urlitem.WarnDNSError
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return urlitem.WarnTimeout
		}
		if strings.Contains(opErr.Error(), "connection refused") {
			return urlitem.WarnUnreachable
		}
	}
	return urlitem.WarnUnreachable
}

func errOutcome(tag urlitem.WarningTag, text string) Outcome {
	return Outcome{
		Valid:   false,
		Warning: &urlitem.Warning{Tag: tag, Text: text},
		Info:    []string{text},
	}
}
