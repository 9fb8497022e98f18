package engine

import (
	"context"
	"fmt"
	"net/http"

	"github.com/linkchecker-go/linkcheck/cache"
	"github.com/linkchecker-go/linkcheck/politeness"
	"github.com/linkchecker-go/linkcheck/protocols"
	"github.com/linkchecker-go/linkcheck/urlitem"
	"github.com/linkchecker-go/linkcheck/urlutil"
)

// checkResult is the outcome of one protocol check attempt, used to drive
// the retry loop in retry.go without re-running classification/caching.
type checkResult struct {
	outcome protocols.Outcome
	warning *urlitem.Warning
}

// checkItem runs one item through normalize -> classify -> cache ->
// robots -> politeness -> protocol handler, populating item in place
// (component design §4.3's state machine new->queued->aggregated->
// checked->logged->done; this method covers queued through checked).
func (d *Director) checkItem(ctx context.Context, item *urlitem.Item) {
	item.State = urlitem.StateAggregated

	absolute, err := urlutil.ResolveReference(item.BaseURL, item.Raw)
	if err != nil || item.BaseURL == "" {
		absolute = item.Raw
	}

	canon, err := urlutil.Normalize(absolute, item.BaseURL)
	if err != nil {
		item.MarkInvalid(urlitem.WarnURLInvalid, err.Error())
		item.State = urlitem.StateChecked
		return
	}
	item.Canonical = canon.URL
	item.Scheme = canon.Scheme
	item.Anchor = canon.Anchor

	if !urlutil.SupportedScheme(item.Scheme) {
		item.MarkInvalid(urlitem.WarnUnsupportedScheme, fmt.Sprintf("unsupported scheme %q", item.Scheme))
		item.State = urlitem.StateChecked
		return
	}

	item.Intern = d.classify(item.Canonical)

	if !item.Intern && !d.cfg.CheckExtern {
		item.AddInfo("extern link, not checked")
		item.State = urlitem.StateChecked
		return
	}

	key := urlutil.CacheKey(canon, d.cfg.CheckAnchors)
	outcome, wire := d.cache.Lookup(key)
	if outcome == cache.Hit {
		item.Cached = true
		applyWire(item, wire)
		item.State = urlitem.StateChecked
		return
	}

	handler, ok := d.registry.Lookup(item.Scheme)
	if !ok {
		item.MarkInvalid(urlitem.WarnUnsupportedScheme, fmt.Sprintf("no handler for scheme %q", item.Scheme))
		item.State = urlitem.StateChecked
		d.cache.Deposit(key, item.ToWire())
		return
	}

	if urlutil.IsHTTPScheme(item.Canonical) {
		if !d.checkRobots(ctx, item) {
			item.State = urlitem.StateChecked
			d.cache.Deposit(key, item.ToWire())
			return
		}
	}

	result := withRetry(ctx, d.cfg.Retry, func(innerCtx context.Context) checkResult {
		out := d.fetch(innerCtx, handler, item)
		return checkResult{outcome: out, warning: out.Warning}
	})

	applyOutcome(item, result.outcome)
	item.State = urlitem.StateChecked
	d.cache.Deposit(key, item.ToWire())
}

// fetch acquires the per-host politeness slot (for http/https; other
// schemes dial directly since they are not subject to the same server
// etiquette expectations) and runs the handler.
func (d *Director) fetch(ctx context.Context, handler protocols.Handler, item *urlitem.Item) protocols.Outcome {
	if !urlutil.IsHTTPScheme(item.Canonical) || d.politeness == nil {
		return handler.Check(ctx, item)
	}

	host := hostOf(item.Canonical)
	slot := d.politeness.Get(host)
	if d.robots != nil {
		if delay := d.robots.CrawlDelay(item.Scheme, host, d.cfg.UserAgent); delay > 0 {
			slot.SetMinRate(1 / delay.Seconds())
		}
	}
	if err := slot.Acquire(ctx, d.politeness.BaseWait()); err != nil {
		return protocols.Outcome{Warning: &urlitem.Warning{Tag: urlitem.WarnTimeout, Text: err.Error()}}
	}

	out := d.doFetch(ctx, handler, item, slot)
	slot.Release(out.Duration)

	if out.RetryAfter > 0 {
		slot.SetRetryAfter(out.RetryAfter)
	}

	return out
}

// doFetch runs handler against slot's pooled connection when the handler
// supports one (component design §4.6: "the connection may be kept open...
// for reuse"), storing it back for the next fetch to this host on success
// and discarding it on error so the next fetch dials fresh.
func (d *Director) doFetch(ctx context.Context, handler protocols.Handler, item *urlitem.Item, slot *politeness.Slot) protocols.Outcome {
	pooling, ok := handler.(protocols.ClientPoolingHandler)
	if !ok {
		return handler.Check(ctx, item)
	}

	client := slot.PooledConn()
	if client == nil {
		client = &http.Client{}
	}

	out := pooling.CheckWithClient(ctx, item, client)
	if out.Warning != nil {
		slot.DiscardConn()
	} else {
		slot.StorePooledConn(client)
	}
	return out
}

// checkRobots consults the robots-exclusion cache for http(s) items;
// returns false (and marks the item invalid) when disallowed.
func (d *Director) checkRobots(ctx context.Context, item *urlitem.Item) bool {
	if d.robots == nil {
		return true
	}
	allowed, err := d.robots.Allowed(ctx, item.Canonical, d.cfg.UserAgent)
	if err != nil {
		// fail open: robots.txt fetch failure does not block the check
		return true
	}
	if !allowed {
		item.MarkInvalid(urlitem.WarnRobotsDenied, "disallowed by robots.txt")
		return false
	}
	return true
}

func applyOutcome(item *urlitem.Item, out protocols.Outcome) {
	item.ContentType = out.ContentType
	item.Size = out.Size
	item.Duration = out.Duration
	for _, info := range out.Info {
		item.AddInfo(info)
	}
	for _, child := range out.Children {
		item.Children = append(item.Children, urlitem.ChildRef{
			Raw: child.Raw, Line: child.Line, Column: child.Column, BaseOverride: child.BaseOverride,
		})
	}
	if out.Warning != nil {
		item.MarkInvalid(out.Warning.Tag, out.Warning.Text)
		return
	}
	item.MarkValid()
}

func applyWire(item *urlitem.Item, wire urlitem.Wire) {
	item.ContentType = wire.ContentType
	item.Size = wire.Size
	item.Duration = wire.Duration
	item.Info = append(item.Info, wire.Info...)
	item.Warnings = append(item.Warnings, wire.Warnings...)
	if wire.Valid {
		item.MarkValid()
	} else {
		item.Validity = urlitem.Invalid
	}
}

func (d *Director) classify(canonicalURL string) bool {
	if len(d.cfg.Intern) > 0 || len(d.cfg.Extern) > 0 {
		return urlutil.Classify(canonicalURL, d.cfg.Intern, d.cfg.Extern)
	}
	if d.seedHost == "" {
		return true
	}
	return urlutil.IsSameDomain(canonicalURL, d.seedHost)
}

func hostOf(rawURL string) string {
	u, err := urlutil.Normalize(rawURL, "")
	if err != nil {
		return rawURL
	}
	return u.Host
}
