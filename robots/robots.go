// Package robots implements the per-origin robots.txt cache of component
// design §4.5: fetched at most once per origin, parsed per the de-facto
// exclusion standard, cached with "allowed all" as the fail-open default.
package robots

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
	"github.com/temoto/robotstxt"
)

// originKey identifies a (scheme, host, port) origin.
func originKey(scheme, host string) string {
	return scheme + "://" + host
}

// entry is a pending or completed robots fetch for one origin, mirroring
// the result cache's pending-sentinel pattern (§5: "fetches performed
// outside the mutex using a pending sentinel like the URL cache").
type entry struct {
	done    bool
	data    *robotstxt.RobotsData // nil means allow-all
	cond    *sync.Cond
	fetched time.Time
}

// Cache fetches and caches robots.txt rules per origin.
type Cache struct {
	mu       deadlock.Mutex
	entries  map[string]*entry
	client   *http.Client
	cacheTTL time.Duration
}

// New creates a robots Cache. client is used to fetch /robots.txt itself
// through the ordinary HTTP path (bypassing the robots check, as §4.5
// requires), with a short per-fetch timeout the caller is expected to have
// already configured on the client (or via the context passed to Allowed).
func New(client *http.Client) *Cache {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Cache{
		entries:  make(map[string]*entry),
		client:   client,
		cacheTTL: time.Hour,
	}
}

// Allowed reports whether userAgent may fetch rawURL according to the
// origin's robots.txt. Errors fetching or parsing robots.txt default to
// allow-all and are cached as such (§4.5: "Failures to fetch robots.txt
// default to allowed all and are cached").
func (c *Cache) Allowed(ctx context.Context, rawURL, userAgent string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true, fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return true, nil
	}

	key := originKey(parsed.Scheme, parsed.Host)

	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.done && time.Since(e.fetched) < c.cacheTTL {
		data := e.data
		c.mu.Unlock()
		return testAgent(data, parsed.Path, userAgent), nil
	}
	if ok && !e.done {
		for !e.done {
			e.cond.Wait()
		}
		data := e.data
		c.mu.Unlock()
		return testAgent(data, parsed.Path, userAgent), nil
	}
	// Miss, or expired: this goroutine becomes the fetcher.
	e = &entry{cond: sync.NewCond(&c.mu)}
	c.entries[key] = e
	c.mu.Unlock()

	data, fetchErr := c.fetch(ctx, parsed.Scheme, parsed.Host)

	c.mu.Lock()
	e.data = data
	e.done = true
	e.fetched = time.Now()
	e.cond.Broadcast()
	c.mu.Unlock()

	return testAgent(data, parsed.Path, userAgent), fetchErr
}

func testAgent(data *robotstxt.RobotsData, path, userAgent string) bool {
	if data == nil {
		return true
	}
	return data.TestAgent(path, userAgent)
}

// fetch retrieves and parses /robots.txt for an origin. A nil
// *robotstxt.RobotsData return means allow-all.
func (c *Cache) fetch(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, error) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create robots.txt request for %s: %w", host, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt for %s: %w", host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read robots.txt body for %s: %w", host, err)
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode >= 500 {
		return nil, nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt for %s: %w", host, err)
	}
	return data, nil
}

// CrawlDelay returns the crawl-delay robots.txt directive for userAgent at
// origin (scheme, host), or 0 if none is configured or the origin has not
// been fetched yet. Used by the politeness layer to raise the wait
// interval above the configured floor when a site asks for it explicitly.
func (c *Cache) CrawlDelay(scheme, host, userAgent string) time.Duration {
	c.mu.Lock()
	e, ok := c.entries[originKey(scheme, host)]
	c.mu.Unlock()
	if !ok || !e.done || e.data == nil {
		return 0
	}
	group := e.data.FindGroup(userAgent)
	if group == nil {
		return 0
	}
	return group.CrawlDelay
}
