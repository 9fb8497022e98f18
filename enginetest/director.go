package enginetest

import (
	"net/http"
	"time"

	"github.com/linkchecker-go/linkcheck/cache"
	"github.com/linkchecker-go/linkcheck/engine"
	"github.com/linkchecker-go/linkcheck/politeness"
	"github.com/linkchecker-go/linkcheck/protocols"
	"github.com/linkchecker-go/linkcheck/robots"
)

// NewDirector builds an engine.Director wired against client, suitable
// for integration tests that only need to override cfg's behavioral
// fields (MaxDepth, Intern/Extern, CheckExtern, ...); Concurrency,
// UserAgent, and Retry are filled in with test-friendly defaults when
// left zero.
func NewDirector(cfg engine.Config, client *http.Client, sink engine.ResultSink) *engine.Director {
	if cfg.Concurrency == 0 {
		cfg.Concurrency = 4
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "linkcheck-test/1.0"
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 5 * time.Second
	}
	if cfg.Retry == (engine.RetryPolicy{}) {
		cfg.Retry = engine.DefaultRetryPolicy()
	}

	registry := protocols.NewRegistry(
		protocols.NewHTTPHandler(client, cfg.UserAgent, nil),
		protocols.NewFTPHandler(),
		protocols.NewFileHandler(),
		protocols.NewMailtoHandler(""),
		protocols.NewNewsHandler(""),
		protocols.NewTelnetHandler(),
	)

	return engine.New(cfg, cache.New(false), robots.New(client), politeness.NewPool(0, 1000, 200*time.Millisecond), registry, sink, nil, nil)
}
