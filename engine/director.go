// Package engine implements the check engine (component design §5): the
// director that drives a worker pool over a bounded queue, wiring the
// result cache, robots-exclusion layer, per-host politeness, and protocol
// handlers into the URL item state machine, and handing finished items to
// a result sink for logging.
package engine

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/linkchecker-go/linkcheck/cache"
	"github.com/linkchecker-go/linkcheck/politeness"
	"github.com/linkchecker-go/linkcheck/protocols"
	"github.com/linkchecker-go/linkcheck/robots"
	"github.com/linkchecker-go/linkcheck/urlitem"
	"github.com/linkchecker-go/linkcheck/urlutil"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ResultSink receives every finished item's immutable snapshot, in the
// order the director's single coordinator goroutine processes them
// (testable property §8.4: "log line order is consistent with a global
// serialization of log_url calls").
type ResultSink interface {
	LogItem(urlitem.Wire)
}

// Config holds the director's tunables, bound from the CLI/config layer
// (component design §6).
type Config struct {
	Concurrency   int // 0 = synchronous, single goroutine
	MaxDepth      int // -1 = unbounded
	RecurseExtern bool
	CheckExtern   bool
	CheckAnchors  bool
	RequestTimeout time.Duration
	UserAgent     string
	Intern        urlutil.PatternSet
	Extern        urlutil.PatternSet
	IgnoreURL     urlutil.PatternSet
	IgnoreWarnings map[urlitem.WarningTag]bool
	Retry         RetryPolicy
}

// job is one unit of work on the incoming queue: a raw reference plus the
// parent context needed to build a urlitem.Item.
type job struct {
	raw        string
	parentURL  string
	parentLine int
	parentCol  int
	depth      int
	baseURL    string
}

// Director owns the worker pool lifecycle (data flow §3: "seeds ->
// incoming queue -> workers -> ... -> result logger").
type Director struct {
	cfg        Config
	cache      *cache.ResultCache
	robots     *robots.Cache
	politeness *politeness.Pool
	registry   protocols.Registry
	sink       ResultSink
	metrics    *Metrics
	log        *zap.Logger

	seedHost string

	mu       sync.Mutex
	checked  int
	invalid  int
	inFlight int
	queued   int
}

// New builds a Director from its wired components.
func New(cfg Config, resultCache *cache.ResultCache, robotsCache *robots.Cache, politenessPool *politeness.Pool, registry protocols.Registry, sink ResultSink, metrics *Metrics, log *zap.Logger) *Director {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Director{
		cfg:        cfg,
		cache:      resultCache,
		robots:     robotsCache,
		politeness: politenessPool,
		registry:   registry,
		sink:       sink,
		metrics:    metrics,
		log:        log,
	}
}

// Stats is a snapshot of director progress, used by the status reporter
// (component design §4.9) and the TUI.
type Stats struct {
	Checked    int
	Invalid    int
	InFlight   int
	QueueDepth int
}

// Snapshot returns the current progress counters.
func (d *Director) Snapshot() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Stats{Checked: d.checked, Invalid: d.invalid, InFlight: d.inFlight, QueueDepth: d.queued}
}

// Run drives the crawl from the given seed URLs to completion: the
// director terminates when the queue drains and no worker is active
// (component design §3), or ctx is canceled.
func (d *Director) Run(ctx context.Context, seeds []string) error {
	if len(seeds) > 0 {
		if u, err := url.Parse(seeds[0]); err == nil {
			d.seedHost = u.Hostname()
		}
	}

	jobs := make(chan job, d.cfg.Concurrency*4+1)
	var pending sync.WaitGroup

	group, groupCtx := errgroup.WithContext(ctx)

	for i := 0; i < d.cfg.Concurrency; i++ {
		group.Go(func() error {
			for {
				select {
				case j, ok := <-jobs:
					if !ok {
						return nil
					}
					d.mu.Lock()
					d.queued--
					d.inFlight++
					d.mu.Unlock()
					d.process(groupCtx, j, jobs, &pending)
					d.mu.Lock()
					d.inFlight--
					d.mu.Unlock()
					pending.Done()
				case <-groupCtx.Done():
					d.drain(jobs, &pending)
					return nil
				}
			}
		})
	}

	for _, seed := range seeds {
		pending.Add(1)
		d.mu.Lock()
		d.queued++
		d.mu.Unlock()
		jobs <- job{raw: seed, depth: 0}
	}

	group.Go(func() error {
		pending.Wait()
		close(jobs)
		return nil
	})

	err := group.Wait()

	// Any cache entry a worker never got to Deposit (in-flight fetch cut
	// short by cancellation) is completed here with an interrupted result
	// so a Lookup waiter on that key unblocks instead of hanging forever
	// (component design §5).
	if d.cache != nil {
		d.cache.CompletePending(urlitem.Wire{})
	}

	return multierr.Combine(err)
}

// drain discards any queued jobs once shutdown has started, still marking
// them done so pending.Wait() converges (testable property §8.3: every
// item is accounted for by the interrupted-shutdown path).
func (d *Director) drain(jobs <-chan job, pending *sync.WaitGroup) {
	for {
		select {
		case _, ok := <-jobs:
			if !ok {
				return
			}
			d.mu.Lock()
			d.queued--
			d.mu.Unlock()
			pending.Done()
		default:
			return
		}
	}
}

// process runs one item through the full state machine and, if it is
// recursable, enqueues its children.
func (d *Director) process(ctx context.Context, j job, jobs chan<- job, pending *sync.WaitGroup) {
	item := d.buildItem(j)

	reqCtx := ctx
	var cancel context.CancelFunc
	if d.cfg.RequestTimeout > 0 {
		reqCtx, cancel = context.WithTimeout(ctx, d.cfg.RequestTimeout)
		defer cancel()
	}

	d.checkItem(reqCtx, item)

	d.mu.Lock()
	d.checked++
	if item.Validity == urlitem.Invalid {
		d.invalid++
	}
	d.mu.Unlock()
	if d.metrics != nil {
		d.metrics.ObserveItem(item)
	}

	item.State = urlitem.StateLogged
	d.sink.LogItem(item.ToWire())
	item.State = urlitem.StateDone

	if !item.Recursable(d.cfg.MaxDepth, d.cfg.RecurseExtern, extractableContentType(item.ContentType)) {
		return
	}

	for _, child := range item.Children {
		resolved, err := urlutil.ResolveReference(item.Canonical, child.Raw)
		if err != nil {
			continue
		}
		if d.cfg.IgnoreURL.FirstMatch(resolved) != -1 {
			continue
		}
		base := item.Canonical
		if child.BaseOverride != "" {
			if ov, err := urlutil.ResolveReference(item.Canonical, child.BaseOverride); err == nil {
				base = ov
			}
		}
		pending.Add(1)
		d.mu.Lock()
		d.queued++
		d.mu.Unlock()
		select {
		case jobs <- job{raw: child.Raw, parentURL: item.Canonical, parentLine: child.Line, parentCol: child.Column, depth: item.Depth + 1, baseURL: base}:
		case <-ctx.Done():
			d.mu.Lock()
			d.queued--
			d.mu.Unlock()
			pending.Done()
		}
	}
}

func extractableContentType(contentType string) bool {
	switch contentType {
	case "text/html", "application/xhtml+xml", "text/css":
		return true
	default:
		return false
	}
}

func (d *Director) buildItem(j job) *urlitem.Item {
	return &urlitem.Item{
		Raw:        j.raw,
		ParentURL:  j.parentURL,
		ParentLine: j.parentLine,
		ParentCol:  j.parentCol,
		Depth:      j.depth,
		BaseURL:    j.baseURL,
		State:      urlitem.StateQueued,
	}
}
