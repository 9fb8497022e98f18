// Package politeness implements per-host serialization and rate limiting
// (component design §4.6): at most one outstanding fetch per host, a wait
// interval between fetches, and optional connection reuse.
package politeness

import (
	"context"
	"net/http"
	"time"

	deadlock "github.com/sasha-s/go-deadlock"
)

// Slot guards a single outstanding fetch against one host and tracks the
// timestamps needed for politeness: last access and wait-until (set by
// explicit `wait` configuration or an observed Retry-After).
type Slot struct {
	mu         deadlock.Mutex
	busy       chan struct{} // capacity-1 semaphore; held for the duration of one fetch
	limiter    *AdaptiveLimiter
	lastAccess time.Time
	waitUntil  time.Time
	conn       *http.Client // reused within an idle window; nil when none pooled
	connIdleAt time.Time
}

// Pool hands out per-host Slots, creating them on first use.
type Pool struct {
	mu          deadlock.Mutex
	slots       map[string]*Slot
	baseWait    time.Duration
	targetRTT   time.Duration
	idleWindow  time.Duration
	initialRate float64
}

// NewPool creates a Pool. baseWait is the floor wait interval between
// fetches to the same host (config `wait`, default 0); initialRPS seeds
// the adaptive limiter each new host slot starts with.
func NewPool(baseWait time.Duration, initialRPS float64, targetRTT time.Duration) *Pool {
	return &Pool{
		slots:       make(map[string]*Slot),
		baseWait:    baseWait,
		targetRTT:   targetRTT,
		idleWindow:  90 * time.Second,
		initialRate: initialRPS,
	}
}

// BaseWait returns the floor wait interval between fetches to the same
// host that every Slot this Pool hands out should be acquired with.
func (p *Pool) BaseWait() time.Duration {
	return p.baseWait
}

// Get returns the Slot for host, creating it if necessary.
func (p *Pool) Get(host string) *Slot {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.slots[host]
	if !ok {
		s = &Slot{
			limiter: NewAdaptiveLimiter(p.initialRate, p.targetRTT),
			busy:    make(chan struct{}, 1),
		}
		p.slots[host] = s
	}
	return s
}

// Acquire blocks until it is this caller's exclusive turn to fetch from
// the slot's host: it takes the single-flight busy token (so at no moment
// are two fetches in flight against this host, testable property §8.2),
// waits for the adaptive rate limiter, then for any explicit wait-until
// deadline (politeness interval or a prior Retry-After). The caller must
// call Release exactly once after the fetch completes. Acquire never
// holds the slot's mutex across a wait — only around reading/writing the
// timestamps themselves, per §5's "none of these hold... mutexes across
// I/O."
func (s *Slot) Acquire(ctx context.Context, minWait time.Duration) error {
	select {
	case s.busy <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := s.limiter.Wait(ctx); err != nil {
		<-s.busy
		return err
	}

	for {
		s.mu.Lock()
		now := time.Now()
		wait := s.waitUntil.Sub(now)
		if floor := s.lastAccess.Add(minWait).Sub(now); floor > wait {
			wait = floor
		}
		s.mu.Unlock()

		if wait <= 0 {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			<-s.busy
			return ctx.Err()
		}
	}
}

// Release records the access time after a fetch completes, feeds rtt (if
// nonzero) to the adaptive limiter, and frees the busy token acquired by
// Acquire so the next queued fetch against this host may proceed.
func (s *Slot) Release(rtt time.Duration) {
	s.mu.Lock()
	s.lastAccess = time.Now()
	s.mu.Unlock()
	if rtt > 0 {
		s.limiter.ObserveRTT(rtt)
	}
	<-s.busy
}

// SetRetryAfter pushes the wait-until deadline out by d, honoring a
// Retry-After response header (component design §4.2).
func (s *Slot) SetRetryAfter(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until := time.Now().Add(d)
	if until.After(s.waitUntil) {
		s.waitUntil = until
	}
}

// SetMinRate overrides the slot's adaptive limiter with a fixed rate, e.g.
// when robots.txt specifies a crawl-delay for this host.
func (s *Slot) SetMinRate(rps float64) {
	s.limiter.SetRate(rps)
}

// PooledConn returns a client associated with this host slot if one is
// still within its idle window, for connection reuse (component design
// §4.6). Returns nil if none is pooled or the conn has gone idle.
func (s *Slot) PooledConn() *http.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	if time.Since(s.connIdleAt) > 90*time.Second {
		s.conn = nil
		return nil
	}
	return s.conn
}

// StorePooledConn associates client with the slot for later reuse.
func (s *Slot) StorePooledConn(client *http.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = client
	s.connIdleAt = time.Now()
}

// DiscardConn drops any pooled connection, e.g. after a handler error
// (component design §4.6: "on handler error the connection is discarded").
func (s *Slot) DiscardConn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn = nil
}
