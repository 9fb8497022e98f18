package politeness

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Adaptive rate bounds and smoothing constants, grounded on the teacher's
// crawler/ratelimit.go AdaptiveLimiter, here scoped to a single host rather
// than the whole crawl.
const (
	minRateFloor   = 0.2
	maxRateCeiling = 100.0
	emaAlpha       = 0.2
	recoveryFactor = 1.1
	backoffFactor  = 0.5
)

// AdaptiveLimiter dynamically adjusts a per-host rate limit based on
// observed response times, using an exponential moving average of RTT so a
// single slow response cannot crash the rate.
type AdaptiveLimiter struct {
	limiter   *rate.Limiter
	targetRTT time.Duration
	mu        sync.RWMutex

	emaRTT      time.Duration
	currentRate float64
	disabled    bool
}

// NewAdaptiveLimiter creates a limiter starting at initialRPS requests per
// second, targeting targetRTT.
func NewAdaptiveLimiter(initialRPS float64, targetRTT time.Duration) *AdaptiveLimiter {
	clamped := clampRate(initialRPS)
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(rate.Limit(clamped), int(math.Ceil(clamped))),
		targetRTT:   targetRTT,
		currentRate: clamped,
		emaRTT:      targetRTT,
	}
}

// Wait blocks until the limiter allows the next request or ctx is done.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// ObserveRTT records a response time and adjusts the rate.
func (a *AdaptiveLimiter) ObserveRTT(rtt time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.disabled {
		return
	}

	newEMA := time.Duration(float64(emaAlpha)*float64(rtt) + (1-emaAlpha)*float64(a.emaRTT))
	a.emaRTT = newEMA

	ratio := float64(a.targetRTT) / float64(newEMA)
	var newRate float64
	if ratio < 1 {
		proposed := a.currentRate * ratio
		floor := a.currentRate * backoffFactor
		if proposed < floor {
			newRate = floor
		} else {
			newRate = proposed
		}
	} else {
		newRate = a.currentRate * recoveryFactor
	}

	newRate = clampRate(newRate)
	if math.Abs(newRate-a.currentRate) > 0.01 {
		a.currentRate = newRate
		a.limiter.SetLimit(rate.Limit(newRate))
		a.limiter.SetBurst(int(math.Ceil(newRate)))
	}
}

// SetRate overrides the rate and disables further adaptation, used when
// the operator supplies an explicit `wait` / rate-limit configuration.
func (a *AdaptiveLimiter) SetRate(rps float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	clamped := clampRate(rps)
	a.currentRate = clamped
	a.disabled = true
	a.limiter.SetLimit(rate.Limit(clamped))
	a.limiter.SetBurst(int(math.Ceil(clamped)))
}

// CurrentRate returns the current rate in requests per second.
func (a *AdaptiveLimiter) CurrentRate() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.currentRate
}

func clampRate(rps float64) float64 {
	if rps < minRateFloor {
		return minRateFloor
	}
	if rps > maxRateCeiling {
		return maxRateCeiling
	}
	return rps
}
