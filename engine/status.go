package engine

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StatusReporter samples the director's progress periodically and fans
// the snapshot out to every attached consumer (component design §4.9: "a
// status thread samples state periodically"): a zap log line, Prometheus
// gauges, and an optional channel for an interactive progress view.
type StatusReporter struct {
	director *Director
	interval time.Duration
	log      *zap.Logger
	progress chan<- Stats
}

// NewStatusReporter builds a reporter that samples every interval.
func NewStatusReporter(director *Director, interval time.Duration, log *zap.Logger) *StatusReporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &StatusReporter{director: director, interval: interval, log: log}
}

// WithProgressChannel attaches ch as an additional consumer of every
// sampled snapshot (e.g. the TUI's progress view). The channel is closed
// when Run returns.
func (r *StatusReporter) WithProgressChannel(ch chan<- Stats) *StatusReporter {
	r.progress = ch
	return r
}

// Run samples until ctx is done.
func (r *StatusReporter) Run(ctx context.Context) {
	if r.progress != nil {
		defer close(r.progress)
	}
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := r.director.Snapshot()
			r.log.Info("status",
				zap.Int("checked", s.Checked),
				zap.Int("invalid", s.Invalid),
				zap.Int("in_flight", s.InFlight),
				zap.Int("queue_depth", s.QueueDepth),
			)
			if r.director.metrics != nil {
				r.director.metrics.SetInFlight(s.InFlight)
				r.director.metrics.SetQueueDepth(s.QueueDepth)
			}
			if r.progress != nil {
				select {
				case r.progress <- s:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}
