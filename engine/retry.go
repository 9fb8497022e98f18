package engine

import (
	"context"
	"time"

	"github.com/linkchecker-go/linkcheck/urlitem"
)

// RetryPolicy configures exponential backoff for transient protocol
// failures, grounded on the teacher's crawler/retry.go.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy mirrors the teacher's defaults: two retries, 1s base,
// 30s cap.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, BaseDelay: time.Second, MaxDelay: 30 * time.Second}
}

// retryableTags are the warning tags worth a backoff-and-retry: transient
// network/server conditions rather than a structural defect in the URL or
// page.
var retryableTags = map[urlitem.WarningTag]bool{
	urlitem.WarnTimeout:     true,
	urlitem.WarnUnreachable: true,
	urlitem.WarnDNSError:    true,
}

func shouldRetryOutcome(warning *urlitem.Warning) bool {
	return warning != nil && retryableTags[warning.Tag]
}

// withRetry runs check, retrying on a retryable outcome with exponential
// backoff bounded by policy, honoring ctx cancellation during the wait.
func withRetry(ctx context.Context, policy RetryPolicy, check func(context.Context) checkResult) checkResult {
	backoff := policy.BaseDelay
	var last checkResult

	for attempt := 0; attempt <= policy.MaxRetries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return last
			case <-timer.C:
			}
			backoff *= 2
			if backoff > policy.MaxDelay {
				backoff = policy.MaxDelay
			}
		}
		last = check(ctx)
		if !shouldRetryOutcome(last.warning) {
			return last
		}
	}
	return last
}
