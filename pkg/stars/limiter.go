package stars

import (
	"context"
	"time"

	"github.com/chainatlas/chainatlas/pkg/integrations/github"
)

// DefaultDelay is the base inter-batch delay. The GraphQL rate budget
// refills slowly enough that back-to-back aggregated queries burn through
// it; this default keeps a full corpus run inside one budget window.
const DefaultDelay = 9 * time.Second

// Limiter paces batch dispatch against the API's reported rate-limit
// budget. The first dispatch passes immediately; after each batch,
// [Limiter.Observe] schedules the earliest time the next dispatch may go
// out, scaling the base delay up as the remaining budget depletes.
//
// Limiter is not goroutine-safe: batch dispatch is a single control flow.
// Should batches ever be issued concurrently, all dispatch must still be
// serialized through one shared Limiter.
type Limiter struct {
	base time.Duration
	max  time.Duration
	next time.Time
	now  func() time.Time
}

// NewLimiter creates a Limiter with the given base inter-batch delay.
// A non-positive base falls back to DefaultDelay.
func NewLimiter(base time.Duration) *Limiter {
	if base <= 0 {
		base = DefaultDelay
	}
	return &Limiter{
		base: base,
		max:  8 * base,
		now:  time.Now,
	}
}

// Wait blocks until the limiter permits the next dispatch, or until ctx is
// cancelled. It never releases before the delay computed by the last
// Observe call has elapsed.
func (l *Limiter) Wait(ctx context.Context) error {
	remaining := l.next.Sub(l.now())
	if remaining <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(remaining):
		return nil
	}
}

// Observe records the rate-limit counters from a completed batch and
// schedules the next permitted dispatch. With a healthy budget the delay
// stays at base; as used approaches remaining the delay grows
// proportionally, and an exhausted budget backs off to the maximum.
func (l *Limiter) Observe(rate github.RateInfo) {
	l.next = l.now().Add(l.delayFor(rate))
}

func (l *Limiter) delayFor(rate github.RateInfo) time.Duration {
	if rate.Remaining <= 0 {
		return l.max
	}
	factor := 1 + float64(rate.Used)/float64(rate.Remaining)
	d := time.Duration(float64(l.base) * factor)
	return min(d, l.max)
}
