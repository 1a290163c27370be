package stars

import (
	"context"
	"testing"
	"time"

	"github.com/chainatlas/chainatlas/pkg/integrations/github"
)

func TestDelayScalesWithBudgetDepletion(t *testing.T) {
	l := NewLimiter(time.Second)

	tests := []struct {
		name string
		rate github.RateInfo
		want time.Duration
	}{
		{name: "healthy budget", rate: github.RateInfo{Remaining: 5000, Used: 0}, want: time.Second},
		{name: "half depleted", rate: github.RateInfo{Remaining: 2500, Used: 2500}, want: 2 * time.Second},
		{name: "nearly exhausted", rate: github.RateInfo{Remaining: 1, Used: 4999}, want: 8 * time.Second},
		{name: "exhausted", rate: github.RateInfo{Remaining: 0, Used: 5000}, want: 8 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.delayFor(tt.rate); got != tt.want {
				t.Errorf("delayFor(%+v) = %v, want %v", tt.rate, got, tt.want)
			}
		})
	}
}

func TestFirstWaitPassesImmediately(t *testing.T) {
	l := NewLimiter(time.Hour)
	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Error("first Wait blocked; should pass immediately")
	}
}

func TestWaitNeverReleasesEarly(t *testing.T) {
	l := NewLimiter(50 * time.Millisecond)
	l.Observe(github.RateInfo{Remaining: 5000})

	start := time.Now()
	if err := l.Wait(context.Background()); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("Wait released after %v, before the %v delay", elapsed, 50*time.Millisecond)
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	l := NewLimiter(time.Hour)
	l.Observe(github.RateInfo{Remaining: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); err != context.Canceled {
		t.Errorf("Wait = %v, want context.Canceled", err)
	}
}
