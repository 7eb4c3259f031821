package fetch

import (
	"context"
	"sync"
	"time"
)

// DefaultHostSpacing is the minimum gap between two requests to the same
// host. Calls arriving sooner are delayed, not dropped.
const DefaultHostSpacing = 150 * time.Millisecond

// hostGate enforces per-host request spacing. Bookkeeping is process-wide
// and owned exclusively by the fetch client.
type hostGate struct {
	mu      sync.Mutex
	spacing time.Duration
	last    map[string]time.Time
}

func newHostGate(spacing time.Duration) *hostGate {
	if spacing <= 0 {
		spacing = DefaultHostSpacing
	}
	return &hostGate{spacing: spacing, last: make(map[string]time.Time)}
}

// Wait blocks until the host's next slot, or until ctx is done. The slot is
// reserved before returning so concurrent callers space out correctly.
func (g *hostGate) Wait(ctx context.Context, host string) error {
	g.mu.Lock()
	now := time.Now()
	next := g.last[host].Add(g.spacing)
	if next.Before(now) {
		next = now
	}
	g.last[host] = next
	g.mu.Unlock()

	if delay := time.Until(next); delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil
}
