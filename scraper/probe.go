package scraper

import (
	"context"
	"time"

	"github.com/go-rod/rod"
)

// firstMatch probes an ordered selector list, first match wins. Each probe
// waits up to per for its selector to appear; the lists are fallbacks that
// absorb incremental markup drift, not exhaustive enumerations.
func firstMatch(p *rod.Page, selectors []string, per time.Duration) (*rod.Element, string, bool) {
	for _, sel := range selectors {
		el, err := p.Timeout(per).Element(sel)
		if err == nil && el != nil {
			return el, sel, true
		}
	}
	return nil, "", false
}

// anyPresent reports whether any selector in the list currently matches,
// without waiting.
func anyPresent(p *rod.Page, selectors []string) bool {
	for _, sel := range selectors {
		if has, _, err := p.Has(sel); err == nil && has {
			return true
		}
	}
	return false
}

// waitGone polls until no selector in the list matches, or timeout elapses.
// Returns false on timeout; callers decide whether that is fatal.
func waitGone(ctx context.Context, p *rod.Page, selectors []string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !anyPresent(p, selectors) {
			return true
		}
		if !sleep(ctx, 250*time.Millisecond) {
			return false
		}
	}
	return false
}

// sleep is a context-aware fixed delay. Returns false if ctx expired first.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-ctx.Done():
		return false
	}
}
