package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/shelfwatch/config"
	"github.com/use-agent/shelfwatch/extract"
	"github.com/use-agent/shelfwatch/models"
)

const clickLeft = proto.InputMouseButtonLeft

// Page wraps one browser tab bound to a single delivery location. It is
// reused across all search terms for that location and is not safe for
// concurrent use; the batch layer drives one operation at a time.
type Page struct {
	pg         *rod.Page
	scraperCfg config.ScraperConfig
	site       config.SiteConfig
	selectors  config.SelectorConfig
	refetcher  *Refetcher

	location string
	// lastCapture remembers the most recent payload exchange so a later
	// timed-out race can re-fetch the search API directly.
	lastCapture *extract.Capture
}

// Location returns the verified address label, if a location has been set.
func (p *Page) Location() string { return p.location }

// Close closes the underlying tab. Close failures are swallowed.
func (p *Page) Close() error {
	if err := p.pg.Close(); err != nil {
		slog.Warn("page close failed", "error", err)
	}
	return nil
}

// gotoRoot loads the site root.
func (p *Page) gotoRoot(ctx context.Context) error {
	pg := p.pg.Context(ctx).Timeout(p.scraperCfg.NavTimeout)
	if err := pg.Navigate(p.site.BaseURL); err != nil {
		return categorizeError(err, "navigation to site root failed")
	}
	if err := pg.WaitLoad(); err != nil {
		slog.Debug("site root load wait did not settle", "error", err)
	}
	return nil
}

// ensureRoot navigates to the site root only if the page is elsewhere.
func (p *Page) ensureRoot(ctx context.Context) error {
	current := p.evalString(`() => window.location.href`)
	if current != "" && strings.HasPrefix(current, p.site.BaseURL) {
		if u, err := url.Parse(current); err == nil && (u.Path == "" || u.Path == "/") {
			return nil
		}
	}
	return p.gotoRoot(ctx)
}

// Search navigates directly to the search-results URL for term and races
// the product-payload capture against its timeout. The returned capture
// holds either the intercepted JSON, a directly re-fetched payload, or the
// rendered HTML for DOM fallback extraction.
//
// A navigation failure is non-fatal to the batch: the caller logs it and
// the term contributes zero products.
func (p *Page) Search(ctx context.Context, term string) (*extract.Capture, error) {
	// Arm before navigating, or the payload response can slip past.
	trap := armResponseTrap(p.pg)
	defer trap.Stop()

	target := fmt.Sprintf(p.site.SearchURL, url.QueryEscape(term))
	pg := p.pg.Context(ctx).Timeout(p.scraperCfg.NavTimeout)
	if err := pg.Navigate(target); err != nil {
		return nil, categorizeError(err, "navigation to search results failed")
	}

	if !sleep(ctx, p.scraperCfg.SearchSettle) {
		return nil, ctx.Err()
	}

	p.waitReady(ctx)

	captured, ok := trap.Wait(ctx, p.scraperCfg.CaptureTimeout)
	if ok {
		capture := &extract.Capture{
			Payload:         captured.payload,
			HasPayload:      true,
			SourceURL:       captured.sourceURL,
			RequestHeaders:  captured.requestHeaders,
			ResponseHeaders: captured.responseHeaders,
		}
		p.lastCapture = capture
		return capture, nil
	}

	slog.Warn("no product payload captured before timeout, using fallback",
		"term", term, "timeout", p.scraperCfg.CaptureTimeout)
	return p.fallbackCapture(ctx, term), nil
}

// fallbackCapture is the losing-branch path of the response race: first a
// direct HTTP re-fetch of the previously captured payload URL with the
// query swapped in, then a snapshot of the rendered HTML.
func (p *Page) fallbackCapture(ctx context.Context, term string) *extract.Capture {
	if p.lastCapture != nil && p.refetcher != nil {
		if refetchURL, ok := rewriteQuery(p.lastCapture.SourceURL, term); ok {
			payload, err := p.refetcher.FetchPayload(ctx, refetchURL, p.lastCapture.RequestHeaders, p.cookieHeader())
			if err == nil {
				slog.Info("payload re-fetched directly", "term", term, "url", refetchURL)
				return &extract.Capture{
					Payload:    payload,
					HasPayload: true,
					SourceURL:  refetchURL,
				}
			}
			slog.Debug("direct payload refetch failed", "term", term, "error", err)
		}
	}

	html, err := p.pg.Context(ctx).HTML()
	if err != nil {
		slog.Warn("fallback HTML snapshot failed", "term", term, "error", err)
		return &extract.Capture{TimedOut: true}
	}
	return &extract.Capture{TimedOut: true, HTML: html}
}

// waitReady confirms the search results rendered, via cascading probes:
// loading indicator gone, then a product card, then an explicit no-results
// state, and finally a delay plus image-count / currency-glyph heuristics.
// Readiness is advisory; extraction proceeds either way.
func (p *Page) waitReady(ctx context.Context) {
	pg := p.pg.Context(ctx)

	if anyPresent(pg, p.selectors.LoadingIndicators) {
		if !waitGone(ctx, pg, p.selectors.LoadingIndicators, p.scraperCfg.CaptureTimeout) {
			slog.Debug("loading indicator still present")
		}
	}

	if _, sel, ok := firstMatch(pg, p.selectors.ProductCards, p.scraperCfg.QuickProbeTimeout); ok {
		slog.Debug("product card present", "selector", sel)
		return
	}

	if anyPresent(pg, p.selectors.NoResults) {
		slog.Debug("explicit no-results state")
		return
	}

	if !sleep(ctx, p.scraperCfg.ReadyExtraDelay) {
		return
	}
	imageCount := p.evalInt(`() => document.images.length`)
	hasCurrency := p.evalBool(`() => (document.body && document.body.innerText || "").includes("₹")`)
	if imageCount > 3 || hasCurrency {
		slog.Debug("heuristic readiness satisfied", "images", imageCount, "currencyGlyph", hasCurrency)
	} else {
		slog.Warn("search results may not have rendered", "images", imageCount)
	}
}

// cookieHeader serializes the page's cookies for the refetch path.
func (p *Page) cookieHeader() string {
	cookies, err := p.pg.Cookies(nil)
	if err != nil || len(cookies) == 0 {
		return ""
	}
	parts := make([]string, 0, len(cookies))
	for _, c := range cookies {
		parts = append(parts, c.Name+"="+c.Value)
	}
	return strings.Join(parts, "; ")
}

// rewriteQuery swaps the search-term query parameter of a captured payload
// URL. Returns false when no recognizable term parameter exists.
func rewriteQuery(sourceURL, term string) (string, bool) {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return "", false
	}
	q := u.Query()
	for _, key := range []string{"q", "query", "search", "term"} {
		if q.Has(key) {
			q.Set(key, term)
			u.RawQuery = q.Encode()
			return u.String(), true
		}
	}
	return "", false
}

func (p *Page) evalString(js string) string {
	res, err := p.pg.Eval(js)
	if err != nil {
		return ""
	}
	return res.Value.Str()
}

func (p *Page) evalInt(js string) int {
	res, err := p.pg.Eval(js)
	if err != nil {
		return 0
	}
	return res.Value.Int()
}

func (p *Page) evalBool(js string) bool {
	res, err := p.pg.Eval(js)
	if err != nil {
		return false
	}
	return res.Value.Bool()
}

// categorizeError wraps raw errors into typed ScrapeErrors.
func categorizeError(err error, msg string) *models.ScrapeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(models.ErrCodeTimeout, msg, err)
	case errors.Is(err, context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "operation canceled", err)
	default:
		return models.NewScrapeError(models.ErrCodeNavigation, msg, err)
	}
}
