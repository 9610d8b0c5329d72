package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"

	"github.com/use-agent/shelfwatch/config"
	"github.com/use-agent/shelfwatch/extract"
	"github.com/use-agent/shelfwatch/match"
	"github.com/use-agent/shelfwatch/models"
	"github.com/use-agent/shelfwatch/scraper"
)

// Page is one browser tab bound to a delivery location.
type Page interface {
	SetLocation(ctx context.Context, locationText string) (string, error)
	Search(ctx context.Context, term string) (*extract.Capture, error)
	Close() error
}

// Browser owns pages for one batch run.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close()
}

// Launcher starts a browser. Launch failure is fatal to the whole batch.
type Launcher func() (Browser, error)

// RodLauncher launches a real rod-backed browser from config.
func RodLauncher(cfg *config.Config) Launcher {
	return func() (Browser, error) {
		sc, err := scraper.NewScraper(cfg)
		if err != nil {
			return nil, err
		}
		return rodBrowser{sc}, nil
	}
}

type rodBrowser struct{ sc *scraper.Scraper }

func (b rodBrowser) NewPage(ctx context.Context) (Page, error) { return b.sc.NewPage(ctx) }
func (b rodBrowser) Close()                                    { b.sc.Close() }

// Runner drives one strictly sequential batch: one page, one term in
// flight at a time, across all pincodes and terms. Sequencing keeps the
// response-interception race unambiguous, since only one listener is ever
// active per page.
type Runner struct {
	cfg     *config.Config
	launch  Launcher
	filters []match.Filter
	sink    models.EventSink
	limiter *rate.Limiter
}

// NewRunner creates a Runner. A nil sink discards events.
func NewRunner(cfg *config.Config, launch Launcher, sink models.EventSink) *Runner {
	if sink == nil {
		sink = models.NopSink{}
	}
	rps := cfg.Scraper.CellsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Runner{
		cfg:     cfg,
		launch:  launch,
		filters: match.Pipeline(),
		sink:    sink,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Run executes the full pincode × expanded-term cross product and writes
// one CSV file named by a generation timestamp.
//
// Error policy: invalid input and browser-launch failure are fatal; a
// location failure skips that pincode's terms entirely; a navigation
// failure yields zero products for that term. The browser is closed
// exactly once via the deferred cleanup regardless of outcome.
func (r *Runner) Run(ctx context.Context, req *models.BatchRequest) (*models.BatchResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	expanded := ExpandTerms(req.SearchTerms, req.Quantities)

	browser, err := r.launch()
	if err != nil {
		return nil, err
	}
	defer browser.Close()

	service := r.cfg.Site.Service
	cardSels := extract.CardSelectors{
		Card:     r.cfg.Selectors.ProductCards,
		Name:     r.cfg.Selectors.CardName,
		Price:    r.cfg.Selectors.CardPrice,
		Quantity: r.cfg.Selectors.CardQuantity,
	}

	var rows []models.OutputRow

	for _, pincode := range req.Pincodes {
		if ctx.Err() != nil {
			break
		}
		if err := r.limiter.Wait(ctx); err != nil {
			break
		}

		page, err := browser.NewPage(ctx)
		if err != nil {
			slog.Error("page creation failed, skipping pincode", "pincode", pincode, "error", err)
			r.sink.Publish(models.Event{Name: models.EventError, Service: service, Error: err.Error()})
			continue
		}

		label, err := page.SetLocation(ctx, pincode)
		if err != nil {
			// No partial credit: every term for this pincode is skipped.
			slog.Error("location not verified, skipping pincode",
				"pincode", pincode, "error", err)
			r.sink.Publish(models.Event{Name: models.EventError, Service: service, Error: err.Error()})
			_ = page.Close()
			continue
		}
		r.sink.Publish(models.Event{Name: models.EventLocationSet, Service: service, Location: label})

		for _, term := range expanded {
			if ctx.Err() != nil {
				break
			}
			if err := r.limiter.Wait(ctx); err != nil {
				break
			}

			capture, err := page.Search(ctx, term)
			if err != nil {
				slog.Warn("search navigation failed, zero products for term",
					"pincode", pincode, "term", term, "error", err)
				continue
			}

			products := capture.Products(cardSels)
			query := match.NewQuery(term, match.DefaultTolerance)
			kept := match.Apply(query, products, r.filters)
			slog.Info("search cell done",
				"pincode", pincode, "term", term,
				"extracted", len(products), "kept", len(kept))

			r.sink.Publish(models.Event{
				Name: models.EventSearchResults, Service: service,
				Query: term, Products: kept,
			})
			for _, p := range kept {
				rows = append(rows, models.OutputRow{
					Pincode:    pincode,
					SearchTerm: term,
					Service:    service,
					Product:    p,
				})
			}
		}

		_ = page.Close()
	}

	filename := fmt.Sprintf("%s_%s.csv",
		r.cfg.Output.FilePrefix, time.Now().Format("20060102_150405"))
	path := filepath.Join(r.cfg.Output.Dir, filename)
	if err := WriteCSV(path, rows); err != nil {
		return nil, models.NewScrapeError(models.ErrCodeInternal, "csv write failed", err)
	}
	slog.Info("batch complete", "file", path, "rows", len(rows))

	return &models.BatchResult{
		File:                path,
		Filename:            filename,
		RowCount:            len(rows),
		Items:               rows,
		Pincodes:            req.Pincodes,
		SearchTerms:         req.SearchTerms,
		Quantities:          req.Quantities,
		ExpandedSearchTerms: expanded,
	}, nil
}
