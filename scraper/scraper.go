package scraper

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/shelfwatch/config"
	"github.com/use-agent/shelfwatch/models"
)

// Scraper owns one browser for the duration of a batch (or one interactive
// session). Pages are created per pincode and never pooled or reused across
// pincodes.
type Scraper struct {
	browser    *rod.Browser
	launcher   *launcher.Launcher
	browserCfg config.BrowserConfig
	scraperCfg config.ScraperConfig
	site       config.SiteConfig
	selectors  config.SelectorConfig
	refetcher  *Refetcher
	closeOnce  sync.Once
}

// NewScraper launches a headless browser and connects to it.
// Browser-launch failure is fatal to the caller's whole run.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	l := launcher.New().
		Headless(cfg.Browser.Headless).
		NoSandbox(cfg.Browser.NoSandbox)

	if cfg.Browser.BrowserBin != "" {
		l = l.Bin(cfg.Browser.BrowserBin)
	}
	if cfg.Browser.DefaultProxy != "" {
		l = l.Proxy(cfg.Browser.DefaultProxy)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-prompt-on-repost"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	return &Scraper{
		browser:    browser,
		launcher:   l,
		browserCfg: cfg.Browser,
		scraperCfg: cfg.Scraper,
		site:       cfg.Site,
		selectors:  cfg.Selectors,
		refetcher:  NewRefetcher(cfg.Browser.DefaultProxy),
	}, nil
}

// NewPage opens a fresh page on the site root. The page carries the stealth
// script when enabled; callers own the page and must Close it.
func (s *Scraper) NewPage(ctx context.Context) (*Page, error) {
	pg, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, models.NewScrapeError(
			models.ErrCodeBrowserCrash,
			"failed to create page",
			err,
		)
	}

	if s.browserCfg.Stealth {
		if _, evalErr := pg.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	p := &Page{
		pg:         pg,
		scraperCfg: s.scraperCfg,
		site:       s.site,
		selectors:  s.selectors,
		refetcher:  s.refetcher,
	}
	if err := p.gotoRoot(ctx); err != nil {
		_ = pg.Close()
		return nil, err
	}
	return p, nil
}

// Close shuts the browser down exactly once. Close failures are swallowed;
// the launcher kill is the backstop against zombie Chrome processes.
func (s *Scraper) Close() {
	s.closeOnce.Do(func() {
		slog.Info("closing browser")
		if err := s.browser.Close(); err != nil {
			slog.Warn("browser close failed", "error", err)
		}
		s.launcher.Kill()
	})
}
