// Package session maps client identities to owned browser resources for
// the interactive layer. Each session holds an isolated browser + page +
// location triple; no state crosses sessions. Callers issue operations on
// one session one at a time; concurrent operations against the same
// session's page are not defended against.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/use-agent/shelfwatch/config"
	"github.com/use-agent/shelfwatch/extract"
	"github.com/use-agent/shelfwatch/match"
	"github.com/use-agent/shelfwatch/models"
	"github.com/use-agent/shelfwatch/scraper"
)

// Registry owns all live sessions. Sessions are created on first use and
// torn down on disconnect; shutdown force-closes every tracked browser.
type Registry struct {
	mu       sync.Mutex
	cfg      *config.Config
	sink     models.EventSink
	sessions map[string]*Session
}

// NewRegistry creates an empty registry. A nil sink discards events.
func NewRegistry(cfg *config.Config, sink models.EventSink) *Registry {
	if sink == nil {
		sink = models.NopSink{}
	}
	return &Registry{
		cfg:      cfg,
		sink:     sink,
		sessions: make(map[string]*Session),
	}
}

// Acquire returns the session for id, launching a browser and opening its
// page on first use.
func (r *Registry) Acquire(ctx context.Context, id string) (*Session, error) {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		r.mu.Unlock()
		return s, nil
	}
	r.mu.Unlock()

	// Launching outside the lock keeps other sessions responsive; the
	// double-check below resolves a racing first use of the same id.
	sc, err := scraper.NewScraper(r.cfg)
	if err != nil {
		r.sink.Publish(models.Event{Name: models.EventError, Service: r.cfg.Site.Service, Error: err.Error()})
		return nil, err
	}
	page, err := sc.NewPage(ctx)
	if err != nil {
		sc.Close()
		r.sink.Publish(models.Event{Name: models.EventError, Service: r.cfg.Site.Service, Error: err.Error()})
		return nil, err
	}

	s := &Session{
		ID:      id,
		cfg:     r.cfg,
		sink:    r.sink,
		scraper: sc,
		page:    page,
		filters: match.Pipeline(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[id]; ok {
		sc.Close()
		return existing, nil
	}
	r.sessions[id] = s
	slog.Info("session created", "session", id)
	return s, nil
}

// Lookup returns an existing session without creating one.
func (r *Registry) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Release tears down the session for id. Unknown ids are a no-op.
func (r *Registry) Release(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if !ok {
		return
	}
	s.close()
	r.sink.Publish(models.Event{Name: models.EventBrowserClosed, Service: r.cfg.Site.Service})
	slog.Info("session released", "session", id)
}

// CloseAll force-closes every tracked browser. Called on process shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		s.close()
	}
	if len(all) > 0 {
		slog.Info("all sessions closed", "count", len(all))
	}
}

// Session is one client's owned browser bundle.
type Session struct {
	ID       string
	cfg      *config.Config
	sink     models.EventSink
	scraper  *scraper.Scraper
	page     *scraper.Page
	filters  []match.Filter
	location string
}

// SetLocation sets and verifies the session's delivery location.
func (s *Session) SetLocation(ctx context.Context, locationText string) (string, error) {
	label, err := s.page.SetLocation(ctx, locationText)
	if err != nil {
		s.sink.Publish(models.Event{Name: models.EventError, Service: s.cfg.Site.Service, Error: err.Error()})
		return "", err
	}
	s.location = label
	s.sink.Publish(models.Event{Name: models.EventLocationSet, Service: s.cfg.Site.Service, Location: label})
	return label, nil
}

// Search runs one query on the session's page and returns the filtered
// products.
func (s *Session) Search(ctx context.Context, term string) ([]models.Product, error) {
	capture, err := s.page.Search(ctx, term)
	if err != nil {
		s.sink.Publish(models.Event{Name: models.EventError, Service: s.cfg.Site.Service, Error: err.Error()})
		return nil, err
	}

	cardSels := extract.CardSelectors{
		Card:     s.cfg.Selectors.ProductCards,
		Name:     s.cfg.Selectors.CardName,
		Price:    s.cfg.Selectors.CardPrice,
		Quantity: s.cfg.Selectors.CardQuantity,
	}
	products := capture.Products(cardSels)
	kept := match.Apply(match.NewQuery(term, match.DefaultTolerance), products, s.filters)

	s.sink.Publish(models.Event{
		Name: models.EventSearchResults, Service: s.cfg.Site.Service,
		Query: term, Products: kept,
	})
	return kept, nil
}

// Location returns the verified address label, if any.
func (s *Session) Location() string { return s.location }

func (s *Session) close() {
	_ = s.page.Close()
	s.scraper.Close()
}
