package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/ysmood/gson"

	"github.com/use-agent/shelfwatch/config"
	"github.com/use-agent/shelfwatch/extract"
	"github.com/use-agent/shelfwatch/models"
)

// onionsPayload mimics an intercepted search response: one matching
// in-stock product, one sold-out product, one sponsored product.
const onionsPayload = `{
	"response": {
		"snippets": [
			{
				"widget_type": "product_card_snippet",
				"data": {
					"identity": {"id": "prod-1"},
					"name": {"text": "Fresh Onions"},
					"normal_price": {"text": "₹45"},
					"variant": {"text": "1 kg"},
					"eta_tag": {"title": {"text": "8 mins"}}
				}
			},
			{
				"widget_type": "product_card_snippet",
				"data": {
					"identity": {"id": "prod-2"},
					"name": {"text": "Budget Onions"},
					"normal_price": {"text": "₹30"},
					"variant": {"text": "1 kg"},
					"eta_tag": {"title": {"text": "8 mins"}},
					"is_sold_out": true
				}
			},
			{
				"widget_type": "ad_banner",
				"data": {
					"identity": {"id": "prod-3"},
					"name": {"text": "Sponsored Onions"},
					"variant": {"text": "1 kg"}
				}
			}
		]
	}
}`

type fakePage struct {
	mu        sync.Mutex
	locErr    error
	searchErr error
	payload   string
	searches  []string
	closes    int
}

func (p *fakePage) SetLocation(ctx context.Context, locationText string) (string, error) {
	if p.locErr != nil {
		return "", p.locErr
	}
	return "Delivery to " + locationText, nil
}

func (p *fakePage) Search(ctx context.Context, term string) (*extract.Capture, error) {
	p.mu.Lock()
	p.searches = append(p.searches, term)
	p.mu.Unlock()
	if p.searchErr != nil {
		return nil, p.searchErr
	}
	return &extract.Capture{Payload: gson.NewFrom(p.payload), HasPayload: true}, nil
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	p.closes++
	p.mu.Unlock()
	return nil
}

type fakeBrowser struct {
	page   *fakePage
	closes int
}

func (b *fakeBrowser) NewPage(ctx context.Context) (Page, error) { return b.page, nil }
func (b *fakeBrowser) Close()                                    { b.closes++ }

type recordingSink struct {
	mu     sync.Mutex
	events []models.Event
}

func (s *recordingSink) Publish(e models.Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()
}

func (s *recordingSink) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Name
	}
	return out
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Load()
	cfg.Output.Dir = t.TempDir()
	cfg.Scraper.CellsPerSecond = 1000 // no pacing in tests
	return cfg
}

func TestRunner_Run(t *testing.T) {
	cfg := testConfig(t)
	page := &fakePage{payload: onionsPayload}
	browser := &fakeBrowser{page: page}
	sink := &recordingSink{}

	runner := NewRunner(cfg, func() (Browser, error) { return browser, nil }, sink)
	req := &models.BatchRequest{
		Pincodes:    []string{"575006"},
		SearchTerms: []string{"onions"},
		Quantities:  []string{"1kg"},
	}

	result, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.ExpandedSearchTerms) != 1 || result.ExpandedSearchTerms[0] != "onions 1kg" {
		t.Errorf("expanded terms = %v, want [onions 1kg]", result.ExpandedSearchTerms)
	}
	if len(page.searches) != 1 || page.searches[0] != "onions 1kg" {
		t.Errorf("searched terms = %v", page.searches)
	}

	// Sold-out and sponsored listings are cut; only the fresh one survives.
	if result.RowCount != 1 {
		t.Fatalf("RowCount = %d, want 1 (items: %+v)", result.RowCount, result.Items)
	}
	row := result.Items[0]
	if row.Pincode != "575006" || row.SearchTerm != "onions 1kg" || row.Service != cfg.Site.Service {
		t.Errorf("row metadata = %+v", row)
	}
	if row.Name != "Fresh Onions" || row.Quantity != "1 kg" || !row.Available {
		t.Errorf("row product = %+v", row.Product)
	}

	raw, err := os.ReadFile(result.File)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	records, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("csv has %d records, want header + 1 row", len(records))
	}

	if browser.closes != 1 {
		t.Errorf("browser closed %d times, want exactly once", browser.closes)
	}
	if page.closes != 1 {
		t.Errorf("page closed %d times, want exactly once", page.closes)
	}

	want := []string{models.EventLocationSet, models.EventSearchResults}
	if got := sink.names(); !equalSlices(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestRunner_Run_LocationFailureSkipsPincode(t *testing.T) {
	cfg := testConfig(t)
	page := &fakePage{
		payload: onionsPayload,
		locErr:  models.NewScrapeError(models.ErrCodeLocation, "location could not be verified", nil),
	}
	browser := &fakeBrowser{page: page}
	sink := &recordingSink{}

	runner := NewRunner(cfg, func() (Browser, error) { return browser, nil }, sink)
	req := &models.BatchRequest{
		Pincodes:    []string{"575006"},
		SearchTerms: []string{"onions"},
		Quantities:  []string{},
	}

	result, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RowCount != 0 {
		t.Errorf("RowCount = %d, want 0 when location fails", result.RowCount)
	}
	if len(page.searches) != 0 {
		t.Errorf("searched %v despite location failure", page.searches)
	}
	if page.closes != 1 {
		t.Errorf("page closed %d times, want 1", page.closes)
	}
	if got := sink.names(); !equalSlices(got, []string{models.EventError}) {
		t.Errorf("events = %v, want [error]", got)
	}
}

func TestRunner_Run_SearchFailureYieldsZeroProducts(t *testing.T) {
	cfg := testConfig(t)
	page := &fakePage{
		searchErr: models.NewScrapeError(models.ErrCodeTimeout, "navigation timed out", nil),
	}
	browser := &fakeBrowser{page: page}

	runner := NewRunner(cfg, func() (Browser, error) { return browser, nil }, nil)
	req := &models.BatchRequest{
		Pincodes:    []string{"575006"},
		SearchTerms: []string{"onions", "milk"},
		Quantities:  []string{},
	}

	result, err := runner.Run(context.Background(), req)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RowCount != 0 {
		t.Errorf("RowCount = %d, want 0", result.RowCount)
	}
	// Both terms are still attempted; one failure does not abort the run.
	if len(page.searches) != 2 {
		t.Errorf("searched %d terms, want 2", len(page.searches))
	}
	if browser.closes != 1 {
		t.Errorf("browser closed %d times, want 1", browser.closes)
	}
}

func TestRunner_Run_InvalidInput(t *testing.T) {
	cfg := testConfig(t)
	launched := false
	runner := NewRunner(cfg, func() (Browser, error) {
		launched = true
		return &fakeBrowser{page: &fakePage{}}, nil
	}, nil)

	tests := []struct {
		name string
		req  *models.BatchRequest
	}{
		{"empty pincodes", &models.BatchRequest{SearchTerms: []string{"onions"}, Quantities: []string{}}},
		{"empty terms", &models.BatchRequest{Pincodes: []string{"575006"}, Quantities: []string{}}},
		{"nil quantities", &models.BatchRequest{Pincodes: []string{"575006"}, SearchTerms: []string{"onions"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runner.Run(context.Background(), tt.req); err == nil {
				t.Error("expected validation error")
			}
		})
	}
	if launched {
		t.Error("browser launched despite invalid input")
	}
}

func TestRunner_Run_LaunchFailure(t *testing.T) {
	cfg := testConfig(t)
	runner := NewRunner(cfg, func() (Browser, error) {
		return nil, fmt.Errorf("chrome not found")
	}, nil)
	req := &models.BatchRequest{
		Pincodes:    []string{"575006"},
		SearchTerms: []string{"onions"},
		Quantities:  []string{},
	}
	if _, err := runner.Run(context.Background(), req); err == nil {
		t.Error("expected launch error to be fatal")
	}
}
