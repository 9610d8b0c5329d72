package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	Site      SiteConfig
	Selectors SelectorConfig
	Output    OutputConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL for all browser and refetch traffic.
	DefaultProxy string

	// Stealth injects anti-bot-detection JS on every new page.
	Stealth bool // default: true
}

// ScraperConfig controls per-page scraping behavior. All waits are bounded
// except the fixed settle delays, which are unconditional sleeps.
type ScraperConfig struct {
	// NavTimeout is the max time for a single page navigation.
	NavTimeout time.Duration // default: 60s

	// CaptureTimeout bounds the race between the product-payload response
	// and the fallback branch.
	CaptureTimeout time.Duration // default: 30s

	// ProbeTimeout bounds each candidate selector probe for the location
	// text input.
	ProbeTimeout time.Duration // default: 20s

	// QuickProbeTimeout bounds each probe for triggers, suggestions,
	// labels and product cards.
	QuickProbeTimeout time.Duration // default: 5s

	// LocationSettle is the fixed delay after typing the location text,
	// letting the suggestion panel populate.
	LocationSettle time.Duration // default: 3s

	// SearchSettle is the fixed delay after loading the search-results URL.
	SearchSettle time.Duration // default: 2s

	// SuggestionGone bounds the wait for the suggestion panel to disappear
	// after a selection. Timing out here is non-fatal.
	SuggestionGone time.Duration // default: 10s

	// ReadyExtraDelay is the additional wait before the heuristic
	// readiness check when no card or no-results selector matched.
	ReadyExtraDelay time.Duration // default: 3s

	// LocationAttempts is the total number of location-set attempts
	// (first try included) before the pincode is skipped.
	LocationAttempts int // default: 2

	// CellsPerSecond paces navigation between search cells.
	CellsPerSecond float64 // default: 1.0
}

// SiteConfig identifies the storefront being scraped.
type SiteConfig struct {
	// Service is the storefront name recorded in every output row.
	Service string // default: "blinkit"

	// BaseURL is the site root the location picker lives on.
	BaseURL string // default: "https://blinkit.com"

	// SearchURL is the search-results URL template; %s receives the
	// percent-encoded query.
	SearchURL string // default: "https://blinkit.com/s/?q=%s"
}

// SelectorConfig holds the ordered selector fallback lists. Each list is
// probed first-match-wins, so incremental markup drift is absorbed by
// editing the environment, not the code.
type SelectorConfig struct {
	// LocationTriggers open the location picker.
	LocationTriggers []string

	// LocationInputs locate the location text input.
	LocationInputs []string

	// LocationSuggestions match entries in the suggestion panel.
	LocationSuggestions []string

	// LocationLabels read the confirmed delivery-address label.
	LocationLabels []string

	// LoadingIndicators mark in-progress search rendering.
	LoadingIndicators []string

	// ProductCards mark rendered product listings.
	ProductCards []string

	// NoResults marks an explicit empty search-results state.
	NoResults []string

	// CardName/CardPrice/CardQuantity extract fields from a product card
	// in the DOM fallback path. Relative to a ProductCards match.
	CardName     []string
	CardPrice    []string
	CardQuantity []string
}

// OutputConfig controls the CSV export.
type OutputConfig struct {
	// Dir is the directory CSV files are written to.
	Dir string // default: "."

	// FilePrefix is the basename prefix; the generation timestamp and
	// ".csv" are appended.
	FilePrefix string // default: "products"
}

// RateLimitConfig controls per-client API rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP.
	RequestsPerSecond float64 // default: 2

	// Burst is the maximum burst size per client IP.
	Burst int // default: 5
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("SHELFWATCH_HOST", "0.0.0.0"),
			Port: envIntOr("SHELFWATCH_PORT", 8080),
			Mode: envOr("SHELFWATCH_MODE", "release"),
		},
		Browser: BrowserConfig{
			Headless:     envBoolOr("SHELFWATCH_HEADLESS", true),
			NoSandbox:    envBoolOr("SHELFWATCH_NO_SANDBOX", false),
			BrowserBin:   os.Getenv("SHELFWATCH_BROWSER_BIN"),
			DefaultProxy: os.Getenv("SHELFWATCH_PROXY"),
			Stealth:      envBoolOr("SHELFWATCH_STEALTH", true),
		},
		Scraper: ScraperConfig{
			NavTimeout:        envDurationOr("SHELFWATCH_NAV_TIMEOUT", 60*time.Second),
			CaptureTimeout:    envDurationOr("SHELFWATCH_CAPTURE_TIMEOUT", 30*time.Second),
			ProbeTimeout:      envDurationOr("SHELFWATCH_PROBE_TIMEOUT", 20*time.Second),
			QuickProbeTimeout: envDurationOr("SHELFWATCH_QUICK_PROBE_TIMEOUT", 5*time.Second),
			LocationSettle:    envDurationOr("SHELFWATCH_LOCATION_SETTLE", 3*time.Second),
			SearchSettle:      envDurationOr("SHELFWATCH_SEARCH_SETTLE", 2*time.Second),
			SuggestionGone:    envDurationOr("SHELFWATCH_SUGGESTION_GONE", 10*time.Second),
			ReadyExtraDelay:   envDurationOr("SHELFWATCH_READY_EXTRA_DELAY", 3*time.Second),
			LocationAttempts:  envIntOr("SHELFWATCH_LOCATION_ATTEMPTS", 2),
			CellsPerSecond:    envFloatOr("SHELFWATCH_CELL_RPS", 1.0),
		},
		Site: SiteConfig{
			Service:   envOr("SHELFWATCH_SERVICE", "blinkit"),
			BaseURL:   envOr("SHELFWATCH_BASE_URL", "https://blinkit.com"),
			SearchURL: envOr("SHELFWATCH_SEARCH_URL", "https://blinkit.com/s/?q=%s"),
		},
		Selectors: SelectorConfig{
			LocationTriggers: envSliceOr("SHELFWATCH_SEL_LOCATION_TRIGGERS", []string{
				`[class*="LocationBar"]`,
				`[class*="location-bar"]`,
				`[data-testid="address-bar"]`,
				`button[class*="Location"]`,
			}),
			LocationInputs: envSliceOr("SHELFWATCH_SEL_LOCATION_INPUTS", []string{
				`input[name="select-locality"]`,
				`input[placeholder*="search delivery location"]`,
				`input[placeholder*="delivery location"]`,
				`input[type="text"][class*="Location"]`,
			}),
			LocationSuggestions: envSliceOr("SHELFWATCH_SEL_LOCATION_SUGGESTIONS", []string{
				`[class*="LocationSearchList"] > div`,
				`[class*="address-suggestion"]`,
				`[class*="suggestion-item"]`,
				`[role="listbox"] [role="option"]`,
			}),
			LocationLabels: envSliceOr("SHELFWATCH_SEL_LOCATION_LABELS", []string{
				`[class*="LocationBar__Title"]`,
				`[class*="LocationBar__Subtitle"]`,
				`[class*="delivery-address"]`,
				`[data-testid="address-bar"] span`,
			}),
			LoadingIndicators: envSliceOr("SHELFWATCH_SEL_LOADING", []string{
				`[class*="shimmer"]`,
				`[class*="Loader"]`,
				`[class*="loading"]`,
			}),
			ProductCards: envSliceOr("SHELFWATCH_SEL_PRODUCT_CARDS", []string{
				`[data-test-id="plp-product"]`,
				`[class*="Product__Wrapper"]`,
				`[class*="product-card"]`,
				`[id^="prid-"]`,
			}),
			NoResults: envSliceOr("SHELFWATCH_SEL_NO_RESULTS", []string{
				`[class*="EmptyState"]`,
				`[class*="no-results"]`,
				`[class*="empty-search"]`,
			}),
			CardName: envSliceOr("SHELFWATCH_SEL_CARD_NAME", []string{
				`[class*="Product__Name"]`,
				`[class*="product-name"]`,
				`div[class*="name"]`,
			}),
			CardPrice: envSliceOr("SHELFWATCH_SEL_CARD_PRICE", []string{
				`[class*="Product__Price"]`,
				`[class*="product-price"]`,
				`div[class*="price"]`,
			}),
			CardQuantity: envSliceOr("SHELFWATCH_SEL_CARD_QUANTITY", []string{
				`[class*="Product__Variant"]`,
				`[class*="product-variant"]`,
				`div[class*="variant"]`,
			}),
		},
		Output: OutputConfig{
			Dir:        envOr("SHELFWATCH_OUTPUT_DIR", "."),
			FilePrefix: envOr("SHELFWATCH_OUTPUT_PREFIX", "products"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("SHELFWATCH_RATE_RPS", 2.0),
			Burst:             envIntOr("SHELFWATCH_RATE_BURST", 5),
		},
		Log: LogConfig{
			Level:  envOr("SHELFWATCH_LOG_LEVEL", "info"),
			Format: envOr("SHELFWATCH_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
