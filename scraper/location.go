package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-rod/rod/lib/input"
	"github.com/use-agent/shelfwatch/models"
)

// pincodeRe matches a 6-digit postal code request.
var pincodeRe = regexp.MustCompile(`^\d{6}$`)

// sentinelLabels are placeholder texts the site shows before a location is
// actually set. A label equal to one of these never verifies.
var sentinelLabels = []string{
	"select location",
	"select delivery location",
	"set location",
	"detecting location",
	"n/a",
}

// SetLocation drives the location picker: open it, type locationText, pick
// the first suggestion, and read back the confirmed address label. The
// whole sequence retries with a site-root reload in between; it returns the
// verified label, or a LOCATION_FAILED error when every attempt fails.
//
// Verification: a 6-digit request must appear as a substring of the
// confirmed label; any other request accepts any non-empty, non-sentinel
// label.
func (p *Page) SetLocation(ctx context.Context, locationText string) (string, error) {
	attempts := p.scraperCfg.LocationAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		label, err := p.setLocationOnce(ctx, locationText)
		switch {
		case err != nil:
			slog.Warn("location attempt failed",
				"location", locationText, "attempt", attempt, "error", err)
		case verifyLocation(locationText, label):
			slog.Info("location set",
				"location", locationText, "label", label, "attempt", attempt)
			p.location = label
			return label, nil
		default:
			slog.Warn("location label did not verify",
				"location", locationText, "label", label, "attempt", attempt)
		}

		if attempt < attempts {
			if err := p.gotoRoot(ctx); err != nil {
				slog.Warn("site root reload between attempts failed", "error", err)
			}
		}
	}

	return "", models.NewScrapeError(
		models.ErrCodeLocation,
		fmt.Sprintf("location %q not verified after %d attempts", locationText, attempts),
		nil,
	)
}

// setLocationOnce runs one pass of the picker sequence.
func (p *Page) setLocationOnce(ctx context.Context, locationText string) (string, error) {
	pg := p.pg.Context(ctx)

	if err := p.ensureRoot(ctx); err != nil {
		return "", err
	}

	// Open the picker. Some markup states open it automatically, so a
	// trigger miss is not fatal; the input probe below is the arbiter.
	if trigger, sel, ok := firstMatch(pg, p.selectors.LocationTriggers, p.scraperCfg.QuickProbeTimeout); ok {
		if err := trigger.Click(clickLeft, 1); err != nil {
			slog.Debug("location trigger click failed", "selector", sel, "error", err)
		}
	} else {
		slog.Debug("no location trigger matched, assuming picker is open")
	}

	field, sel, ok := firstMatch(pg, p.selectors.LocationInputs, p.scraperCfg.ProbeTimeout)
	if !ok {
		return "", models.NewScrapeError(
			models.ErrCodeLocation, "no location input selector matched", nil)
	}
	slog.Debug("location input found", "selector", sel)

	// Typing over a select-all clears any previous location.
	_ = field.SelectAllText()
	if err := field.Input(locationText); err != nil {
		return "", models.NewScrapeError(
			models.ErrCodeLocation, "typing location text failed", err)
	}

	// Let the suggestion panel populate.
	if !sleep(ctx, p.scraperCfg.LocationSettle) {
		return "", ctx.Err()
	}

	if suggestion, _, ok := firstMatch(pg, p.selectors.LocationSuggestions, p.scraperCfg.QuickProbeTimeout); ok {
		if err := suggestion.Click(clickLeft, 1); err != nil {
			return "", models.NewScrapeError(
				models.ErrCodeLocation, "suggestion click failed", err)
		}
	} else if err := pg.Keyboard.Press(input.Enter); err != nil {
		return "", models.NewScrapeError(
			models.ErrCodeLocation, "no suggestion matched and Enter press failed", err)
	}

	// Panel dismissal is best-effort; some flows keep it mounted but hidden.
	if !waitGone(ctx, pg, p.selectors.LocationSuggestions, p.scraperCfg.SuggestionGone) {
		slog.Debug("suggestion panel still present after selection")
	}

	return p.readLocationLabel(ctx), nil
}

// readLocationLabel probes the confirmed-address label selectors and
// returns the first non-empty text.
func (p *Page) readLocationLabel(ctx context.Context) string {
	pg := p.pg.Context(ctx)
	for _, sel := range p.selectors.LocationLabels {
		el, err := pg.Timeout(p.scraperCfg.QuickProbeTimeout).Element(sel)
		if err != nil {
			continue
		}
		if text, err := el.Text(); err == nil {
			if text = strings.TrimSpace(text); text != "" {
				return text
			}
		}
	}
	return ""
}

// verifyLocation checks a confirmed label against the requested location.
func verifyLocation(requested, label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}
	if pincodeRe.MatchString(requested) {
		return strings.Contains(label, requested)
	}
	for _, sentinel := range sentinelLabels {
		if strings.EqualFold(label, sentinel) {
			return false
		}
	}
	return true
}
