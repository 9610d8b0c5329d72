package match

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/use-agent/shelfwatch/models"
)

// DefaultTolerance is the relative window for quantity matching (±10%).
const DefaultTolerance = 0.10

// Query is one expanded search term prepared for filtering: its token set
// and the quantity parsed out of it, if any.
type Query struct {
	Term      string
	Requested *Quantity
	Tolerance float64
}

// NewQuery parses the requested quantity out of term. tolerance is the
// relative quantity-match window (0.10 = ±10%).
func NewQuery(term string, tolerance float64) *Query {
	q := &Query{Term: term, Tolerance: tolerance}
	if parsed, ok := ParseQuantity(term); ok {
		q.Requested = &parsed
	}
	return q
}

// Filter is one independent predicate in the pipeline. Keep returns true
// when the product survives. Order affects diagnostics, not correctness.
type Filter struct {
	Name string
	Keep func(q *Query, p models.Product) bool
}

// preservedRe matches preservation indicators in product names. Only
// consulted for tomato searches, where processed variants (sun-dried,
// pickled, canned) crowd out fresh produce.
var preservedRe = regexp.MustCompile(
	`(?i)\b(sun[\s-]?dried|pickled|canned|dehydrated|preserved|fermented)\b|\bin\s+(oil|brine)\b`)

// tomatoRe gates the processed-food filter on the search term.
var tomatoRe = regexp.MustCompile(`(?i)\b(tomato|tomatoes)\b`)

// Pipeline returns the default filter sequence.
func Pipeline() []Filter {
	return []Filter{
		{
			Name: "processed-food",
			Keep: func(q *Query, p models.Product) bool {
				if !tomatoRe.MatchString(q.Term) {
					return true
				}
				return !preservedRe.MatchString(p.Name)
			},
		},
		{
			Name: "stock",
			Keep: func(q *Query, p models.Product) bool {
				return p.Available
			},
		},
		{
			// Empty or "N/A" delivery time is a proxy for a delisted item.
			Name: "delivery-time",
			Keep: func(q *Query, p models.Product) bool {
				dt := strings.TrimSpace(p.DeliveryTime)
				return dt != "" && !strings.EqualFold(dt, "N/A")
			},
		},
		{
			// Fail-open: no requested quantity, or either side unparseable,
			// never excludes.
			Name: "quantity",
			Keep: func(q *Query, p models.Product) bool {
				if q.Requested == nil {
					return true
				}
				got, ok := ParseQuantity(p.Quantity)
				if !ok {
					return true
				}
				return Matches(*q.Requested, got, q.Tolerance)
			},
		},
		{
			Name: "term-tokens",
			Keep: func(q *Query, p models.Product) bool {
				return TermMatches(q.Term, p.Name)
			},
		},
	}
}

// Apply runs products through the filters and returns the survivors.
// Dropped products are logged at debug level with the filter that cut them.
func Apply(q *Query, products []models.Product, filters []Filter) []models.Product {
	kept := make([]models.Product, 0, len(products))
outer:
	for _, p := range products {
		for _, f := range filters {
			if !f.Keep(q, p) {
				slog.Debug("product filtered out",
					"filter", f.Name, "term", q.Term, "product", p.Name, "quantity", p.Quantity)
				continue outer
			}
		}
		kept = append(kept, p)
	}
	return kept
}
