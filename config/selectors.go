package config

import (
	"fmt"

	"github.com/andybalholm/cascadia"
)

// Validate parse-checks every configured selector list and returns one
// error per invalid selector. Selector lists come from the environment, so
// a typo would otherwise surface only as a silent probe miss mid-batch.
func (s *SelectorConfig) Validate() []error {
	var errs []error
	lists := map[string][]string{
		"location_triggers":    s.LocationTriggers,
		"location_inputs":      s.LocationInputs,
		"location_suggestions": s.LocationSuggestions,
		"location_labels":      s.LocationLabels,
		"loading_indicators":   s.LoadingIndicators,
		"product_cards":        s.ProductCards,
		"no_results":           s.NoResults,
		"card_name":            s.CardName,
		"card_price":           s.CardPrice,
		"card_quantity":        s.CardQuantity,
	}
	for name, list := range lists {
		for _, sel := range list {
			if _, err := cascadia.Parse(sel); err != nil {
				errs = append(errs, fmt.Errorf("selector list %s: %q: %w", name, sel, err))
			}
		}
	}
	return errs
}
