package match

import (
	"regexp"
	"strconv"
	"strings"
)

// Category classifies a quantity's unit. Comparisons across different
// categories always fail.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryWeight
	CategoryVolume
	CategoryCount
)

func (c Category) String() string {
	switch c {
	case CategoryWeight:
		return "weight"
	case CategoryVolume:
		return "volume"
	case CategoryCount:
		return "count"
	default:
		return "unknown"
	}
}

// Quantity is a pack size normalized to canonical units: grams for weight,
// millilitres for volume, pieces for count.
type Quantity struct {
	Value    float64
	Unit     string
	Category Category
}

// unitSpec folds a unit alias to its canonical unit and scale factor.
type unitSpec struct {
	canonical string
	category  Category
	factor    float64
}

var unitTable = map[string]unitSpec{
	"kg":          {"g", CategoryWeight, 1000},
	"kgs":         {"g", CategoryWeight, 1000},
	"kilo":        {"g", CategoryWeight, 1000},
	"kilos":       {"g", CategoryWeight, 1000},
	"kilogram":    {"g", CategoryWeight, 1000},
	"kilograms":   {"g", CategoryWeight, 1000},
	"g":           {"g", CategoryWeight, 1},
	"gm":          {"g", CategoryWeight, 1},
	"gms":         {"g", CategoryWeight, 1},
	"gram":        {"g", CategoryWeight, 1},
	"grams":       {"g", CategoryWeight, 1},
	"mg":          {"g", CategoryWeight, 0.001},
	"l":           {"ml", CategoryVolume, 1000},
	"ltr":         {"ml", CategoryVolume, 1000},
	"ltrs":        {"ml", CategoryVolume, 1000},
	"litre":       {"ml", CategoryVolume, 1000},
	"litres":      {"ml", CategoryVolume, 1000},
	"liter":       {"ml", CategoryVolume, 1000},
	"liters":      {"ml", CategoryVolume, 1000},
	"ml":          {"ml", CategoryVolume, 1},
	"millilitre":  {"ml", CategoryVolume, 1},
	"millilitres": {"ml", CategoryVolume, 1},
	"milliliter":  {"ml", CategoryVolume, 1},
	"milliliters": {"ml", CategoryVolume, 1},
	"pc":          {"pc", CategoryCount, 1},
	"pcs":         {"pc", CategoryCount, 1},
	"piece":       {"pc", CategoryCount, 1},
	"pieces":      {"pc", CategoryCount, 1},
	"unit":        {"pc", CategoryCount, 1},
	"units":       {"pc", CategoryCount, 1},
	"n":           {"pc", CategoryCount, 1},
}

// quantityRe matches "<number><unit>" with optional whitespace between.
// The unit alternation is sorted longest-first so "ml" never matches as "m"
// inside a longer alias.
var quantityRe = regexp.MustCompile(
	`(?i)(\d+(?:\.\d+)?)\s*(millilitres?|milliliters?|kilograms?|litres?|liters?|pieces?|grams?|units?|kilos?|ltrs?|kgs?|gms?|pcs?|mg|ml|g|l|n)\b`)

// multiplierRe matches a "<N>x" pack-multiplier prefix, e.g. "2x1 L".
var multiplierRe = regexp.MustCompile(`(?i)^\s*(\d+)\s*[x×]\s*`)

// ParseQuantity extracts and normalizes the first "<number><unit>" token in
// s. A leading "<N>x" multiplier scales the normalized value by N. Returns
// false when no recognizable quantity is present.
func ParseQuantity(s string) (Quantity, bool) {
	multiplier := 1.0
	if m := multiplierRe.FindStringSubmatch(s); m != nil {
		if n, err := strconv.ParseFloat(m[1], 64); err == nil && n > 0 {
			multiplier = n
			s = s[len(m[0]):]
		}
	}

	m := quantityRe.FindStringSubmatch(s)
	if m == nil {
		return Quantity{}, false
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return Quantity{}, false
	}
	spec, ok := unitTable[strings.ToLower(m[2])]
	if !ok {
		return Quantity{}, false
	}
	return Quantity{
		Value:    value * spec.factor * multiplier,
		Unit:     spec.canonical,
		Category: spec.category,
	}, true
}

// Matches reports whether got is within ±tolerance of want. Both sides must
// be in the same category; the caller handles the fail-open cases where
// either side did not parse.
func Matches(want, got Quantity, tolerance float64) bool {
	if want.Category != got.Category || want.Category == CategoryUnknown {
		return false
	}
	diff := got.Value - want.Value
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance*want.Value
}
