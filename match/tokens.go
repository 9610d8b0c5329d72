package match

import "strings"

// fillerWords are dropped before token comparison: units, packaging words,
// and connectives carry no product identity.
var fillerWords = map[string]struct{}{
	"kg": {}, "kgs": {}, "g": {}, "gm": {}, "gms": {}, "gram": {}, "grams": {},
	"mg": {}, "l": {}, "ltr": {}, "ltrs": {}, "litre": {}, "litres": {},
	"liter": {}, "liters": {}, "ml": {},
	"pc": {}, "pcs": {}, "piece": {}, "pieces": {}, "unit": {}, "units": {},
	"pack": {}, "packs": {}, "combo": {}, "set": {},
	"of": {}, "the": {}, "a": {}, "an": {}, "and": {}, "with": {}, "for": {},
	"in": {}, "by": {}, "per": {},
}

// Tokenize lowercases s, splits on whitespace, commas and hyphens, and
// drops filler words, pure numbers, and number+unit tokens ("1kg").
func Tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == ',' || r == '-'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		stripped := strings.TrimLeft(f, "0123456789.")
		if stripped == "" {
			continue // pure number
		}
		if _, filler := fillerWords[stripped]; filler {
			continue // unit or packaging word, with or without a leading count
		}
		if stripped != f {
			// Number glued to a non-filler word ("3idiots"): keep the word part.
			f = stripped
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Singularize folds a plural token to its singular form:
// -ies → -y, -es → dropped, trailing -s dropped unless the word ends in -ss.
func Singularize(token string) string {
	switch {
	case len(token) > 3 && strings.HasSuffix(token, "ies"):
		return token[:len(token)-3] + "y"
	case len(token) > 2 && strings.HasSuffix(token, "es"):
		return token[:len(token)-2]
	case len(token) > 1 && strings.HasSuffix(token, "s") && !strings.HasSuffix(token, "ss"):
		return token[:len(token)-1]
	default:
		return token
	}
}

// TokenSet returns the singularized token set of s.
func TokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokenize(s) {
		set[Singularize(t)] = struct{}{}
	}
	return set
}

// TermMatches reports whether every requested token is present in the
// product name's token set. Containment is order-independent; an empty
// requested set matches everything.
func TermMatches(term, productName string) bool {
	nameSet := TokenSet(productName)
	for t := range TokenSet(term) {
		if _, ok := nameSet[t]; !ok {
			return false
		}
	}
	return true
}
