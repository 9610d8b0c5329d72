package batch

// ExpandTerms builds the expanded query list. Quantities are a term
// modifier, not an independent axis: each quantity is appended to each
// term, and an empty quantity list leaves the terms unchanged.
func ExpandTerms(terms, quantities []string) []string {
	if len(quantities) == 0 {
		out := make([]string, len(terms))
		copy(out, terms)
		return out
	}
	out := make([]string, 0, len(terms)*len(quantities))
	for _, term := range terms {
		for _, qty := range quantities {
			out = append(out, term+" "+qty)
		}
	}
	return out
}
