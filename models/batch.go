package models

// BatchRequest is the input for one batch run: the full cross product of
// pincodes × search terms (× quantities) is scraped sequentially.
type BatchRequest struct {
	// Pincodes are the delivery locations to scrape. Required, non-empty.
	Pincodes []string `json:"pincodes" binding:"required"`

	// SearchTerms are the base queries. Required, non-empty.
	SearchTerms []string `json:"searchTerms" binding:"required"`

	// Quantities, when non-empty, are appended to every search term
	// ("onions" × "1kg" → "onions 1kg"). They are a term modifier, not an
	// independent axis: an empty list leaves SearchTerms unchanged.
	Quantities []string `json:"quantities"`
}

// Validate checks the request and returns a typed input error on failure.
func (r *BatchRequest) Validate() error {
	if len(r.Pincodes) == 0 {
		return NewScrapeError(ErrCodeInvalidInput, "pincodes must be a non-empty array", nil)
	}
	if len(r.SearchTerms) == 0 {
		return NewScrapeError(ErrCodeInvalidInput, "searchTerms must be a non-empty array", nil)
	}
	if r.Quantities == nil {
		return NewScrapeError(ErrCodeInvalidInput, "quantities must be an array (may be empty)", nil)
	}
	return nil
}

// BatchResult is the outcome of one batch run.
type BatchResult struct {
	// File is the absolute path of the written CSV.
	File string `json:"file"`

	// Filename is the basename of File.
	Filename string `json:"filename"`

	// RowCount is the number of data rows written (header excluded).
	RowCount int `json:"rowCount"`

	// Items are the rows, in the order they were written.
	Items []OutputRow `json:"items"`

	Pincodes            []string `json:"pincodes"`
	SearchTerms         []string `json:"searchTerms"`
	Quantities          []string `json:"quantities,omitempty"`
	ExpandedSearchTerms []string `json:"expandedSearchTerms"`
}
