package models

import "testing"

func TestBatchRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     BatchRequest
		wantErr bool
	}{
		{
			"valid",
			BatchRequest{Pincodes: []string{"575006"}, SearchTerms: []string{"onions"}, Quantities: []string{"1kg"}},
			false,
		},
		{
			"empty quantities allowed",
			BatchRequest{Pincodes: []string{"575006"}, SearchTerms: []string{"onions"}, Quantities: []string{}},
			false,
		},
		{
			"missing pincodes",
			BatchRequest{SearchTerms: []string{"onions"}, Quantities: []string{}},
			true,
		},
		{
			"missing search terms",
			BatchRequest{Pincodes: []string{"575006"}, Quantities: []string{}},
			true,
		},
		{
			"nil quantities",
			BatchRequest{Pincodes: []string{"575006"}, SearchTerms: []string{"onions"}},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
