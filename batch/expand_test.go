package batch

import (
	"reflect"
	"testing"
)

func TestExpandTerms(t *testing.T) {
	tests := []struct {
		name       string
		terms      []string
		quantities []string
		want       []string
	}{
		{
			"no quantities leaves terms unchanged",
			[]string{"onions", "tomatoes"},
			nil,
			[]string{"onions", "tomatoes"},
		},
		{
			"empty quantities leaves terms unchanged",
			[]string{"onions"},
			[]string{},
			[]string{"onions"},
		},
		{
			"single quantity",
			[]string{"onions"},
			[]string{"1kg"},
			[]string{"onions 1kg"},
		},
		{
			"cross product",
			[]string{"onions", "milk"},
			[]string{"1kg", "500g"},
			[]string{"onions 1kg", "onions 500g", "milk 1kg", "milk 500g"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandTerms(tt.terms, tt.quantities)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandTerms(%v, %v) = %v, want %v",
					tt.terms, tt.quantities, got, tt.want)
			}
		})
	}
}
