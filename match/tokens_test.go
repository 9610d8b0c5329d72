package match

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"plain words", "fresh red tomatoes", []string{"fresh", "red", "tomatoes"}},
		{"case folded", "Fresh RED Tomatoes", []string{"fresh", "red", "tomatoes"}},
		{"commas and hyphens split", "sun-dried, tomatoes", []string{"sun", "dried", "tomatoes"}},
		{"pure numbers dropped", "onions 500", []string{"onions"}},
		{"number plus unit dropped", "onions 1kg", []string{"onions"}},
		{"standalone unit dropped", "onions kg", []string{"onions"}},
		{"packaging words dropped", "combo pack of onions", []string{"onions"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestSingularize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"tomatoes", "tomato"},
		{"berries", "berry"},
		{"onions", "onion"},
		{"carrots", "carrot"},
		{"grass", "grass"}, // -ss is not a plural
		{"apple", "apple"},
		{"s", "s"},
	}

	for _, tt := range tests {
		if got := Singularize(tt.in); got != tt.want {
			t.Errorf("Singularize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTermMatches(t *testing.T) {
	tests := []struct {
		name    string
		term    string
		product string
		want    bool
	}{
		{"singular matches plural", "tomato", "Fresh Red Tomatoes 1kg", true},
		{"different vegetable", "potato", "Fresh Red Tomatoes 1kg", false},
		{"case insensitive", "ONIONS", "fresh onion", true},
		{"order independent", "red tomato", "Tomatoes, Red, Desi", true},
		{"missing requested token", "red tomato", "Green Tomatoes", false},
		{"quantity token ignored", "onions 1kg", "Fresh Onions", true},
		{"empty term matches everything", "", "Anything At All", true},
		{"filler only term matches everything", "1kg pack", "Anything At All", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TermMatches(tt.term, tt.product); got != tt.want {
				t.Errorf("TermMatches(%q, %q) = %v, want %v", tt.term, tt.product, got, tt.want)
			}
		})
	}
}
