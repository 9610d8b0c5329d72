package match

import "testing"

func TestParseQuantity(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     float64
		unit     string
		category Category
		ok       bool
	}{
		{"kilograms", "1kg", 1000, "g", CategoryWeight, true},
		{"kilograms spaced", "1 kg", 1000, "g", CategoryWeight, true},
		{"grams", "500g", 500, "g", CategoryWeight, true},
		{"gram alias", "500 gms", 500, "g", CategoryWeight, true},
		{"milligrams", "250mg", 0.25, "g", CategoryWeight, true},
		{"litres", "2l", 2000, "ml", CategoryVolume, true},
		{"litre word", "1 litre", 1000, "ml", CategoryVolume, true},
		{"millilitres", "750ml", 750, "ml", CategoryVolume, true},
		{"pieces", "3pc", 3, "pc", CategoryCount, true},
		{"pieces word", "12 pieces", 12, "pc", CategoryCount, true},
		{"fractional", "1.5kg", 1500, "g", CategoryWeight, true},
		{"multiplier", "2x1 l", 2000, "ml", CategoryVolume, true},
		{"multiplier spaced", "3 x 500 g", 1500, "g", CategoryWeight, true},
		{"multiplier glyph", "2×200ml", 400, "ml", CategoryVolume, true},
		{"embedded in term", "onions 1kg fresh", 1000, "g", CategoryWeight, true},
		{"no quantity", "onions", 0, "", CategoryUnknown, false},
		{"bare number", "500", 0, "", CategoryUnknown, false},
		{"unknown unit", "3 boxes", 0, "", CategoryUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseQuantity(tt.input)
			if ok != tt.ok {
				t.Fatalf("ParseQuantity(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if !ok {
				return
			}
			if got.Value != tt.want || got.Unit != tt.unit || got.Category != tt.category {
				t.Errorf("ParseQuantity(%q) = {%v %s %s}, want {%v %s %s}",
					tt.input, got.Value, got.Unit, got.Category, tt.want, tt.unit, tt.category)
			}
		})
	}
}

func TestMatches_Tolerance(t *testing.T) {
	want, _ := ParseQuantity("1kg")

	tests := []struct {
		name    string
		product string
		match   bool
	}{
		{"exact", "1 kg", true},
		{"different formatting", "1000 g", true},
		{"within upper bound", "1.1kg", true},
		{"within lower bound", "900g", true},
		{"just outside upper", "1.11 kg", false},
		{"just outside lower", "880 g", false},
		{"far off", "200g", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseQuantity(tt.product)
			if !ok {
				t.Fatalf("product quantity %q did not parse", tt.product)
			}
			if m := Matches(want, got, DefaultTolerance); m != tt.match {
				t.Errorf("Matches(1kg, %q) = %v, want %v", tt.product, m, tt.match)
			}
		})
	}
}

func TestMatches_CategoryMismatchAlwaysFails(t *testing.T) {
	weight, _ := ParseQuantity("1kg")
	count, _ := ParseQuantity("3pc")
	volume, _ := ParseQuantity("1l")

	if Matches(weight, count, DefaultTolerance) {
		t.Error("weight request matched a count quantity")
	}
	if Matches(weight, volume, DefaultTolerance) {
		t.Error("weight request matched a volume quantity")
	}
	// 1kg vs 1l have equal normalized values (1000) but must still fail.
	if Matches(volume, weight, DefaultTolerance) {
		t.Error("volume request matched a weight quantity with equal normalized value")
	}
}
