package extract

import (
	"testing"

	"github.com/ysmood/gson"
)

const samplePayload = `{
	"response": {
		"snippets": [
			{
				"widget_type": "product_card_snippet",
				"data": {
					"identity": {"id": "prod-1"},
					"name": {"text": "Fresh Onions"},
					"normal_price": {"text": "₹45"},
					"mrp": {"text": "₹60"},
					"variant": {"text": "1 kg"},
					"eta_tag": {"title": {"text": "8 mins"}},
					"offer_tag": {"title": {"text": "25% OFF"}},
					"image": {"url": "https://cdn.example/onions.jpg"}
				}
			},
			{
				"widget_type": "ad_banner",
				"data": {
					"identity": {"id": "prod-2"},
					"name": {"text": "Sponsored Onions"}
				}
			},
			{
				"widget_type": "text_header",
				"data": {
					"identity": {"id": "prod-3"},
					"name": {"text": "Results for onions"}
				}
			},
			{
				"widget_type": "product_card_snippet",
				"data": {
					"name": {"text": "No Identity Product"}
				}
			},
			{
				"widget_type": "product_card_snippet",
				"data": {
					"identity": {"id": "prod-5"},
					"name": {"text": "Sold Out Onions"},
					"normal_price": {"text": "₹30"},
					"variant": {"text": "500 g"},
					"eta_tag": {"title": {"text": "8 mins"}},
					"is_sold_out": true
				}
			}
		]
	}
}`

func TestFromPayload(t *testing.T) {
	products := FromPayload(gson.NewFrom(samplePayload))

	if len(products) != 2 {
		t.Fatalf("extracted %d products, want 2 (ad, header and identity-less skipped)", len(products))
	}

	p := products[0]
	if p.ID != "prod-1" || p.Name != "Fresh Onions" {
		t.Errorf("first product = %+v", p)
	}
	if p.Price != "₹45" || p.OriginalPrice != "₹60" {
		t.Errorf("prices = %q / %q", p.Price, p.OriginalPrice)
	}
	if p.Savings != "15" {
		t.Errorf("savings = %q, want 15", p.Savings)
	}
	if p.Quantity != "1 kg" || p.DeliveryTime != "8 mins" || p.Discount != "25% OFF" {
		t.Errorf("fields = %+v", p)
	}
	if !p.Available {
		t.Error("first product should be available")
	}

	soldOut := products[1]
	if soldOut.ID != "prod-5" || soldOut.Available {
		t.Errorf("sold-out product = %+v, want Available=false", soldOut)
	}
}

func TestFromPayload_SentinelFallbacks(t *testing.T) {
	raw := `{"response": {"snippets": [{
		"widget_type": "product_card_snippet",
		"data": {
			"identity": {"id": "bare-1"},
			"name": {"text": "Bare Product"}
		}
	}]}}`

	products := FromPayload(gson.NewFrom(raw))
	if len(products) != 1 {
		t.Fatalf("extracted %d products, want 1", len(products))
	}
	p := products[0]
	if p.Price != SentinelNA || p.Quantity != SentinelNA || p.DeliveryTime != SentinelNA {
		t.Errorf("missing fields did not fall back to sentinel: %+v", p)
	}
	if p.Savings != "" || p.Discount != "" {
		t.Errorf("optional fields should be empty: %+v", p)
	}
}

func TestFromPayload_EmptyAndMalformed(t *testing.T) {
	if got := FromPayload(gson.NewFrom(`{}`)); len(got) != 0 {
		t.Errorf("empty payload yielded %d products", len(got))
	}
	if got := FromPayload(gson.NewFrom(`{"response": {"snippets": "not a list"}}`)); len(got) != 0 {
		t.Errorf("malformed snippets yielded %d products", len(got))
	}
}

func TestComputeSavings(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		original string
		want     string
	}{
		{"plain saving", "₹45", "₹60", "15"},
		{"fractional", "₹45.50", "₹60", "14.5"},
		{"rupee prefix", "Rs. 45", "Rs. 60", "15"},
		{"no original", "₹45", "", ""},
		{"original not higher", "₹60", "₹60", ""},
		{"original lower", "₹60", "₹45", ""},
		{"unparseable price", "N/A", "₹60", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeSavings(tt.price, tt.original); got != tt.want {
				t.Errorf("computeSavings(%q, %q) = %q, want %q",
					tt.price, tt.original, got, tt.want)
			}
		})
	}
}
