package extract

import (
	"log/slog"
	"regexp"
	"strconv"

	"github.com/use-agent/shelfwatch/models"
	"github.com/ysmood/gson"
)

// Capture is the outcome of one search navigation: either the intercepted
// JSON payload, or the rendered page HTML when the response race timed out.
type Capture struct {
	// Payload is the product-bearing JSON response. Valid only when
	// HasPayload is true.
	Payload    gson.JSON
	HasPayload bool

	// SourceURL is the URL the payload was served from.
	SourceURL string

	// RequestHeaders and ResponseHeaders are the headers observed on the
	// captured exchange, kept so the payload URL can be re-fetched
	// directly without the browser.
	RequestHeaders  map[string]string
	ResponseHeaders map[string]string

	// HTML is the rendered page at the time the race timed out.
	HTML string

	// TimedOut marks the fallback branch of the race.
	TimedOut bool
}

// Fallback field sentinels for absent source data.
const (
	SentinelNA   = "N/A"
	SentinelName = "Product Name Not Available"
)

// Structural snippets: headers and containers that carry no product.
const (
	headerWidgetType = "text_header"
	headerIdentityID = "header"
)

// Products converts a capture into product records: payload extraction when
// the race was won, DOM extraction from the rendered HTML otherwise.
func (c *Capture) Products(sels CardSelectors) []models.Product {
	if c.HasPayload {
		return FromPayload(c.Payload)
	}
	if c.HTML != "" {
		return FromHTML(c.HTML, sels)
	}
	return nil
}

// FromPayload walks response.snippets and extracts one Product per
// non-sponsored, non-structural product snippet. A snippet that fails to
// extract is skipped; extraction continues with the rest.
func FromPayload(payload gson.JSON) []models.Product {
	snippets := payload.Get("response.snippets").Arr()
	products := make([]models.Product, 0, len(snippets))

	for _, sn := range snippets {
		p, ok := productFromSnippet(sn)
		if !ok {
			continue
		}
		products = append(products, p)
	}
	return products
}

// productFromSnippet extracts one product. Any panic from an unexpected
// payload shape is contained to this snippet.
func productFromSnippet(sn gson.JSON) (p models.Product, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("snippet extraction failed, skipping", "reason", r)
			ok = false
		}
	}()

	if IsSponsored(sn) {
		slog.Debug("sponsored snippet skipped", "widgetType", sn.Get("widget_type").Str())
		return p, false
	}

	identity := firstStr(sn, "data.identity.id", "data.identity")
	name := firstStr(sn, "data.name.text", "data.display_name.text", "data.title.text")
	if identity == "" || name == "" {
		return p, false
	}

	widgetType := sn.Get("widget_type").Str()
	if widgetType == headerWidgetType || identity == headerIdentityID {
		return p, false
	}

	price := firstStrOr(SentinelNA, sn, "data.normal_price.text", "data.price.text")
	original := firstStr(sn, "data.mrp.text", "data.original_price.text")

	p = models.Product{
		ID:            identity,
		Name:          name,
		Price:         price,
		OriginalPrice: original,
		Savings:       computeSavings(price, original),
		Quantity:      firstStrOr(SentinelNA, sn, "data.variant.text", "data.quantity.text"),
		DeliveryTime:  firstStrOr(SentinelNA, sn, "data.eta_tag.title.text", "data.delivery_time.text"),
		Discount:      firstStr(sn, "data.offer_tag.title.text", "data.discount.text"),
		ImageURL:      firstStr(sn, "data.image.url", "data.image_url"),
		Available:     !truthy(sn.Get("data.is_sold_out")) && !truthy(sn.Get("data.out_of_stock")),
	}
	return p, true
}

// amountRe parses a currency amount out of a formatted price string:
// an optional currency symbol followed by digits with an optional fraction.
var amountRe = regexp.MustCompile(`(?:[₹$€£]|Rs\.?)?\s*(\d+(?:\.\d+)?)`)

// parseAmount extracts the numeric amount from a formatted price.
func parseAmount(s string) (float64, bool) {
	m := amountRe.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// computeSavings returns original minus current formatted as a plain number,
// populated only when both prices parse and the original exceeds the
// current.
func computeSavings(price, original string) string {
	cur, okCur := parseAmount(price)
	orig, okOrig := parseAmount(original)
	if !okCur || !okOrig || orig <= cur {
		return ""
	}
	return strconv.FormatFloat(orig-cur, 'f', -1, 64)
}

// firstStr returns the first non-empty string found at the given gson paths.
func firstStr(j gson.JSON, paths ...string) string {
	for _, path := range paths {
		if s, isStr := j.Get(path).Val().(string); isStr && s != "" {
			return s
		}
	}
	return ""
}

// firstStrOr is firstStr with a fallback sentinel.
func firstStrOr(fallback string, j gson.JSON, paths ...string) string {
	if s := firstStr(j, paths...); s != "" {
		return s
	}
	return fallback
}

// truthy reports whether a loosely typed flag is set: boolean true, a
// non-empty non-"false" string, or a non-zero number.
func truthy(j gson.JSON) bool {
	switch v := j.Val().(type) {
	case bool:
		return v
	case string:
		return v != "" && v != "false" && v != "0"
	case float64:
		return v != 0
	case int:
		return v != 0
	default:
		return false
	}
}
