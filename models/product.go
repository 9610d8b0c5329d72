package models

// Product is one listing extracted from a search-results payload.
// Products are ephemeral: derived per search, never persisted individually.
type Product struct {
	// ID is the storefront's product identity.
	ID string `json:"id"`

	// Name is the display name, or a fallback sentinel when missing.
	Name string `json:"name"`

	// Price is the formatted selling price as shown on the site (e.g. "₹45").
	Price string `json:"price"`

	// OriginalPrice is the formatted pre-discount price, if any.
	OriginalPrice string `json:"originalPrice,omitempty"`

	// Savings is the parsed difference between original and current price,
	// formatted as a plain number. Populated only when both prices parse
	// and the original exceeds the current.
	Savings string `json:"savings,omitempty"`

	// Quantity is the pack-size string (e.g. "500 g", "2x1 L").
	Quantity string `json:"quantity"`

	// DeliveryTime is the promised delivery ETA (e.g. "8 mins").
	DeliveryTime string `json:"deliveryTime"`

	// Discount is the offer tag text, if any (e.g. "20% OFF").
	Discount string `json:"discount,omitempty"`

	// ImageURL is the primary product image.
	ImageURL string `json:"imageUrl"`

	// Available reports whether the listing is in stock.
	Available bool `json:"available"`
}

// OutputRow is a flattened Product plus its search context. Rows are created
// once during extraction+filtering and never mutated afterwards.
type OutputRow struct {
	Pincode    string `json:"pincode"`
	SearchTerm string `json:"searchTerm"`
	Service    string `json:"service"`
	Product
}

// CSVHeader is the column order of the exported CSV file.
var CSVHeader = []string{
	"pincode", "searchTerm", "service",
	"id", "name", "price", "originalPrice", "savings",
	"quantity", "deliveryTime", "discount", "imageUrl", "available",
}
