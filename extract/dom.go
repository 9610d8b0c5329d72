package extract

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/shelfwatch/models"
)

// CardSelectors are the ordered selector lists used to extract products
// from rendered HTML when no JSON payload was captured.
type CardSelectors struct {
	Card     []string
	Name     []string
	Price    []string
	Quantity []string
}

var etaRe = regexp.MustCompile(`(?i)\b\d+\s*min(?:s|utes)?\b`)

// FromHTML extracts products from rendered search-results HTML. This is the
// fallback branch of the response race: coarser than payload extraction
// (no identity ids, no MRP), but it keeps a cell productive when the
// payload never arrives.
func FromHTML(rawHTML string, sels CardSelectors) []models.Product {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		slog.Warn("dom fallback: html parse failed", "error", err)
		return nil
	}

	cards := doc.Find(strings.Join(sels.Card, ", "))
	products := make([]models.Product, 0, cards.Length())

	cards.Each(func(i int, card *goquery.Selection) {
		name := firstText(card, sels.Name)
		if name == "" {
			name = SentinelName
		}

		id, _ := card.Attr("id")
		id = strings.TrimPrefix(id, "prid-")
		if id == "" {
			id = SentinelNA
		}

		price := firstText(card, sels.Price)
		if price == "" {
			price = SentinelNA
		}
		quantity := firstText(card, sels.Quantity)
		if quantity == "" {
			quantity = SentinelNA
		}

		cardText := card.Text()
		delivery := etaRe.FindString(cardText)
		if delivery == "" {
			delivery = SentinelNA
		}

		lower := strings.ToLower(cardText)
		available := !strings.Contains(lower, "out of stock") &&
			!strings.Contains(lower, "sold out") &&
			!strings.Contains(lower, "notify me")

		img, _ := card.Find("img").First().Attr("src")

		products = append(products, models.Product{
			ID:           id,
			Name:         name,
			Price:        price,
			Quantity:     quantity,
			DeliveryTime: delivery,
			ImageURL:     img,
			Available:    available,
		})
	})

	return products
}

// firstText returns the trimmed text of the first selector in the ordered
// list that matches a non-empty node within sel.
func firstText(sel *goquery.Selection, selectors []string) string {
	for _, s := range selectors {
		if t := strings.TrimSpace(sel.Find(s).First().Text()); t != "" {
			return t
		}
	}
	return ""
}
