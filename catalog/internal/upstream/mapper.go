package upstream

import (
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/mercadito/catalog/catalog/pkg/response"
)

const defaultCurrency = "MXN"

var cents = decimal.NewFromInt(100)

// MapProduct builds the catalog view of a raw product. A nil price yields the
// zero-valued product the catalog invariant requires.
func MapProduct(raw RawProduct, price *RawPrice, inCents bool) response.Product {
	product := response.Product{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Category:    raw.ProductType,
		Price:       decimal.Zero,
		Currency:    defaultCurrency,
		Image:       raw.Image,
	}
	if product.Category == "" {
		product.Category = "General"
	}
	if product.Image == "" {
		product.Image = PlaceholderImage(raw.Name, raw.ID)
	}
	if price == nil {
		return product
	}

	product.Price = FromWireAmount(price.Amount, inCents)
	priceID := price.ID
	product.PriceID = &priceID
	if price.Currency != "" {
		product.Currency = price.Currency
	}
	product.Quantity = price.AvailableQuantity
	product.TrackInventory = price.TrackInventory
	return product
}

// FromWireAmount converts an upstream amount to the catalog's decimal price.
func FromWireAmount(amount decimal.Decimal, inCents bool) decimal.Decimal {
	if inCents {
		return amount.Div(cents)
	}
	return amount
}

// ToWireAmount converts a catalog price back to the upstream's unit
// convention. The same flag drives both directions so round-trips stay
// consistent.
func ToWireAmount(price decimal.Decimal, inCents bool) decimal.Decimal {
	if inCents {
		return price.Mul(cents).Round(0)
	}
	return price
}

var placeholderColors = [][2]string{
	{"e2e8f0", "64748b"},
	{"f1f5f9", "475569"},
	{"f8fafc", "334155"},
	{"ecfccb", "365314"},
	{"dcfce7", "166534"},
	{"dbeafe", "1e40af"},
	{"e0e7ff", "3730a3"},
	{"f3e8ff", "6b21a8"},
}

// PlaceholderImage generates a deterministic placeholder URL for products the
// upstream reports without an image. The color pair is keyed by a hash of the
// product id so a product always renders the same placeholder.
func PlaceholderImage(name, id string) string {
	clean := name
	if clean == "" {
		clean = "Producto"
	}
	if len(clean) > 20 {
		clean = clean[:20]
	}

	var hash int32
	for _, ch := range []byte(id) {
		hash = hash*31 + int32(ch)
	}
	index := int(hash)
	if index < 0 {
		index = -index
	}
	colors := placeholderColors[index%len(placeholderColors)]

	return fmt.Sprintf(
		"https://via.placeholder.com/400x400/%s/%s?text=%s",
		colors[0],
		colors[1],
		url.QueryEscape(clean),
	)
}
