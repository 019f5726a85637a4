package upstream

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMapProductWithoutPriceRecord(t *testing.T) {
	raw := RawProduct{ID: "prod-1", Name: "Cafe de Olla", Description: "500g"}

	product := MapProduct(raw, nil, true)

	assert.Equal(t, "prod-1", product.ID)
	assert.Equal(t, "Cafe de Olla", product.Name)
	assert.Equal(t, "General", product.Category)
	assert.True(t, product.Price.IsZero())
	assert.Nil(t, product.PriceID)
	assert.Equal(t, "MXN", product.Currency)
	assert.Equal(t, 0, product.Quantity)
	assert.False(t, product.TrackInventory)
	assert.Contains(t, product.Image, "via.placeholder.com")
}

func TestMapProductWithPriceRecord(t *testing.T) {
	raw := RawProduct{
		ID:          "prod-2",
		Name:        "Mezcal Artesanal",
		ProductType: "Bebidas",
		Image:       "https://cdn.example.com/mezcal.jpg",
	}
	price := RawPrice{
		ID:                "price-2",
		Amount:            decimal.NewFromInt(29999),
		Currency:          "MXN",
		AvailableQuantity: 15,
		TrackInventory:    true,
	}

	product := MapProduct(raw, &price, true)

	assert.Equal(t, "Bebidas", product.Category)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("299.99")))
	if assert.NotNil(t, product.PriceID) {
		assert.Equal(t, "price-2", *product.PriceID)
	}
	assert.Equal(t, 15, product.Quantity)
	assert.True(t, product.TrackInventory)
	assert.Equal(t, "https://cdn.example.com/mezcal.jpg", product.Image)
}

func TestMapProductRawUnitConvention(t *testing.T) {
	price := RawPrice{ID: "price-3", Amount: decimal.RequireFromString("149.99")}

	product := MapProduct(RawProduct{ID: "prod-3", Name: "Tostadas"}, &price, false)

	assert.True(t, product.Price.Equal(decimal.RequireFromString("149.99")))
}

func TestWireAmountRoundTrip(t *testing.T) {
	price := decimal.RequireFromString("449.99")

	wire := ToWireAmount(price, true)
	assert.True(t, wire.Equal(decimal.NewFromInt(44999)))
	assert.True(t, FromWireAmount(wire, true).Equal(price))

	assert.True(t, ToWireAmount(price, false).Equal(price))
	assert.True(t, FromWireAmount(price, false).Equal(price))
}

func TestPlaceholderImageDeterministic(t *testing.T) {
	first := PlaceholderImage("Cafe de Olla", "prod-1")
	second := PlaceholderImage("Cafe de Olla", "prod-1")

	assert.Equal(t, first, second)
	assert.Contains(t, first, "https://via.placeholder.com/400x400/")
	assert.Contains(t, first, "text=Cafe+de+Olla")
}

func TestPlaceholderImageTruncatesLongNames(t *testing.T) {
	image := PlaceholderImage(strings.Repeat("a", 40), "prod-1")

	assert.Contains(t, image, "text="+strings.Repeat("a", 20))
	assert.NotContains(t, image, strings.Repeat("a", 21))
}

func TestPlaceholderImageEmptyNameFallsBack(t *testing.T) {
	image := PlaceholderImage("", "prod-1")

	assert.Contains(t, image, "text=Producto")
}
