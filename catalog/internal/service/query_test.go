package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/mercadito/catalog/catalog/pkg/response"
)

func decimalPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intPtr(n int) *int {
	return &n
}

func inventoryFixture() []response.Product {
	return []response.Product{
		{ID: "prod-1", Name: "Mezcal Artesanal", Price: decimal.RequireFromString("299.99"), Quantity: 15},
		{ID: "prod-2", Name: "Cafe de Olla", Price: decimal.RequireFromString("149.99"), Quantity: 32},
		{ID: "prod-3", Name: "Tostadas", Price: decimal.RequireFromString("79.99"), Quantity: 8},
		{ID: "prod-4", Name: "Mole Poblano", Price: decimal.RequireFromString("449.99"), Quantity: 5},
	}
}

func TestApplyFiltersSearchIsCaseInsensitiveSubstring(t *testing.T) {
	filtered := applyFilters(inventoryFixture(), ProductQuery{Search: "  MEZCAL "})

	if assert.Len(t, filtered, 1) {
		assert.Equal(t, "prod-1", filtered[0].ID)
	}
}

func TestApplyFiltersPriceBoundsAreInclusive(t *testing.T) {
	filtered := applyFilters(inventoryFixture(), ProductQuery{
		MinPrice: decimalPtr("149.99"),
		MaxPrice: decimalPtr("299.99"),
	})

	if assert.Len(t, filtered, 2) {
		assert.Equal(t, "prod-1", filtered[0].ID)
		assert.Equal(t, "prod-2", filtered[1].ID)
	}
}

func TestApplyFiltersQuantityBoundsAreInclusive(t *testing.T) {
	filtered := applyFilters(inventoryFixture(), ProductQuery{
		MinQuantity: intPtr(8),
		MaxQuantity: intPtr(15),
	})

	if assert.Len(t, filtered, 2) {
		assert.Equal(t, "prod-1", filtered[0].ID)
		assert.Equal(t, "prod-3", filtered[1].ID)
	}
}

func TestApplyFiltersCombineWithAnd(t *testing.T) {
	filtered := applyFilters(inventoryFixture(), ProductQuery{
		Search:      "o",
		MinQuantity: intPtr(10),
	})

	if assert.Len(t, filtered, 1) {
		assert.Equal(t, "prod-2", filtered[0].ID)
	}
}

func TestApplyFiltersPreserveSnapshotOrder(t *testing.T) {
	filtered := applyFilters(inventoryFixture(), ProductQuery{})

	ids := make([]string, 0, len(filtered))
	for _, product := range filtered {
		ids = append(ids, product.ID)
	}
	assert.Equal(t, []string{"prod-1", "prod-2", "prod-3", "prod-4"}, ids)
}

func TestPaginateInvariants(t *testing.T) {
	tests := []struct {
		name          string
		total         int
		page          int
		limit         int
		expectedItems int
		expectedPages int
		expectedNext  bool
		expectedPrev  bool
	}{
		{name: "first of many", total: 5, page: 1, limit: 2, expectedItems: 2, expectedPages: 3, expectedNext: true, expectedPrev: false},
		{name: "middle page", total: 5, page: 2, limit: 2, expectedItems: 2, expectedPages: 3, expectedNext: true, expectedPrev: true},
		{name: "short last page", total: 5, page: 3, limit: 2, expectedItems: 1, expectedPages: 3, expectedNext: false, expectedPrev: true},
		{name: "page past the end", total: 5, page: 9, limit: 2, expectedItems: 0, expectedPages: 3, expectedNext: false, expectedPrev: true},
		{name: "empty catalog keeps one page", total: 0, page: 1, limit: 20, expectedItems: 0, expectedPages: 1, expectedNext: false, expectedPrev: false},
		{name: "exact multiple", total: 4, page: 2, limit: 2, expectedItems: 2, expectedPages: 2, expectedNext: false, expectedPrev: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := make([]response.Product, tt.total)
			items, pagination := paginate(products, tt.page, tt.limit)

			assert.Len(t, items, tt.expectedItems)
			assert.Equal(t, tt.page, pagination.Page)
			assert.Equal(t, tt.limit, pagination.Limit)
			assert.Equal(t, tt.total, pagination.Total)
			assert.Equal(t, tt.expectedPages, pagination.TotalPages)
			assert.Equal(t, tt.expectedNext, pagination.HasNext)
			assert.Equal(t, tt.expectedPrev, pagination.HasPrevious)
		})
	}
}

func TestSummarizeCoversWholeInventory(t *testing.T) {
	summary := summarize(inventoryFixture())

	assert.Equal(t, 4, summary.TotalProducts)
	assert.True(t, summary.TotalValue.Equal(decimal.RequireFromString("12189.40")),
		"expected 12189.40, got %s", summary.TotalValue)
	assert.Equal(t, 60, summary.TotalStock)
}

func TestSummarizeIsIndependentOfFilters(t *testing.T) {
	products := inventoryFixture()
	filtered := applyFilters(products, ProductQuery{MinQuantity: intPtr(10)})

	assert.Len(t, filtered, 2)

	summary := summarize(products)
	assert.Equal(t, 4, summary.TotalProducts)
	assert.Equal(t, 60, summary.TotalStock)
}

func TestSummarizeEmptyInventory(t *testing.T) {
	summary := summarize(nil)

	assert.Equal(t, 0, summary.TotalProducts)
	assert.True(t, summary.TotalValue.IsZero())
	assert.Equal(t, 0, summary.TotalStock)
}
