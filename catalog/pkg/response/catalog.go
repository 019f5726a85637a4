package response

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices cross the API as plain JSON numbers, matching the upstream wire
	// format.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product is one fully-enriched catalog entry. A product without an upstream
// price record carries price 0, nil priceId, quantity 0 and trackInventory
// false; it is never omitted from the catalog.
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Price          decimal.Decimal `json:"price"`
	PriceID        *string         `json:"priceId"`
	Currency       string          `json:"currency"`
	Quantity       int             `json:"quantity"`
	TrackInventory bool            `json:"trackInventory"`
	Image          string          `json:"image"`
}

type PaginationInfo struct {
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// ProductsSummary is computed over the entire snapshot, independent of any
// active filter.
type ProductsSummary struct {
	TotalProducts int             `json:"totalProducts"`
	TotalValue    decimal.Decimal `json:"totalValue"`
	TotalStock    int             `json:"totalStock"`
}

type ProductPage struct {
	Products   []Product       `json:"products"`
	Pagination PaginationInfo  `json:"pagination"`
	Summary    ProductsSummary `json:"summary"`
}

type PriceUpdate struct {
	Success bool            `json:"success"`
	Price   decimal.Decimal `json:"price"`
	PriceID string          `json:"priceId"`
}

type InventoryUpdate struct {
	Success   bool   `json:"success"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type Health struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}
