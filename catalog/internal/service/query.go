package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mercadito/catalog/catalog/pkg/response"
)

// ProductQuery carries the catalog read parameters. All filters are optional
// and AND-combined; nil means "no bound".
type ProductQuery struct {
	Search      string
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	MinQuantity *int
	MaxQuantity *int
	Page        int
	Limit       int
}

func applyFilters(products []response.Product, q ProductQuery) []response.Product {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	filtered := make([]response.Product, 0, len(products))
	for _, product := range products {
		if search != "" && !strings.Contains(strings.ToLower(product.Name), search) {
			continue
		}
		if q.MinPrice != nil && product.Price.LessThan(*q.MinPrice) {
			continue
		}
		if q.MaxPrice != nil && product.Price.GreaterThan(*q.MaxPrice) {
			continue
		}
		if q.MinQuantity != nil && product.Quantity < *q.MinQuantity {
			continue
		}
		if q.MaxQuantity != nil && product.Quantity > *q.MaxQuantity {
			continue
		}
		filtered = append(filtered, product)
	}
	return filtered
}

func paginate(
	filtered []response.Product,
	page int,
	limit int,
) ([]response.Product, response.PaginationInfo) {
	total := len(filtered)
	totalPages := (total + limit - 1) / limit
	if totalPages < 1 {
		totalPages = 1
	}

	items := []response.Product{}
	offset := (page - 1) * limit
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		items = filtered[offset:end]
	}

	return items, response.PaginationInfo{
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// summarize always runs over the full snapshot, never the filtered view: the
// summary reflects whole-inventory state even when the returned page is
// filtered down to nothing.
func summarize(products []response.Product) response.ProductsSummary {
	totalValue := decimal.Zero
	totalStock := 0
	for _, product := range products {
		quantity := decimal.NewFromInt(int64(product.Quantity))
		totalValue = totalValue.Add(product.Price.Mul(quantity))
		totalStock += product.Quantity
	}
	return response.ProductsSummary{
		TotalProducts: len(products),
		TotalValue:    totalValue,
		TotalStock:    totalStock,
	}
}
