package upstream

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// RawProduct is a product record as the upstream platform reports it, before
// price enrichment.
type RawProduct struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ProductType string `json:"productType"`
	Image       string `json:"image"`
}

// RawPrice is one price record attached to a product. Inventory lives here,
// not on the product itself.
type RawPrice struct {
	ID                string          `json:"_id"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	AvailableQuantity int             `json:"availableQuantity"`
	TrackInventory    bool            `json:"trackInventory"`
}

// flexibleTotal normalizes the upstream's irregular total reporting. The field
// has been observed as a bare number, a numeric string, an object
// {"total": n} and an array of such objects. Unrecognized shapes decode to
// zero, which the fetcher treats as "total unknown".
type flexibleTotal int

func (t *flexibleTotal) UnmarshalJSON(data []byte) error {
	*t = 0

	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		if v, err := num.Int64(); err == nil {
			*t = flexibleTotal(v)
		}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if v, err := strconv.Atoi(str); err == nil {
			*t = flexibleTotal(v)
		}
		return nil
	}

	var obj struct {
		Total json.Number `json:"total"`
	}
	if err := json.Unmarshal(data, &obj); err == nil {
		if v, err := obj.Total.Int64(); err == nil {
			*t = flexibleTotal(v)
		}
		return nil
	}

	var arr []struct {
		Total json.Number `json:"total"`
	}
	if err := json.Unmarshal(data, &arr); err == nil && len(arr) > 0 {
		if v, err := arr[0].Total.Int64(); err == nil {
			*t = flexibleTotal(v)
		}
		return nil
	}

	return nil
}

type productListResponse struct {
	Products []RawProduct  `json:"products"`
	Total    flexibleTotal `json:"total"`
}

type priceListResponse struct {
	Prices []json.RawMessage `json:"prices"`
}
