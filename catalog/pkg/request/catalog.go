package request

type UpdatePrice struct {
	Price float64 `json:"price" validate:"gte=0"`
}

type UpdateInventory struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  *int   `json:"quantity"  validate:"required,gte=0"`
}
