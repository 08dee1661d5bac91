package order

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/mavunohub/internal/apperr"
	"github.com/MikeMC777/mavunohub/internal/money"
)

const msgEmptyOrder = "Order must contain at least 1 item."

var (
	minUnitPrice = decimal.Zero
	minQuantity  = decimal.RequireFromString("0.001")
)

// CreateOrderItem is one requested line.
// swagger:model CreateOrderItem
type CreateOrderItem struct {
	ProductID string           `json:"product_id" binding:"required,uuid" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	UnitPrice *decimal.Decimal `json:"unit_price" binding:"required" swaggertype:"string" example:"10.00"`
	Quantity  *decimal.Decimal `json:"quantity"   binding:"required" swaggertype:"string" example:"2.000"`
}

// CreateOrderRequest payload of order creation. The buyer is the acting user.
// swagger:model CreateOrderRequest
type CreateOrderRequest struct {
	Items []CreateOrderItem `json:"items" binding:"dive"`
}

func (r CreateOrderRequest) Validate() error {
	fe := apperr.FieldErrors{}
	if len(r.Items) == 0 {
		fe.Add("items", msgEmptyOrder)
		return apperr.Validation(msgEmptyOrder, fe)
	}
	for i, it := range r.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		if _, err := uuid.Parse(it.ProductID); err != nil {
			fe.Add(prefix+"product_id", "Must be a valid UUID.")
		}
		if it.UnitPrice == nil {
			fe.Add(prefix+"unit_price", "This field is required.")
		} else {
			money.Check(fe, prefix+"unit_price", *it.UnitPrice, minUnitPrice, money.MaxDigits, money.PricePlaces)
		}
		if it.Quantity == nil {
			fe.Add(prefix+"quantity", "This field is required.")
		} else {
			money.Check(fe, prefix+"quantity", *it.Quantity, minQuantity, money.MaxDigits, money.QuantityPlaces)
		}
	}
	return fe.Err("invalid order")
}

// toOrder builds the unsaved aggregate for buyerID. Item ids are assigned
// here; product names and sellers are filled in by the repository.
// The request must have passed Validate.
func (r CreateOrderRequest) toOrder(id, buyerID string) *Order {
	o := &Order{
		ID:            id,
		BuyerID:       buyerID,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		Items:         make([]Item, 0, len(r.Items)),
	}
	for _, it := range r.Items {
		o.Items = append(o.Items, Item{
			ID:        uuid.NewString(),
			OrderID:   id,
			ProductID: it.ProductID,
			UnitPrice: *it.UnitPrice,
			Quantity:  *it.Quantity,
		})
	}
	o.Total = SumItems(o.Items)
	return o
}
