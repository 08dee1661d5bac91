package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/mavunohub/internal/money"
)

type Order struct {
	ID            string          `json:"id"`
	BuyerID       string          `json:"buyer_id"`
	Status        Status          `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Total         decimal.Decimal `json:"total"`
	Items         []Item          `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Item struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	SellerID    *string         `json:"seller_id"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
}

// ItemTotal is unit_price × quantity. It is never stored.
func (it Item) ItemTotal() decimal.Decimal { return it.UnitPrice.Mul(it.Quantity) }

// SumItems adds the item totals exactly, then rounds to currency precision.
func SumItems(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.ItemTotal())
	}
	return total.Round(money.PricePlaces)
}

// swagger:model OrderItemResponse
type ItemResponse struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Product   string  `json:"product" example:"Sukuma wiki"`
	Seller    *string `json:"seller"`
	UnitPrice string  `json:"unit_price" example:"10.00"`
	Quantity  string  `json:"quantity" example:"2.000"`
	ItemTotal string  `json:"item_total" example:"20.00"`
}

// swagger:model OrderResponse
type Response struct {
	ID            string         `json:"id"`
	Buyer         string         `json:"buyer"`
	Status        Status         `json:"status" example:"pending"`
	PaymentStatus PaymentStatus  `json:"payment_status" example:"pending"`
	Total         string         `json:"total" example:"25.50"`
	Items         []ItemResponse `json:"items"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

func (o *Order) Response() Response {
	items := make([]ItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, ItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Product:   it.ProductName,
			Seller:    it.SellerID,
			UnitPrice: money.Price(it.UnitPrice),
			Quantity:  money.Quantity(it.Quantity),
			ItemTotal: money.Price(it.ItemTotal()),
		})
	}
	return Response{
		ID:            o.ID,
		Buyer:         o.BuyerID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		Total:         money.Price(o.Total),
		Items:         items,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// Transition records the outcome of an advance.
type Transition struct {
	OrderID string
	BuyerID string
	From    Status
	To      Status
}

func (t Transition) Changed() bool { return t.From != t.To }
