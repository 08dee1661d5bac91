package product

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/mavunohub/internal/apperr"
	"github.com/MikeMC777/mavunohub/internal/money"
)

type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitTonne      Unit = "tonne"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitPiece      Unit = "piece"
	UnitDozen      Unit = "dozen"
	UnitBunch      Unit = "bunch"
	UnitPacket     Unit = "packet"
	UnitSack       Unit = "sack"
	UnitCrate      Unit = "crate"
	UnitTray       Unit = "tray"
)

type Product struct {
	ID          string
	SellerID    string
	Name        string
	Category    *string
	Price       decimal.Decimal
	Stock       decimal.Decimal
	Unit        Unit
	MinOrder    int
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Response is the JSON representation of a product. Decimals are rendered
// as fixed-point strings.
// swagger:model ProductResponse
type Response struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Name        string    `json:"name"`
	Category    *string   `json:"category"`
	Price       string    `json:"price" example:"120.00"`
	Stock       string    `json:"stock" example:"50.000"`
	Unit        Unit      `json:"unit" example:"kg"`
	MinOrder    int       `json:"min_order"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Product) Response() Response {
	return Response{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       money.Price(p.Price),
		Stock:       money.Quantity(p.Stock),
		Unit:        p.Unit,
		MinOrder:    p.MinOrder,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ListResponse represents the paginated response of products.
// swagger:model
type ListResponse struct {
	Q      string     `json:"q,omitempty"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
	Items  []Response `json:"items"`
}

var (
	minPrice = decimal.RequireFromString("0.01")
	minStock = decimal.Zero
)

// CreateProductRequest payload of creation.
// swagger:model CreateProductRequest
type CreateProductRequest struct {
	Name        string           `json:"name"        binding:"required,max=255" example:"Sukuma wiki"`
	Category    *string          `json:"category"    binding:"omitempty,max=64" example:"vegetables"`
	Price       *decimal.Decimal `json:"price"       binding:"required" swaggertype:"string" example:"120.00"`
	Stock       *decimal.Decimal `json:"stock"       swaggertype:"string" example:"50.000"`
	Unit        string           `json:"unit"        binding:"omitempty,oneof=g kg tonne ml l piece dozen bunch packet sack crate tray" example:"kg"`
	MinOrder    *int             `json:"min_order"   binding:"omitempty,min=1" example:"1"`
	Description string           `json:"description" binding:"required" example:"Fresh from Kiambu"`
}

func (r CreateProductRequest) Validate() error {
	fe := apperr.FieldErrors{}
	money.Check(fe, "price", *r.Price, minPrice, money.MaxDigits, money.PricePlaces)
	if r.Stock != nil {
		money.Check(fe, "stock", *r.Stock, minStock, 13, money.QuantityPlaces)
	}
	return fe.Err("invalid product")
}

// Product builds the record owned by sellerID, applying defaults.
func (r CreateProductRequest) Product(id, sellerID string) *Product {
	p := &Product{
		ID:          id,
		SellerID:    sellerID,
		Name:        r.Name,
		Category:    r.Category,
		Price:       *r.Price,
		Stock:       decimal.Zero,
		Unit:        UnitKilogram,
		MinOrder:    1,
		Description: r.Description,
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.Unit != "" {
		p.Unit = Unit(r.Unit)
	}
	if r.MinOrder != nil {
		p.MinOrder = *r.MinOrder
	}
	return p
}

// UpdateProductRequest payload of partial update. Omitted fields keep their value.
// swagger:model UpdateProductRequest
type UpdateProductRequest struct {
	Name        *string          `json:"name"        binding:"omitempty,min=1,max=255"`
	Category    *string          `json:"category"    binding:"omitempty,max=64"`
	Price       *decimal.Decimal `json:"price"       swaggertype:"string"`
	Stock       *decimal.Decimal `json:"stock"       swaggertype:"string"`
	Unit        *string          `json:"unit"        binding:"omitempty,oneof=g kg tonne ml l piece dozen bunch packet sack crate tray"`
	MinOrder    *int             `json:"min_order"   binding:"omitempty,min=1"`
	Description *string          `json:"description"`
}

func (r UpdateProductRequest) Validate() error {
	fe := apperr.FieldErrors{}
	if r.Price != nil {
		money.Check(fe, "price", *r.Price, minPrice, money.MaxDigits, money.PricePlaces)
	}
	if r.Stock != nil {
		money.Check(fe, "stock", *r.Stock, minStock, 13, money.QuantityPlaces)
	}
	return fe.Err("invalid product")
}

// Apply copies the supplied fields onto p.
func (r UpdateProductRequest) Apply(p *Product) {
	if r.Name != nil {
		p.Name = *r.Name
	}
	if r.Category != nil {
		p.Category = r.Category
	}
	if r.Price != nil {
		p.Price = *r.Price
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	if r.Unit != nil {
		p.Unit = Unit(*r.Unit)
	}
	if r.MinOrder != nil {
		p.MinOrder = *r.MinOrder
	}
	if r.Description != nil {
		p.Description = *r.Description
	}
}
