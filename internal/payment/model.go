// Package payment is the append-only ledger of amounts paid against orders.
// Payments are never updated or deleted and do not change the order's
// payment status.
package payment

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/mavunohub/internal/apperr"
	"github.com/MikeMC777/mavunohub/internal/money"
)

const maxReference = 255

type Method string

const (
	MethodCash  Method = "cash"
	MethodMpesa Method = "mpesa"
	MethodCard  Method = "card"
)

type Payment struct {
	ID        string
	OrderID   string
	Amount    decimal.Decimal
	Method    Method
	Reference *string
	CreatedAt time.Time
}

// swagger:model PaymentResponse
type Response struct {
	ID        string    `json:"id"`
	Order     string    `json:"order"`
	Amount    string    `json:"amount" example:"500.00"`
	Method    Method    `json:"method" example:"mpesa"`
	Reference *string   `json:"reference"`
	CreatedAt time.Time `json:"created_at"`
}

func (p *Payment) Response() Response {
	return Response{
		ID:        p.ID,
		Order:     p.OrderID,
		Amount:    money.Price(p.Amount),
		Method:    p.Method,
		Reference: p.Reference,
		CreatedAt: p.CreatedAt,
	}
}

var minAmount = decimal.RequireFromString("0.01")

// RecordPaymentRequest payload of payment creation.
// swagger:model RecordPaymentRequest
type RecordPaymentRequest struct {
	Order     string           `json:"order"     binding:"required,uuid" example:"4e7d4e5c-5cb9-4a3f-9f21-7e1a4f9f2b2a"`
	Amount    *decimal.Decimal `json:"amount"    binding:"required" swaggertype:"string" example:"500.00"`
	Method    string           `json:"method"    binding:"required,oneof=cash mpesa card" example:"mpesa"`
	Reference *string          `json:"reference" binding:"omitempty,max=255" example:"QK7H2LX9"`
}

func (r RecordPaymentRequest) Validate() error {
	fe := apperr.FieldErrors{}
	if r.Amount == nil {
		fe.Add("amount", "This field is required.")
	} else {
		money.Check(fe, "amount", *r.Amount, minAmount, money.MaxDigits, money.PricePlaces)
	}
	switch Method(r.Method) {
	case MethodCash, MethodMpesa, MethodCard:
	default:
		fe.Add("method", "Must be one of: cash mpesa card.")
	}
	if r.Reference != nil && utf8.RuneCountInString(strings.TrimSpace(*r.Reference)) > maxReference {
		fe.Add("reference", "Ensure this field has no more than 255 characters.")
	}
	return fe.Err("invalid payment")
}

// Payment builds the ledger entry. A blank reference is stored as null.
// The request must have passed Validate.
func (r RecordPaymentRequest) Payment(id string) *Payment {
	p := &Payment{ID: id, OrderID: r.Order, Amount: *r.Amount, Method: Method(r.Method)}
	if r.Reference != nil && strings.TrimSpace(*r.Reference) != "" {
		ref := strings.TrimSpace(*r.Reference)
		p.Reference = &ref
	}
	return p
}
