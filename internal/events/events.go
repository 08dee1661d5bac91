// Package events defines the envelope and payloads the services publish on
// the orders topic. Events are emitted after the owning transaction commits.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MikeMC777/mavunohub/internal/logging"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
	TypeOrderDeleted       = "order.deleted"
	TypePaymentRecorded    = "payment.recorded"
	TypeUserRegistered     = "user.registered"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	RequestID     string          `json:"request_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type OrderCreated struct {
	OrderID   string `json:"order_id"`
	BuyerID   string `json:"buyer_id"`
	Total     string `json:"total"`
	ItemCount int    `json:"item_count"`
}

type OrderStatusChanged struct {
	OrderID string `json:"order_id"`
	BuyerID string `json:"buyer_id"`
	From    string `json:"from"`
	To      string `json:"to"`
}

type OrderDeleted struct {
	OrderID string `json:"order_id"`
	BuyerID string `json:"buyer_id"`
}

type PaymentRecorded struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	BuyerID   string `json:"buyer_id"`
	Amount    string `json:"amount"`
	Method    string `json:"method"`
}

type UserRegistered struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// New wraps payload in a version 1 envelope keyed by correlationID.
func New(ctx context.Context, eventType, producer, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s payload: %w", eventType, err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		RequestID:     logging.RequestID(ctx),
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

// Decode unmarshals the envelope payload into T.
func Decode[T any](ev Envelope) (T, error) {
	var t T
	if err := json.Unmarshal(ev.Payload, &t); err != nil {
		return t, fmt.Errorf("decode %s payload: %w", ev.EventType, err)
	}
	return t, nil
}

type Publisher interface {
	Publish(ctx context.Context, ev Envelope) error
}

// Nop discards events; used when no broker is configured.
type Nop struct{}

func (Nop) Publish(context.Context, Envelope) error { return nil }
