package order

import (
	"fmt"

	"github.com/MikeMC777/mavunohub/internal/apperr"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPacked    Status = "packed"
	StatusShipped   Status = "shipped"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool { return s == StatusCompleted || s == StatusCancelled }

// PaymentStatus is tracked independently of Status and is not derived from
// recorded payments.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

const (
	msgStillPending     = "Order is still pending"
	msgAlreadyCancelled = "Order is already cancelled"
)

// Next returns the status reached by advancing from s. Pending and cancelled
// orders are rejected; a completed order stays completed without error.
// Nothing advances an order into confirmed or cancelled.
func Next(s Status) (Status, error) {
	switch s {
	case StatusPending:
		return s, apperr.StateConflict(msgStillPending)
	case StatusConfirmed:
		return StatusPacked, nil
	case StatusPacked:
		return StatusShipped, nil
	case StatusShipped:
		return StatusCompleted, nil
	case StatusCancelled:
		return s, apperr.StateConflict(msgAlreadyCancelled)
	case StatusCompleted:
		return s, nil
	default:
		return s, fmt.Errorf("unknown order status %q", s)
	}
}

// AdvancedMessage is the detail reported after a successful advance.
func AdvancedMessage(s Status) string {
	return fmt.Sprintf("Order status set to %s", s)
}
