// Package notification turns domain events into per-user inbox messages.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MikeMC777/mavunohub/internal/events"
)

type Status string

const (
	StatusUnread Status = "unread"
	StatusRead   Status = "read"
)

const WelcomeMessage = "Welcome to MavunoHub!"

type Notification struct {
	ID        string
	UserID    string
	Message   string
	Status    Status
	EventID   string
	CreatedAt time.Time
}

type Repository interface {
	// Save stores n unless a notification for the same event already exists.
	Save(ctx context.Context, n *Notification) (bool, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) Save(ctx context.Context, n *Notification) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, message, status, event_id, created_at)
		VALUES ($1,$2,$3,$4,$5,NOW())
		ON CONFLICT (event_id) DO NOTHING
	`, n.ID, n.UserID, n.Message, n.Status, n.EventID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

// Compose returns the recipient and text for ev. ok is false for events
// that notify nobody.
func Compose(ev events.Envelope) (userID, message string, ok bool, err error) {
	switch ev.EventType {
	case events.TypeOrderCreated:
		p, err := events.Decode[events.OrderCreated](ev)
		if err != nil {
			return "", "", false, err
		}
		return p.BuyerID, fmt.Sprintf("Your order %s has been placed. Total: %s.", p.OrderID, p.Total), true, nil
	case events.TypeOrderStatusChanged:
		p, err := events.Decode[events.OrderStatusChanged](ev)
		if err != nil {
			return "", "", false, err
		}
		return p.BuyerID, fmt.Sprintf("Your order %s is now %s.", p.OrderID, p.To), true, nil
	case events.TypePaymentRecorded:
		p, err := events.Decode[events.PaymentRecorded](ev)
		if err != nil {
			return "", "", false, err
		}
		return p.BuyerID, fmt.Sprintf("Payment of %s via %s received for order %s.", p.Amount, p.Method, p.OrderID), true, nil
	case events.TypeUserRegistered:
		p, err := events.Decode[events.UserRegistered](ev)
		if err != nil {
			return "", "", false, err
		}
		return p.UserID, WelcomeMessage, true, nil
	default:
		return "", "", false, nil
	}
}

// Handler stores one unread notification per event. Redelivered events are
// ignored through the unique event id.
func Handler(repo Repository) func(ctx context.Context, ev events.Envelope) error {
	return func(ctx context.Context, ev events.Envelope) error {
		userID, msg, ok, err := Compose(ev)
		if err != nil || !ok {
			return err
		}
		n := &Notification{
			ID:      uuid.NewString(),
			UserID:  userID,
			Message: msg,
			Status:  StatusUnread,
			EventID: ev.EventID,
		}
		created, err := repo.Save(ctx, n)
		if err != nil {
			return fmt.Errorf("save notification for %s: %w", ev.EventID, err)
		}
		if created {
			slog.InfoContext(ctx, "notification stored", "user_id", userID, "event_type", ev.EventType, "event_id", ev.EventID)
		}
		return nil
	}
}
