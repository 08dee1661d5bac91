package payment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MikeMC777/mavunohub/internal/apperr"
	"github.com/MikeMC777/mavunohub/internal/events"
	"github.com/MikeMC777/mavunohub/internal/money"
)

var tracer = otel.Tracer("github.com/MikeMC777/mavunohub/internal/payment")

type Service struct {
	repo     Repository
	events   events.Publisher
	producer string
}

func NewService(repo Repository, pub events.Publisher, producer string) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: repo, events: pub, producer: producer}
}

// Record appends a payment. Any amount of at least 0.01 is accepted,
// whatever has already been paid on the order.
func (s *Service) Record(ctx context.Context, req RecordPaymentRequest) (*Payment, error) {
	ctx, span := tracer.Start(ctx, "payment.Record", trace.WithAttributes(attribute.String("order.id", req.Order)))
	defer span.End()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(req.Order); err != nil {
		return nil, apperr.Validation("invalid payment", map[string][]string{"order": {"Must be a valid UUID."}})
	}
	p := req.Payment(uuid.NewString())
	buyerID, err := s.repo.Create(ctx, p)
	if errors.Is(err, ErrOrderNotFound) {
		return nil, apperr.NotFound("order not found")
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	slog.InfoContext(ctx, "payment recorded", "payment_id", p.ID, "order_id", p.OrderID, "amount", money.Price(p.Amount), "method", p.Method)

	ev, err := events.New(ctx, events.TypePaymentRecorded, s.producer, p.OrderID, events.PaymentRecorded{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		BuyerID:   buyerID,
		Amount:    money.Price(p.Amount),
		Method:    string(p.Method),
	})
	if err == nil {
		err = s.events.Publish(ctx, ev)
	}
	if err != nil {
		slog.WarnContext(ctx, "publish payment.recorded", "payment_id", p.ID, "err", err)
	}
	return p, nil
}

func (s *Service) ListByOrder(ctx context.Context, orderID string) ([]Payment, error) {
	if _, err := uuid.Parse(orderID); err != nil {
		return nil, apperr.NotFound("order not found")
	}
	return s.repo.ListByOrder(ctx, orderID)
}
