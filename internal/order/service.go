package order

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/MikeMC777/mavunohub/internal/apperr"
	"github.com/MikeMC777/mavunohub/internal/auth"
	"github.com/MikeMC777/mavunohub/internal/events"
	"github.com/MikeMC777/mavunohub/internal/money"
)

var tracer = otel.Tracer("github.com/MikeMC777/mavunohub/internal/order")

type Service struct {
	repo     Repository
	cache    Cache
	events   events.Publisher
	producer string
}

func NewService(repo Repository, cache Cache, pub events.Publisher, producer string) *Service {
	if cache == nil {
		cache = NopCache{}
	}
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: repo, cache: cache, events: pub, producer: producer}
}

func endSpan(span trace.Span, err error) {
	if err != nil && !apperr.Is(err, apperr.KindValidation) && !apperr.Is(err, apperr.KindStateConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func mapRepoErr(err error) error {
	var missing *MissingProductError
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound("order not found")
	case errors.As(err, &missing):
		return apperr.NotFound("product %s not found", missing.ProductID)
	default:
		return err
	}
}

// publish emits ev after the owning write committed. Failures are logged;
// the write is not undone.
func (s *Service) publish(ctx context.Context, eventType, correlationID string, payload any) {
	ev, err := events.New(ctx, eventType, s.producer, correlationID, payload)
	if err == nil {
		err = s.events.Publish(ctx, ev)
	}
	if err != nil {
		slog.WarnContext(ctx, "publish event", "event_type", eventType, "correlation_id", correlationID, "err", err)
	}
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		slog.WarnContext(ctx, "order cache invalidate", "order_id", id, "err", err)
	}
}

// Create validates req and persists the order for buyerID atomically.
func (s *Service) Create(ctx context.Context, buyerID string, req CreateOrderRequest) (o *Order, err error) {
	ctx, span := tracer.Start(ctx, "order.Create", trace.WithAttributes(attribute.Int("order.items", len(req.Items))))
	defer func() { endSpan(span, err) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	o = req.toOrder(uuid.NewString(), buyerID)
	span.SetAttributes(attribute.String("order.id", o.ID))
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, mapRepoErr(err)
	}
	slog.InfoContext(ctx, "order created", "order_id", o.ID, "buyer_id", buyerID, "total", money.Price(o.Total))
	s.publish(ctx, events.TypeOrderCreated, o.ID, events.OrderCreated{
		OrderID:   o.ID,
		BuyerID:   o.BuyerID,
		Total:     money.Price(o.Total),
		ItemCount: len(o.Items),
	})
	return o, nil
}

// Get returns one order to any authenticated caller.
func (s *Service) Get(ctx context.Context, id string) (o *Order, err error) {
	ctx, span := tracer.Start(ctx, "order.Get", trace.WithAttributes(attribute.String("order.id", id)))
	defer func() { endSpan(span, err) }()

	if _, perr := uuid.Parse(id); perr != nil {
		return nil, apperr.NotFound("order not found")
	}
	cached, version, cerr := s.cache.Get(ctx, id)
	if cerr == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached, nil
	} else if !errors.Is(cerr, errCacheMiss) {
		slog.WarnContext(ctx, "order cache get", "order_id", id, "err", cerr)
	}
	o, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	// version predates the read; after a concurrent Invalidate this Set lands on a retired key.
	if cerr := s.cache.Set(ctx, o, version); cerr != nil {
		slog.WarnContext(ctx, "order cache set", "order_id", id, "err", cerr)
	}
	return o, nil
}

// List scopes the listing by role: sellers see orders containing their
// items, everyone else sees the orders they placed.
func (s *Service) List(ctx context.Context, id auth.Identity) (out []Order, err error) {
	ctx, span := tracer.Start(ctx, "order.List", trace.WithAttributes(attribute.String("actor.role", string(id.Role))))
	defer func() { endSpan(span, err) }()

	if id.Role.IsSeller() {
		return s.repo.ListBySeller(ctx, id.UserID)
	}
	return s.repo.ListByBuyer(ctx, id.UserID)
}

// Advance moves the order one step along its lifecycle and returns the
// resulting status. Rejected transitions leave the order untouched.
func (s *Service) Advance(ctx context.Context, id string) (st Status, err error) {
	ctx, span := tracer.Start(ctx, "order.Advance", trace.WithAttributes(attribute.String("order.id", id)))
	defer func() { endSpan(span, err) }()

	if _, perr := uuid.Parse(id); perr != nil {
		return "", apperr.NotFound("order not found")
	}
	t, err := s.repo.Advance(ctx, id, Next)
	if err != nil {
		return "", mapRepoErr(err)
	}
	span.SetAttributes(attribute.String("order.from", string(t.From)), attribute.String("order.to", string(t.To)))
	if !t.Changed() {
		return t.To, nil
	}
	s.invalidate(ctx, id)
	slog.InfoContext(ctx, "order advanced", "order_id", id, "from", t.From, "to", t.To)
	s.publish(ctx, events.TypeOrderStatusChanged, id, events.OrderStatusChanged{
		OrderID: id,
		BuyerID: t.BuyerID,
		From:    string(t.From),
		To:      string(t.To),
	})
	return t.To, nil
}

// Delete removes the order regardless of its status.
func (s *Service) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracer.Start(ctx, "order.Delete", trace.WithAttributes(attribute.String("order.id", id)))
	defer func() { endSpan(span, err) }()

	if _, perr := uuid.Parse(id); perr != nil {
		return apperr.NotFound("order not found")
	}
	buyerID, err := s.repo.Delete(ctx, id)
	if err != nil {
		return mapRepoErr(err)
	}
	s.invalidate(ctx, id)
	slog.InfoContext(ctx, "order deleted", "order_id", id)
	s.publish(ctx, events.TypeOrderDeleted, id, events.OrderDeleted{OrderID: id, BuyerID: buyerID})
	return nil
}
