package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	domcatalog "github.com/marchworks/stockroom/internal/domain/catalog"
	domain "github.com/marchworks/stockroom/internal/domain/order"
	domoutbox "github.com/marchworks/stockroom/internal/domain/outbox"
	"github.com/marchworks/stockroom/internal/observability"
	"github.com/marchworks/stockroom/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	orderService = "order-service"
	spanPrefix   = "UC."

	useCasePlace   = "order.place"
	useCaseConfirm = "order.confirm"
	useCaseReject  = "order.reject"
	useCaseRemove  = "order.remove"

	publishTimeout = 300 * time.Millisecond
)

var (
	ErrNotFound          = domain.ErrNotFound
	ErrEmptyOrder        = domain.ErrEmptyOrder
	ErrProductNotFound   = domcatalog.ErrNotFound
	ErrInsufficientStock = domcatalog.ErrInsufficientStock
)

// LineRequest names a product by display identifier with a desired
// quantity.
type LineRequest struct {
	ProductID string
	Quantity  int
}

// Service drives the order lifecycle against a shared catalog instance.
// Placement is all-or-nothing: availability of every line is validated
// before any stock is committed, and a commit failure releases whatever
// the same request already reserved.
type Service struct {
	catalog   *domcatalog.Catalog
	book      *domain.Book
	persister Persister
	publisher domoutbox.Publisher
	threshold int

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewService(
	cat *domcatalog.Catalog,
	book *domain.Book,
	persister Persister,
	publisher domoutbox.Publisher,
	lowStockThreshold int,
	tel observability.Observability,
) *Service {
	baseLog := observability.NopLogger()
	tracer := observability.NopTracer()
	metrics := observability.NopMetrics()
	if tel != nil {
		baseLog = tel.Logger()
		tracer = tel.Tracer()
		metrics = tel.Metrics()
	}

	return &Service{
		catalog:      cat,
		book:         book,
		persister:    persister,
		publisher:    publisher,
		threshold:    lowStockThreshold,
		log:          baseLog.With(observability.F("service", orderService)),
		tracer:       tracer,
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

// PlaceOrder reserves stock for every requested line, snapshots unit
// prices, and appends the order to the book. When the catalog was updated
// but the save failed, the order stands and the error wraps
// catalog.ErrPersistence.
func (s *Service) PlaceOrder(ctx context.Context, username string, reqs []LineRequest) (_ *domain.Order, err error) {
	ctx, done := s.track(ctx, useCasePlace,
		attribute.String("order.username", username),
		attribute.Int("order.lines", len(reqs)),
	)
	defer func() { done(err) }()

	if len(reqs) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	// Phase one: resolve every line and verify cumulative availability
	// per product, so duplicate lines cannot oversell.
	lines := make([]domain.Line, 0, len(reqs))
	required := make(map[string]int)
	available := make(map[string]int)
	for _, req := range reqs {
		if req.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		p, gerr := s.catalog.Get(req.ProductID)
		if gerr != nil {
			return nil, fmt.Errorf("order: line %q: %w", req.ProductID, gerr)
		}
		required[p.Key] += req.Quantity
		available[p.Key] = p.Stock
		if required[p.Key] > available[p.Key] {
			return nil, fmt.Errorf("order: line %q: %w", req.ProductID, domcatalog.ErrInsufficientStock)
		}
		lines = append(lines, domain.Line{
			ProductKey: p.Key,
			ProductID:  p.ID,
			Quantity:   req.Quantity,
			UnitPrice:  p.Price,
		})
	}

	// Phase two: commit the reservations, compensating on failure so no
	// partially reserved order can exist.
	for i, line := range lines {
		if rerr := s.catalog.Reserve(line.ProductID, line.Quantity); rerr != nil {
			for j := 0; j < i; j++ {
				s.catalog.Release(lines[j].ProductKey, lines[j].Quantity)
			}
			return nil, fmt.Errorf("order: reserve %q: %w", line.ProductID, rerr)
		}
	}

	placed, perr := s.book.Place(username, lines)
	if perr != nil {
		for _, line := range lines {
			s.catalog.Release(line.ProductKey, line.Quantity)
		}
		return nil, perr
	}

	err = s.persister.Persist(ctx)

	s.publish(ctx, domain.NewOrderPlacedEvent(placed))
	for _, line := range lines {
		s.maybeAlertLowStock(ctx, line.ProductKey)
	}

	return placed, err
}

// ConfirmOrder removes the order from the book. Stock was committed at
// placement, so confirmation has no stock side effect and no save.
func (s *Service) ConfirmOrder(ctx context.Context, orderID int64) (err error) {
	ctx, done := s.track(ctx, useCaseConfirm, attribute.Int64("order.id", orderID))
	defer func() { done(err) }()

	removed, err := s.book.Remove(orderID)
	if err != nil {
		return err
	}
	s.publish(ctx, domain.NewOrderConfirmedEvent(removed))
	return nil
}

// RejectOrder releases every line back to stock and removes the order.
func (s *Service) RejectOrder(ctx context.Context, orderID int64) error {
	return s.release(ctx, useCaseReject, orderID, domain.ReleaseReasonRejected)
}

// RemoveOrder is the owner-facing path with the same stock-release
// behavior as rejection.
func (s *Service) RemoveOrder(ctx context.Context, orderID int64) error {
	return s.release(ctx, useCaseRemove, orderID, domain.ReleaseReasonRemoved)
}

func (s *Service) release(ctx context.Context, useCase string, orderID int64, reason string) (err error) {
	ctx, done := s.track(ctx, useCase, attribute.Int64("order.id", orderID))
	defer func() { done(err) }()

	removed, err := s.book.Remove(orderID)
	if err != nil {
		return err
	}
	for _, line := range removed.Lines {
		s.catalog.Release(line.ProductKey, line.Quantity)
	}

	err = s.persister.Persist(ctx)
	s.publish(ctx, domain.NewOrderReleasedEvent(removed, reason))
	return err
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	_ = ctx
	return s.book.Get(orderID)
}

func (s *Service) ListOrders(ctx context.Context) []*domain.Order {
	_ = ctx
	return s.book.ListAll()
}

func (s *Service) ListOrdersFor(ctx context.Context, username string) []*domain.Order {
	_ = ctx
	return s.book.ListByOwner(username)
}

func (s *Service) publish(ctx context.Context, event domoutbox.Event) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, event); err != nil {
		s.log.Warn("event_publish_failed",
			observability.F("event", event.EventName()),
			observability.F("error", err),
		)
	}
}

func (s *Service) maybeAlertLowStock(ctx context.Context, productKey string) {
	p, err := s.catalog.GetByKey(productKey)
	if err != nil || p.Stock >= s.threshold {
		return
	}
	s.publish(ctx, domcatalog.NewLowStockEvent(p, s.threshold))
}

func (s *Service) track(ctx context.Context, useCase string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCase))
	ctx, span := s.tracer.Start(ctx, spanPrefix+useCase,
		append(attrs, attribute.String("use_case", useCase))...,
	)
	start := time.Now()

	return ctx, func(err error) {
		lat := time.Since(start).Seconds()
		outcome, statusText := "success", "OK"
		if err != nil {
			outcome, statusText = "error", statusFromError(err)
		}

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, statusText)
			} else {
				span.SetStatus(codes.Ok, statusText)
			}
			span.End()
		}

		if s.reqCounter != nil {
			s.reqCounter.Add(1,
				observability.L("use_case", useCase),
				observability.L("outcome", outcome),
			)
		}
		if s.durHistogram != nil {
			s.durHistogram.Observe(lat, observability.L("use_case", useCase))
		}

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", lat),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}
}

func statusFromError(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "ORDER_NOT_FOUND"
	case errors.Is(err, domcatalog.ErrNotFound):
		return "PRODUCT_NOT_FOUND"
	case errors.Is(err, domcatalog.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrEmptyOrder), errors.Is(err, domain.ErrInvalidQuantity):
		return "INVALID_INPUT"
	case errors.Is(err, domcatalog.ErrPersistence):
		return "PERSISTENCE_FAILED"
	default:
		return "ERROR"
	}
}
