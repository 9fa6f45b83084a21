package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/marchworks/stockroom/internal/domain/catalog"
	domoutbox "github.com/marchworks/stockroom/internal/domain/outbox"
	"github.com/marchworks/stockroom/internal/observability"
	"github.com/marchworks/stockroom/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	catalogService = "catalog-service"
	spanPrefix     = "UC."

	useCaseAdd    = "catalog.add_product"
	useCaseUpdate = "catalog.update_product"
	useCaseDelete = "catalog.delete_product"
	useCaseList   = "catalog.list_products"

	persistPeer     = "store"
	persistEndpoint = "catalog.save"
	publishTimeout  = 300 * time.Millisecond
)

var (
	ErrNotFound          = domain.ErrNotFound
	ErrConflict          = domain.ErrConflict
	ErrInvalidInput      = domain.ErrInvalidInput
	ErrInsufficientStock = domain.ErrInsufficientStock
	ErrPersistence       = domain.ErrPersistence
)

// Service owns the catalog mutations. Every successful insert, update and
// delete resequences the identifiers and pushes the full snapshot to the
// persistence collaborator before returning.
type Service struct {
	catalog   *domain.Catalog
	store     domain.Store
	keys      IDGenerator
	publisher domoutbox.Publisher
	threshold int

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHistogram observability.Histogram
	extCounter   observability.Counter
	extHistogram observability.Histogram
}

func NewService(
	cat *domain.Catalog,
	store domain.Store,
	keys IDGenerator,
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
		store:        store,
		keys:         keys,
		publisher:    publisher,
		threshold:    lowStockThreshold,
		log:          baseLog.With(observability.F("service", catalogService)),
		tracer:       tracer,
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
		extCounter:   metrics.Counter(observability.MExternalRequests),
		extHistogram: metrics.Histogram(observability.MExternalRequestDuration),
	}
}

// Load populates the catalog from the persistence collaborator, assigning a
// fresh immutable key to every record. Identifiers are taken as stored;
// the dense invariant is re-established on the next mutation.
func (s *Service) Load(ctx context.Context) error {
	records, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	for _, r := range records {
		p, err := domain.NewProduct(s.keys.NewID(), r.ProductID, r.Name, r.Category, r.Price, r.StockQuantity)
		if err != nil {
			return fmt.Errorf("catalog: load record %q: %w", r.ProductID, err)
		}
		if err := s.catalog.Insert(p); err != nil {
			return fmt.Errorf("catalog: load record %q: %w", r.ProductID, err)
		}
	}
	s.log.Info("catalog_loaded", observability.F("products", s.catalog.Len()))
	return nil
}

type AddProductInput struct {
	ID       string // blank means auto-assign
	Name     string
	Category string
	Price    float64
	Stock    int
}

// AddProduct inserts a product, auto-assigning the lowest free identifier
// when the input leaves it blank.
func (s *Service) AddProduct(ctx context.Context, in AddProductInput) (_ *domain.Product, err error) {
	ctx, done := s.track(ctx, useCaseAdd,
		attribute.String("product.id", in.ID),
		attribute.String("product.name", in.Name),
	)
	defer func() { done(err) }()

	id := in.ID
	if id == "" {
		id = s.catalog.NextAvailableID()
	}

	p, err := domain.NewProduct(s.keys.NewID(), id, in.Name, in.Category, in.Price, in.Stock)
	if err != nil {
		return nil, err
	}
	if err = s.catalog.Insert(p); err != nil {
		return nil, err
	}

	s.catalog.Resequence()
	if err = s.persist(ctx); err != nil {
		return nil, err
	}
	s.maybeAlertLowStock(ctx, p)

	snapshot := *p
	return &snapshot, nil
}

// UpdateProduct applies the optional field updates. Name, category and
// price replace; the stock field is a signed increment.
func (s *Service) UpdateProduct(ctx context.Context, id string, upd domain.FieldUpdate) (_ *domain.Product, err error) {
	ctx, done := s.track(ctx, useCaseUpdate, attribute.String("product.id", id))
	defer func() { done(err) }()

	if err = s.catalog.UpdateFields(id, upd); err != nil {
		return nil, err
	}

	p, _ := s.catalog.Get(id)
	s.catalog.Resequence()
	if err = s.persist(ctx); err != nil {
		return nil, err
	}
	s.maybeAlertLowStock(ctx, p)

	snapshot := *p
	return &snapshot, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) (err error) {
	ctx, done := s.track(ctx, useCaseDelete, attribute.String("product.id", id))
	defer func() { done(err) }()

	if err = s.catalog.Remove(id); err != nil {
		return err
	}

	s.catalog.Resequence()
	return s.persist(ctx)
}

func (s *Service) ListProducts(ctx context.Context) []*domain.Product {
	ctx, done := s.track(ctx, useCaseList)
	defer done(nil)
	_ = ctx

	return s.catalog.ListAll()
}

// GetProduct returns a copy of the product at the given identifier.
func (s *Service) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx
	p, err := s.catalog.Get(id)
	if err != nil {
		return nil, err
	}
	snapshot := *p
	return &snapshot, nil
}

// NextAvailableID exposes the allocator for interactive prompts.
func (s *Service) NextAvailableID() string { return s.catalog.NextAvailableID() }

// LowStockThreshold is the stock level below which alerts fire.
func (s *Service) LowStockThreshold() int { return s.threshold }

// Persist writes the current catalog snapshot through the persistence
// collaborator. Exposed so order transitions that touch stock can reuse the
// same save path.
func (s *Service) Persist(ctx context.Context) error { return s.persist(ctx) }

func (s *Service) persist(ctx context.Context) error {
	start := time.Now()
	err := s.store.Save(ctx, s.catalog.Snapshot())
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if s.extCounter != nil {
		s.extCounter.Add(1,
			observability.L("peer", persistPeer),
			observability.L("endpoint", persistEndpoint),
			observability.L("outcome", outcome),
		)
	}
	if s.extHistogram != nil {
		s.extHistogram.Observe(time.Since(start).Seconds(),
			observability.L("peer", persistPeer),
			observability.L("endpoint", persistEndpoint),
		)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}
	return nil
}

func (s *Service) maybeAlertLowStock(ctx context.Context, p *domain.Product) {
	if p == nil || p.Stock >= s.threshold || s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, domain.NewLowStockEvent(p, s.threshold)); err != nil {
		s.log.Warn("low_stock_publish_failed",
			observability.F("product_id", p.ID),
			observability.F("error", err),
		)
	}
}

// track opens the use-case span and returns a completion callback that
// settles the span, metrics and the use_case_done log line.
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
		return "NOT_FOUND"
	case errors.Is(err, domain.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, domain.ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, domain.ErrPersistence):
		return "PERSISTENCE_FAILED"
	default:
		return "ERROR"
	}
}
