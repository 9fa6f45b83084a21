package order

import (
	"context"
	"sync"
	"testing"

	domcatalog "github.com/marchworks/stockroom/internal/domain/catalog"
	domain "github.com/marchworks/stockroom/internal/domain/order"
	domoutbox "github.com/marchworks/stockroom/internal/domain/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePersister struct {
	saves int
	err   error
}

func (p *fakePersister) Persist(context.Context) error {
	p.saves++
	return p.err
}

type capturePublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *capturePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *capturePublisher) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.EventName())
	}
	return names
}

func seedCatalog(t *testing.T) *domcatalog.Catalog {
	t.Helper()
	cat := domcatalog.New()
	widget, err := domcatalog.NewProduct("key-widget", "001", "Widget", "Tools", 9.99, 10)
	require.NoError(t, err)
	require.NoError(t, cat.Insert(widget))
	gadget, err := domcatalog.NewProduct("key-gadget", "002", "Gadget", "Toys", 2.50, 3)
	require.NoError(t, err)
	require.NoError(t, cat.Insert(gadget))
	return cat
}

func stockOf(t *testing.T, cat *domcatalog.Catalog, id string) int {
	t.Helper()
	p, err := cat.Get(id)
	require.NoError(t, err)
	return p.Stock
}

func newTestService(t *testing.T) (*Service, *domcatalog.Catalog, *fakePersister, *capturePublisher) {
	t.Helper()
	cat := seedCatalog(t)
	persister := &fakePersister{}
	pub := &capturePublisher{}
	svc := NewService(cat, domain.NewBook(), persister, pub, 5, nil)
	return svc, cat, persister, pub
}

func TestPlaceOrderReservesStockAndComputesTotal(t *testing.T) {
	svc, cat, persister, pub := newTestService(t)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, "user", []LineRequest{{ProductID: "001", Quantity: 4}})
	require.NoError(t, err)
	require.NotNil(t, placed)

	assert.Equal(t, int64(1), placed.ID)
	assert.InDelta(t, 4*9.99, placed.Total, 1e-9)
	assert.Equal(t, 6, stockOf(t, cat, "001"))
	assert.Equal(t, 1, persister.saves)
	assert.Contains(t, pub.Names(), domain.OrderPlacedEvent{}.EventName())
}

func TestPlaceOrderInsufficientStockIsAtomic(t *testing.T) {
	svc, cat, persister, _ := newTestService(t)

	_, err := svc.PlaceOrder(context.Background(), "user", []LineRequest{
		{ProductID: "001", Quantity: 4},
		{ProductID: "002", Quantity: 99},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)

	assert.Equal(t, 10, stockOf(t, cat, "001"), "no partial reservation")
	assert.Equal(t, 3, stockOf(t, cat, "002"))
	assert.Equal(t, 0, persister.saves)
}

func TestPlaceOrderAggregatesDuplicateLines(t *testing.T) {
	svc, cat, _, _ := newTestService(t)

	_, err := svc.PlaceOrder(context.Background(), "user", []LineRequest{
		{ProductID: "002", Quantity: 2},
		{ProductID: "002", Quantity: 2},
	})
	require.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, stockOf(t, cat, "002"))
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.PlaceOrder(context.Background(), "user", []LineRequest{{ProductID: "042", Quantity: 1}})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPlaceOrderEmpty(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.PlaceOrder(context.Background(), "user", nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestRejectRestoresEveryLine(t *testing.T) {
	svc, cat, persister, pub := newTestService(t)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, "user", []LineRequest{
		{ProductID: "001", Quantity: 4},
		{ProductID: "002", Quantity: 2},
	})
	require.NoError(t, err)
	require.Equal(t, 6, stockOf(t, cat, "001"))
	require.Equal(t, 1, stockOf(t, cat, "002"))

	require.NoError(t, svc.RejectOrder(ctx, placed.ID))

	assert.Equal(t, 10, stockOf(t, cat, "001"))
	assert.Equal(t, 3, stockOf(t, cat, "002"))
	assert.Empty(t, svc.ListOrders(ctx))
	assert.Equal(t, 2, persister.saves, "placement and rejection both save")
	assert.Contains(t, pub.Names(), domain.OrderReleasedEvent{}.EventName())
}

func TestConfirmHasNoStockEffect(t *testing.T) {
	svc, cat, persister, pub := newTestService(t)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, "user", []LineRequest{{ProductID: "001", Quantity: 4}})
	require.NoError(t, err)
	savesAfterPlace := persister.saves

	require.NoError(t, svc.ConfirmOrder(ctx, placed.ID))

	assert.Equal(t, 6, stockOf(t, cat, "001"), "stock was committed at placement")
	assert.Empty(t, svc.ListOrders(ctx))
	assert.Equal(t, savesAfterPlace, persister.saves, "confirm does not save")
	assert.Contains(t, pub.Names(), domain.OrderConfirmedEvent{}.EventName())
}

func TestRemoveOrderRestoresStock(t *testing.T) {
	svc, cat, _, _ := newTestService(t)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, "user", []LineRequest{{ProductID: "002", Quantity: 3}})
	require.NoError(t, err)
	require.Equal(t, 0, stockOf(t, cat, "002"))

	require.NoError(t, svc.RemoveOrder(ctx, placed.ID))
	assert.Equal(t, 3, stockOf(t, cat, "002"))
}

func TestRejectSurvivesResequencing(t *testing.T) {
	svc, cat, _, _ := newTestService(t)
	ctx := context.Background()

	placed, err := svc.PlaceOrder(ctx, "user", []LineRequest{{ProductID: "002", Quantity: 2}})
	require.NoError(t, err)

	// Deleting "001" renumbers Gadget to "001"; the order's line still
	// resolves through its immutable key.
	require.NoError(t, cat.Remove("001"))
	cat.Resequence()

	require.NoError(t, svc.RejectOrder(ctx, placed.ID))

	p, err := cat.GetByKey("key-gadget")
	require.NoError(t, err)
	assert.Equal(t, "001", p.ID)
	assert.Equal(t, 3, p.Stock)
}

func TestRejectUnknownOrder(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	assert.ErrorIs(t, svc.RejectOrder(context.Background(), 42), ErrNotFound)
}

func TestPlaceOrderPersistFailureStillPlaces(t *testing.T) {
	cat := seedCatalog(t)
	persister := &fakePersister{err: domcatalog.ErrPersistence}
	svc := NewService(cat, domain.NewBook(), persister, nil, 5, nil)

	placed, err := svc.PlaceOrder(context.Background(), "user", []LineRequest{{ProductID: "001", Quantity: 1}})
	assert.ErrorIs(t, err, domcatalog.ErrPersistence)
	require.NotNil(t, placed, "order stands; only the save failed")
	assert.Equal(t, 9, stockOf(t, cat, "001"))
}
