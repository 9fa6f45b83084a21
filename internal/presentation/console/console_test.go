package console

import (
	"bytes"
	"context"
	"strings"
	"testing"

	appcatalog "github.com/marchworks/stockroom/internal/application/catalog"
	apporder "github.com/marchworks/stockroom/internal/application/order"
	"github.com/marchworks/stockroom/internal/application/session"
	domcatalog "github.com/marchworks/stockroom/internal/domain/catalog"
	domorder "github.com/marchworks/stockroom/internal/domain/order"
	"github.com/marchworks/stockroom/internal/domain/user"
	"github.com/marchworks/stockroom/internal/infrastructure/id"
	"github.com/marchworks/stockroom/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fixture struct {
	catalog *appcatalog.Service
	orders  *apporder.Service
	session *session.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cat := domcatalog.New()
	catalogSvc := appcatalog.NewService(cat, memory.NewStore(), id.NewUUIDGenerator(), nil, 5, nil)
	orderSvc := apporder.NewService(cat, domorder.NewBook(), catalogSvc, nil, 5, nil)
	return &fixture{
		catalog: catalogSvc,
		orders:  orderSvc,
		session: session.NewService(user.DefaultRoster(), nil),
	}
}

func runScript(t *testing.T, f *fixture, lines ...string) string {
	t.Helper()
	in := strings.NewReader(strings.Join(lines, "\n") + "\n")
	var out bytes.Buffer
	c := New(in, &out, f.session, f.catalog, f.orders, zap.NewNop())
	require.NoError(t, c.Run(context.Background()))
	return out.String()
}

func TestAdminAddsAndListsProduct(t *testing.T) {
	f := newFixture(t)

	out := runScript(t, f,
		"admin", "adminpass",
		"1", "", "Widget", "Tools", "9.99", "10",
		"4",
		"8",
	)

	assert.Contains(t, out, "Welcome, admin!")
	assert.Contains(t, out, "Product added successfully! Details: ID: 001, Name: Widget, Category: Tools, Price: $9.99, Stock: 10")
	assert.Contains(t, out, "Logged out successfully.")

	p, err := f.catalog.GetProduct(context.Background(), "001")
	require.NoError(t, err)
	assert.Equal(t, "Widget", p.Name)
}

func TestLoginRetriesOnBadCredentials(t *testing.T) {
	f := newFixture(t)

	out := runScript(t, f,
		"admin", "wrong",
		"admin", "adminpass",
		"8",
	)

	assert.Contains(t, out, "Invalid credentials. Try again.")
	assert.Contains(t, out, "Welcome, admin!")
}

func TestUserPlacesOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.AddProduct(context.Background(), appcatalog.AddProductInput{
		Name: "Widget", Category: "Tools", Price: 9.99, Stock: 10,
	})
	require.NoError(t, err)

	out := runScript(t, f,
		"user", "userpass",
		"1", "001", "4", "done",
		"4",
	)

	assert.Contains(t, out, "Added 4 of 001 to the order.")
	assert.Contains(t, out, "Order placed successfully! Order ID: 1, User: user, Products: 001 (Qty: 4), Total Amount: $39.96")

	p, err := f.catalog.GetProduct(context.Background(), "001")
	require.NoError(t, err)
	assert.Equal(t, 6, p.Stock)
}

func TestUserOrderEntryRejectsInsufficientStock(t *testing.T) {
	f := newFixture(t)
	_, err := f.catalog.AddProduct(context.Background(), appcatalog.AddProductInput{
		Name: "Widget", Category: "Tools", Price: 9.99, Stock: 3,
	})
	require.NoError(t, err)

	out := runScript(t, f,
		"user", "userpass",
		"1", "001", "5", "back",
		"4",
	)

	assert.Contains(t, out, "Insufficient stock!")

	p, err := f.catalog.GetProduct(context.Background(), "001")
	require.NoError(t, err)
	assert.Equal(t, 3, p.Stock, "nothing was reserved during entry")
}

func TestAddProductCancelledWithSentinel(t *testing.T) {
	f := newFixture(t)

	out := runScript(t, f,
		"admin", "adminpass",
		"1", "back",
		"8",
	)

	assert.Contains(t, out, "Add Product Menu")
	assert.Empty(t, f.catalog.ListProducts(context.Background()))
}
