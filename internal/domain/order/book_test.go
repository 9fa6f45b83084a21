package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLines() []Line {
	return []Line{
		{ProductKey: "k1", ProductID: "001", Quantity: 4, UnitPrice: 9.99},
		{ProductKey: "k2", ProductID: "002", Quantity: 1, UnitPrice: 2.50},
	}
}

func TestNewOrderComputesTotalOnce(t *testing.T) {
	o, err := New(1, "user", sampleLines())
	require.NoError(t, err)
	assert.InDelta(t, 4*9.99+2.50, o.Total, 1e-9)
}

func TestNewOrderValidation(t *testing.T) {
	_, err := New(1, "user", nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = New(1, "user", []Line{{ProductKey: "k", ProductID: "001", Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = New(1, "", sampleLines())
	assert.Error(t, err)
}

func TestBookIDsAreNeverReused(t *testing.T) {
	b := NewBook()

	first, err := b.Place("user", sampleLines())
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)

	second, err := b.Place("user", sampleLines())
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)

	_, err = b.Remove(first.ID)
	require.NoError(t, err)
	_, err = b.Remove(second.ID)
	require.NoError(t, err)
	require.Equal(t, 0, b.Len())

	third, err := b.Place("user", sampleLines())
	require.NoError(t, err)
	assert.Equal(t, int64(3), third.ID, "counter is independent of current book length")
}

func TestBookRemoveNotFound(t *testing.T) {
	b := NewBook()
	_, err := b.Remove(99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookGetReturnsClone(t *testing.T) {
	b := NewBook()
	placed, err := b.Place("user", sampleLines())
	require.NoError(t, err)

	got, err := b.Get(placed.ID)
	require.NoError(t, err)
	got.Lines[0].Quantity = 999

	again, err := b.Get(placed.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, again.Lines[0].Quantity)
}

func TestBookListByOwner(t *testing.T) {
	b := NewBook()
	_, err := b.Place("alice", sampleLines())
	require.NoError(t, err)
	_, err = b.Place("bob", sampleLines())
	require.NoError(t, err)
	_, err = b.Place("alice", sampleLines())
	require.NoError(t, err)

	assert.Len(t, b.ListAll(), 3)
	assert.Len(t, b.ListByOwner("alice"), 2)
	assert.Len(t, b.ListByOwner("carol"), 0)
}
