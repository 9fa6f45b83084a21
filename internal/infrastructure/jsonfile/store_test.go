package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	domain "github.com/marchworks/stockroom/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileIsEmptyCatalog(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "inventory.json"))

	records, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "inventory.json"))
	ctx := context.Background()

	in := []domain.Record{
		{ProductID: "001", Name: "Widget", Category: "Tools", Price: 9.99, StockQuantity: 10},
		{ProductID: "002", Name: "Gadget", Category: "Toys", Price: 2.5, StockQuantity: 0},
	}
	require.NoError(t, s.Save(ctx, in))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestSaveOverwritesWholeFile(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "inventory.json"))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []domain.Record{
		{ProductID: "001", Name: "A", Price: 1, StockQuantity: 1},
		{ProductID: "002", Name: "B", Price: 2, StockQuantity: 2},
	}))
	require.NoError(t, s.Save(ctx, []domain.Record{
		{ProductID: "001", Name: "C", Price: 3, StockQuantity: 3},
	}))

	out, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "C", out[0].Name)
}

func TestLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inventory.json")
	s := New(path)
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := s.Load(context.Background())
	assert.Error(t, err)
}
