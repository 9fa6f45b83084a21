package catalog

import (
	"context"
	"errors"
)

// ErrPersistence marks a failure in the persistence collaborator. It is
// reported to the caller rather than swallowed; the in-memory state stays
// authoritative for the rest of the session.
var ErrPersistence = errors.New("catalog: persistence failure")

// Record is the on-disk shape of a product.
type Record struct {
	ProductID     string  `json:"product_id"`
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	Price         float64 `json:"price"`
	StockQuantity int     `json:"stock_quantity"`
}

// Store is the persistence collaborator. Save overwrites the whole record
// list; Load returns an empty list when nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, records []Record) error
}
