package order

import "context"

// Persister pushes the current catalog snapshot to durable storage. Order
// transitions that change stock reuse the catalog service's save path
// through this port.
type Persister interface {
	Persist(ctx context.Context) error
}
