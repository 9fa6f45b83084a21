package catalog

import "time"

// LowStockEvent is emitted when a mutation drops a product's stock below
// the configured threshold.
type LowStockEvent struct {
	ProductKey string
	ProductID  string
	Name       string
	Stock      int
	Threshold  int
	OccurredAt time.Time
}

func (LowStockEvent) EventName() string { return "catalog.low_stock" }

func NewLowStockEvent(p *Product, threshold int) LowStockEvent {
	return LowStockEvent{
		ProductKey: p.Key,
		ProductID:  p.ID,
		Name:       p.Name,
		Stock:      p.Stock,
		Threshold:  threshold,
		OccurredAt: time.Now().UTC(),
	}
}
