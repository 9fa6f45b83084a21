package order

import "time"

// OrderPlacedEvent is emitted after stock has been reserved for every line.
type OrderPlacedEvent struct {
	OrderID    int64
	Username   string
	LineCount  int
	Total      float64
	OccurredAt time.Time
}

func (OrderPlacedEvent) EventName() string { return "order.placed" }

func NewOrderPlacedEvent(o *Order) OrderPlacedEvent {
	return OrderPlacedEvent{
		OrderID:    o.ID,
		Username:   o.Username,
		LineCount:  len(o.Lines),
		Total:      o.Total,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderConfirmedEvent is emitted when an administrator confirms an order.
// Confirmation has no stock side effect.
type OrderConfirmedEvent struct {
	OrderID    int64
	Username   string
	OccurredAt time.Time
}

func (OrderConfirmedEvent) EventName() string { return "order.confirmed" }

func NewOrderConfirmedEvent(o *Order) OrderConfirmedEvent {
	return OrderConfirmedEvent{
		OrderID:    o.ID,
		Username:   o.Username,
		OccurredAt: time.Now().UTC(),
	}
}

// OrderReleasedEvent is emitted when an order leaves the book with its
// stock restored, either rejected by an administrator or removed by its
// owner. Lines carry the quantities that went back to the catalog.
type OrderReleasedEvent struct {
	OrderID    int64
	Username   string
	Reason     string
	Lines      []Line
	OccurredAt time.Time
}

const (
	ReleaseReasonRejected = "rejected"
	ReleaseReasonRemoved  = "removed_by_owner"
)

func (OrderReleasedEvent) EventName() string { return "order.released" }

func NewOrderReleasedEvent(o *Order, reason string) OrderReleasedEvent {
	return OrderReleasedEvent{
		OrderID:    o.ID,
		Username:   o.Username,
		Reason:     reason,
		Lines:      append([]Line(nil), o.Lines...),
		OccurredAt: time.Now().UTC(),
	}
}
