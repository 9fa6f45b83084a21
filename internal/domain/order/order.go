package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrEmptyOrder      = errors.New("order: at least one line is required")
	ErrInvalidQuantity = errors.New("order: quantity must be greater than zero")
)

// Line is an immutable snapshot of one ordered position. ProductID is the
// display identifier at placement time and may be stale after a catalog
// resequencing; ProductKey stays valid for stock release.
type Line struct {
	ProductKey string
	ProductID  string
	Quantity   int
	UnitPrice  float64
}

// Order is a pending customer order. Total is computed once from the unit
// prices captured at placement and never recomputed.
type Order struct {
	ID       int64
	Username string
	Lines    []Line
	Total    float64
	PlacedAt time.Time
}

func New(id int64, username string, lines []Line) (*Order, error) {
	if username == "" {
		return nil, errors.New("order: username is required")
	}
	if len(lines) == 0 {
		return nil, ErrEmptyOrder
	}
	total := 0.0
	for _, l := range lines {
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		total += float64(l.Quantity) * l.UnitPrice
	}
	return &Order{
		ID:       id,
		Username: username,
		Lines:    append([]Line(nil), lines...),
		Total:    total,
		PlacedAt: time.Now().UTC(),
	}, nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Lines = append([]Line(nil), o.Lines...)
	return &c
}
