package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("catalog: product not found")
	ErrConflict          = errors.New("catalog: product id already exists")
	ErrInsufficientStock = errors.New("catalog: insufficient stock")
	ErrInvalidInput      = errors.New("catalog: invalid field value")
)

// Product is a catalog record. ID is the display identifier and is rewritten
// by resequencing; Key is assigned once at insert and never changes, so
// references held outside the catalog survive a resequencing pass.
type Product struct {
	Key       string
	ID        string
	Name      string
	Category  string
	Price     float64
	Stock     int
	UpdatedAt time.Time
}

func NewProduct(key, id, name, category string, price float64, stock int) (*Product, error) {
	if key == "" || id == "" || name == "" {
		return nil, ErrInvalidInput
	}
	if price < 0 || stock < 0 {
		return nil, ErrInvalidInput
	}
	return &Product{
		Key:       key,
		ID:        id,
		Name:      name,
		Category:  category,
		Price:     price,
		Stock:     stock,
		UpdatedAt: time.Now().UTC(),
	}, nil
}

// Reserve decrements stock, refusing to let it go negative.
func (p *Product) Reserve(quantity int) error {
	if quantity <= 0 {
		return ErrInvalidInput
	}
	if quantity > p.Stock {
		return ErrInsufficientStock
	}
	p.Stock -= quantity
	p.touch()
	return nil
}

// Release returns previously reserved stock.
func (p *Product) Release(quantity int) {
	if quantity <= 0 {
		return
	}
	p.Stock += quantity
	p.touch()
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}

func (p *Product) clone() *Product {
	c := *p
	return &c
}
