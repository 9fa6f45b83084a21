package catalog

import "sort"

// FieldUpdate carries the optional fields of an update. Name, Category and
// Price replace the current value when set; StockDelta is a signed increment
// applied to the current stock, never a replacement.
type FieldUpdate struct {
	Name       *string
	Category   *string
	Price      *float64
	StockDelta *int
}

// Catalog owns every product exclusively, indexed by display identifier and
// by immutable key. It also remembers recently deleted display identifiers
// as a low-number reuse hint for the allocator; the hint set is best-effort
// and superseded by the next resequencing pass.
type Catalog struct {
	byID    map[string]*Product
	byKey   map[string]*Product
	deleted map[string]struct{}
}

func New() *Catalog {
	return &Catalog{
		byID:    make(map[string]*Product),
		byKey:   make(map[string]*Product),
		deleted: make(map[string]struct{}),
	}
}

func (c *Catalog) Len() int { return len(c.byID) }

func (c *Catalog) Get(id string) (*Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (c *Catalog) GetByKey(key string) (*Product, error) {
	p, ok := c.byKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

// Insert rejects an id that is literally present right now; an id that a
// later resequencing pass would hand out is not a conflict.
func (c *Catalog) Insert(p *Product) error {
	if p == nil {
		return ErrInvalidInput
	}
	if _, exists := c.byID[p.ID]; exists {
		return ErrConflict
	}
	c.byID[p.ID] = p
	c.byKey[p.Key] = p
	return nil
}

func (c *Catalog) Remove(id string) error {
	p, ok := c.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(c.byID, id)
	delete(c.byKey, p.Key)
	c.deleted[id] = struct{}{}
	return nil
}

func (c *Catalog) UpdateFields(id string, upd FieldUpdate) error {
	p, ok := c.byID[id]
	if !ok {
		return ErrNotFound
	}
	if upd.Name != nil {
		if *upd.Name == "" {
			return ErrInvalidInput
		}
		p.Name = *upd.Name
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	if upd.Price != nil {
		if *upd.Price < 0 {
			return ErrInvalidInput
		}
		p.Price = *upd.Price
	}
	if upd.StockDelta != nil {
		next := p.Stock + *upd.StockDelta
		if next < 0 {
			return ErrInsufficientStock
		}
		p.Stock = next
	}
	p.touch()
	return nil
}

// ListAll returns product copies in ascending display-identifier order.
func (c *Catalog) ListAll() []*Product {
	out := make([]*Product, 0, len(c.byID))
	for _, p := range c.byID {
		out = append(out, p.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reserve decrements stock for the product at the given display identifier.
func (c *Catalog) Reserve(id string, quantity int) error {
	p, ok := c.byID[id]
	if !ok {
		return ErrNotFound
	}
	return p.Reserve(quantity)
}

// Release restores stock by immutable key. Restoration is best-effort
// against a possibly mutated catalog: a key that no longer resolves is a
// no-op, not an error.
func (c *Catalog) Release(key string, quantity int) {
	p, ok := c.byKey[key]
	if !ok {
		return
	}
	p.Release(quantity)
}

// Snapshot renders the catalog as persistence records, ascending by id.
func (c *Catalog) Snapshot() []Record {
	products := c.ListAll()
	records := make([]Record, 0, len(products))
	for _, p := range products {
		records = append(records, Record{
			ProductID:     p.ID,
			Name:          p.Name,
			Category:      p.Category,
			Price:         p.Price,
			StockQuantity: p.Stock,
		})
	}
	return records
}
