package order

// Book holds all pending orders in placement sequence. Identifiers come
// from a counter that only moves forward, independent of the current book
// length, so an id is never reused after confirm, reject or removal.
type Book struct {
	orders []*Order
	nextID int64
}

func NewBook() *Book {
	return &Book{nextID: 1}
}

func (b *Book) Len() int { return len(b.orders) }

// Place assigns the next identifier and appends the order.
func (b *Book) Place(username string, lines []Line) (*Order, error) {
	o, err := New(b.nextID, username, lines)
	if err != nil {
		return nil, err
	}
	b.nextID++
	b.orders = append(b.orders, o)
	return o.Clone(), nil
}

func (b *Book) Get(id int64) (*Order, error) {
	for _, o := range b.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

// Remove deletes the order and returns its final snapshot so the caller
// can release reserved stock.
func (b *Book) Remove(id int64) (*Order, error) {
	for i, o := range b.orders {
		if o.ID == id {
			b.orders = append(b.orders[:i], b.orders[i+1:]...)
			return o, nil
		}
	}
	return nil, ErrNotFound
}

func (b *Book) ListAll() []*Order {
	out := make([]*Order, 0, len(b.orders))
	for _, o := range b.orders {
		out = append(out, o.Clone())
	}
	return out
}

func (b *Book) ListByOwner(username string) []*Order {
	var out []*Order
	for _, o := range b.orders {
		if o.Username == username {
			out = append(out, o.Clone())
		}
	}
	return out
}
