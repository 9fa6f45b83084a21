package catalog

// IDGenerator supplies the immutable keys assigned to products at insert.
type IDGenerator interface {
	NewID() string
}
