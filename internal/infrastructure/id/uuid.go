package id

import "github.com/google/uuid"

// UUIDGenerator produces the immutable product keys that survive
// identifier resequencing.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator { return &UUIDGenerator{} }

func (*UUIDGenerator) NewID() string { return uuid.NewString() }
