package idgen

import "github.com/google/uuid"

type IDGenerator interface {
	NewID() string
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() string {
	return uuid.NewString()
}

// StaticGenerator hands out a fixed id; used where deterministic ids matter.
type StaticGenerator struct {
	ID string
}

func (g StaticGenerator) NewID() string {
	return g.ID
}
