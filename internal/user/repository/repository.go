package repository

import (
	"context"
	"time"

	"github.com/AlibekovAA/cloudrun-demo/internal/user/domain"
)

// Repository holds users in insertion order. Ids are 1-based and equal the
// store size right after the insert.
type Repository interface {
	List(ctx context.Context) ([]domain.User, error)
	Append(ctx context.Context, name, email string, createdAt time.Time) (domain.User, error)
	Count(ctx context.Context) (int, error)
}

type seed struct {
	Name  string
	Email string
}

var seedUsers = []seed{
	{Name: "Alice", Email: "alice@example.com"},
	{Name: "Bob", Email: "bob@example.com"},
	{Name: "Charlie", Email: "charlie@example.com"},
}
