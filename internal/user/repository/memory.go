package repository

import (
	"context"
	"sync"
	"time"

	"github.com/AlibekovAA/cloudrun-demo/internal/observability/metrics"
	"github.com/AlibekovAA/cloudrun-demo/internal/user/domain"
)

const backendMemory = "memory"

type MemoryRepository struct {
	mu    sync.RWMutex
	users []domain.User
}

// NewMemoryRepository returns a store holding the three seed users, all
// stamped with seededAt.
func NewMemoryRepository(seededAt time.Time) *MemoryRepository {
	r := &MemoryRepository{users: make([]domain.User, 0, len(seedUsers))}
	for _, s := range seedUsers {
		r.users = append(r.users, domain.User{
			ID:        len(r.users) + 1,
			Name:      s.Name,
			Email:     s.Email,
			CreatedAt: seededAt,
		})
	}
	return r
}

func (r *MemoryRepository) List(ctx context.Context) ([]domain.User, error) {
	defer observe(backendMemory, "list", time.Now())

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.User, len(r.users))
	copy(out, r.users)
	return out, nil
}

func (r *MemoryRepository) Append(ctx context.Context, name, email string, createdAt time.Time) (domain.User, error) {
	defer observe(backendMemory, "append", time.Now())

	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	user := domain.User{
		ID:        len(r.users) + 1,
		Name:      name,
		Email:     email,
		CreatedAt: createdAt,
	}
	r.users = append(r.users, user)
	return user, nil
}

func (r *MemoryRepository) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}

func observe(backend, operation string, start time.Time) {
	metrics.UserStoreOperationDurationSeconds.WithLabelValues(backend, operation).Observe(time.Since(start).Seconds())
}
