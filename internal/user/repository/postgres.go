package repository

import (
	"context"
	"fmt"
	"time"

	pgx "github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/db"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/resilience"
	"github.com/AlibekovAA/cloudrun-demo/internal/user/domain"
)

const backendPostgres = "postgres"

// PgRepository stores users in the users table. Ids come from the identity
// column, so concurrent inserts never collide.
type PgRepository struct {
	pool  *pgxpool.Pool
	cb    *resilience.CircuitBreaker
	log   *logger.Logger
	retry db.RetryConfig
}

func NewPgRepository(pool *pgxpool.Pool, cb *resilience.CircuitBreaker, log *logger.Logger) *PgRepository {
	return &PgRepository{
		pool:  pool,
		cb:    cb,
		log:   log,
		retry: db.DefaultRetryConfig,
	}
}

// Seed inserts the seed users when the table is empty. The table lock keeps
// two instances starting together from seeding twice.
func (r *PgRepository) Seed(ctx context.Context, seededAt time.Time) error {
	return r.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE users IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return db.HandleQueryError(err, nil, "lock_users")
		}

		var count int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count); err != nil {
			return db.HandleQueryError(err, nil, "count_users")
		}
		if count > 0 {
			return nil
		}

		for _, s := range seedUsers {
			if _, err := tx.Exec(
				ctx,
				`INSERT INTO users (name, email, created_at) VALUES ($1, $2, $3)`,
				s.Name,
				s.Email,
				seededAt.UTC(),
			); err != nil {
				return db.HandleQueryError(err, nil, "seed_users")
			}
		}
		r.log.Infof("seeded %d users", len(seedUsers))
		return nil
	})
}

func (r *PgRepository) List(ctx context.Context) ([]domain.User, error) {
	defer observe(backendPostgres, "list", time.Now())

	var users []domain.User
	err := r.call(ctx, "list_users", func(ctx context.Context) error {
		rows, err := r.pool.Query(
			ctx,
			`SELECT id, name, email, created_at FROM users ORDER BY id ASC`,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		users = users[:0]
		for rows.Next() {
			var u domain.User
			if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
				return fmt.Errorf("failed to scan user: %w", err)
			}
			users = append(users, u)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, db.HandleQueryError(err, nil, "list_users")
	}
	return users, nil
}

// Append is not retried; a replayed insert would create a second row.
func (r *PgRepository) Append(ctx context.Context, name, email string, createdAt time.Time) (domain.User, error) {
	defer observe(backendPostgres, "append", time.Now())

	user := domain.User{Name: name, Email: email}
	err := r.cb.Call(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(
			ctx,
			`INSERT INTO users (name, email, created_at) VALUES ($1, $2, $3) RETURNING id, created_at`,
			name,
			email,
			createdAt.UTC(),
		).Scan(&user.ID, &user.CreatedAt)
	})
	if err != nil {
		return domain.User{}, db.HandleQueryError(err, nil, "append_user")
	}
	return user, nil
}

func (r *PgRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.call(ctx, "count_users", func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&count)
	})
	if err != nil {
		return 0, db.HandleQueryError(err, nil, "count_users")
	}
	return count, nil
}

func (r *PgRepository) call(ctx context.Context, operation string, fn func(context.Context) error) error {
	return r.cb.Call(ctx, func(ctx context.Context) error {
		return db.RetryWithBackoff(ctx, r.log, r.retry, operation, func() error {
			return fn(ctx)
		})
	})
}
