package service

import (
	"context"
	"errors"
	"time"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/clock"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
	commonerrors "github.com/AlibekovAA/cloudrun-demo/internal/common/errors"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/validation"
	"github.com/AlibekovAA/cloudrun-demo/internal/observability/metrics"
	"github.com/AlibekovAA/cloudrun-demo/internal/user/domain"
	"github.com/AlibekovAA/cloudrun-demo/internal/user/repository"
)

const MessageUserCreated = "User created successfully"

type Config struct {
	Environment string
	ListDelay   time.Duration
	CreateDelay time.Duration
	// InvalidateKey is the cached view that lists users. Defaults to the
	// dashboard.
	InvalidateKey string
}

// Invalidator drops cached views that show the user list.
type Invalidator interface {
	Invalidate(ctx context.Context, key string) error
}

type CreateInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
}

type UserService struct {
	repo        repository.Repository
	invalidator Invalidator
	clock       clock.Clock
	validator   *validation.Validator
	log         *logger.Logger
	cfg         Config
}

func NewUserService(repo repository.Repository, invalidator Invalidator, clk clock.Clock, v *validation.Validator, log *logger.Logger, cfg Config) *UserService {
	if cfg.InvalidateKey == "" {
		cfg.InvalidateKey = constants.DashboardCacheKey
	}
	return &UserService{
		repo:        repo,
		invalidator: invalidator,
		clock:       clk,
		validator:   v,
		log:         log,
		cfg:         cfg,
	}
}

// List waits out the list delay, then returns every user in insertion order.
func (s *UserService) List(ctx context.Context) (domain.ListResult, error) {
	if err := s.clock.Sleep(ctx, s.cfg.ListDelay); err != nil {
		return domain.ListResult{}, s.internal(ctx, "list", err)
	}

	users, err := s.repo.List(ctx)
	if err != nil {
		return domain.ListResult{}, s.internal(ctx, "list", err)
	}

	return domain.ListResult{
		Users: users,
		ServerInfo: domain.ServerInfo{
			Timestamp:      s.clock.Now(),
			Environment:    s.cfg.Environment,
			ServerLocation: constants.ServerLocation,
			ProcessingTime: s.cfg.ListDelay.String(),
		},
	}, nil
}

// Create rejects a missing name or email without delay. Otherwise it waits
// out the create delay and appends; a cancelled delay appends nothing.
func (s *UserService) Create(ctx context.Context, in CreateInput) (domain.CreateResult, error) {
	if err := s.validator.Struct(in); err != nil {
		var fe *validation.FieldsError
		if errors.As(err, &fe) {
			metrics.UsersValidationFailuresTotal.Inc()
			s.log.WithFields(ctx, logger.Fields{
				"action": "user_create_rejected",
				"fields": fe.Fields,
			}).Debug("missing required fields")
			return domain.CreateResult{}, ErrUserFieldsRequired
		}
		return domain.CreateResult{}, s.internal(ctx, "create", err)
	}

	if err := s.clock.Sleep(ctx, s.cfg.CreateDelay); err != nil {
		return domain.CreateResult{}, s.internal(ctx, "create", err)
	}

	now := s.clock.Now()
	user, err := s.repo.Append(ctx, in.Name, in.Email, now)
	if err != nil {
		return domain.CreateResult{}, s.internal(ctx, "create", err)
	}

	metrics.UsersCreatedTotal.Inc()
	s.log.WithFields(ctx, logger.Fields{
		"action":  "user_created",
		"user_id": user.ID,
	}).Info("user created")

	// The user is stored; a failed invalidation only leaves a stale view
	// until its TTL runs out.
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, s.cfg.InvalidateKey); err != nil {
			s.log.WithFields(ctx, logger.Fields{
				"action": "user_created_invalidate_failed",
				"key":    s.cfg.InvalidateKey,
			}).Warnf("failed to invalidate users view: %v", err)
		}
	}

	return domain.CreateResult{
		User:    user,
		Message: MessageUserCreated,
		ServerInfo: domain.ServerInfo{
			Timestamp:   now,
			Environment: s.cfg.Environment,
		},
	}, nil
}

func (s *UserService) internal(ctx context.Context, op string, err error) error {
	s.log.WithFields(ctx, logger.Fields{
		"action":    "user_" + op + "_failed",
		"operation": op,
	}).Errorf("user %s failed: %v", op, err)
	return commonerrors.ErrInternalError.WithCause(err)
}
