package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/go-redis/redis"
	"github.com/jackc/pgx/v4/pgxpool"

	actionservice "github.com/AlibekovAA/cloudrun-demo/internal/action/service"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/clock"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/config"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/db"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/random"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/resilience"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/validation"
	"github.com/AlibekovAA/cloudrun-demo/internal/live"
	userrepo "github.com/AlibekovAA/cloudrun-demo/internal/user/repository"
	userservice "github.com/AlibekovAA/cloudrun-demo/internal/user/service"
	"github.com/AlibekovAA/cloudrun-demo/internal/viewcache"
)

type App struct {
	Config config.Config
	Log    *logger.Logger
	Clock  clock.Clock

	Pool  *pgxpool.Pool
	Redis *redis.Client

	UserRepo      userrepo.Repository
	ViewCache     viewcache.Store
	Invalidator   *viewcache.Invalidator
	Hub           *live.Hub
	UserService   *userservice.UserService
	ActionService *actionservice.ActionService
}

func NewApp(ctx context.Context, serviceName string) (*App, error) {
	log, err := logger.New(os.Getenv("LOG_DIR"), serviceName, os.Getenv("LOG_LEVEL"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		_ = log.Close()
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	app, err := Build(ctx, cfg, log, clock.NewRealClock())
	if err != nil {
		_ = log.Close()
		return nil, err
	}
	return app, nil
}

// Build wires the application from an already loaded configuration.
func Build(ctx context.Context, cfg config.Config, log *logger.Logger, clk clock.Clock) (*App, error) {
	app := &App{
		Config: cfg,
		Log:    log,
		Clock:  clk,
	}

	if cfg.SessionKeyGenerated {
		log.Warnf("SESSION_KEY not set, using a random key; sessions will not survive a restart")
	}

	if err := app.initRepository(ctx); err != nil {
		app.closeBackends()
		return nil, err
	}
	if err := app.initViewCache(); err != nil {
		app.closeBackends()
		return nil, err
	}

	app.Hub = live.NewHub(log)
	app.Invalidator = viewcache.NewInvalidator(app.ViewCache, log)
	app.Invalidator.Subscribe(app.Hub.NotifyInvalidated)

	v := validation.New()
	app.UserService = userservice.NewUserService(app.UserRepo, app.Invalidator, clk, v, log, userservice.Config{
		Environment:   cfg.Environment,
		ListDelay:     cfg.UsersListDelay,
		CreateDelay:   cfg.UsersCreateDelay,
		InvalidateKey: constants.DashboardCacheKey,
	})
	app.ActionService = actionservice.NewActionService(clk, random.NewMathSource(), v, app.Invalidator, log, actionservice.Config{
		Environment:   cfg.Environment,
		ProcessDelay:  cfg.ActionProcessDelay,
		ReportDelay:   cfg.ActionReportDelay,
		InvalidateKey: constants.DashboardCacheKey,
	})

	log.Infof("application wired store=%s cache=%s env=%s", cfg.StoreBackend, cfg.CacheBackend, cfg.Environment)
	return app, nil
}

func (a *App) initRepository(ctx context.Context) error {
	if a.Config.StoreBackend != constants.StoreBackendPostgres {
		a.UserRepo = userrepo.NewMemoryRepository(a.Clock.Now())
		return nil
	}

	pool, err := db.NewPool(ctx, a.Log, a.Config.DatabaseURL, "cloudrun-demo")
	if err != nil {
		return err
	}
	a.Pool = pool

	if err := db.Migrate(ctx, a.Log, pool); err != nil {
		return err
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  constants.CircuitBreakerThreshold,
		Timeout:    constants.CircuitBreakerTimeout,
		ResetAfter: constants.CircuitBreakerReset,
		Name:       "postgres",
		Logger:     a.Log,
		Ignore:     db.IsNoRows,
	})
	repo := userrepo.NewPgRepository(pool, cb, a.Log)
	if err := repo.Seed(ctx, a.Clock.Now()); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	a.UserRepo = repo

	db.StartPoolMetrics(ctx, pool, constants.DBPoolMetricsInterval)
	return nil
}

func (a *App) initViewCache() error {
	if a.Config.CacheBackend != constants.CacheBackendRedis {
		a.ViewCache = viewcache.NewMemoryStore(a.Clock)
		return nil
	}

	client, err := viewcache.Connect(a.Config.RedisAddr, a.Config.RedisDB)
	if err != nil {
		return err
	}
	a.Redis = client

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Threshold:  constants.CircuitBreakerThreshold,
		Timeout:    constants.CircuitBreakerTimeout,
		ResetAfter: constants.CircuitBreakerReset,
		Name:       "redis",
		Logger:     a.Log,
		Ignore:     viewcache.IsMiss,
	})
	a.ViewCache = viewcache.NewRedisStore(client, cb)
	return nil
}

func (a *App) closeBackends() {
	if a.Pool != nil {
		a.Pool.Close()
		a.Pool = nil
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warnf("failed to close redis client: %v", err)
		}
		a.Redis = nil
	}
}

// Close releases the backends and the log file. Call it after the HTTP
// server has drained.
func (a *App) Close() {
	a.closeBackends()
	if err := a.Log.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close logger: %v\n", err)
	}
}
