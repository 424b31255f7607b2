package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/bootstrap"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
	commonhttp "github.com/AlibekovAA/cloudrun-demo/internal/common/http"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/idgen"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/server"
	"github.com/AlibekovAA/cloudrun-demo/internal/dashboard"
	"github.com/AlibekovAA/cloudrun-demo/internal/live"
	userhttp "github.com/AlibekovAA/cloudrun-demo/internal/user/http"
)

const serviceName = "dashboard"

func main() {
	ctx := context.Background()

	app, err := bootstrap.NewApp(ctx, serviceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start %s: %v\n", serviceName, err)
		os.Exit(1)
	}
	defer app.Close()

	limiter := commonhttp.NewRateLimiter(app.Config.RateLimitRPS, app.Config.RateLimitBurst)

	handler, err := newRouter(app, limiter)
	if err != nil {
		app.Log.Errorf("failed to build router: %v", err)
		return
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	go app.Hub.Run(hubCtx)

	cfg := server.DefaultConfig(app.Config.HTTPPort, app.Config.RequestTimeout)
	srv := server.New(cfg, handler)

	err = server.Run(ctx, srv, cfg, app.Log, serviceName,
		func(ctx context.Context) error {
			stopHub()
			select {
			case <-app.Hub.Done():
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		},
		func(context.Context) error {
			limiter.Stop()
			return nil
		},
	)
	if err != nil {
		app.Log.Errorf("%s service stopped with error: %v", serviceName, err)
	}
}

func newRouter(app *bootstrap.App, limiter *commonhttp.RateLimiter) (http.Handler, error) {
	renderer, err := dashboard.NewRenderer()
	if err != nil {
		return nil, err
	}

	secureCookies := app.Config.Environment == "production"
	dashboardHandler := dashboard.NewHandler(
		app.UserService,
		app.ActionService,
		app.ViewCache,
		app.Invalidator,
		dashboard.NewSessionStore(app.Config.SessionKey, secureCookies),
		renderer,
		app.Clock,
		app.Log,
		dashboard.Config{CacheTTL: app.Config.ViewCacheTTL},
	)
	userHandler := userhttp.NewHandler(app.UserService, app.Log)
	ids := idgen.NewUUIDGenerator()
	liveHandler := live.NewHandler(app.Hub, ids, app.Log)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(commonhttp.RequestLoggerMiddleware(app.Log))
	r.Use(limiter.Middleware())

	r.Get("/health", commonhttp.HealthHandler())
	r.Handle("/metrics", promhttp.Handler())
	r.Handle(constants.DashboardSocketPath, liveHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(app.Config.RequestTimeout))

		dashboardHandler.Routes(r)

		r.Route("/api/users", func(r chi.Router) {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: []string{"*"},
				AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders: []string{"Content-Type", "X-Trace-ID"},
				ExposedHeaders: []string{"X-Trace-ID"},
				MaxAge:         300,
			}))
			userHandler.Routes(r)
		})
	})

	return commonhttp.BuildBaseHandler(app.Log, ids, r), nil
}
