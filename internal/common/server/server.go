package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
)

type ShutdownHook func(ctx context.Context) error

// Run serves until SIGINT/SIGTERM or ctx is done, then drains: keep-alives
// off, hooks run under the drain deadline, and the listener shuts down under
// the overall deadline.
func Run(ctx context.Context, srv *http.Server, cfg Config, log *logger.Logger, serviceName string, hooks ...ShutdownHook) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("%s service listening on %s", serviceName, srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			log.Errorf("failed to start %s service: %v", serviceName, err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Infof("shutting down %s service...", serviceName)
	return Shutdown(srv, cfg, log, serviceName, hooks...)
}

func Shutdown(srv *http.Server, cfg Config, log *logger.Logger, serviceName string, hooks ...ShutdownHook) error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	drainCtx, drainCancel := context.WithTimeout(shutdownCtx, cfg.DrainTimeout)
	defer drainCancel()

	log.Infof("%s service: stopping accepting new connections (drain period: %v)", serviceName, cfg.DrainTimeout)
	srv.SetKeepAlivesEnabled(false)

	if len(hooks) > 0 {
		log.Infof("%s service: executing shutdown hooks", serviceName)
		for i, hook := range hooks {
			if err := hook(drainCtx); err != nil {
				log.Errorf("%s service: shutdown hook %d failed: %v", serviceName, i, err)
			}
		}
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("%s service forced to shutdown: %v", serviceName, err)
		return err
	}
	log.Infof("%s service stopped gracefully", serviceName)
	return nil
}
