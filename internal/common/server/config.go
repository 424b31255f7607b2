package server

import (
	"net/http"
	"time"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
)

type Config struct {
	Addr              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	DrainTimeout      time.Duration
}

// DefaultConfig returns listener settings for port. The write timeout must
// outlast the slowest simulated action, so it is never below the request
// timeout the handlers run under.
func DefaultConfig(port string, requestTimeout time.Duration) Config {
	write := constants.ServerWriteTimeout
	if requestTimeout+5*time.Second > write {
		write = requestTimeout + 5*time.Second
	}
	return Config{
		Addr:              ":" + port,
		ReadHeaderTimeout: constants.ServerReadHeaderTimeout,
		ReadTimeout:       constants.ServerReadTimeout,
		WriteTimeout:      write,
		IdleTimeout:       constants.ServerIdleTimeout,
		ShutdownTimeout:   constants.ShutdownTimeout,
		DrainTimeout:      constants.DrainTimeout,
	}
}

func New(cfg Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}
