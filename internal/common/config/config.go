package config

import (
	"crypto/rand"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
	commonerrors "github.com/AlibekovAA/cloudrun-demo/internal/common/errors"
)

type Config struct {
	HTTPPort    string
	Environment string

	StoreBackend string
	DatabaseURL  string

	CacheBackend string
	RedisAddr    string
	RedisDB      int
	ViewCacheTTL time.Duration

	SessionKey          []byte
	SessionKeyGenerated bool

	UsersListDelay     time.Duration
	UsersCreateDelay   time.Duration
	ActionProcessDelay time.Duration
	ActionReportDelay  time.Duration

	RequestTimeout time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

// fileConfig mirrors Config for the optional TOML overlay. Durations are
// strings so they read the same way as the env vars.
type fileConfig struct {
	HTTPPort     string `toml:"http_port"`
	Environment  string `toml:"environment"`
	StoreBackend string `toml:"store_backend"`
	DatabaseURL  string `toml:"database_url"`
	CacheBackend string `toml:"cache_backend"`
	RedisAddr    string `toml:"redis_addr"`
	ViewCacheTTL string `toml:"view_cache_ttl"`

	Delays struct {
		UsersList     string `toml:"users_list"`
		UsersCreate   string `toml:"users_create"`
		ActionProcess string `toml:"action_process"`
		ActionReport  string `toml:"action_report"`
	} `toml:"delays"`
}

func Defaults() Config {
	return Config{
		HTTPPort:           constants.DefaultHTTPPort,
		Environment:        constants.DefaultEnvironment,
		StoreBackend:       constants.StoreBackendMemory,
		CacheBackend:       constants.CacheBackendMemory,
		RedisAddr:          "localhost:6379",
		ViewCacheTTL:       constants.DefaultViewCacheTTL,
		UsersListDelay:     constants.DefaultUsersListDelay,
		UsersCreateDelay:   constants.DefaultUsersCreateDelay,
		ActionProcessDelay: constants.DefaultActionProcessDelay,
		ActionReportDelay:  constants.DefaultActionReportDelay,
		RequestTimeout:     constants.DefaultRequestTimeout,
		RateLimitRPS:       constants.RateLimitRequestsPerSecond,
		RateLimitBurst:     constants.RateLimitBurst,
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (Config, error) {
	cfg := Defaults()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.Environment = getEnv("APP_ENV", cfg.Environment)
	cfg.StoreBackend = strings.ToLower(getEnv("STORE_BACKEND", cfg.StoreBackend))
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.CacheBackend = strings.ToLower(getEnv("CACHE_BACKEND", cfg.CacheBackend))
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisDB = getIntEnv("REDIS_DB", cfg.RedisDB)
	cfg.ViewCacheTTL = getDurationEnv("VIEW_CACHE_TTL", cfg.ViewCacheTTL)
	cfg.UsersListDelay = getDurationEnv("USERS_LIST_DELAY", cfg.UsersListDelay)
	cfg.UsersCreateDelay = getDurationEnv("USERS_CREATE_DELAY", cfg.UsersCreateDelay)
	cfg.ActionProcessDelay = getDurationEnv("ACTION_PROCESS_DELAY", cfg.ActionProcessDelay)
	cfg.ActionReportDelay = getDurationEnv("ACTION_REPORT_DELAY", cfg.ActionReportDelay)
	cfg.RequestTimeout = getDurationEnv("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.RateLimitRPS = getFloatEnv("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = getIntEnv("RATE_LIMIT_BURST", cfg.RateLimitBurst)

	switch cfg.StoreBackend {
	case constants.StoreBackendMemory:
	case constants.StoreBackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("%w: DATABASE_URL", commonerrors.ErrMissingRequiredEnv)
		}
	default:
		return Config{}, fmt.Errorf("%w: STORE_BACKEND=%s", commonerrors.ErrUnknownBackend, cfg.StoreBackend)
	}

	switch cfg.CacheBackend {
	case constants.CacheBackendMemory, constants.CacheBackendRedis:
	default:
		return Config{}, fmt.Errorf("%w: CACHE_BACKEND=%s", commonerrors.ErrUnknownBackend, cfg.CacheBackend)
	}

	key, generated, err := sessionKey(getEnv("SESSION_KEY", ""))
	if err != nil {
		return Config{}, err
	}
	cfg.SessionKey = key
	cfg.SessionKeyGenerated = generated

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	var fc fileConfig
	if err := toml.NewDecoder(f).Decode(&fc); err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	setString(&cfg.HTTPPort, fc.HTTPPort)
	setString(&cfg.Environment, fc.Environment)
	setString(&cfg.StoreBackend, fc.StoreBackend)
	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	setString(&cfg.CacheBackend, fc.CacheBackend)
	setString(&cfg.RedisAddr, fc.RedisAddr)

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"view_cache_ttl", fc.ViewCacheTTL, &cfg.ViewCacheTTL},
		{"delays.users_list", fc.Delays.UsersList, &cfg.UsersListDelay},
		{"delays.users_create", fc.Delays.UsersCreate, &cfg.UsersCreateDelay},
		{"delays.action_process", fc.Delays.ActionProcess, &cfg.ActionProcessDelay},
		{"delays.action_report", fc.Delays.ActionReport, &cfg.ActionReportDelay},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	return nil
}

func sessionKey(value string) ([]byte, bool, error) {
	if value == "" {
		key := make([]byte, constants.SessionKeyMinLength)
		if _, err := rand.Read(key); err != nil {
			return nil, false, fmt.Errorf("failed to generate session key: %w", err)
		}
		return key, true, nil
	}
	if len(value) < constants.SessionKeyMinLength {
		return nil, false, fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidSessionKey, len(value))
	}
	return []byte(value), false, nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getIntEnv(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func getFloatEnv(key string, fallback float64) float64 {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
