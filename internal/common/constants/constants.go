package constants

import "time"

const (
	DefaultHTTPPort    = "8080"
	DefaultEnvironment = "development"

	StoreBackendMemory   = "memory"
	StoreBackendPostgres = "postgres"
	CacheBackendMemory   = "memory"
	CacheBackendRedis    = "redis"

	DefaultUsersListDelay     = 500 * time.Millisecond
	DefaultUsersCreateDelay   = 300 * time.Millisecond
	DefaultActionProcessDelay = 1 * time.Second
	DefaultActionReportDelay  = 2 * time.Second

	DefaultRequestTimeout = 10 * time.Second
	DefaultViewCacheTTL   = 5 * time.Minute
	DefaultMaxRequestSize = 1 << 20

	SessionKeyMinLength = 32
	SessionMaxAge       = 86400

	ServerLocation      = "Cloud Run"
	ReportLocation      = "Google Cloud Run"
	FormProcessorLabel  = "Cloud Run Server"
	DashboardRoute      = "/dashboard"
	DashboardCacheKey   = DashboardRoute
	DashboardSocketPath = "/ws/dashboard"

	ProcessedIDUpperBound = 10000
	ReportTotalUsersBase  = 100
	ReportTotalUsersSpan  = 1000
	ReportActiveUsersBase = 50
	ReportActiveUsersSpan = 500
	ReportMaxUptimeHours  = 168

	RateLimitRequestsPerSecond = 10
	RateLimitBurst             = 20
	RateLimitCleanupInterval   = 5 * time.Minute

	DBPoolMaxConns        = 10
	DBPoolMinConns        = 2
	DBPoolConnMaxLifetime = time.Hour
	DBPoolConnMaxIdleTime = 30 * time.Minute
	DBPoolHealthCheck     = time.Minute
	DBPoolConnectTimeout  = 5 * time.Second
	DBPoolMaxAttempts     = 10
	DBPoolRetryDelay      = time.Second
	DBPoolMetricsInterval = 30 * time.Second

	CircuitBreakerThreshold = 5
	CircuitBreakerTimeout   = 5 * time.Second
	CircuitBreakerReset     = 10 * time.Second

	ServerReadHeaderTimeout = 10 * time.Second
	ServerReadTimeout       = 30 * time.Second
	ServerWriteTimeout      = 30 * time.Second
	ServerIdleTimeout       = 120 * time.Second

	ShutdownTimeout = 30 * time.Second
	DrainTimeout    = 10 * time.Second

	WebSocketWriteWait       = 10 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketPingPeriod      = (WebSocketPongWait * 9) / 10
	WebSocketMaxMessageSize  = 4 * 1024
	WebSocketSendBufSize     = 16
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024

	LoggerMaxSize    = 100
	LoggerMaxBackups = 3
	LoggerMaxAge     = 28
)

type TraceIDKeyType string

const TraceIDKey TraceIDKeyType = "trace_id"
