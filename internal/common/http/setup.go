package http

import (
	"net/http"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/httpmetrics"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/idgen"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/logger"
)

// BuildBaseHandler wraps handler with the middleware every route shares.
// Order, outermost first: security headers, CSP, trace id, recovery, body
// limit, metrics.
func BuildBaseHandler(log *logger.Logger, ids idgen.IDGenerator, handler http.Handler) http.Handler {
	collector := httpmetrics.New("/metrics", constants.DashboardSocketPath)
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware(ids)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	csp := ContentSecurityPolicyMiddleware("")

	return SecurityHeadersMiddleware(csp(traceID(recovery(maxRequestSize(collector.Wrap(handler))))))
}
