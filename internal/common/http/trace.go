package http

import (
	"context"
	"net/http"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/idgen"
)

const traceIDHeader = "X-Trace-ID"

func TraceIDMiddleware(ids idgen.IDGenerator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(traceIDHeader)
			if traceID == "" || len(traceID) > 64 {
				traceID = ids.NewID()
			}

			w.Header().Set(traceIDHeader, traceID)

			ctx := context.WithValue(r.Context(), constants.TraceIDKey, traceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
