package tracing

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// HeaderTraceID carries the trace id back to HTTP callers.
const HeaderTraceID = "X-Trace-Id"

// InjectTraceID attaches a logger carrying a fresh trace id to ctx.
func InjectTraceID(ctx context.Context) context.Context {
	id := uuid.New().String()
	return withTraceID(ctx, id)
}

func withTraceID(ctx context.Context, id string) context.Context {
	base := log.Logger
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		base = *l
	}
	logger := base.With().Str("traceId", id).Logger()
	return logger.WithContext(ctx)
}

// Middleware injects a trace id into every request context and echoes it in
// the response header.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set(HeaderTraceID, id)
		next.ServeHTTP(w, r.WithContext(withTraceID(r.Context(), id)))
	})
}
