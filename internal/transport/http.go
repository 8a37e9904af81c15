package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/grantflow/internal/observability/tracing"
	"github.com/rs/zerolog"
)

// RPCHandler dispatches a method call on behalf of an optional principal.
type RPCHandler interface {
	Handle(ctx context.Context, principal, method string, params json.RawMessage) (any, error)
}

// Server wires HTTP handlers.
type Server struct {
	handler RPCHandler
}

// NewServer creates an HTTP server router with middleware. authMiddleware
// guards /rpc only; /health stays open.
func NewServer(handler RPCHandler, authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(tracing.Middleware)

	srv := &Server{handler: handler}

	r.Get("/health", srv.handleHealth)
	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}
		r.Post("/rpc", srv.handleRPC)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		code := ErrInvalidReq
		if errors.Is(err, errParse) {
			code = ErrParseCode
		}
		WriteError(w, nil, code, err.Error(), nil)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	result, err := s.handler.Handle(r.Context(), principal, req.Method, req.Params)
	if err != nil {
		zerolog.Ctx(r.Context()).Debug().Err(err).Str("method", req.Method).Msg("rpc call failed")
		WriteHandlerError(w, req.ID, err)
		return
	}

	WriteResult(w, req.ID, result)
}
