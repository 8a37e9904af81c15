package transport

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// Codes reported in the data of a rejected /rpc call.
const (
	CodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	CodeInvalidAPIKey          = "INVALID_API_KEY"
)

type principalKey struct{}

// PrincipalResolver resolves the principal owning a bearer token.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (string, error)
}

// PrincipalFromContext returns the authenticated principal, if present.
func PrincipalFromContext(ctx context.Context) (string, bool) {
	principal, ok := ctx.Value(principalKey{}).(string)
	return principal, ok
}

// AuthMiddleware resolves the bearer API key to the principal that acts as
// caller. Rejected requests get HTTP 401 with a JSON-RPC error body whose
// data has kind "authorization".
func AuthMiddleware(resolver PrincipalResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context())

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.Warn().Str("path", r.URL.Path).Msg("rpc call without api key")
				writeAuthError(w, CodeAuthenticationRequired, "missing bearer api key")
				return
			}

			principal, err := resolver.ResolvePrincipal(r.Context(), token)
			if err != nil || principal == "" {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("rpc call with rejected api key")
				writeAuthError(w, CodeInvalidAPIKey, "api key not recognized")
				return
			}

			ctx := logger.With().Str("principal", principal).Logger().WithContext(r.Context())
			ctx = context.WithValue(ctx, principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeAuthError(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusUnauthorized, Response{
		JSONRPC: "2.0",
		Error: &Error{
			Code:    ErrApplication,
			Message: message,
			Data: ErrorData{
				Code:         code,
				Kind:         "authorization",
				RecoveryHint: "Send an Authorization: Bearer <api key> header; keys are issued with `grantflow apikey create`",
			},
		},
	})
}
