package middlewares

import (
	"net/http"
	"strings"

	apperrors "github.com/dialogmeet/authsvc/internal/http/errors"
	jwtx "github.com/dialogmeet/authsvc/internal/jwt"
	"github.com/dialogmeet/authsvc/internal/metrics"
	"github.com/dialogmeet/authsvc/internal/observability/logger"
)

// JWTCookieName es la cookie alternativa al header Authorization. La usan
// los redirects del login social, donde no se puede setear un header.
const JWTCookieName = "jwt"

const bearerPrefix = "Bearer "

// WithAuthn resuelve la identidad del request a partir del bearer token.
// Es fail-open: sin token, o con token inválido, el request sigue sin
// identidad y la autorización por ruta decide después. Un token malformado
// nunca corta el request en esta etapa.
func WithAuthn(codec *jwtx.Codec) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				metrics.AuthnResult("no_token")
				next.ServeHTTP(w, r)
				return
			}

			if !codec.Validate(token) {
				metrics.AuthnResult("invalid")
				next.ServeHTTP(w, r)
				return
			}

			id, err := codec.ParseIdentity(token)
			if err != nil {
				// Validó pero no parseó: corrupción o rotación de clave en
				// el medio. El request sigue, solo que sin identidad.
				logger.From(r.Context()).Warn("identidad no extraíble de token válido",
					logger.Component("authn"), logger.Err(err))
				metrics.AuthnResult("parse_failed")
				next.ServeHTTP(w, r)
				return
			}

			metrics.AuthnResult("ok")
			ctx := WithIdentity(r.Context(), id)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.Subject(id.Subject)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity corta con 401 los requests que llegaron sin identidad.
// Se aplica por ruta, después de WithAuthn.
func RequireIdentity() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if GetIdentity(r.Context()) == nil {
				apperrors.WriteError(w, apperrors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// extractToken busca el bearer token: primero el header Authorization,
// después la cookie "jwt". Header gana si vienen los dos.
func extractToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, bearerPrefix) {
		return strings.TrimSpace(h[len(bearerPrefix):])
	}
	if c, err := r.Cookie(JWTCookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return ""
}
