// Package router monta las rutas del servicio sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	admincontroller "github.com/dialogmeet/authsvc/internal/http/controllers/admin"
	authcontroller "github.com/dialogmeet/authsvc/internal/http/controllers/auth"
	socialcontroller "github.com/dialogmeet/authsvc/internal/http/controllers/social"
	"github.com/dialogmeet/authsvc/internal/http/middlewares"
	jwtx "github.com/dialogmeet/authsvc/internal/jwt"
	"github.com/dialogmeet/authsvc/internal/rate"
)

// Deps agrupa lo que el router necesita para montar todas las rutas.
type Deps struct {
	Auth   *authcontroller.Controller
	Social *socialcontroller.Controller
	Admin  *admincontroller.TokensController

	Codec    *jwtx.Codec
	AdminKey string

	// Limiters por endpoint; nil deshabilita el rate limiting de esa ruta.
	LoginLimiter   rate.Limiter
	RefreshLimiter rate.Limiter

	// MetricsHandler sirve /metrics; nil no monta la ruta.
	MetricsHandler http.Handler

	// Healthz responde los checks de liveness/readiness.
	Healthz http.HandlerFunc
}

// New arma el router completo: middlewares globales primero (request id,
// logging, recover, authn fail-open), después las rutas.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middlewares.WithRequestID(),
		middlewares.WithLogging(),
		middlewares.WithRecover(),
		middlewares.WithAuthn(d.Codec),
	)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Method(http.MethodPost, "/register", instrument("/v1/auth/register", d.Auth.Register))

		login := instrument("/v1/auth/login", d.Auth.Login)
		if d.LoginLimiter != nil {
			login = middlewares.Chain(login,
				middlewares.WithRateLimit(d.LoginLimiter, middlewares.IPOnlyRateKey))
		}
		r.Method(http.MethodPost, "/login", login)

		refresh := instrument("/v1/auth/refresh", d.Auth.Refresh)
		if d.RefreshLimiter != nil {
			refresh = middlewares.Chain(refresh,
				middlewares.WithRateLimit(d.RefreshLimiter, middlewares.IPOnlyRateKey))
		}
		r.Method(http.MethodPost, "/refresh", refresh)

		r.Method(http.MethodPost, "/logout", instrument("/v1/auth/logout", d.Auth.Logout))
		r.Method(http.MethodGet, "/me", middlewares.Chain(
			instrument("/v1/auth/me", d.Auth.Me),
			middlewares.RequireIdentity(),
		))

		r.Method(http.MethodGet, "/social/{provider}/start",
			instrument("/v1/auth/social/start", d.Social.Start))
		r.Method(http.MethodGet, "/social/{provider}/callback",
			instrument("/v1/auth/social/callback", d.Social.Callback))
	})

	r.Route("/v1/admin", func(r chi.Router) {
		adminOnly := middlewares.RequireAdminKey(d.AdminKey)
		r.Method(http.MethodPost, "/tokens/sweep", middlewares.Chain(
			instrument("/v1/admin/tokens/sweep", d.Admin.Sweep), adminOnly))
		r.Method(http.MethodPost, "/tokens/revoke", middlewares.Chain(
			instrument("/v1/admin/tokens/revoke", d.Admin.Revoke), adminOnly))
	})

	if d.Healthz != nil {
		r.Get("/healthz", d.Healthz)
	}
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	return r
}

// instrument envuelve un handler con la métrica de requests por patrón.
func instrument(pattern string, h http.HandlerFunc) http.Handler {
	return middlewares.Chain(h, middlewares.WithMetrics(pattern))
}
