// Package metrics expone los contadores Prometheus del servicio de auth.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	// HTTP
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Auth
	authnResultsTotal   *prometheus.CounterVec
	loginsTotal         *prometheus.CounterVec
	refreshVerifyTotal  *prometheus.CounterVec
	tokensSweptTotal    prometheus.Counter
	socialResolvesTotal *prometheus.CounterVec
)

// Register inicializa y registra las métricas en el registry dado
// (nil usa el default) y devuelve el handler para /metrics.
func Register(registry *prometheus.Registry) http.Handler {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		authnResultsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authn_results_total",
			Help: "Resultados del authenticator por request", // ok|no_token|invalid|parse_failed
		}, []string{"result"})

		loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Logins por método y resultado",
		}, []string{"method", "result"}) // method: password|google|kakao

		refreshVerifyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "refresh_verify_total",
			Help: "Verificaciones de refresh token por resultado", // ok|not_found|revoked|expired
		}, []string{"result"})

		tokensSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "refresh_tokens_swept_total",
			Help: "Refresh tokens expirados eliminados por el sweeper",
		})

		socialResolvesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "social_resolves_total",
			Help: "Resoluciones de identidad social por proveedor y resultado", // linked|created|failed
		}, []string{"provider", "result"})

		var reg prometheus.Registerer = prometheus.DefaultRegisterer
		if registry != nil {
			reg = registry
		}
		reg.MustRegister(httpRequestsTotal, httpRequestDuration, authnResultsTotal,
			loginsTotal, refreshVerifyTotal, tokensSweptTotal, socialResolvesTotal)
	})

	if registry != nil {
		return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}
	return promhttp.Handler()
}

// ObserveHTTP registra un request terminado.
func ObserveHTTP(method, path string, status int, seconds float64) {
	if httpRequestsTotal == nil {
		return
	}
	httpRequestsTotal.WithLabelValues(method, path, statusLabel(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// AuthnResult cuenta el resultado del authenticator para un request.
func AuthnResult(result string) {
	if authnResultsTotal != nil {
		authnResultsTotal.WithLabelValues(result).Inc()
	}
}

// Login cuenta un intento de login.
func Login(method, result string) {
	if loginsTotal != nil {
		loginsTotal.WithLabelValues(method, result).Inc()
	}
}

// RefreshVerify cuenta una verificación de refresh token.
func RefreshVerify(result string) {
	if refreshVerifyTotal != nil {
		refreshVerifyTotal.WithLabelValues(result).Inc()
	}
}

// TokensSwept acumula tokens barridos.
func TokensSwept(n int64) {
	if tokensSweptTotal != nil && n > 0 {
		tokensSweptTotal.Add(float64(n))
	}
}

// SocialResolve cuenta una resolución de identidad social.
func SocialResolve(provider, result string) {
	if socialResolvesTotal != nil {
		socialResolvesTotal.WithLabelValues(provider, result).Inc()
	}
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
