package middlewares

import (
	"net/http"
	"time"

	"github.com/dialogmeet/authsvc/internal/metrics"
)

// WithMetrics cuenta requests y latencia por método y path.
// Usa el patrón de la ruta, no la URL cruda, para acotar cardinalidad:
// aplicar después del router de chi no es posible, así que se pasa el
// patrón conocido al montar la ruta.
func WithMetrics(pattern string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			metrics.ObserveHTTP(r.Method, pattern, rec.status, time.Since(start).Seconds())
		})
	}
}
