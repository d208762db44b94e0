package middlewares

import (
	"crypto/subtle"
	"net/http"

	apperrors "github.com/dialogmeet/authsvc/internal/http/errors"
)

// RequireAdminKey protege los endpoints de administración (barrido y
// revocación de tokens) con una API key estática en X-Admin-API-Key.
// Con key vacía en la config, los endpoints admin quedan deshabilitados.
func RequireAdminKey(key string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if key == "" {
				apperrors.WriteError(w, apperrors.ErrNotFound)
				return
			}
			got := r.Header.Get("X-Admin-API-Key")
			if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
				apperrors.WriteError(w, apperrors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
