// Package helpers agrupa utilidades compartidas por los controllers.
package helpers

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/dialogmeet/authsvc/internal/http/errors"
)

// maxBodyBytes limita el tamaño del body para evitar payloads abusivos.
const maxBodyBytes = 1 << 20 // 1 MiB

// ReadJSON decodifica el body del request en dst. Rechaza campos
// desconocidos y bodies mayores al límite.
func ReadJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperrors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

// WriteJSON serializa v como respuesta con el status dado.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
