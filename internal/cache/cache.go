// Package cache define una abstracción chica de cache clave/valor con TTL.
// El login social la usa para el state del handshake OAuth2; el backend es
// memoria en dev y Redis cuando hay más de una réplica.
package cache

import "time"

// Cache es un cache best-effort: Get que falla se trata como miss.
type Cache interface {
	Get(k string) ([]byte, bool)
	Set(k string, v []byte, ttl time.Duration)
	Delete(k string)
}
