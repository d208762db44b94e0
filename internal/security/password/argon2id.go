// Package password implementa el "credential hasher" del sistema:
// hashing argon2id en formato PHC y comparación en tiempo constante.
// Ninguna otra capa compara passwords directamente.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

type Params struct {
	Memory      uint32 // KiB
	Time        uint32
	Parallelism uint8
	KeyLen      uint32
}

var Default = Params{Memory: 64 * 1024, Time: 3, Parallelism: 1, KeyLen: 32}

// Hash devuelve un PHC string: $argon2id$v=19$m=...,t=...,p=...$<saltB64>$<dkB64>
func Hash(p Params, plain string) (string, error) {
	if plain == "" {
		return "", fmt.Errorf("empty password")
	}
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	dk := argon2.IDKey([]byte(plain), salt, p.Time, p.Memory, p.Parallelism, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		p.Memory, p.Time, p.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

// Verify compara un password plano contra un PHC string en tiempo constante.
func Verify(plain, phc string) bool {
	// PHC: ["", "argon2id", "v=19", "m=...,t=...,p=...", saltB64, dkB64].
	// No se puede Sscanf el string entero: %s es greedy y se comería
	// salt y hash juntos.
	parts := strings.Split(phc, "$")
	if len(parts) != 6 || parts[1] != "argon2id" || parts[2] != "v=19" {
		return false
	}
	var m, t, p int
	if n, _ := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &m, &t, &p); n != 3 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	dkStored, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}
	key := argon2.IDKey([]byte(plain), salt, uint32(t), uint32(m), uint8(p), uint32(len(dkStored)))
	return subtle.ConstantTimeCompare(key, dkStored) == 1
}

// Hasher empaqueta los params como la capability que consumen los services.
type Hasher struct {
	Params Params
}

// NewHasher crea un Hasher con los params por defecto.
func NewHasher() *Hasher {
	return &Hasher{Params: Default}
}

func (h *Hasher) Hash(plain string) (string, error) {
	return Hash(h.Params, plain)
}

func (h *Hasher) Verify(plain, phc string) bool {
	return Verify(plain, phc)
}
