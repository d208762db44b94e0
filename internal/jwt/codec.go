// Package jwt implementa el codec de bearer tokens: emisión y validación de
// JWT firmados con HMAC (HS256) sobre un secreto simétrico de proceso.
//
// El claim "auth" lleva las authorities unidas por coma; "sub" es el email
// de la cuenta. Validar y extraer identidad son pasos separados: Validate
// es el gate barato (bool), ParseIdentity construye la identidad después.
package jwt

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dialogmeet/authsvc/internal/observability/logger"
)

// DefaultAuthority se asigna cuando un token válido no trae claim "auth".
const DefaultAuthority = "ROLE_USER"

// MinKeyBytes es el largo mínimo del secreto decodificado para HS256.
const MinKeyBytes = 32

// ErrInvalidToken lo retorna ParseIdentity cuando el token no se puede
// re-parsear (corrupción, clave cambiada bajo los pies del caller).
var ErrInvalidToken = errors.New("invalid token")

// Identity es la identidad derivada de un bearer token.
type Identity struct {
	Subject     string
	Authorities []string
}

// HasAuthority verifica si la identidad contiene una authority.
func (i *Identity) HasAuthority(a string) bool {
	for _, v := range i.Authorities {
		if v == a {
			return true
		}
	}
	return false
}

// Codec firma y verifica bearer tokens con una clave simétrica inmutable.
// Es stateless: seguro bajo ejecución paralela sin límite.
type Codec struct {
	key       []byte
	accessTTL time.Duration
}

// NewCodec construye el codec desde un secreto base64 y el TTL por defecto.
// Falla solo por misconfiguración de la clave (fatal, no por-request).
func NewCodec(secretB64 string, accessTTL time.Duration) (*Codec, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(secretB64))
	if err != nil {
		return nil, fmt.Errorf("jwt: secret is not valid base64: %w", err)
	}
	if len(key) < MinKeyBytes {
		return nil, fmt.Errorf("jwt: secret too short: %d bytes, need >= %d", len(key), MinKeyBytes)
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	return &Codec{key: key, accessTTL: accessTTL}, nil
}

// AccessTTL retorna el TTL por defecto de los tokens emitidos.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// Issue emite un token firmado para el subject con sus authorities.
// ttl <= 0 usa el TTL por defecto del codec.
func (c *Codec) Issue(subject string, authorities []string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = c.accessTTL
	}
	now := time.Now().UTC()
	claims := jwtv5.MapClaims{
		"sub":  subject,
		"auth": strings.Join(authorities, ","),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("jwt: sign failed: %w", err)
	}
	return signed, nil
}

// Validate verifica firma y expiración. Nunca lanza: retorna false para
// input malformado, sin firmar o expirado, y loguea la razón clasificada
// sin filtrar el contenido del token más allá de un prefijo truncado.
func (c *Codec) Validate(token string) bool {
	log := logger.Named("jwt")
	if strings.TrimSpace(token) == "" {
		log.Debug("token vacío")
		return false
	}

	_, err := c.parse(token)
	if err == nil {
		return true
	}

	prefix := truncate(token, 20)
	switch {
	case errors.Is(err, jwtv5.ErrTokenSignatureInvalid):
		log.Warn("firma JWT inválida", logger.String("token_prefix", prefix))
	case errors.Is(err, jwtv5.ErrTokenExpired):
		log.Info("token expirado, requiere reemisión", logger.String("token_prefix", prefix))
	case errors.Is(err, jwtv5.ErrTokenMalformed):
		log.Warn("token JWT malformado", logger.String("token_prefix", prefix))
	case errors.Is(err, jwtv5.ErrTokenUnverifiable):
		log.Info("token JWT no soportado", logger.String("token_prefix", prefix))
	default:
		log.Warn("token JWT rechazado", logger.String("token_prefix", prefix), logger.Err(err))
	}
	return false
}

// ParseIdentity re-parsea un token ya aceptado por Validate y extrae
// (subject, authorities). Si el claim "auth" no viene, asigna la authority
// base. No es un segundo gate de validación: es extracción, y aun así puede
// fallar por corrupción; en ese caso retorna ErrInvalidToken.
func (c *Codec) ParseIdentity(token string) (*Identity, error) {
	claims, err := c.parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	authorities := []string{DefaultAuthority}
	if raw, ok := claims["auth"].(string); ok && raw != "" {
		parts := strings.Split(raw, ",")
		authorities = authorities[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				authorities = append(authorities, p)
			}
		}
		if len(authorities) == 0 {
			authorities = []string{DefaultAuthority}
		}
	}

	return &Identity{Subject: sub, Authorities: authorities}, nil
}

func (c *Codec) parse(token string) (jwtv5.MapClaims, error) {
	parser := jwtv5.NewParser(
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
	)
	claims := jwtv5.MapClaims{}
	_, err := parser.ParseWithClaims(token, claims, func(t *jwtv5.Token) (any, error) {
		return c.key, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// truncate corta un token para logs (nunca logueamos el token completo).
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
