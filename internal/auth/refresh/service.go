// Package refresh implementa el ciclo de vida de refresh tokens: emisión,
// verificación ordenada, revocación idempotente y barrido de expirados.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dialogmeet/authsvc/internal/domain/repository"
	"github.com/dialogmeet/authsvc/internal/observability/logger"
	tokens "github.com/dialogmeet/authsvc/internal/security/token"
)

// DefaultTTL es la validez por defecto de un refresh token.
const DefaultTTL = 7 * 24 * time.Hour

// tokenBytes es la entropía del token opaco antes de codificar.
const tokenBytes = 32

// Errores sentinel del verify, en orden de chequeo: existencia, revocación,
// expiración. Son distinguibles para que el caller decida entre pedir
// re-login (revocado/expirado) o tratar el request como corrupto (not found).
var (
	ErrTokenNotFound = errors.New("refresh token not found")
	ErrTokenRevoked  = errors.New("refresh token revoked")
	ErrTokenExpired  = errors.New("refresh token expired")
)

// Service define las operaciones sobre refresh tokens.
type Service interface {
	// Issue emite y persiste un token opaco nuevo para la cuenta.
	Issue(ctx context.Context, accountID string) (*repository.RefreshToken, error)

	// Verify valida un token en tres chequeos ordenados: existencia,
	// flag de revocación, expiración.
	Verify(ctx context.Context, token string) (*repository.RefreshToken, error)

	// Revoke marca el token como revocado. Idempotente: revocar un token
	// ya revocado o inexistente no es error.
	Revoke(ctx context.Context, token string) error

	// SweepExpired borra los tokens con expiración estrictamente anterior
	// a now y retorna cuántos borró.
	SweepExpired(ctx context.Context, now time.Time) (int64, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Tokens repository.RefreshTokenRepository
	TTL    time.Duration

	// Now permite inyectar el reloj en tests. nil usa time.Now.
	Now func() time.Time
}

type service struct {
	deps Deps
}

// New crea el servicio de refresh tokens.
func New(deps Deps) Service {
	if deps.TTL <= 0 {
		deps.TTL = DefaultTTL
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &service{deps: deps}
}

func (s *service) Issue(ctx context.Context, accountID string) (*repository.RefreshToken, error) {
	// La probabilidad de colisión de 32 bytes aleatorios es astronómicamente
	// baja: no hay retry loop. Si el índice único llegara a saltar, el error
	// sube tal cual.
	opaque, err := tokens.GenerateOpaqueToken(tokenBytes)
	if err != nil {
		return nil, fmt.Errorf("refresh: generate token: %w", err)
	}

	now := s.deps.Now().UTC()
	rt, err := s.deps.Tokens.Create(ctx, repository.CreateRefreshTokenInput{
		AccountID: accountID,
		Token:     opaque,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.deps.TTL),
	})
	if err != nil {
		return nil, fmt.Errorf("refresh: persist token: %w", err)
	}

	logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.refresh"),
		logger.Op("Issue"),
	).Debug("refresh token emitido", logger.AccountID(accountID), logger.TokenID(rt.ID))
	return rt, nil
}

func (s *service) Verify(ctx context.Context, token string) (*repository.RefreshToken, error) {
	rt, err := s.deps.Tokens.GetByToken(ctx, token)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("refresh: lookup token: %w", err)
	}
	if rt.Revoked {
		return nil, ErrTokenRevoked
	}
	if rt.ExpiresAt.Before(s.deps.Now()) {
		return nil, ErrTokenExpired
	}
	return rt, nil
}

func (s *service) Revoke(ctx context.Context, token string) error {
	if err := s.deps.Tokens.Revoke(ctx, token); err != nil {
		return fmt.Errorf("refresh: revoke token: %w", err)
	}
	return nil
}

func (s *service) SweepExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.deps.Tokens.DeleteExpiredBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("refresh: sweep expired: %w", err)
	}
	if n > 0 {
		logger.Named("refresh").Info("tokens expirados barridos", logger.Int64("deleted", n))
	}
	return n, nil
}
