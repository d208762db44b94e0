package repository

import (
	"context"
	"time"
)

// RefreshToken representa un token de refresco persistido.
type RefreshToken struct {
	ID        string
	AccountID string
	Token     string // opaco, alta entropía, único
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// CreateRefreshTokenInput contiene los datos para crear un refresh token.
type CreateRefreshTokenInput struct {
	AccountID string
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// RefreshTokenRepository define operaciones sobre refresh tokens.
type RefreshTokenRepository interface {
	// Create persiste un nuevo refresh token.
	Create(ctx context.Context, input CreateRefreshTokenInput) (*RefreshToken, error)

	// GetByToken busca un token por su string.
	// Retorna ErrNotFound si no existe.
	GetByToken(ctx context.Context, token string) (*RefreshToken, error)

	// Revoke marca un token como revocado. Revocar un token ya revocado
	// o inexistente es un no-op.
	Revoke(ctx context.Context, token string) error

	// DeleteExpiredBefore borra todos los tokens con expires_at < now
	// (estrictamente anterior) y retorna cuántos borró.
	DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error)
}
