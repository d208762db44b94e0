package repository

import (
	"context"
	"time"
)

// Account representa una cuenta interna del sistema.
// Las cuentas sociales también llevan PasswordHash (aleatorio, nunca usado
// para login por password) para mantener el invariante de hash no nulo.
type Account struct {
	ID              string
	Email           string // único global
	PasswordHash    string
	Name            string
	Department      string
	Position        string
	SocialProvider  string // "google", "kakao"; vacío = cuenta por password
	SocialKey       string // "{provider}:{providerUserID}", único; vacío = cuenta por password
	ProfileImageURL string
	CreatedAt       time.Time
}

// CreateAccountInput contiene los datos para crear una cuenta.
type CreateAccountInput struct {
	Email           string
	PasswordHash    string
	Name            string
	Department      string
	Position        string
	SocialProvider  string
	SocialKey       string
	ProfileImageURL string
}

// UpdateSocialInfoInput contiene los campos que un re-login social refresca.
type UpdateSocialInfoInput struct {
	Name            string
	ProfileImageURL string
	SocialProvider  string
	SocialKey       string
}

// AccountRepository define operaciones sobre cuentas.
// Las garantías de unicidad (email, social key) las aplica el store;
// un Create duplicado retorna ErrConflict.
type AccountRepository interface {
	// GetByID busca una cuenta por su id.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, id string) (*Account, error)

	// GetByEmail busca una cuenta por email.
	// Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// GetBySocialKey busca una cuenta por su social key ("provider:id").
	// Retorna ErrNotFound si no existe.
	GetBySocialKey(ctx context.Context, socialKey string) (*Account, error)

	// ExistsEmail verifica si ya hay una cuenta con ese email.
	ExistsEmail(ctx context.Context, email string) (bool, error)

	// Create crea una cuenta nueva.
	// Retorna ErrConflict si el email o la social key ya existen.
	Create(ctx context.Context, input CreateAccountInput) (*Account, error)

	// UpdateSocialInfo refresca nombre/avatar/provider en un re-login social.
	UpdateSocialInfo(ctx context.Context, accountID string, input UpdateSocialInfoInput) error
}
