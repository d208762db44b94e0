// Package social orquesta el login social: arranque del handshake OAuth2
// con state anti-CSRF, callback con intercambio de code, normalización del
// perfil y vinculación a una cuenta interna.
package social

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dialogmeet/authsvc/internal/auth/linker"
	"github.com/dialogmeet/authsvc/internal/cache"
	"github.com/dialogmeet/authsvc/internal/domain/repository"
	"github.com/dialogmeet/authsvc/internal/metrics"
	"github.com/dialogmeet/authsvc/internal/observability/logger"
	tokens "github.com/dialogmeet/authsvc/internal/security/token"
	socialid "github.com/dialogmeet/authsvc/internal/social"
)

// stateTTL acota la ventana entre el redirect al proveedor y el callback.
const stateTTL = 10 * time.Minute

// stateBytes es la entropía del state anti-CSRF.
const stateBytes = 24

// Errores sentinel del flujo social.
var (
	ErrUnsupportedProvider = socialid.ErrUnsupportedProvider
	ErrInvalidState        = errors.New("invalid or expired oauth state")
	ErrExchangeFailed      = errors.New("code exchange failed")
)

// Provider es un cliente OAuth2 capaz de completar el code flow.
// Lo implementan los clientes de internal/oauth.
type Provider interface {
	AuthURL(state string) string
	ExchangeCode(ctx context.Context, code string) (string, error)
	FetchProfile(ctx context.Context, accessToken string) (map[string]any, error)
}

// Service define las operaciones del login social.
type Service interface {
	// Start genera el state, lo guarda con TTL y retorna la URL de
	// autorización del proveedor.
	Start(ctx context.Context, provider string) (authURL string, err error)

	// Callback completa el handshake: valida el state, intercambia el
	// code, normaliza el perfil y resuelve la cuenta interna.
	Callback(ctx context.Context, provider, state, code string) (*repository.Account, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Providers map[string]Provider // key: "google", "kakao"
	Linker    linker.Service
	States    cache.Cache
}

type service struct {
	deps Deps
}

// New crea el servicio de login social.
func New(deps Deps) Service {
	return &service{deps: deps}
}

func (s *service) Start(ctx context.Context, provider string) (string, error) {
	p, ok := s.deps.Providers[provider]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}

	state, err := tokens.GenerateOpaqueToken(stateBytes)
	if err != nil {
		return "", fmt.Errorf("social: generate state: %w", err)
	}
	// El valor guarda el proveedor: el callback verifica que el state
	// pertenezca al handshake que lo originó.
	s.deps.States.Set(stateKey(state), []byte(provider), stateTTL)

	return p.AuthURL(state), nil
}

func (s *service) Callback(ctx context.Context, provider, state, code string) (*repository.Account, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("social"),
		logger.Op("Callback"),
		logger.Provider(provider),
	)

	p, ok := s.deps.Providers[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}

	// State de un solo uso: se borra antes de validar el resto.
	stored, found := s.deps.States.Get(stateKey(state))
	if found {
		s.deps.States.Delete(stateKey(state))
	}
	if !found || string(stored) != provider {
		metrics.SocialResolve(provider, "failed")
		return nil, ErrInvalidState
	}

	accessToken, err := p.ExchangeCode(ctx, code)
	if err != nil {
		log.Warn("intercambio de code falló", logger.Err(err))
		metrics.SocialResolve(provider, "failed")
		return nil, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}

	attrs, err := p.FetchProfile(ctx, accessToken)
	if err != nil {
		metrics.SocialResolve(provider, "failed")
		return nil, fmt.Errorf("social: fetch profile: %w", err)
	}

	info, err := socialid.Normalize(provider, attrs)
	if err != nil {
		metrics.SocialResolve(provider, "failed")
		return nil, err
	}

	acc, err := s.deps.Linker.Resolve(ctx, info)
	if err != nil {
		metrics.SocialResolve(provider, "failed")
		return nil, err
	}
	metrics.SocialResolve(provider, "linked")
	return acc, nil
}

func stateKey(state string) string { return "oauth:state:" + state }
