// Package linker implementa el ciclo de vida de cuentas: registro por
// password, login por password y resolución idempotente de identidades
// sociales contra cuentas internas.
package linker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dialogmeet/authsvc/internal/domain/repository"
	"github.com/dialogmeet/authsvc/internal/observability/logger"
	"github.com/dialogmeet/authsvc/internal/security/password"
	"github.com/dialogmeet/authsvc/internal/social"
)

// Errores sentinel del linker.
var (
	ErrMissingFields    = errors.New("missing required fields")
	ErrTermsNotAccepted = errors.New("terms of service not accepted")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrUnknownAccount   = errors.New("account not found")
	ErrBadCredentials   = errors.New("bad credentials")
)

// RegisterInput es la entrada del registro por password.
type RegisterInput struct {
	Email         string
	Password      string
	Name          string
	Department    string
	Position      string
	AcceptedTerms bool
}

// Service define las operaciones de cuentas del linker.
type Service interface {
	// Register crea una cuenta por password. El consentimiento de términos
	// es obligatorio y el email debe ser único global.
	Register(ctx context.Context, in RegisterInput) (*repository.Account, error)

	// Authenticate valida credenciales por password.
	Authenticate(ctx context.Context, email, rawPassword string) (*repository.Account, error)

	// Resolve vincula una identidad social a una cuenta interna: si ya
	// existe refresca sus datos, si no existe la crea. Idempotente por
	// social key: logins repetidos nunca duplican cuentas.
	Resolve(ctx context.Context, info *social.UserInfo) (*repository.Account, error)
}

// Deps contiene las dependencias del servicio.
type Deps struct {
	Accounts repository.AccountRepository
	Hasher   *password.Hasher
}

type service struct {
	deps Deps
}

// New crea el servicio de linker.
func New(deps Deps) Service {
	if deps.Hasher == nil {
		deps.Hasher = password.NewHasher()
	}
	return &service{deps: deps}
}

func (s *service) Register(ctx context.Context, in RegisterInput) (*repository.Account, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.linker"),
		logger.Op("Register"),
	)

	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if !in.AcceptedTerms {
		return nil, ErrTermsNotAccepted
	}

	// Chequeo temprano para un error amable; la carrera real la cierra el
	// índice único del store.
	exists, err := s.deps.Accounts.ExistsEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("linker: check email: %w", err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.deps.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("linker: hash password: %w", err)
	}

	acc, err := s.deps.Accounts.Create(ctx, repository.CreateAccountInput{
		Email:        in.Email,
		PasswordHash: hash,
		Name:         in.Name,
		Department:   in.Department,
		Position:     in.Position,
	})
	if err != nil {
		if repository.IsConflict(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("linker: create account: %w", err)
	}

	log.Info("cuenta registrada", logger.AccountID(acc.ID))
	return acc, nil
}

func (s *service) Authenticate(ctx context.Context, email, rawPassword string) (*repository.Account, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.linker"),
		logger.Op("Authenticate"),
	)

	email = strings.TrimSpace(strings.ToLower(email))
	acc, err := s.deps.Accounts.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrUnknownAccount
		}
		return nil, fmt.Errorf("linker: lookup account: %w", err)
	}

	if !s.deps.Hasher.Verify(rawPassword, acc.PasswordHash) {
		log.Info("password incorrecto", logger.AccountID(acc.ID))
		return nil, ErrBadCredentials
	}
	return acc, nil
}

func (s *service) Resolve(ctx context.Context, info *social.UserInfo) (*repository.Account, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth.linker"),
		logger.Op("Resolve"),
		logger.Provider(info.Provider),
	)

	key := info.Key()

	acc, err := s.deps.Accounts.GetBySocialKey(ctx, key)
	if err == nil {
		// Re-login: refrescar nombre/avatar por si cambiaron en el proveedor.
		upd := repository.UpdateSocialInfoInput{
			Name:            info.Name,
			ProfileImageURL: info.ProfileImageURL,
			SocialProvider:  info.Provider,
			SocialKey:       key,
		}
		if uerr := s.deps.Accounts.UpdateSocialInfo(ctx, acc.ID, upd); uerr != nil {
			log.Warn("no se pudo refrescar info social", logger.AccountID(acc.ID), logger.Err(uerr))
		}
		return s.deps.Accounts.GetBySocialKey(ctx, key)
	}
	if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("linker: lookup social key: %w", err)
	}

	// Cuenta nueva. El hash aleatorio mantiene el invariante de password
	// no nulo; nunca sirve para login por password.
	email, err := s.uniqueEmail(ctx, info.Email)
	if err != nil {
		return nil, err
	}
	hash, err := s.deps.Hasher.Hash(uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("linker: hash placeholder password: %w", err)
	}

	acc, err = s.deps.Accounts.Create(ctx, repository.CreateAccountInput{
		Email:           email,
		PasswordHash:    hash,
		Name:            info.Name,
		SocialProvider:  info.Provider,
		SocialKey:       key,
		ProfileImageURL: info.ProfileImageURL,
	})
	if err != nil {
		if repository.IsConflict(err) {
			// Carrera con otro login del mismo usuario: el otro request
			// ya creó la cuenta, reintentamos como lookup.
			return s.deps.Accounts.GetBySocialKey(ctx, key)
		}
		return nil, fmt.Errorf("linker: create social account: %w", err)
	}

	log.Info("cuenta social creada", logger.AccountID(acc.ID))
	return acc, nil
}

// uniqueEmail deriva un handle único a partir del email del proveedor.
// Sin email (Kakao sin consentimiento) genera un handle aleatorio. En
// colisión agrega sufijo numérico incremental; el loop termina porque está
// acotado por la cantidad de cuentas existentes.
func (s *service) uniqueEmail(ctx context.Context, providerEmail string) (string, error) {
	if strings.TrimSpace(providerEmail) == "" {
		return "social_user_" + uuid.NewString()[:8], nil
	}

	base := strings.ToLower(strings.SplitN(providerEmail, "@", 2)[0])
	handle := base
	for i := 1; ; i++ {
		exists, err := s.deps.Accounts.ExistsEmail(ctx, handle)
		if err != nil {
			return "", fmt.Errorf("linker: derive unique email: %w", err)
		}
		if !exists {
			return handle, nil
		}
		handle = fmt.Sprintf("%s_%d", base, i)
	}
}
