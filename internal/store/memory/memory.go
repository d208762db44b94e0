// Package memory implementa los repositorios del dominio sobre mapas en
// memoria. Se usa en tests y en modo dev sin Postgres; las garantías de
// unicidad y el orden de chequeos son los mismos que en el store pg.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dialogmeet/authsvc/internal/domain/repository"
)

// AccountStore guarda cuentas en memoria, protegido por un mutex.
type AccountStore struct {
	mu          sync.RWMutex
	accounts    map[string]*repository.Account // por id
	byEmail     map[string]string              // email (lower) -> id
	bySocialKey map[string]string              // social key -> id
}

// NewAccountStore crea un AccountStore vacío.
func NewAccountStore() *AccountStore {
	return &AccountStore{
		accounts:    make(map[string]*repository.Account),
		byEmail:     make(map[string]string),
		bySocialKey: make(map[string]string),
	}
}

var _ repository.AccountRepository = (*AccountStore)(nil)

func normEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AccountStore) GetByID(ctx context.Context, id string) (*repository.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	acc, ok := s.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *acc
	return &out, nil
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*repository.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[normEmail(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	acc := *s.accounts[id]
	return &acc, nil
}

func (s *AccountStore) GetBySocialKey(ctx context.Context, socialKey string) (*repository.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.bySocialKey[socialKey]
	if !ok {
		return nil, repository.ErrNotFound
	}
	acc := *s.accounts[id]
	return &acc, nil
}

func (s *AccountStore) ExistsEmail(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byEmail[normEmail(email)]
	return ok, nil
}

func (s *AccountStore) Create(ctx context.Context, input repository.CreateAccountInput) (*repository.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := normEmail(input.Email)
	if _, dup := s.byEmail[email]; dup {
		return nil, repository.ErrConflict
	}
	if input.SocialKey != "" {
		if _, dup := s.bySocialKey[input.SocialKey]; dup {
			return nil, repository.ErrConflict
		}
	}

	acc := &repository.Account{
		ID:              uuid.NewString(),
		Email:           email,
		PasswordHash:    input.PasswordHash,
		Name:            input.Name,
		Department:      input.Department,
		Position:        input.Position,
		SocialProvider:  input.SocialProvider,
		SocialKey:       input.SocialKey,
		ProfileImageURL: input.ProfileImageURL,
		CreatedAt:       time.Now().UTC(),
	}
	s.accounts[acc.ID] = acc
	s.byEmail[email] = acc.ID
	if acc.SocialKey != "" {
		s.bySocialKey[acc.SocialKey] = acc.ID
	}

	out := *acc
	return &out, nil
}

func (s *AccountStore) UpdateSocialInfo(ctx context.Context, accountID string, input repository.UpdateSocialInfoInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[accountID]
	if !ok {
		return repository.ErrNotFound
	}
	if input.SocialKey != "" && input.SocialKey != acc.SocialKey {
		if _, dup := s.bySocialKey[input.SocialKey]; dup {
			return repository.ErrConflict
		}
		if acc.SocialKey != "" {
			delete(s.bySocialKey, acc.SocialKey)
		}
		s.bySocialKey[input.SocialKey] = acc.ID
		acc.SocialKey = input.SocialKey
	}
	if input.SocialProvider != "" {
		acc.SocialProvider = input.SocialProvider
	}
	if input.Name != "" {
		acc.Name = input.Name
	}
	if input.ProfileImageURL != "" {
		acc.ProfileImageURL = input.ProfileImageURL
	}
	return nil
}

// TokenStore guarda refresh tokens en memoria, indexados por token string.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*repository.RefreshToken
}

// NewTokenStore crea un TokenStore vacío.
func NewTokenStore() *TokenStore {
	return &TokenStore{tokens: make(map[string]*repository.RefreshToken)}
}

var _ repository.RefreshTokenRepository = (*TokenStore)(nil)

func (s *TokenStore) Create(ctx context.Context, input repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.tokens[input.Token]; dup {
		return nil, repository.ErrConflict
	}
	rt := &repository.RefreshToken{
		ID:        uuid.NewString(),
		AccountID: input.AccountID,
		Token:     input.Token,
		IssuedAt:  input.IssuedAt,
		ExpiresAt: input.ExpiresAt,
	}
	s.tokens[rt.Token] = rt
	out := *rt
	return &out, nil
}

func (s *TokenStore) GetByToken(ctx context.Context, token string) (*repository.RefreshToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.tokens[token]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *rt
	return &out, nil
}

// Revoke es idempotente: revocar un token ya revocado o inexistente no falla.
func (s *TokenStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rt, ok := s.tokens[token]; ok {
		rt.Revoked = true
	}
	return nil
}

func (s *TokenStore) DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for k, rt := range s.tokens {
		// Estrictamente anterior: un token que expira exactamente en now
		// sobrevive al barrido.
		if rt.ExpiresAt.Before(now) {
			delete(s.tokens, k)
			n++
		}
	}
	return n, nil
}
