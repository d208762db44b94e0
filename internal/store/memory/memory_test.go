package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dialogmeet/authsvc/internal/domain/repository"
)

func TestAccountStore_EmailIsCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := NewAccountStore()

	created, err := s.Create(ctx, repository.CreateAccountInput{
		Email:        "Ana@Example.COM",
		PasswordHash: "hash",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", created.Email)

	got, err := s.GetByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	exists, err := s.ExistsEmail(ctx, "  ana@example.com ")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = s.Create(ctx, repository.CreateAccountInput{
		Email:        "ana@example.com",
		PasswordHash: "otro",
	})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestAccountStore_SocialKeyUnique(t *testing.T) {
	ctx := context.Background()
	s := NewAccountStore()

	_, err := s.Create(ctx, repository.CreateAccountInput{
		Email:          "a@example.com",
		PasswordHash:   "h",
		SocialProvider: "google",
		SocialKey:      "google:111",
	})
	require.NoError(t, err)

	_, err = s.Create(ctx, repository.CreateAccountInput{
		Email:          "b@example.com",
		PasswordHash:   "h",
		SocialProvider: "google",
		SocialKey:      "google:111",
	})
	assert.ErrorIs(t, err, repository.ErrConflict)

	got, err := s.GetBySocialKey(ctx, "google:111")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", got.Email)
}

func TestAccountStore_UpdateSocialInfoReindexes(t *testing.T) {
	ctx := context.Background()
	s := NewAccountStore()

	acc, err := s.Create(ctx, repository.CreateAccountInput{
		Email:          "a@example.com",
		PasswordHash:   "h",
		SocialProvider: "kakao",
		SocialKey:      "kakao:1",
	})
	require.NoError(t, err)

	err = s.UpdateSocialInfo(ctx, acc.ID, repository.UpdateSocialInfoInput{
		SocialKey: "kakao:2",
		Name:      "Nuevo Nombre",
	})
	require.NoError(t, err)

	// La clave vieja deja de resolver; la nueva apunta a la misma cuenta.
	_, err = s.GetBySocialKey(ctx, "kakao:1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := s.GetBySocialKey(ctx, "kakao:2")
	require.NoError(t, err)
	assert.Equal(t, acc.ID, got.ID)
	assert.Equal(t, "Nuevo Nombre", got.Name)

	err = s.UpdateSocialInfo(ctx, "inexistente", repository.UpdateSocialInfoInput{Name: "x"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewAccountStore()

	acc, err := s.Create(ctx, repository.CreateAccountInput{
		Email:        "a@example.com",
		PasswordHash: "h",
		Name:         "Ana",
	})
	require.NoError(t, err)

	acc.Name = "mutada"

	got, err := s.GetByID(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)
}

func TestTokenStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore()
	now := time.Now().UTC()

	rt, err := s.Create(ctx, repository.CreateRefreshTokenInput{
		AccountID: "acc-1",
		Token:     "tok-1",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
	require.NotEmpty(t, rt.ID)
	assert.False(t, rt.Revoked)

	_, err = s.Create(ctx, repository.CreateRefreshTokenInput{
		AccountID: "acc-2",
		Token:     "tok-1",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	})
	assert.ErrorIs(t, err, repository.ErrConflict)

	require.NoError(t, s.Revoke(ctx, "tok-1"))
	got, err := s.GetByToken(ctx, "tok-1")
	require.NoError(t, err)
	assert.True(t, got.Revoked)

	// Idempotente: repetir o revocar algo inexistente no falla.
	assert.NoError(t, s.Revoke(ctx, "tok-1"))
	assert.NoError(t, s.Revoke(ctx, "no-existe"))

	_, err = s.GetByToken(ctx, "no-existe")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTokenStore_DeleteExpiredBefore(t *testing.T) {
	ctx := context.Background()
	s := NewTokenStore()
	now := time.Now().UTC()

	seed := func(token string, exp time.Time) {
		_, err := s.Create(ctx, repository.CreateRefreshTokenInput{
			AccountID: "acc", Token: token, IssuedAt: now.Add(-time.Hour), ExpiresAt: exp,
		})
		require.NoError(t, err)
	}
	seed("viejo", now.Add(-time.Minute))
	seed("al-filo", now)
	seed("vigente", now.Add(time.Minute))

	n, err := s.DeleteExpiredBefore(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// El que expira exactamente en now sobrevive.
	_, err = s.GetByToken(ctx, "al-filo")
	assert.NoError(t, err)
	_, err = s.GetByToken(ctx, "viejo")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
