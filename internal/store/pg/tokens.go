package pg

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dialogmeet/authsvc/internal/domain/repository"
)

// TokenRepo implementa repository.RefreshTokenRepository sobre Postgres.
type TokenRepo struct{ pool *pgxpool.Pool }

var _ repository.RefreshTokenRepository = (*TokenRepo)(nil)

func (r *TokenRepo) Create(ctx context.Context, input repository.CreateRefreshTokenInput) (*repository.RefreshToken, error) {
	const q = `
		INSERT INTO refresh_token (id, account_id, token, issued_at, expires_at, revoked)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, FALSE)
		RETURNING id, account_id, token, issued_at, expires_at, revoked`

	var rt repository.RefreshToken
	err := r.pool.QueryRow(ctx, q, input.AccountID, input.Token, input.IssuedAt, input.ExpiresAt).
		Scan(&rt.ID, &rt.AccountID, &rt.Token, &rt.IssuedAt, &rt.ExpiresAt, &rt.Revoked)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return &rt, nil
}

func (r *TokenRepo) GetByToken(ctx context.Context, token string) (*repository.RefreshToken, error) {
	const q = `
		SELECT id, account_id, token, issued_at, expires_at, revoked
		  FROM refresh_token
		 WHERE token = $1`

	var rt repository.RefreshToken
	err := r.pool.QueryRow(ctx, q, token).
		Scan(&rt.ID, &rt.AccountID, &rt.Token, &rt.IssuedAt, &rt.ExpiresAt, &rt.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &rt, nil
}

// Revoke es idempotente: 0 filas afectadas no es error.
func (r *TokenRepo) Revoke(ctx context.Context, token string) error {
	const q = `UPDATE refresh_token SET revoked = TRUE WHERE token = $1 AND NOT revoked`
	_, err := r.pool.Exec(ctx, q, token)
	return err
}

// DeleteExpiredBefore borra tokens con expires_at estrictamente anterior a now.
func (r *TokenRepo) DeleteExpiredBefore(ctx context.Context, now time.Time) (int64, error) {
	const q = `DELETE FROM refresh_token WHERE expires_at < $1`
	ct, err := r.pool.Exec(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}
