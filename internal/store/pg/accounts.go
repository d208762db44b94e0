package pg

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dialogmeet/authsvc/internal/domain/repository"
)

// AccountRepo implementa repository.AccountRepository sobre Postgres.
type AccountRepo struct{ pool *pgxpool.Pool }

var _ repository.AccountRepository = (*AccountRepo)(nil)

const accountColumns = `id, email, password_hash, name, department, position,
	social_provider, social_key, profile_image_url, created_at`

func scanAccount(row pgx.Row) (*repository.Account, error) {
	var a repository.Account
	var provider, key, imageURL *string
	err := row.Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Name, &a.Department,
		&a.Position, &provider, &key, &imageURL, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if provider != nil {
		a.SocialProvider = *provider
	}
	if key != nil {
		a.SocialKey = *key
	}
	if imageURL != nil {
		a.ProfileImageURL = *imageURL
	}
	return &a, nil
}

// nullable convierte "" a NULL para las columnas sociales: el índice único
// de social_key no debe chocar entre cuentas por password.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *AccountRepo) GetByID(ctx context.Context, id string) (*repository.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.pool.QueryRow(ctx, q, id))
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*repository.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.pool.QueryRow(ctx, q, strings.ToLower(strings.TrimSpace(email))))
}

func (r *AccountRepo) GetBySocialKey(ctx context.Context, socialKey string) (*repository.Account, error) {
	const q = `SELECT ` + accountColumns + ` FROM accounts WHERE social_key = $1`
	return scanAccount(r.pool.QueryRow(ctx, q, socialKey))
}

func (r *AccountRepo) ExistsEmail(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, strings.ToLower(strings.TrimSpace(email))).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *AccountRepo) Create(ctx context.Context, input repository.CreateAccountInput) (*repository.Account, error) {
	const q = `
		INSERT INTO accounts
			(id, email, password_hash, name, department, position,
			 social_provider, social_key, profile_image_url, created_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING ` + accountColumns

	row := r.pool.QueryRow(ctx, q,
		strings.ToLower(strings.TrimSpace(input.Email)),
		input.PasswordHash,
		input.Name,
		input.Department,
		input.Position,
		nullable(input.SocialProvider),
		nullable(input.SocialKey),
		nullable(input.ProfileImageURL),
	)
	acc, err := scanAccount(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return acc, nil
}

func (r *AccountRepo) UpdateSocialInfo(ctx context.Context, accountID string, input repository.UpdateSocialInfoInput) error {
	const q = `
		UPDATE accounts
		   SET name              = COALESCE(NULLIF($2, ''), name),
		       profile_image_url = COALESCE(NULLIF($3, ''), profile_image_url),
		       social_provider   = COALESCE(NULLIF($4, ''), social_provider),
		       social_key        = COALESCE(NULLIF($5, ''), social_key)
		 WHERE id = $1`
	ct, err := r.pool.Exec(ctx, q, accountID, input.Name, input.ProfileImageURL,
		input.SocialProvider, input.SocialKey)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrConflict
		}
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
