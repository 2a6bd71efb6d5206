package account

import (
	"context"
	"database/sql"
	"errors"

	"identity-service/internal/db"
)

// PostgresStore is the canonical account store.
type PostgresStore struct {
	db *db.DB
}

func NewPostgresStore(db *db.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) FindByProviderSubject(
	ctx context.Context,
	provider string,
	externalID string,
) (*Account, error) {

	var a Account
	err := s.db.GetContext(ctx, &a, `
		SELECT id, email, email_verified, provider, external_id,
		       access_token, created_at, updated_at
		FROM accounts
		WHERE provider = $1
		  AND external_id = $2
	`, provider, externalID)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) FindByEmail(
	ctx context.Context,
	email string,
) (*Account, error) {

	var a Account
	err := s.db.GetContext(ctx, &a, `
		SELECT id, email, email_verified, provider, external_id,
		       access_token, created_at, updated_at
		FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *PostgresStore) Save(ctx context.Context, a *Account) error {
	if a.ID == "" {
		return s.db.QueryRowContext(ctx, `
			INSERT INTO accounts
				(email, email_verified, provider, external_id, access_token)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at
		`,
			a.Email,
			a.EmailVerified,
			a.Provider,
			a.ExternalID,
			a.AccessToken,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	}

	return s.db.QueryRowContext(ctx, `
		UPDATE accounts
		SET email          = $2,
		    email_verified = $3,
		    provider       = $4,
		    external_id    = $5,
		    access_token   = $6,
		    updated_at     = NOW()
		WHERE id = $1
		RETURNING updated_at
	`,
		a.ID,
		a.Email,
		a.EmailVerified,
		a.Provider,
		a.ExternalID,
		a.AccessToken,
	).Scan(&a.UpdatedAt)
}
