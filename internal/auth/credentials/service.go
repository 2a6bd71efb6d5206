package credentials

import (
	"context"
	"database/sql"
	"errors"

	"identity-service/internal/db"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("credentials already exist")
)

// Service handles password registration and sign-in. Accounts created
// here carry no federated identity; the resolver links one later if
// the same email signs in through a provider.
type Service struct {
	db *db.DB
}

func NewService(db *db.DB) *Service {
	return &Service{db: db}
}

func (s *Service) Register(
	ctx context.Context,
	email string,
	password string,
) (string, error) {

	if email == "" {
		return "", errors.New("email required")
	}

	// 1. Find or create the account by email
	var accountID string
	err := s.db.GetContext(ctx, &accountID, `
		SELECT id FROM accounts
		WHERE LOWER(email) = LOWER($1)
	`, email)

	if errors.Is(err, sql.ErrNoRows) {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO accounts (email, email_verified)
			VALUES ($1, false)
			RETURNING id
		`, email).Scan(&accountID)
	}

	if err != nil {
		return "", err
	}

	// 2. Refuse a second password credential for the same account
	var exists bool
	err = s.db.GetContext(ctx, &exists, `
		SELECT EXISTS (
			SELECT 1 FROM credentials WHERE account_id = $1
		)
	`, accountID)

	if err != nil {
		return "", err
	}

	if exists {
		return "", ErrAlreadyRegistered
	}

	// 3. Hash and store
	hash, version, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO credentials (account_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, accountID, hash, version)

	if err != nil {
		return "", err
	}

	return accountID, nil
}

func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (string, error) {

	var cred Credential
	err := s.db.GetContext(ctx, &cred, `
		SELECT c.id, c.account_id, c.password_hash, c.hash_version,
		       c.created_at, c.updated_at
		FROM accounts a
		JOIN credentials c ON c.account_id = a.id
		WHERE LOWER(a.email) = LOWER($1)
	`, email)

	if err != nil {
		// hide whether the account exists
		return "", ErrInvalidCredentials
	}

	if err := VerifyPassword(cred.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return cred.AccountID, nil
}
