package db

import (
	"context"
)

// Accounts carry their federated identity columns directly:
// (provider, external_id) is the federated lookup key and
// access_token is overwritten on every federated sign-in.
// Password-created accounts leave all three empty.
const schema = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS accounts (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    email text NOT NULL,
    email_verified boolean NOT NULL DEFAULT false,
    provider text NOT NULL DEFAULT '',
    external_id text NOT NULL DEFAULT '',
    access_token text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_lower_unique
ON accounts (LOWER(email));

CREATE UNIQUE INDEX IF NOT EXISTS accounts_provider_subject_unique
ON accounts (provider, external_id)
WHERE provider <> '';

CREATE TABLE IF NOT EXISTS credentials (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    account_id uuid NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
    password_hash text NOT NULL,
    hash_version text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT credentials_account_unique UNIQUE (account_id)
);
`

// Migrate applies the idempotent schema.
func Migrate(ctx context.Context, db *DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
