package credentials

import "time"

type Credential struct {
	ID           string    `db:"id"`
	AccountID    string    `db:"account_id"`
	PasswordHash string    `db:"password_hash"`
	HashVersion  string    `db:"hash_version"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
