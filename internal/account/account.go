package account

import "time"

// Account is one locally known user. Provider, ExternalID and
// AccessToken reflect the most recent federated sign-in; all three
// are empty for accounts created through password registration.
type Account struct {
	ID            string    `db:"id"`
	Email         string    `db:"email"`
	EmailVerified bool      `db:"email_verified"`
	Provider      string    `db:"provider"`
	ExternalID    string    `db:"external_id"`
	AccessToken   string    `db:"access_token"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
