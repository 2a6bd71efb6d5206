package account

import "context"

// Store defines the persistence operations the identity resolver
// needs. Lookups return (nil, nil) when no account matches; a
// non-nil error always indicates a storage failure, never "not
// found". Implementations are responsible for serializing racing
// writes on (provider, external_id) and email, typically through
// unique constraints.
type Store interface {
	// FindByProviderSubject looks up the account whose federated
	// identity exactly equals (provider, externalID).
	FindByProviderSubject(ctx context.Context, provider, externalID string) (*Account, error)

	// FindByEmail looks up an account by email, case-insensitively.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// Save inserts the account when its ID is empty, assigning a new
	// ID, and updates it otherwise.
	Save(ctx context.Context, a *Account) error
}
