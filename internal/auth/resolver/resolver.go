package resolver

import (
	"context"

	"identity-service/internal/account"
	"identity-service/internal/auth"
)

// Resolver determines which local account an external identity
// belongs to. It is the ONLY place where identity-to-account
// mapping logic lives.
type Resolver interface {
	Resolve(ctx context.Context, identity *auth.Identity) (*account.Account, error)
}
