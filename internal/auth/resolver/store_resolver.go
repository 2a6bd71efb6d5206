package resolver

import (
	"context"
	"fmt"

	"identity-service/internal/account"
	"identity-service/internal/auth"
)

// StoreResolver resolves identities against an account store using
// three ordered lookups, first match wins:
//
//  1. federated match on (provider, external id)
//  2. email match, linking the identity to a pre-existing account
//  3. creation of a new federation-only account
//
// Whichever lookup matched, the resolved account's provider, external
// id and access token are overwritten with the values from the
// current identity and persisted, so the stored token is always the
// one issued by the latest handshake and an email-matched account
// stays linked to the federated identity from then on.
type StoreResolver struct {
	store account.Store
}

func NewStoreResolver(store account.Store) *StoreResolver {
	return &StoreResolver{store: store}
}

func (r *StoreResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (*account.Account, error) {

	if identity == nil || identity.Provider == "" || identity.ProviderUserID == "" {
		return nil, fmt.Errorf("%w: missing provider or subject", ErrInvalidIdentity)
	}

	// 1. Federated lookup. The strongest signal: the provider already
	// validated this subject during the handshake.
	acct, err := r.store.FindByProviderSubject(
		ctx,
		identity.Provider,
		identity.ProviderUserID,
	)
	if err != nil {
		return nil, &StoreError{Op: "find by provider subject", Err: err}
	}

	// 2. Email linking: an account that pre-existed under a different
	// creation path (e.g. password signup) adopts this identity
	// instead of spawning a duplicate.
	if acct == nil && identity.Email != "" {
		acct, err = r.store.FindByEmail(ctx, identity.Email)
		if err != nil {
			return nil, &StoreError{Op: "find by email", Err: err}
		}
	}

	// 3. New federation-only account. Email is the only seed we have,
	// so it must be present.
	if acct == nil {
		if identity.Email == "" {
			return nil, fmt.Errorf("%w: email required to create account", ErrInvalidIdentity)
		}
		acct = &account.Account{
			Email:         identity.Email,
			EmailVerified: identity.EmailVerified,
		}
	}

	acct.Provider = identity.Provider
	acct.ExternalID = identity.ProviderUserID
	acct.AccessToken = identity.AccessToken

	if err := r.store.Save(ctx, acct); err != nil {
		return nil, &StoreError{Op: "save", Err: err}
	}

	return acct, nil
}
