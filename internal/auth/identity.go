package auth

// Identity represents a normalized external authentication result
// returned by an OAuth provider. It contains facts asserted by the
// provider handshake; nothing here is re-validated locally.
type Identity struct {
	Provider       string // e.g. "google", "github"
	ProviderUserID string // provider-scoped unique subject identifier
	Email          string // email returned by the provider
	EmailVerified  bool   // whether the provider asserts email ownership
	AccessToken    string // provider access token issued by this handshake
}
