package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"identity-service/internal/auth"
	"identity-service/internal/logger"

	"golang.org/x/oauth2"
	githubendpoint "golang.org/x/oauth2/github"
)

const providerName = "github"

const defaultAPIBase = "https://api.github.com"

// Provider implements OAuth authentication against GitHub. GitHub
// does not speak OIDC, so the identity comes from its REST API using
// the freshly issued access token. Facts only, no account decisions.
type Provider struct {
	oauthConfig *oauth2.Config
	apiBase     string
}

func New(
	clientID string,
	clientSecret string,
	redirectURL string,
) (*Provider, error) {

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil, errors.New("github oauth config missing required fields")
	}

	oauthCfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     githubendpoint.Endpoint,
		Scopes: []string{
			"read:user",
			"user:email",
		},
	}

	return &Provider{
		oauthConfig: oauthCfg,
		apiBase:     defaultAPIBase,
	}, nil
}

// Name returns the provider identifier used by the registry.
func (p *Provider) Name() string {
	return providerName
}

// AuthCodeURL builds the OAuth authorization URL with PKCE parameters.
func (p *Provider) AuthCodeURL(state string, codeChallenge string) string {
	return p.oauthConfig.AuthCodeURL(
		state,
		oauth2.SetAuthURLParam("code_challenge", codeChallenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)
}

func (p *Provider) ExchangeCode(
	ctx context.Context,
	code string,
	codeVerifier string,
) (*auth.Identity, error) {

	token, err := p.oauthConfig.Exchange(
		ctx,
		code,
		oauth2.SetAuthURLParam("code_verifier", codeVerifier),
	)
	if err != nil {
		return nil, fmt.Errorf("github token exchange failed: %w", err)
	}

	client := p.oauthConfig.Client(ctx, token)

	user, err := p.fetchUser(ctx, client)
	if err != nil {
		return nil, err
	}

	email, verified := user.Email, false
	if primary, ok, err := p.fetchPrimaryEmail(ctx, client); err != nil {
		logger.Warn("github email lookup failed", map[string]any{
			"error": err.Error(),
		})
	} else if ok {
		email, verified = primary.Email, primary.Verified
	}

	logger.Info("github identity fetched", map[string]any{
		"email_present":  email != "",
		"email_verified": verified,
	})

	// Users may hide their email entirely; the resolver decides
	// whether an email-less identity is acceptable.
	return &auth.Identity{
		Provider:       providerName,
		ProviderUserID: strconv.FormatInt(user.ID, 10),
		Email:          email,
		EmailVerified:  verified,
		AccessToken:    token.AccessToken,
	}, nil
}

type githubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

func (p *Provider) fetchUser(ctx context.Context, client *http.Client) (*githubUser, error) {
	var user githubUser
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return nil, fmt.Errorf("github user fetch failed: %w", err)
	}
	if user.ID == 0 {
		return nil, errors.New("github user response missing id")
	}
	return &user, nil
}

// fetchPrimaryEmail returns the primary address from /user/emails,
// which carries the verification flag that /user omits.
func (p *Provider) fetchPrimaryEmail(ctx context.Context, client *http.Client) (githubEmail, bool, error) {
	var emails []githubEmail
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return githubEmail{}, false, err
	}
	for _, e := range emails {
		if e.Primary {
			return e, true, nil
		}
	}
	return githubEmail{}, false, nil
}

func (p *Provider) getJSON(ctx context.Context, client *http.Client, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("github api %s returned status %d", path, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
