package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"identity-service/internal/account"
	"identity-service/internal/auth"
	"identity-service/internal/auth/handler"
	"identity-service/internal/auth/provider"
	"identity-service/internal/auth/resolver"
	"identity-service/internal/session"
)

type stubProvider struct {
	identity    auth.Identity
	exchangeErr error
}

func (s *stubProvider) Name() string { return s.identity.Provider }

func (s *stubProvider) AuthCodeURL(state, codeChallenge string) string {
	return "https://provider.example/authorize?state=" + state
}

func (s *stubProvider) ExchangeCode(context.Context, string, string) (*auth.Identity, error) {
	if s.exchangeErr != nil {
		return nil, s.exchangeErr
	}
	id := s.identity
	return &id, nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]session.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]session.Session)}
}

func (m *memSessionStore) Create(_ context.Context, s session.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

func (m *memSessionStore) Get(_ context.Context, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (m *memSessionStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func newTestRouter(t *testing.T, identity auth.Identity) (*gin.Engine, *account.MemoryStore, *memSessionStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	accounts := account.NewMemoryStore()
	sessions := newMemSessionStore()

	h := handler.NewHandler(
		provider.NewRegistry(&stubProvider{identity: identity}),
		sessions,
		resolver.NewStoreResolver(accounts),
		nil, // password routes unused in these tests
	)

	router := gin.New()
	h.RegisterRoutes(router)
	return router, accounts, sessions
}

func TestOAuthLoginRedirectsToProvider(t *testing.T) {
	router, _, _ := newTestRouter(t, auth.Identity{Provider: "google"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/login/google", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	require.Contains(t, w.Header().Get("Location"), "https://provider.example/authorize")

	names := make(map[string]bool)
	for _, c := range w.Result().Cookies() {
		names[c.Name] = true
	}
	require.True(t, names["__oauth_state"])
	require.True(t, names["__oauth_pkce"])
}

func TestOAuthLoginUnknownProvider(t *testing.T) {
	router, _, _ := newTestRouter(t, auth.Identity{Provider: "google"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/login/gitlab", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOAuthCallbackEstablishesSession(t *testing.T) {
	router, accounts, sessions := newTestRouter(t, auth.Identity{
		Provider:       "google",
		ProviderUserID: "g1",
		Email:          "x@example.com",
		EmailVerified:  true,
		AccessToken:    "tok-1",
	})

	// Start the flow to obtain state and PKCE cookies.
	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, httptest.NewRequest(http.MethodGet, "/oauth/login/google", nil))
	require.Equal(t, http.StatusFound, loginRec.Code)

	var state string
	callback := httptest.NewRequest(http.MethodGet, "/oauth/callback/google?code=abc", nil)
	for _, c := range loginRec.Result().Cookies() {
		callback.AddCookie(c)
		if c.Name == "__oauth_state" {
			state = c.Value
		}
	}
	q := callback.URL.Query()
	q.Set("state", state)
	callback.URL.RawQuery = q.Encode()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, callback)
	require.Equal(t, http.StatusOK, w.Code)

	// The account is resolved and a session cookie is issued.
	acct, err := accounts.FindByProviderSubject(context.Background(), "google", "g1")
	require.NoError(t, err)
	require.NotNil(t, acct)
	require.Equal(t, "tok-1", acct.AccessToken)

	var sid string
	for _, c := range w.Result().Cookies() {
		if c.Name == session.CookieName {
			sid = c.Value
		}
	}
	require.NotEmpty(t, sid)

	sess, err := sessions.Get(context.Background(), sid)
	require.NoError(t, err)
	require.NotNil(t, sess)
	require.Equal(t, acct.ID, sess.AccountID)
}

func TestOAuthCallbackRejectsBadState(t *testing.T) {
	router, accounts, _ := newTestRouter(t, auth.Identity{
		Provider:       "google",
		ProviderUserID: "g1",
		Email:          "x@example.com",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/oauth/callback/google?code=abc&state=forged", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, 0, accounts.Len())
}

func TestOAuthCallbackProviderErrorRedirectsToLogin(t *testing.T) {
	router, _, _ := newTestRouter(t, auth.Identity{Provider: "google"})

	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, httptest.NewRequest(http.MethodGet, "/oauth/login/google", nil))

	var state string
	req := httptest.NewRequest(http.MethodGet, "/oauth/callback/google?error=access_denied", nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
		if c.Name == "__oauth_state" {
			state = c.Value
		}
	}
	q := req.URL.Query()
	q.Set("state", state)
	req.URL.RawQuery = q.Encode()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
}

type brokenAccountStore struct {
	err error
}

func (s *brokenAccountStore) FindByProviderSubject(context.Context, string, string) (*account.Account, error) {
	return nil, s.err
}

func (s *brokenAccountStore) FindByEmail(context.Context, string) (*account.Account, error) {
	return nil, s.err
}

func (s *brokenAccountStore) Save(context.Context, *account.Account) error {
	return s.err
}

// startFlow runs the login leg and returns a callback request carrying
// the flow cookies and a matching state parameter.
func startFlow(t *testing.T, router *gin.Engine, query string) *http.Request {
	t.Helper()

	loginRec := httptest.NewRecorder()
	router.ServeHTTP(loginRec, httptest.NewRequest(http.MethodGet, "/oauth/login/google", nil))
	require.Equal(t, http.StatusFound, loginRec.Code)

	var state string
	req := httptest.NewRequest(http.MethodGet, "/oauth/callback/google?"+query, nil)
	for _, c := range loginRec.Result().Cookies() {
		req.AddCookie(c)
		if c.Name == "__oauth_state" {
			state = c.Value
		}
	}
	q := req.URL.Query()
	q.Set("state", state)
	req.URL.RawQuery = q.Encode()
	return req
}

func TestOAuthCallbackHidesStorageFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cause := errors.New("pq: connection reset by peer")
	h := handler.NewHandler(
		provider.NewRegistry(&stubProvider{identity: auth.Identity{
			Provider:       "google",
			ProviderUserID: "g1",
			Email:          "x@example.com",
			AccessToken:    "tok",
		}}),
		newMemSessionStore(),
		resolver.NewStoreResolver(&brokenAccountStore{err: cause}),
		nil,
	)
	router := gin.New()
	h.RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, startFlow(t, router, "code=abc"))

	// The storage failure must never reach the user; they get a
	// generic retry message instead.
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "sign in failed, please try again")
	require.NotContains(t, w.Body.String(), cause.Error())
	require.NotContains(t, w.Body.String(), "pq:")
}

func TestOAuthCallbackHidesExchangeFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cause := errors.New("oauth2: invalid_grant: code expired")
	h := handler.NewHandler(
		provider.NewRegistry(&stubProvider{
			identity:    auth.Identity{Provider: "google"},
			exchangeErr: cause,
		}),
		newMemSessionStore(),
		resolver.NewStoreResolver(account.NewMemoryStore()),
		nil,
	)
	router := gin.New()
	h.RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, startFlow(t, router, "code=abc"))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "authentication failed")
	require.NotContains(t, w.Body.String(), cause.Error())
	require.NotContains(t, w.Body.String(), "invalid_grant")
}

func TestLogoutClearsSession(t *testing.T) {
	router, _, sessions := newTestRouter(t, auth.Identity{Provider: "google"})

	require.NoError(t, sessions.Create(context.Background(), session.Session{
		ID:        "sid-1",
		AccountID: "acct-1",
	}))

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.CookieName, Value: "sid-1"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)

	sess, err := sessions.Get(context.Background(), "sid-1")
	require.NoError(t, err)
	require.Nil(t, sess)
}
