package session_test

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"identity-service/internal/session"
)

func TestSetCookieAppliesHostDefaults(t *testing.T) {
	w := httptest.NewRecorder()

	session.SetCookie(w, "sid-1", time.Now().Add(time.Hour), session.CookieOptions{
		Secure: true,
	})

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)

	c := cookies[0]
	require.Equal(t, session.CookieName, c.Name)
	require.Equal(t, "sid-1", c.Value)
	require.Equal(t, "/", c.Path)
	require.True(t, c.HttpOnly)
	require.True(t, c.Secure)
}

func TestClearCookieExpiresImmediately(t *testing.T) {
	w := httptest.NewRecorder()

	session.ClearCookie(w, session.CookieOptions{Secure: true})

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	require.Empty(t, cookies[0].Value)
	require.Negative(t, cookies[0].MaxAge)
}

func TestGenerateIDIsUniqueAndURLSafe(t *testing.T) {
	a, err := session.GenerateID()
	require.NoError(t, err)
	b, err := session.GenerateID()
	require.NoError(t, err)

	require.NotEqual(t, a, b)
	require.NotContains(t, a, "=")
	require.NotContains(t, a, "+")
	require.NotContains(t, a, "/")
}
