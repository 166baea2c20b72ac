package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestAdminPolicy(t *testing.T) {
	policy := NewAdminPolicy([]string{" Owner@Example.com ", "", "editor@example.com"})
	assert.Equal(t, 2, policy.Size())
	assert.True(t, policy.Allows("owner@example.com"))
	assert.True(t, policy.Allows("EDITOR@example.com "))
	assert.False(t, policy.Allows("stranger@example.com"))
	assert.False(t, policy.Allows(""))

	var nilPolicy *AdminPolicy
	assert.False(t, nilPolicy.Allows("owner@example.com"))
	assert.False(t, NewAdminPolicy(nil).Allows("owner@example.com"))
}

func TestNewGoogleProviderRequiresCredentials(t *testing.T) {
	_, err := NewGoogleProvider("", "secret", "")
	assert.ErrorIs(t, err, ErrNotConfigured)

	p, err := NewGoogleProvider("client", "secret", "http://localhost/auth/callback")
	require.NoError(t, err)
	authURL, err := url.Parse(p.AuthCodeURL("xyz"))
	require.NoError(t, err)
	assert.Equal(t, "xyz", authURL.Query().Get("state"))
	assert.Equal(t, "client", authURL.Query().Get("client_id"))
}

func TestGoogleProviderExchange(t *testing.T) {
	verified := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/token":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`)
		case "/userinfo":
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			fmt.Fprintf(w, `{"email":"owner@example.com","email_verified":%t}`, verified)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
		},
		userInfoURL: srv.URL + "/userinfo",
	}

	email, err := p.Exchange(context.Background(), "code")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", email)

	verified = false
	_, err = p.Exchange(context.Background(), "code")
	assert.ErrorIs(t, err, ErrEmailUnverified)
}

func TestNewStateIsRandom(t *testing.T) {
	a, err := NewState()
	require.NoError(t, err)
	b, err := NewState()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.NotEmpty(t, a)
}
