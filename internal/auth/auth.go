// Package auth resolves an administrator identity through OAuth and checks it
// against the configured allow-list.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

var (
	ErrNotConfigured   = errors.New("oauth provider is not configured")
	ErrEmailUnverified = errors.New("oauth account email is not verified")
)

// Provider runs the authorization-code flow and returns the signed-in email.
type Provider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

// GoogleUserInfoURL is the OpenID userinfo endpoint queried after the code exchange.
const GoogleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleProvider implements Provider against Google accounts.
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleProvider returns ErrNotConfigured when the client id or secret is missing.
func NewGoogleProvider(clientID, clientSecret, redirectURL string) (*GoogleProvider, error) {
	if strings.TrimSpace(clientID) == "" || strings.TrimSpace(clientSecret) == "" {
		return nil, ErrNotConfigured
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"openid", "email"},
		},
		userInfoURL: GoogleUserInfoURL,
	}, nil
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

func (p *GoogleProvider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.config.Exchange(ctx, code)
	if err != nil {
		return "", fmt.Errorf("exchange oauth code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.config.Client(ctx, token).Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("fetch userinfo: status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("decode userinfo: %w", err)
	}
	if !info.EmailVerified {
		return "", ErrEmailUnverified
	}
	return info.Email, nil
}

// AdminPolicy decides which signed-in emails may administer the site.
type AdminPolicy struct {
	emails map[string]struct{}
}

// NewAdminPolicy builds a case-insensitive allow-list. Blank entries are ignored.
func NewAdminPolicy(emails []string) *AdminPolicy {
	set := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		if normalized := normalizeEmail(email); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return &AdminPolicy{emails: set}
}

// Allows reports whether email is on the allow-list. An empty list allows nobody.
func (p *AdminPolicy) Allows(email string) bool {
	if p == nil {
		return false
	}
	normalized := normalizeEmail(email)
	if normalized == "" {
		return false
	}
	_, ok := p.emails[normalized]
	return ok
}

// Size returns the number of allowed emails.
func (p *AdminPolicy) Size() int {
	if p == nil {
		return 0
	}
	return len(p.emails)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewState returns a random value for the OAuth state parameter.
func NewState() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate oauth state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
