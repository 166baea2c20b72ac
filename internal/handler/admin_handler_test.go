package handler_test

import (
	"errors"
	"net/http"
	"testing"
)

type meResponse struct {
	Authenticated bool   `json:"authenticated"`
	Admin         bool   `json:"admin"`
	Email         string `json:"email"`
}

func TestOAuthSignInForAllowedAdmin(t *testing.T) {
	s := newTestServer(t)

	callback := s.signIn(t, "Owner@Example.com")
	if callback.Code != http.StatusFound {
		t.Fatalf("expected redirect after sign-in, got %d: %s", callback.Code, callback.Body.String())
	}
	if loc := callback.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected redirect to /, got %q", loc)
	}

	me := decode[meResponse](t, s.request(t, http.MethodGet, "/auth/me", nil))
	if !me.Admin || me.Email != adminEmail {
		t.Fatalf("expected admin session, got %+v", me)
	}

	if rr := s.request(t, http.MethodPost, "/auth/logout", nil); rr.Code != http.StatusOK {
		t.Fatalf("expected logout 200, got %d", rr.Code)
	}
	me = decode[meResponse](t, s.request(t, http.MethodGet, "/auth/me", nil))
	if me.Admin {
		t.Fatalf("expected session to be cleared, got %+v", me)
	}
}

func TestOAuthRejectsOthers(t *testing.T) {
	s := newTestServer(t)

	if rr := s.signIn(t, "stranger@example.com"); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rr.Code)
	}
	if rr := s.request(t, http.MethodPost, "/api/projects", map[string]any{"title": "x"}); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after rejected sign-in, got %d", rr.Code)
	}

	s.provider.err = errors.New("exchange failed")
	if rr := s.signIn(t, adminEmail); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when the exchange fails, got %d", rr.Code)
	}
}

func TestOAuthCallbackChecksState(t *testing.T) {
	s := newTestServer(t)
	s.provider.email = adminEmail

	if rr := s.request(t, http.MethodGet, "/auth/login", nil); rr.Code != http.StatusFound {
		t.Fatalf("expected login redirect, got %d", rr.Code)
	}
	if rr := s.request(t, http.MethodGet, "/auth/callback?code=ok&state=forged", nil); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a forged state, got %d", rr.Code)
	}
	me := decode[meResponse](t, s.request(t, http.MethodGet, "/auth/me", nil))
	if me.Admin {
		t.Fatalf("forged callback must not sign in")
	}
}

func TestLoginKeepsSafeNext(t *testing.T) {
	s := newTestServer(t)
	s.provider.email = adminEmail

	login := s.request(t, http.MethodGet, "/auth/login?next=/stories/iceland", nil)
	state := mustState(t, login.Header().Get("Location"))
	callback := s.request(t, http.MethodGet, "/auth/callback?code=ok&state="+state, nil)
	if loc := callback.Header().Get("Location"); loc != "/stories/iceland" {
		t.Fatalf("expected redirect to next, got %q", loc)
	}

	login = s.request(t, http.MethodGet, "/auth/login?next=//evil.example", nil)
	state = mustState(t, login.Header().Get("Location"))
	callback = s.request(t, http.MethodGet, "/auth/callback?code=ok&state="+state, nil)
	if loc := callback.Header().Get("Location"); loc != "/" {
		t.Fatalf("expected off-site next to be ignored, got %q", loc)
	}
}
