package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/crypto"
	"hrportal/internal/platform/logging"
	"hrportal/internal/requestctx"
)

func newSessions(t *testing.T) *Sessions {
	t.Helper()
	sealer, err := crypto.New("", "test-secret")
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	return NewSessions(auth.NewSessionCodec("test-secret", sealer, time.Hour), false, logging.Discard())
}

func TestLoadSetsSessionTokenAndSubject(t *testing.T) {
	sessions := newSessions(t)
	value, _, err := sessions.Codec.Encode(auth.Session{UserID: "u1", Role: auth.RoleHR, BackendToken: "backend-token"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	called := false
	handler := sessions.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		session, ok := GetSession(r.Context())
		if !ok {
			t.Fatal("expected session in context")
		}
		if session.UserID != "u1" || session.Role != auth.RoleHR {
			t.Fatalf("unexpected session: %+v", session)
		}
		if got := requestctx.GetBearerToken(r.Context()); got != "backend-token" {
			t.Fatalf("unexpected bearer token %q", got)
		}
		if got := requestctx.GetSubject(r.Context()); got != "u1" {
			t.Fatalf("unexpected subject %q", got)
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: value})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !called {
		t.Fatal("handler not called")
	}
}

func TestLoadClearsBadCookie(t *testing.T) {
	sessions := newSessions(t)
	handler := sessions.Load(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSession(r.Context()); ok {
			t.Fatal("did not expect a session")
		}
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "not-a-jwt"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != SessionCookie || cookies[0].MaxAge != -1 {
		t.Fatalf("expected session cookie to be cleared, got %+v", cookies)
	}
}

func TestRequireSessionRedirectsPages(t *testing.T) {
	handler := RequireSession(http.HandlerFunc(noContent))

	req := httptest.NewRequest(http.MethodGet, "/requests?page=2", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login?next=%2Frequests%3Fpage%3D2" {
		t.Fatalf("unexpected location %q", loc)
	}

	api := httptest.NewRequest(http.MethodGet, "/api/search/supervisors", nil)
	apiRec := httptest.NewRecorder()
	handler.ServeHTTP(apiRec, api)
	if apiRec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for json route, got %d", apiRec.Code)
	}
}

func TestRequireCapability(t *testing.T) {
	forbidden := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	handler := RequireCapability(auth.CapOnboard, forbidden)(http.HandlerFunc(noContent))

	cases := []struct {
		role auth.Role
		want int
	}{
		{auth.RoleEmployee, http.StatusForbidden},
		{auth.RoleManager, http.StatusForbidden},
		{auth.RoleHR, http.StatusNoContent},
		{auth.RoleAdmin, http.StatusNoContent},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/employees/onboard", nil)
		req = req.WithContext(WithSession(req.Context(), auth.Session{UserID: "u", Role: tc.role}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.role, tc.want, rec.Code)
		}
	}
}

func TestLoginURLRejectsOffsiteTargets(t *testing.T) {
	for _, target := range []string{"", "/", "//evil.example", "https://evil.example"} {
		if got := LoginURL(target); got != "/login" {
			t.Fatalf("LoginURL(%q) = %q", target, got)
		}
	}
}

func TestLocalPath(t *testing.T) {
	cases := map[string]string{
		"/requests?page=2": "/requests?page=2",
		"":                 "/",
		"//evil.example":   "/",
		"/\\evil.example":  "/",
		"http://x":         "/",
	}
	for in, want := range cases {
		if got := LocalPath(in); got != want {
			t.Fatalf("LocalPath(%q) = %q, want %q", in, got, want)
		}
	}
}
