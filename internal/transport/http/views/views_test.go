package views

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/domain/auth"
	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/crypto"
	"hrportal/internal/platform/logging"
	"hrportal/internal/platform/validation"
	"hrportal/internal/transport/http/flash"
	"hrportal/internal/transport/http/middleware"
)

func newRenderer(t *testing.T, demo bool) *Renderer {
	t.Helper()
	sealer, err := crypto.New("", "test-secret")
	require.NoError(t, err)
	sessions := middleware.NewSessions(auth.NewSessionCodec("test-secret", sealer, time.Hour), false, logging.Discard())
	r, err := New(sessions, logging.Discard(), demo)
	require.NoError(t, err)
	return r
}

func TestNewParsesEveryPage(t *testing.T) {
	r := newRenderer(t, false)
	for _, name := range pageNames {
		assert.Contains(t, r.pages, name)
	}
}

func TestRenderUnknownTemplate(t *testing.T) {
	r := newRenderer(t, false)
	rec := httptest.NewRecorder()
	r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, "missing", Page{})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRenderShowsAndClearsFlash(t *testing.T) {
	r := newRenderer(t, false)

	set := httptest.NewRecorder()
	flash.Set(set, flash.KindSuccess, "Saved")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range set.Result().Cookies() {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	r.Status(rec, req, http.StatusNotFound, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Page not found")
	assert.Contains(t, body, "toast-success")
	assert.Contains(t, body, "Saved")

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == flash.CookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "flash cookie should be expired after display")
}

func TestNavFollowsRole(t *testing.T) {
	r := newRenderer(t, true)

	keys := func(items []NavItem) []string {
		out := make([]string, 0, len(items))
		for _, item := range items {
			out = append(out, item.Key)
		}
		return out
	}

	employee := keys(r.nav(auth.Session{Role: auth.RoleEmployee}))
	assert.NotContains(t, employee, "employees")
	assert.NotContains(t, employee, "team")
	assert.Contains(t, employee, "demo")

	hr := keys(r.nav(auth.Session{Role: auth.RoleHR}))
	assert.Equal(t, "dashboard", hr[0])
	assert.Equal(t, "employees", hr[1])
	assert.Contains(t, hr, "team")
}

func TestExpiredRedirectsToLogin(t *testing.T) {
	r := newRenderer(t, false)
	req := httptest.NewRequest(http.MethodGet, "/requests?page=2", nil)
	rec := httptest.NewRecorder()

	handled := r.Expired(rec, req, &backend.Error{Backend: "primary", Status: http.StatusUnauthorized})
	require.True(t, handled)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next=%2Frequests%3Fpage%3D2", rec.Header().Get("Location"))

	var sawClear, sawFlash bool
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case middleware.SessionCookie:
			sawClear = c.MaxAge < 0
		case flash.CookieName:
			sawFlash = true
		}
	}
	assert.True(t, sawClear)
	assert.True(t, sawFlash)
}

func TestExpiredIgnoresOtherErrors(t *testing.T) {
	r := newRenderer(t, false)
	rec := httptest.NewRecorder()
	handled := r.Expired(rec, httptest.NewRequest(http.MethodGet, "/", nil), &backend.Error{Status: http.StatusForbidden})
	assert.False(t, handled)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFailUsesBackendMessage(t *testing.T) {
	r := newRenderer(t, false)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/requests/r1/approve", nil)

	r.Fail(rec, req, "/requests", &backend.Error{Status: http.StatusConflict, Message: "Request already decided"}, "Could not approve")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/requests", rec.Header().Get("Location"))

	next := httptest.NewRequest(http.MethodGet, "/requests", nil)
	for _, c := range rec.Result().Cookies() {
		next.AddCookie(c)
	}
	msg, ok := flash.Pop(httptest.NewRecorder(), next)
	require.True(t, ok)
	assert.Equal(t, flash.KindError, msg.Kind)
	assert.Equal(t, "Request already decided", msg.Text)
}

func TestUnavailableMapsBackendNotFound(t *testing.T) {
	r := newRenderer(t, false)

	rec := httptest.NewRecorder()
	r.Unavailable(rec, httptest.NewRequest(http.MethodGet, "/employees/x", nil), &backend.Error{Status: http.StatusNotFound}, "Could not load employee")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.Unavailable(rec, httptest.NewRequest(http.MethodGet, "/employees/x", nil), &backend.Error{Status: http.StatusInternalServerError}, "Could not load employee")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "Could not load employee"))
}

func TestWithFormSplitsFieldAndBanner(t *testing.T) {
	v := validation.New()
	v.Add("email", "is required")
	v.Add("", "Something is off")

	p := Page{}.WithForm(v.Err(), "fallback")
	assert.Equal(t, "is required", p.FieldError("email"))
	assert.Equal(t, "Something is off", p.Error)

	p = Page{}.WithForm(&backend.Error{Status: http.StatusBadGateway}, "fallback")
	assert.Empty(t, p.Errors)
	assert.Equal(t, "fallback", p.Error)
}
