package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrportal/internal/platform/backend"
	"hrportal/internal/platform/logging"
	"hrportal/internal/platform/validation"
)

func newTestService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	client, err := backend.New("credits", srv.URL, time.Second, backend.WithLogger(logging.Discard()))
	require.NoError(t, err)
	return NewService(NewStore(client), newTestCodec(t))
}

func TestLogin(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)
		var body LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "jane@x.com", body.Email)
		_ = json.NewEncoder(w).Encode(LoginResponse{
			AccessToken: "abc",
			User:        LoginUser{ID: "u1", EmployeeID: "e1", Email: "jane@x.com", FullName: "Jane Doe", Role: "manager"},
		})
	})

	session, cookie, err := svc.Login(t.Context(), LoginForm{Email: " jane@x.com ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, RoleManager, session.Role)
	assert.Equal(t, "abc", session.BackendToken)

	decoded, err := svc.Codec.Decode(cookie)
	require.NoError(t, err)
	assert.Equal(t, "u1", decoded.UserID)
}

func TestLoginValidationSkipsBackend(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })

	_, _, err := svc.Login(t.Context(), LoginForm{Email: "jane@x.com"})
	verr, ok := validation.As(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields(), "password")
	assert.Zero(t, calls.Load())
}

func TestLoginRejected(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{}`))
	})
	_, _, err := svc.Login(t.Context(), LoginForm{Email: "jane@x.com", Password: "bad"})
	require.Error(t, err)
	assert.Equal(t, MsgLoginFailed, LoginMessage(err))
}

func TestForgotPassword(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/forgot-password", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})
	msg, err := svc.ForgotPassword(t.Context(), ForgotPasswordForm{Email: "jane@x.com"})
	require.NoError(t, err)
	assert.Equal(t, MsgForgotPasswordSent, msg)

	_, err = svc.ForgotPassword(t.Context(), ForgotPasswordForm{Email: "nope"})
	_, ok := validation.As(err)
	assert.True(t, ok)
}
