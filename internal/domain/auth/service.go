package auth

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"hrportal/internal/platform/backend"
)

const (
	MsgLoginFailed         = "Invalid email or password"
	MsgForgotPasswordSent  = "If the address is registered, a reset link is on its way."
	MsgForgotPasswordError = "Could not request a password reset"
)

type Service struct {
	Store *Store
	Codec *SessionCodec
}

func NewService(store *Store, codec *SessionCodec) *Service {
	return &Service{Store: store, Codec: codec}
}

// Login exchanges credentials for a backend token and returns the session with
// its signed cookie value.
func (s *Service) Login(ctx context.Context, form LoginForm) (Session, string, error) {
	if err := form.Validate().Err(); err != nil {
		return Session{}, "", err
	}
	resp, err := s.Store.Login(ctx, LoginRequest{Email: strings.TrimSpace(form.Email), Password: form.Password})
	if err != nil {
		return Session{}, "", err
	}
	if resp.AccessToken == "" || resp.User.ID == "" {
		return Session{}, "", errors.New("login response without token")
	}
	session := Session{
		UserID:       resp.User.ID,
		EmployeeID:   resp.User.EmployeeID,
		Email:        resp.User.Email,
		FullName:     resp.User.FullName,
		Role:         ParseRole(resp.User.Role),
		BackendToken: resp.AccessToken,
	}
	cookie, expires, err := s.Codec.Encode(session)
	if err != nil {
		return Session{}, "", err
	}
	session.ExpiresAt = expires
	return session, cookie, nil
}

func (s *Service) ForgotPassword(ctx context.Context, form ForgotPasswordForm) (string, error) {
	if err := form.Validate().Err(); err != nil {
		return "", err
	}
	if err := s.Store.ForgotPassword(ctx, strings.TrimSpace(form.Email)); err != nil {
		return "", err
	}
	return MsgForgotPasswordSent, nil
}

// LoginMessage maps a login failure to what the form shows.
func LoginMessage(err error) string {
	var be *backend.Error
	if errors.As(err, &be) && (be.Status == 400 || be.Status == 401) {
		return backend.MessageOr(err, MsgLoginFailed)
	}
	return backend.MessageOr(err, "Sign in is unavailable right now")
}
