package auth

import (
	"context"

	"hrportal/internal/platform/backend"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginUser struct {
	ID         string `json:"id"`
	EmployeeID string `json:"employeeId"`
	Email      string `json:"email"`
	FullName   string `json:"fullName"`
	Role       string `json:"role"`
}

type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	User        LoginUser `json:"user"`
}

// Store talks to the credits backend's auth endpoints.
type Store struct {
	API *backend.Client
}

func NewStore(api *backend.Client) *Store {
	return &Store{API: api}
}

func (s *Store) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	var out LoginResponse
	err := s.API.Post(ctx, "/auth/login", req, &out)
	return out, err
}

func (s *Store) ForgotPassword(ctx context.Context, email string) error {
	return s.API.Post(ctx, "/auth/forgot-password", map[string]string{"email": email}, nil)
}
