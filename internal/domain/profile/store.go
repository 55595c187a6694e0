package profile

import (
	"context"
	"net/url"

	"hrportal/internal/platform/backend"
)

// Store covers the caller's own records. Personal data and education live on
// the primary backend, bank accounts on the credits backend.
type Store struct {
	Primary *backend.Client
	Credits *backend.Client
}

func NewStore(primary, credits *backend.Client) *Store {
	return &Store{Primary: primary, Credits: credits}
}

func (s *Store) Personal(ctx context.Context) (Personal, error) {
	var out Personal
	err := s.Primary.Get(ctx, "/api/Employees/me", nil, &out)
	return out, err
}

func (s *Store) UpdatePersonal(ctx context.Context, in Personal) error {
	return s.Primary.Put(ctx, "/api/Employees/me/personal", in, nil)
}

func (s *Store) Education(ctx context.Context) ([]Education, error) {
	var out []Education
	if err := s.Primary.Get(ctx, "/api/Education/me", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateEducation(ctx context.Context, in EducationPayload) error {
	return s.Primary.Post(ctx, "/api/Education", in, nil)
}

func (s *Store) UpdateEducation(ctx context.Context, id string, in EducationPayload) error {
	return s.Primary.Put(ctx, "/api/Education/"+url.PathEscape(id), in, nil)
}

func (s *Store) DeleteEducation(ctx context.Context, id string) error {
	return s.Primary.Delete(ctx, "/api/Education/"+url.PathEscape(id), nil)
}

func (s *Store) BankAccounts(ctx context.Context) ([]BankAccount, error) {
	var out []BankAccount
	if err := s.Credits.Get(ctx, "/api/bankaccount/me", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) CreateBankAccount(ctx context.Context, in BankAccountPayload) error {
	return s.Credits.Post(ctx, "/api/bankaccount", in, nil)
}

func (s *Store) UpdateBankAccount(ctx context.Context, id string, in BankAccountPayload) error {
	return s.Credits.Put(ctx, "/api/bankaccount/"+url.PathEscape(id), in, nil)
}

func (s *Store) DeleteBankAccount(ctx context.Context, id string) error {
	return s.Credits.Delete(ctx, "/api/bankaccount/"+url.PathEscape(id), nil)
}
