package lookup

import (
	"context"

	"hrportal/internal/platform/backend"
)

type Store struct {
	API *backend.Client
}

func NewStore(api *backend.Client) *Store {
	return &Store{API: api}
}

func (s *Store) list(ctx context.Context, path string) ([]Item, error) {
	var raw []wireItem
	if err := s.API.Get(ctx, path, nil, &raw); err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(raw))
	for _, w := range raw {
		out = append(out, w.item())
	}
	return out, nil
}

func (s *Store) Departments(ctx context.Context) ([]Item, error) {
	return s.list(ctx, "/api/Departments")
}

func (s *Store) Positions(ctx context.Context) ([]Item, error) {
	return s.list(ctx, "/api/Positions")
}

func (s *Store) JobLevels(ctx context.Context) ([]Item, error) {
	return s.list(ctx, "/api/JobLevels")
}

func (s *Store) EmploymentTypes(ctx context.Context) ([]Item, error) {
	return s.list(ctx, "/api/EmploymentTypes")
}

func (s *Store) TimeTypes(ctx context.Context) ([]Item, error) {
	return s.list(ctx, "/api/TimeTypes")
}
