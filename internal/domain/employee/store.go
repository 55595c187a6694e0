package employee

import (
	"context"
	"net/url"
	"strconv"

	"hrportal/internal/platform/backend"
)

type Store struct {
	API *backend.Client
}

func NewStore(api *backend.Client) *Store {
	return &Store{API: api}
}

func (s *Store) List(ctx context.Context, p ListParams) (Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("pageSize", strconv.Itoa(p.PageSize))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.DepartmentID > 0 {
		q.Set("departmentId", strconv.Itoa(p.DepartmentID))
	}
	if p.Status.Valid() {
		q.Set("status", p.Status.String())
	}
	var out Page
	if err := s.API.Get(ctx, "/api/Employees", q, &out); err != nil {
		return Page{}, err
	}
	return out.Normalize(), nil
}

func (s *Store) Get(ctx context.Context, id string) (Employee, error) {
	var out Employee
	err := s.API.Get(ctx, "/api/Employees/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (s *Store) Me(ctx context.Context) (Employee, error) {
	var out Employee
	err := s.API.Get(ctx, "/api/Employees/me", nil, &out)
	return out, err
}

func (s *Store) CreateInitialProfile(ctx context.Context, in InitialProfile) (Employee, error) {
	var out Employee
	err := s.API.Post(ctx, "/api/Employees/initial-profile", in, &out)
	return out, err
}

func (s *Store) Update(ctx context.Context, id string, in PlacementUpdate) error {
	return s.API.Put(ctx, "/api/Employees/"+url.PathEscape(id), in, nil)
}

func (s *Store) UpdateStatus(ctx context.Context, id string, in StatusUpdate) error {
	return s.API.Put(ctx, "/api/Employees/"+url.PathEscape(id)+"/status", in, nil)
}

func (s *Store) UpdateSupervisors(ctx context.Context, id string, in SupervisorUpdate) error {
	return s.API.Put(ctx, "/api/Employees/"+url.PathEscape(id)+"/supervisors", in, nil)
}

func (s *Store) Supervisors(ctx context.Context, kind SupervisorKind, search string) ([]Person, error) {
	path := "/api/Employees/managers"
	if kind == KindHR {
		path = "/api/Employees/hr"
	}
	q := url.Values{}
	if search != "" {
		q.Set("search", search)
	}
	var out []Person
	if err := s.API.Get(ctx, path, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
