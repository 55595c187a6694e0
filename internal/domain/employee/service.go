package employee

import (
	"context"
	"strings"
	"time"

	"hrportal/internal/platform/cache"
	"hrportal/internal/requestctx"
)

const (
	ResourceEmployees   = "employees"
	ResourceEmployee    = "employee"
	ResourceSupervisors = "employees.supervisors"

	StaleTime = 30 * time.Second

	MsgOnboarded          = "Employee onboarded successfully!"
	MsgOnboardFailed      = "Failed to onboard employee"
	MsgUpdated            = "Employee updated successfully"
	MsgUpdateFailed       = "Failed to update employee"
	MsgStatusUpdated      = "Employee status updated"
	MsgStatusFailed       = "Failed to update employee status"
	MsgSupervisorsUpdated = "Supervisors reassigned successfully"
	MsgSupervisorsFailed  = "Failed to reassign supervisors"
	MsgListFailed         = "Could not load employees"

	DefaultPageSize = 10
	MaxPageSize     = 100
	maxExportPages  = 50
)

type Service struct {
	Store *Store
	Cache *cache.Cache
	Now   func() time.Time
}

func NewService(store *Store, c *cache.Cache) *Service {
	return &Service{Store: store, Cache: c, Now: time.Now}
}

func scoped(ctx context.Context, resource string, params ...any) cache.Key {
	return cache.NewKey(resource, params...).Scoped(requestctx.GetSubject(ctx))
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

func (s *Service) List(ctx context.Context, p ListParams) (Page, error) {
	p = p.normalized()
	key := scoped(ctx, ResourceEmployees, p.Page, p.PageSize, p.Search, p.DepartmentID, p.Status.String())
	return cache.Query(ctx, s.Cache, key, StaleTime, func(ctx context.Context) (Page, error) {
		return s.Store.List(ctx, p)
	})
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	return cache.Query(ctx, s.Cache, scoped(ctx, ResourceEmployee, id), StaleTime, func(ctx context.Context) (Employee, error) {
		return s.Store.Get(ctx, id)
	})
}

func (s *Service) Me(ctx context.Context) (Employee, error) {
	return cache.Query(ctx, s.Cache, scoped(ctx, ResourceEmployee, "me"), StaleTime, s.Store.Me)
}

// Directory walks every page of the filtered list for export.
func (s *Service) Directory(ctx context.Context, p ListParams) ([]Employee, error) {
	p.PageSize = MaxPageSize
	p.Page = 1
	var out []Employee
	for p.Page <= maxExportPages {
		page, err := s.List(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, page.Data...)
		if p.Page >= page.Pagination.TotalPages || len(page.Data) == 0 {
			break
		}
		p.Page++
	}
	return out, nil
}

func (s *Service) Onboard(ctx context.Context, form OnboardingForm) (Employee, string, error) {
	if err := form.Validate(s.Now()).Err(); err != nil {
		return Employee{}, "", err
	}
	created, err := s.Store.CreateInitialProfile(ctx, form.Payload())
	if err != nil {
		return Employee{}, "", err
	}
	s.Cache.Forget(ctx, ResourceEmployees)
	return created, MsgOnboarded, nil
}

func (s *Service) UpdatePlacement(ctx context.Context, id string, form PlacementForm) (string, error) {
	if err := form.Validate().Err(); err != nil {
		return "", err
	}
	if err := s.Store.Update(ctx, id, form.Payload()); err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ResourceEmployees, ResourceEmployee)
	return MsgUpdated, nil
}

func (s *Service) ChangeStatus(ctx context.Context, id string, form StatusForm) (string, error) {
	if err := form.Validate().Err(); err != nil {
		return "", err
	}
	payload, err := form.Payload()
	if err != nil {
		return "", err
	}
	if err := s.Store.UpdateStatus(ctx, id, payload); err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ResourceEmployees, ResourceEmployee)
	return MsgStatusUpdated, nil
}

func (s *Service) ReassignSupervisors(ctx context.Context, id string, form SupervisorForm) (string, error) {
	if err := form.Validate().Err(); err != nil {
		return "", err
	}
	if err := s.Store.UpdateSupervisors(ctx, id, form.Payload()); err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ResourceEmployees, ResourceEmployee)
	return MsgSupervisorsUpdated, nil
}

// SearchSupervisors returns candidates for the picker. A closed picker never
// reaches the backend.
func (s *Service) SearchSupervisors(ctx context.Context, kind SupervisorKind, gate SearchGate) ([]Person, error) {
	if !gate.Enabled() {
		return []Person{}, nil
	}
	if kind != KindHR {
		kind = KindManager
	}
	term := strings.TrimSpace(gate.Term)
	key := scoped(ctx, ResourceSupervisors, string(kind), term)
	return cache.Query(ctx, s.Cache, key, StaleTime, func(ctx context.Context) ([]Person, error) {
		return s.Store.Supervisors(ctx, kind, term)
	})
}
