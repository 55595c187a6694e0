package lookup

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"hrportal/internal/platform/cache"
)

const (
	ResourceDepartments     = "departments"
	ResourcePositions       = "positions"
	ResourceJobLevels       = "job-levels"
	ResourceEmploymentTypes = "employment-types"
	ResourceTimeTypes       = "time-types"

	OrgStaleTime  = 10 * time.Minute
	TypeStaleTime = 5 * time.Minute
)

type Service struct {
	Store *Store
	Cache *cache.Cache
}

func NewService(store *Store, c *cache.Cache) *Service {
	return &Service{Store: store, Cache: c}
}

func (s *Service) Departments(ctx context.Context) ([]Item, error) {
	return cache.Query(ctx, s.Cache, cache.NewKey(ResourceDepartments), OrgStaleTime, s.Store.Departments)
}

func (s *Service) Positions(ctx context.Context) ([]Item, error) {
	return cache.Query(ctx, s.Cache, cache.NewKey(ResourcePositions), OrgStaleTime, s.Store.Positions)
}

func (s *Service) JobLevels(ctx context.Context) ([]Item, error) {
	return cache.Query(ctx, s.Cache, cache.NewKey(ResourceJobLevels), OrgStaleTime, s.Store.JobLevels)
}

func (s *Service) EmploymentTypes(ctx context.Context) ([]Item, error) {
	return cache.Query(ctx, s.Cache, cache.NewKey(ResourceEmploymentTypes), TypeStaleTime, s.Store.EmploymentTypes)
}

func (s *Service) TimeTypes(ctx context.Context) ([]Item, error) {
	return cache.Query(ctx, s.Cache, cache.NewKey(ResourceTimeTypes), TypeStaleTime, s.Store.TimeTypes)
}

// All loads the five lists concurrently. The first failure cancels the rest.
func (s *Service) All(ctx context.Context) (Set, error) {
	var set Set
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { set.Departments, err = s.Departments(gctx); return })
	g.Go(func() (err error) { set.Positions, err = s.Positions(gctx); return })
	g.Go(func() (err error) { set.JobLevels, err = s.JobLevels(gctx); return })
	g.Go(func() (err error) { set.EmploymentTypes, err = s.EmploymentTypes(gctx); return })
	g.Go(func() (err error) { set.TimeTypes, err = s.TimeTypes(gctx); return })
	if err := g.Wait(); err != nil {
		return Set{}, err
	}
	return set, nil
}
