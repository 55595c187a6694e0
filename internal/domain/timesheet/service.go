package timesheet

import (
	"context"
	"time"

	"hrportal/internal/domain/request"
	"hrportal/internal/platform/cache"
	"hrportal/internal/requestctx"
)

const (
	ResourceTimesheets = "timesheets"

	StaleTime = 30 * time.Second

	MsgSubmitted    = "Timesheet submitted successfully"
	MsgSubmitFailed = "Failed to submit timesheet"
	MsgUpdated      = "Timesheet updated successfully"
	MsgUpdateFailed = "Failed to update timesheet"
	MsgLocked       = "Only pending timesheets can be edited"
	MsgListFailed   = "Could not load timesheets"
)

type Service struct {
	Store *Store
	Cache *cache.Cache
}

func NewService(store *Store, c *cache.Cache) *Service {
	return &Service{Store: store, Cache: c}
}

func (s *Service) List(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > request.MaxLimit {
		limit = request.DefaultLimit
	}
	key := cache.NewKey(ResourceTimesheets, page, limit).Scoped(requestctx.GetSubject(ctx))
	return cache.Query(ctx, s.Cache, key, StaleTime, func(ctx context.Context) (Page, error) {
		return s.Store.List(ctx, page, limit)
	})
}

func (s *Service) Get(ctx context.Context, id string) (Timesheet, error) {
	key := cache.NewKey(ResourceTimesheets, "id", id).Scoped(requestctx.GetSubject(ctx))
	return cache.Query(ctx, s.Cache, key, StaleTime, func(ctx context.Context) (Timesheet, error) {
		return s.Store.Get(ctx, id)
	})
}

// Submit files a weekly sheet. It shows up in the approval queue as a
// TIMESHEET_WEEKLY request, so request caches are dropped too.
func (s *Service) Submit(ctx context.Context, form Form) (Timesheet, string, error) {
	if err := form.Validate().Err(); err != nil {
		return Timesheet{}, "", err
	}
	created, err := s.Store.Create(ctx, form.Payload())
	if err != nil {
		return Timesheet{}, "", err
	}
	s.Cache.Forget(ctx, ResourceTimesheets, request.ResourceRequests, request.ResourceStats)
	return created, MsgSubmitted, nil
}

func (s *Service) Update(ctx context.Context, id string, form Form) (Timesheet, string, error) {
	if err := form.Validate().Err(); err != nil {
		return Timesheet{}, "", err
	}
	updated, err := s.Store.Update(ctx, id, form.Payload())
	if err != nil {
		return Timesheet{}, "", err
	}
	s.Cache.Forget(ctx, ResourceTimesheets, request.ResourceRequests)
	return updated, MsgUpdated, nil
}
