package request

import (
	"context"
	"strings"
	"time"

	"hrportal/internal/domain/attachment"
	"hrportal/internal/platform/cache"
	"hrportal/internal/requestctx"
)

const (
	ResourceRequests = "requests"
	ResourceStats    = "requests.stats"

	StaleTime = 30 * time.Second

	DefaultLimit = 10
	MaxLimit     = 100

	MsgSubmitted     = "Request submitted successfully"
	MsgSubmitFailed  = "Failed to submit request"
	MsgApproved      = "Request approved"
	MsgApproveFailed = "Failed to approve request"
	MsgRejected      = "Request rejected"
	MsgRejectFailed  = "Failed to reject request"
	MsgCancelled     = "Request cancelled"
	MsgCancelFailed  = "Failed to cancel request"
	MsgListFailed    = "Could not load requests"
)

type Service struct {
	Store *Store
	Cache *cache.Cache
	Now   func() time.Time
	// Dependents are other cached resources a decision changes, such as the
	// timesheet list.
	Dependents []string
}

func NewService(store *Store, c *cache.Cache, dependents ...string) *Service {
	return &Service{Store: store, Cache: c, Now: time.Now, Dependents: dependents}
}

func (p ListParams) normalized() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Scope == "" {
		p.Scope = ScopeMine
	}
	return p
}

func (s *Service) List(ctx context.Context, p ListParams) (Page, error) {
	p = p.normalized()
	key := cache.NewKey(ResourceRequests, string(p.Scope), p.Page, p.Limit, p.Status.String(), p.Type.String()).
		Scoped(requestctx.GetSubject(ctx))
	return cache.Query(ctx, s.Cache, key, StaleTime, func(ctx context.Context) (Page, error) {
		return s.Store.List(ctx, p)
	})
}

func (s *Service) Stats(ctx context.Context, scope Scope) (Stats, error) {
	if scope == "" {
		scope = ScopeMine
	}
	key := cache.NewKey(ResourceStats, string(scope)).Scoped(requestctx.GetSubject(ctx))
	return cache.Query(ctx, s.Cache, key, StaleTime, func(ctx context.Context) (Stats, error) {
		return s.Store.Stats(ctx, scope)
	})
}

func (s *Service) SubmitTimeOff(ctx context.Context, form TimeOffForm, files attachment.List) (Request, string, error) {
	if err := form.Validate(s.Now(), files).Err(); err != nil {
		return Request{}, "", err
	}
	created, err := s.Store.Create(ctx, form.Fields(), files)
	if err != nil {
		return Request{}, "", err
	}
	s.invalidate(ctx)
	return created, MsgSubmitted, nil
}

func (s *Service) Approve(ctx context.Context, id string) (string, error) {
	if err := s.Store.Approve(ctx, id); err != nil {
		return "", err
	}
	s.invalidate(ctx)
	return MsgApproved, nil
}

// Reject re-checks the dialog's reason before the single POST.
func (s *Service) Reject(ctx context.Context, id string, form RejectForm) (string, error) {
	if err := form.Validate().Err(); err != nil {
		return "", err
	}
	if err := s.Store.Reject(ctx, id, strings.TrimSpace(form.Reason)); err != nil {
		return "", err
	}
	s.invalidate(ctx)
	return MsgRejected, nil
}

func (s *Service) Cancel(ctx context.Context, id string) (string, error) {
	if err := s.Store.Cancel(ctx, id); err != nil {
		return "", err
	}
	s.invalidate(ctx)
	return MsgCancelled, nil
}

func (s *Service) invalidate(ctx context.Context) {
	resources := append([]string{ResourceRequests, ResourceStats}, s.Dependents...)
	s.Cache.Forget(ctx, resources...)
}
