package credits

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"hrportal/internal/platform/cache"
	"hrportal/internal/platform/export"
	"hrportal/internal/requestctx"
)

const (
	ResourceBalance       = "credits.balance"
	ResourceHistory       = "credits.history"
	ResourceView          = "credits.view"
	ResourceRedeemHistory = "credits.redeem-history"
	ResourceTeam          = "credits.team"
	ResourceSettings      = "credits.settings"

	LedgerStaleTime   = 30 * time.Second
	SettingsStaleTime = 5 * time.Minute
	TeamStaleTime     = time.Minute

	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100

	MsgTransferred    = "Points transferred successfully"
	MsgTransferFailed = "Failed to transfer points"
	MsgRedeemed       = "Redemption requested successfully"
	MsgRedeemFailed   = "Failed to redeem points"
	MsgAwarded        = "Points awarded successfully"
	MsgAwardFailed    = "Failed to award points"
	MsgDeducted       = "Points deducted successfully"
	MsgDeductFailed   = "Failed to deduct points"
	MsgLoadFailed     = "Could not load your credits"
	MsgExportFailed   = "Could not build the statement"
)

// ledgerResources are refreshed after every balance-changing call.
var ledgerResources = []string{ResourceBalance, ResourceHistory, ResourceView, ResourceRedeemHistory, ResourceTeam}

type Service struct {
	Store *Store
	Cache *cache.Cache
	Now   func() time.Time
}

func NewService(store *Store, c *cache.Cache) *Service {
	return &Service{Store: store, Cache: c, Now: time.Now}
}

func mine(ctx context.Context, resource string, params ...any) cache.Key {
	return cache.NewKey(resource, params...).Scoped(requestctx.GetSubject(ctx))
}

func (s *Service) View(ctx context.Context) (View, error) {
	return cache.Query(ctx, s.Cache, mine(ctx, ResourceView), LedgerStaleTime, s.Store.View)
}

func (s *Service) Balance(ctx context.Context) (Balance, error) {
	return cache.Query(ctx, s.Cache, mine(ctx, ResourceBalance), LedgerStaleTime, s.Store.Balance)
}

func (s *Service) History(ctx context.Context, page, limit int) (HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return cache.Query(ctx, s.Cache, mine(ctx, ResourceHistory, page, limit), LedgerStaleTime, func(ctx context.Context) (HistoryPage, error) {
		return s.Store.History(ctx, page, limit)
	})
}

// Settings are the same for every caller.
func (s *Service) Settings(ctx context.Context) (Settings, error) {
	return cache.Query(ctx, s.Cache, cache.NewKey(ResourceSettings), SettingsStaleTime, s.Store.Settings)
}

func (s *Service) Team(ctx context.Context) ([]TeamMember, error) {
	return cache.Query(ctx, s.Cache, mine(ctx, ResourceTeam), TeamStaleTime, s.Store.Team)
}

func (s *Service) RedeemHistory(ctx context.Context) ([]Redemption, error) {
	return cache.Query(ctx, s.Cache, mine(ctx, ResourceRedeemHistory), LedgerStaleTime, s.Store.RedeemHistory)
}

// Limits loads the balance and settings a transfer or redemption is checked
// against.
func (s *Service) Limits(ctx context.Context) (Limits, error) {
	var l Limits
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.Balance(gctx)
		l.Balance = b.Points
		return err
	})
	g.Go(func() error {
		st, err := s.Settings(gctx)
		l.Settings = st
		return err
	})
	if err := g.Wait(); err != nil {
		return Limits{}, err
	}
	return l, nil
}

// ReviewTransfer validates a transfer for the confirmation page without
// sending it.
func (s *Service) ReviewTransfer(ctx context.Context, form TransferForm) (Limits, error) {
	l, err := s.Limits(ctx)
	if err != nil {
		return Limits{}, err
	}
	return l, form.Validate(l).Err()
}

func (s *Service) Transfer(ctx context.Context, form TransferForm) (string, error) {
	if _, err := s.ReviewTransfer(ctx, form); err != nil {
		return "", err
	}
	if err := s.Store.Transfer(ctx, form.Payload()); err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ledgerResources...)
	return MsgTransferred, nil
}

func (s *Service) ReviewRedeem(ctx context.Context, form RedeemForm) (Limits, error) {
	l, err := s.Limits(ctx)
	if err != nil {
		return Limits{}, err
	}
	return l, form.Validate(l).Err()
}

func (s *Service) Redeem(ctx context.Context, form RedeemForm) (string, error) {
	if _, err := s.ReviewRedeem(ctx, form); err != nil {
		return "", err
	}
	if err := s.Store.Redeem(ctx, form.Payload()); err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ledgerResources...)
	return MsgRedeemed, nil
}

func (s *Service) Award(ctx context.Context, form AdjustForm) (string, error) {
	if err := form.Validate().Err(); err != nil {
		return "", err
	}
	if err := s.Store.Award(ctx, form.Payload()); err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ledgerResources...)
	return MsgAwarded, nil
}

func (s *Service) Deduct(ctx context.Context, form AdjustForm) (string, error) {
	if err := form.Validate().Err(); err != nil {
		return "", err
	}
	if err := s.Store.Deduct(ctx, form.Payload()); err != nil {
		return "", err
	}
	s.Cache.Forget(ctx, ledgerResources...)
	return MsgDeducted, nil
}

// Statement renders the caller's recent movements as a PDF.
func (s *Service) Statement(ctx context.Context, holder string) ([]byte, error) {
	view, err := s.View(ctx)
	if err != nil {
		return nil, err
	}
	return export.PDF(StatementTable(holder, view, s.Now()))
}
