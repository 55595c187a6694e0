package credits

import (
	"context"
	"net/url"
	"strconv"

	"hrportal/internal/platform/backend"
)

// Store talks to the credits backend. Every ledger rule is enforced there.
type Store struct {
	Client *backend.Client
}

func NewStore(client *backend.Client) *Store {
	return &Store{Client: client}
}

func (s *Store) View(ctx context.Context) (View, error) {
	var out View
	if err := s.Client.Get(ctx, "/api/credits/view", nil, &out); err != nil {
		return View{}, err
	}
	if out.History == nil {
		out.History = []HistoryItem{}
	}
	return out, nil
}

func (s *Store) Balance(ctx context.Context) (Balance, error) {
	var out Balance
	err := s.Client.Get(ctx, "/api/credits/balance", nil, &out)
	return out, err
}

func (s *Store) History(ctx context.Context, page, limit int) (HistoryPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var out HistoryPage
	if err := s.Client.Get(ctx, "/api/credits/history", q, &out); err != nil {
		return HistoryPage{}, err
	}
	return out.Normalize(), nil
}

func (s *Store) Settings(ctx context.Context) (Settings, error) {
	var out Settings
	err := s.Client.Get(ctx, "/api/credits/settings", nil, &out)
	return out, err
}

func (s *Store) Team(ctx context.Context) ([]TeamMember, error) {
	var out []TeamMember
	if err := s.Client.Get(ctx, "/api/credits/team", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) RedeemHistory(ctx context.Context) ([]Redemption, error) {
	var out []Redemption
	if err := s.Client.Get(ctx, "/api/credits/redeem/history", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Transfer(ctx context.Context, in TransferPayload) error {
	return s.Client.Post(ctx, "/api/credits/transfer", in, nil)
}

func (s *Store) Redeem(ctx context.Context, in RedeemPayload) error {
	return s.Client.Post(ctx, "/api/credits/redeem", in, nil)
}

func (s *Store) Award(ctx context.Context, in AdjustPayload) error {
	return s.Client.Post(ctx, "/api/credits/award", in, nil)
}

func (s *Store) Deduct(ctx context.Context, in AdjustPayload) error {
	return s.Client.Post(ctx, "/api/credits/deduct", in, nil)
}
