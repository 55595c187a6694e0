package request

import (
	"context"
	"net/url"
	"strconv"

	"hrportal/internal/domain/attachment"
	"hrportal/internal/platform/backend"
)

const basePath = "/api/v1/requests"

type Store struct {
	API *backend.Client
}

func NewStore(api *backend.Client) *Store {
	return &Store{API: api}
}

func (s *Store) List(ctx context.Context, p ListParams) (Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	if p.Status.Valid() {
		q.Set("status", p.Status.String())
	}
	if p.Type.Valid() {
		q.Set("type", p.Type.String())
	}
	if p.Scope != "" {
		q.Set("scope", string(p.Scope))
	}
	var out Page
	if err := s.API.Get(ctx, basePath, q, &out); err != nil {
		return Page{}, err
	}
	return out.Normalize(), nil
}

func (s *Store) Stats(ctx context.Context, scope Scope) (Stats, error) {
	q := url.Values{}
	if scope != "" {
		q.Set("scope", string(scope))
	}
	var out Stats
	err := s.API.Get(ctx, basePath+"/stats", q, &out)
	return out, err
}

func (s *Store) Create(ctx context.Context, fields map[string]string, files attachment.List) (Request, error) {
	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	var out Request
	err := s.API.PostMultipart(ctx, basePath, values, files.BackendFiles("attachments"), &out)
	return out, err
}

func (s *Store) Approve(ctx context.Context, id string) error {
	return s.API.Post(ctx, basePath+"/"+url.PathEscape(id)+"/approve", nil, nil)
}

type rejectBody struct {
	Reason string `json:"reason"`
}

func (s *Store) Reject(ctx context.Context, id, reason string) error {
	return s.API.Post(ctx, basePath+"/"+url.PathEscape(id)+"/reject", rejectBody{Reason: reason}, nil)
}

func (s *Store) Cancel(ctx context.Context, id string) error {
	return s.API.Post(ctx, basePath+"/"+url.PathEscape(id)+"/cancel", nil, nil)
}
