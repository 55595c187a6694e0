package timesheet

import (
	"context"
	"net/url"
	"strconv"

	"hrportal/internal/platform/backend"
)

const basePath = "/api/v1/timesheet"

type Store struct {
	API *backend.Client
}

func NewStore(api *backend.Client) *Store {
	return &Store{API: api}
}

func (s *Store) List(ctx context.Context, page, limit int) (Page, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	var out Page
	if err := s.API.Get(ctx, basePath, q, &out); err != nil {
		return Page{}, err
	}
	return out.Normalize(), nil
}

func (s *Store) Get(ctx context.Context, id string) (Timesheet, error) {
	var out Timesheet
	err := s.API.Get(ctx, basePath+"/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (s *Store) Create(ctx context.Context, in Payload) (Timesheet, error) {
	var out Timesheet
	err := s.API.Post(ctx, basePath, in, &out)
	return out, err
}

func (s *Store) Update(ctx context.Context, id string, in Payload) (Timesheet, error) {
	var out Timesheet
	err := s.API.Put(ctx, basePath+"/"+url.PathEscape(id), in, &out)
	return out, err
}
