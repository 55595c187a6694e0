package shared

import (
	"net/url"
	"strconv"
)

// Pager links a table's pages back to the same listing with its filters.
type Pager struct {
	Meta
	Path  string
	Query url.Values
}

func NewPager(m Meta, path string, query url.Values) Pager {
	q := url.Values{}
	for k, v := range query {
		if k != "page" {
			q[k] = append([]string(nil), v...)
		}
	}
	return Pager{Meta: m, Path: path, Query: q}
}

func (p Pager) Href(page int) string {
	q := url.Values{}
	for k, v := range p.Query {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(ClampPage(page, p.TotalPages)))
	return p.Path + "?" + q.Encode()
}

func (p Pager) Window() []PageItem {
	return PageWindow(p.Page, p.TotalPages, 1)
}
