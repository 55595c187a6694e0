package shared

import (
	"net/http"
	"strconv"
	"strings"

	"hrportal/internal/platform/backend"
)

// Meta is the pagination state a table renders, either straight from the
// backend or computed over an in-memory list.
type Meta struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
}

func MetaFrom(p backend.PageMeta) Meta {
	m := Meta{Page: p.Page, Limit: p.Limit, Total: p.Total, TotalPages: p.TotalPages}
	if m.TotalPages == 0 && m.Limit > 0 {
		m.TotalPages = (m.Total + m.Limit - 1) / m.Limit
	}
	m.Page = ClampPage(m.Page, m.TotalPages)
	return m
}

// ComputeMeta builds the state for a list of total items shown limit at a
// time.
func ComputeMeta(page, limit, total int) Meta {
	if limit < 1 {
		limit = 1
	}
	pages := (total + limit - 1) / limit
	return Meta{Page: ClampPage(page, pages), Limit: limit, Total: total, TotalPages: pages}
}

// ClampPage keeps page within [1, totalPages]. An empty result still has
// page 1.
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		return 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

func (m Meta) HasPrev() bool { return m.Page > 1 }
func (m Meta) HasNext() bool { return m.Page < m.TotalPages }
func (m Meta) Prev() int     { return ClampPage(m.Page-1, m.TotalPages) }
func (m Meta) Next() int     { return ClampPage(m.Page+1, m.TotalPages) }

// From and To are the 1-based bounds of the rows on the current page.
func (m Meta) From() int {
	if m.Total == 0 {
		return 0
	}
	return (m.Page-1)*m.Limit + 1
}

func (m Meta) To() int {
	return min(m.Page*m.Limit, m.Total)
}

type PageItem struct {
	Number   int
	Current  bool
	Ellipsis bool
}

// PageWindow lists the first and last page, siblings pages either side of
// current, and an ellipsis wherever more than one page is collapsed.
func PageWindow(current, total, siblings int) []PageItem {
	if total < 1 {
		return nil
	}
	if siblings < 0 {
		siblings = 0
	}
	current = ClampPage(current, total)
	lo := max(current-siblings, 1)
	hi := min(current+siblings, total)

	var out []PageItem
	add := func(n int) { out = append(out, PageItem{Number: n, Current: n == current}) }
	if lo > 1 {
		add(1)
		switch {
		case lo == 3:
			add(2)
		case lo > 3:
			out = append(out, PageItem{Ellipsis: true})
		}
	}
	for n := lo; n <= hi; n++ {
		add(n)
	}
	if hi < total {
		switch {
		case hi == total-2:
			add(total - 1)
		case hi < total-2:
			out = append(out, PageItem{Ellipsis: true})
		}
		add(total)
	}
	return out
}

// Paginate slices an in-memory list for the given page.
func Paginate[T any](items []T, page, limit int) ([]T, Meta) {
	m := ComputeMeta(page, limit, len(items))
	if m.Total == 0 {
		return []T{}, m
	}
	start := (m.Page - 1) * m.Limit
	end := min(start+m.Limit, m.Total)
	return items[start:end], m
}

// QueryInt reads a positive integer query parameter.
func QueryInt(r *http.Request, name string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
