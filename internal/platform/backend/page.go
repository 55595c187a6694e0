package backend

// PageMeta is the pagination block both backends return with list bodies.
type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type Page[T any] struct {
	Data       []T      `json:"data"`
	Pagination PageMeta `json:"pagination"`
}

// Normalize fills TotalPages when a backend left it out and never returns nil
// data.
func (p Page[T]) Normalize() Page[T] {
	if p.Data == nil {
		p.Data = []T{}
	}
	if p.Pagination.Page < 1 {
		p.Pagination.Page = 1
	}
	if p.Pagination.TotalPages == 0 && p.Pagination.Limit > 0 {
		p.Pagination.TotalPages = (p.Pagination.Total + p.Pagination.Limit - 1) / p.Pagination.Limit
	}
	return p
}
