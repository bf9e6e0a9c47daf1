// Package pagination implements offset paging shared by list endpoints.
package pagination

// Pagination binds the standard list query parameters.
type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size,default=20" validate:"gte=1,lte=100"` // Min 1, Max 100
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps page and page size into their allowed ranges.
func (p Pagination) Normalize() Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

// Offset returns the row offset for the current page.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the row limit for the current page.
func (p Pagination) Limit() int {
	return p.Normalize().PageSize
}
