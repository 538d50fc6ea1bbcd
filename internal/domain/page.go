package domain

// Page size bounds for gallery listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage bounds the page number so the row offset cannot overflow.
	MaxPage = 1_000_000
)

// PaginationParams carries page/limit values from the HTTP layer to the repo layer.
// Page is 1-indexed. Limit is clamped to [1, MaxPageSize] by NewPaginationParams.
type PaginationParams struct {
	// Page is the current page number, starting at 1.
	Page int
	// Limit is the maximum number of items to return.
	Limit int
}

// NewPaginationParams builds a PaginationParams from optional page and limit values.
// Nil pointers fall back to sane defaults (page=1, limit=DefaultPageSize).
// A supplied limit is clamped to [1, MaxPageSize]; pages below 1 become 1 and
// pages above MaxPage become MaxPage.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageSize}
	if page != nil && *page >= 1 {
		p.Page = min(*page, MaxPage)
	}
	if limit != nil {
		p.Limit = min(max(*limit, 1), MaxPageSize)
	}
	return p
}

// Offset returns the zero-based row offset for a SQL OFFSET clause.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination describes where a page of results sits in the full result set.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalItems  int  `json:"total_items"`
	PageSize    int  `json:"page_size"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// NewPagination computes the page metadata for total matching rows.
func NewPagination(p PaginationParams, total int) Pagination {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Pagination{
		CurrentPage: p.Page,
		TotalPages:  pages,
		TotalItems:  total,
		PageSize:    p.Limit,
		HasPrevious: p.Page > 1,
		HasNext:     p.Page < pages,
	}
}
