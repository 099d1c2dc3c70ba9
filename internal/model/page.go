package model

// Page sizes.
const (
	PerPagePublic   = 12
	PerPageAdmin    = 20
	PerPageActivity = 50
)

// Page is one page of a paginated listing.
type Page[T any] struct {
	Items   []T `json:"items"`
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
}

// NewPage normalises page numbers below 1 to 1.
func NewPage[T any](items []T, page, perPage, total int) Page[T] {
	if page < 1 {
		page = 1
	}
	return Page[T]{Items: items, Page: page, PerPage: perPage, Total: total}
}

// Pages is the total number of pages, at least 1.
func (p Page[T]) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.Pages() }

// PrevNum is the previous page number.
func (p Page[T]) PrevNum() int { return p.Page - 1 }

// NextNum is the next page number.
func (p Page[T]) NextNum() int { return p.Page + 1 }

// Offset returns the SQL offset for a 1-based page.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}
