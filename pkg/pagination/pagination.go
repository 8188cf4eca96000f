package pagination

import "github.com/shohaib1996/better-edible-backend/pkg/types"

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any list query can request.
	MaxLimit = 100
)

// Params holds page/limit inputs from controllers or services. Pages are 1-based.
type Params struct {
	Page  int
	Limit int
}

// Normalize applies defaults and caps.
func (p Params) Normalize() Params {
	return Params{Page: NormalizePage(p.Page), Limit: NormalizeLimit(p.Limit)}
}

// Offset is the number of rows to skip for the normalized page.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// NormalizePage clamps the page to at least 1.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// TotalPages returns how many pages of size limit hold total rows.
func TotalPages(total int64, limit int) int {
	limit = NormalizeLimit(limit)
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Result is one page of rows plus the unpaginated total.
type Result[T any] struct {
	Items []T
	Page  int
	Limit int
	Total int64
}

// NewResult builds a Result for the normalized params.
func NewResult[T any](items []T, params Params, total int64) Result[T] {
	n := params.Normalize()
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items, Page: n.Page, Limit: n.Limit, Total: total}
}

// Meta renders the page metadata for list envelopes.
func (r Result[T]) Meta() types.PageMeta {
	return types.PageMeta{
		Page:       r.Page,
		Limit:      r.Limit,
		Total:      r.Total,
		TotalPages: TotalPages(r.Total, r.Limit),
	}
}
