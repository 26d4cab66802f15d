package pagination

// Defaults applied when a caller omits or mangles paging parameters.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a normalized, 1-indexed page request.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps page to >= 1 and limit to [1, maxLimit], substituting
// defaultLimit for non-positive limits.
func Normalize(page, limit, defaultLimit, maxLimit int) Params {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Offset is the index of the first item on the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Window returns the half-open [start, end) range of the page within total
// items. Pages past the end yield start == end == total.
func (p Params) Window(total int) (start, end int) {
	start = p.Offset()
	if start > total || start < 0 {
		return total, total
	}
	end = start + p.Limit
	if end > total {
		end = total
	}
	return start, end
}

// Meta describes a page of results.
type Meta struct {
	CurrentPage    int  `json:"currentPage"`
	TotalPages     int  `json:"totalPages"`
	TotalResults   int  `json:"totalResults"`
	HasNextPage    bool `json:"hasNextPage"`
	HasPrevPage    bool `json:"hasPrevPage"`
	ResultsPerPage int  `json:"resultsPerPage"`
}

// NewMeta computes paging metadata for total items.
func NewMeta(total int, p Params) Meta {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = total / p.Limit
		if total%p.Limit > 0 {
			totalPages++
		}
	}
	return Meta{
		CurrentPage:    p.Page,
		TotalPages:     totalPages,
		TotalResults:   total,
		HasNextPage:    p.Page < totalPages,
		HasPrevPage:    p.Page > 1,
		ResultsPerPage: p.Limit,
	}
}

// Slice returns the page of items selected by p. The result is never nil.
func Slice[T any](items []T, p Params) []T {
	start, end := p.Window(len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out
}
