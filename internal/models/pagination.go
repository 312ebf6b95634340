package models

// Page size bounds shared by every paginated listing.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NormalizePage clamps a requested page and page size into the accepted range.
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// NewPagination builds response metadata using the same clamping as the queries.
func NewPagination(page, size, total int) *Pagination {
	page, size = NormalizePage(page, size)
	return &Pagination{Page: page, PageSize: size, TotalCount: total}
}
