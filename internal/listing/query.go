package listing

// PageSizes are the selectable page sizes for every list screen.
var PageSizes = []int{5, 10, 20, 50}

const DefaultPageSize = 10

// Query is the paginated/filtered request a list screen sends to its gateway.
// Search is the debounced text, matched case-insensitively as a substring over
// the entity's configured searchable fields (OR-ed).
type Query struct {
	Page     int    `json:"page" form:"page"`
	PageSize int    `json:"pageSize" form:"page_size"`
	Search   string `json:"search" form:"search"`
}

// Offset returns the 0-based row offset for the current page.
func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// Page is one materialized page of results plus the exact total count.
type Page[T any] struct {
	Rows       []T `json:"rows"`
	TotalCount int `json:"totalCount"`
}

// TotalPages computes ceil(totalCount/pageSize), never less than 1.
func TotalPages(totalCount, pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	n := (totalCount + pageSize - 1) / pageSize
	if n < 1 {
		return 1
	}
	return n
}

// ValidPageSize reports whether n is one of the selectable page sizes.
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}
