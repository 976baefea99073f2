// Package paginate windows an ordered result set into fixed-size pages.
//
// Page numbers are 1-based. Inputs are never rejected: a page size below 1 is treated
// as 1 and an out-of-range page number falls back to page 1, which is where a list
// view should land after its filter narrows the results.
package paginate

// Page is one window of a result set plus the metadata a pager needs.
type Page[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"page"`
	Size       int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool { return p.Number < p.TotalPages }

func normalizeSize(pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	return pageSize
}

// TotalPages returns ceil(n / pageSize), or 0 when n is 0.
func TotalPages(n, pageSize int) int {
	if n <= 0 {
		return 0
	}
	pageSize = normalizeSize(pageSize)
	return (n + pageSize - 1) / pageSize
}

// Clamp returns page if 1 <= page <= totalPages and 1 otherwise.
func Clamp(page, totalPages int) int {
	if page < 1 || page > totalPages {
		return 1
	}
	return page
}

// Slice returns page number page of items. The page is clamped first, so the result is
// always a valid window; for empty input it is page 1 of 0 with no items.
//
// Items shares the backing array of items but has its capacity capped, so appending
// to it never overwrites the caller's data.
func Slice[T any](items []T, pageSize, page int) Page[T] {
	pageSize = normalizeSize(pageSize)
	total := TotalPages(len(items), pageSize)
	page = Clamp(page, total)

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(items))
	if start > end {
		start = end
	}

	window := items[start:end:end]
	if window == nil {
		window = []T{}
	}

	return Page[T]{
		Items:      window,
		Number:     page,
		Size:       pageSize,
		TotalPages: total,
		TotalItems: len(items),
	}
}
