// Package paging slices result lists into fixed-size pages.
package paging

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 10

// Result is one page of items.
type Result[T any] struct {
	Items      []T `json:"items"`
	Number     int `json:"page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
	PageSize   int `json:"page_size"`
}

// TotalPages returns max(1, ceil(n/pageSize)).
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + pageSize - 1) / pageSize
}

// Clamp limits page to [1, total].
func Clamp(page, total int) int {
	if total < 1 {
		total = 1
	}
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Page returns page pageNumber of items, clamped into range. Items shares
// the backing array of the input.
func Page[T any](items []T, pageSize, pageNumber int) Result[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	total := TotalPages(len(items), pageSize)
	number := Clamp(pageNumber, total)

	start := (number - 1) * pageSize
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	if start > end {
		start = end
	}

	return Result[T]{
		Items:      items[start:end],
		Number:     number,
		TotalPages: total,
		TotalItems: len(items),
		PageSize:   pageSize,
	}
}

// Move returns current+offset clamped into [1, total]. Offsets of ±1, ±10
// and ±100 are the usual navigation steps.
func Move(current, offset, total int) int {
	return Clamp(current+offset, total)
}
