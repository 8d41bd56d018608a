package application

import "math"

// DefaultPage is used when the client sends no usable page number.
const DefaultPage = 1

// DefaultLimit is the page size when none is configured or requested.
const DefaultLimit = 4

// ListQuery carries the raw list parameters. Zero or negative Page and Limit
// fall back to the defaults. Status is ignored unless it names a known status.
type ListQuery struct {
	Page   int
	Limit  int
	Status string
}

// TotalPages is ceil(total/limit), never less than one.
func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// Offset is the number of records skipped before page. It saturates at
// math.MaxInt instead of overflowing.
func Offset(page, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}

func normalizePaging(page, limit, defaultLimit int) (int, int) {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = defaultLimit
	}
	return page, limit
}
