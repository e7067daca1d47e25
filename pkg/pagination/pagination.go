package pagination

import (
	"fmt"
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is the page size used when the caller does not specify one.
	DefaultLimit = 20
	// MaxLimit caps the page size a caller may request.
	MaxLimit = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// DefaultParams returns the first page with the default limit.
func DefaultParams() Params {
	return Params{Page: 1, Limit: DefaultLimit}
}

// FromRequest extracts page and limit from the query string. Absent values
// fall back to defaults; present values must be positive integers and limit
// must not exceed MaxLimit.
func FromRequest(r *http.Request) (Params, error) {
	p := DefaultParams()
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return Params{}, fmt.Errorf("page must be a positive integer")
		}
		p.Page = page
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return Params{}, fmt.Errorf("limit must be a positive integer")
		}
		if limit > MaxLimit {
			return Params{}, fmt.Errorf("limit must be at most %d", MaxLimit)
		}
		p.Limit = limit
	}

	return p, nil
}

// Meta describes where a page sits in the full result set.
type Meta struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Page is one slice of an in-memory result list.
type Page[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// Paginate slices items into the requested page. An offset past the end
// yields an empty page, not an error. Callers must pass page >= 1 and
// limit >= 1.
func Paginate[T any](items []T, page, limit int) Page[T] {
	total := len(items)

	totalPages := total / limit
	if total%limit > 0 {
		totalPages++
	}

	// page-1 < totalPages bounds the offset by total before multiplying.
	data := []T{}
	if page >= 1 && page <= totalPages {
		offset := (page - 1) * limit
		end := offset + limit
		if end > total {
			end = total
		}
		data = items[offset:end]
	}

	return Page[T]{
		Data: data,
		Pagination: Meta{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
			HasPrev:    page > 1,
		},
	}
}
