package common

import (
	"net/http"
	"strconv"
)

const (
	// MaxPerPage caps the page size accepted from clients.
	MaxPerPage = 100
	// MaxPage caps the page number so offsets stay within an int32.
	MaxPage = 10000
)

// Pagination holds pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalItems int64 `json:"total_items"`
}

// ParsePagination extracts page and per-page parameters from query values.
func ParsePagination(r *http.Request, defaultPerPage int) (page, perPage int) {
	page = 1
	perPage = defaultPerPage
	if p, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		perPage = l
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page > MaxPage {
		page = MaxPage
	}
	return
}

// Offset returns the row offset for the given page.
func Offset(page, perPage int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * perPage
}

// Window clamps page and perPage and returns the LIMIT and OFFSET for a query.
func Window(page, perPage int) (limit, offset int32) {
	page = min(max(page, 1), MaxPage)
	perPage = min(max(perPage, 1), MaxPerPage)
	return int32(perPage), int32(Offset(page, perPage))
}
