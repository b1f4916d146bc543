package leads

import (
	"net/url"
	"strconv"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Page holds normalized pagination offsets for a list query.
type Page struct {
	Page  int
	Limit int
	Skip  int
}

// ResolvePage normalizes the page and limit parameters. Page floors at 1.
// Limit clamps to 100 from above but resets to the default of 20 when
// unparseable, zero, or negative.
func ResolvePage(query url.Values) Page {
	page, err := strconv.Atoi(query.Get("page"))
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.Atoi(query.Get("limit"))
	if err != nil {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if limit < 1 {
		limit = defaultLimit
	}

	return Page{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}
}

// TotalPages returns ceil(total/limit), never less than one page.
func TotalPages(total, limit int) int {
	pages := (total + limit - 1) / limit
	if pages < 1 {
		pages = 1
	}
	return pages
}
