package request

import (
	"net/http"
	"strconv"

	"github.com/oelgazzar/nidgate/internal/store"
)

// ParsePage extracts limit, offset and order_by from the query string.
// Unparseable values fall back to the store defaults.
func ParsePage(r *http.Request) store.Page {
	page := store.Page{
		Limit:   store.DefaultLimit,
		OrderBy: r.URL.Query().Get("order_by"),
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			page.Limit = limit
		}
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset > 0 {
			page.Offset = offset
		}
	}

	if page.Limit > store.MaxLimit {
		page.Limit = store.MaxLimit
	}

	return page
}
