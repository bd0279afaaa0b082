package request

import (
	"net/http"
	"strconv"

	"github.com/oelgazzar/nidgate/internal/store"
)

// pagingParams are consumed by ParsePage and never treated as filters.
var pagingParams = map[string]bool{
	"limit":    true,
	"offset":   true,
	"order_by": true,
}

// Filters collects the remaining query parameters into an equality filter
// set. Columns named in intColumns are converted when they parse as
// integers so comparisons hit the right column type. Unknown keys pass
// through untouched; the resource layer decides whether to reject them.
func Filters(r *http.Request, intColumns ...string) store.Fields {
	ints := make(map[string]bool, len(intColumns))
	for _, c := range intColumns {
		ints[c] = true
	}

	filters := store.Fields{}
	for key, values := range r.URL.Query() {
		if pagingParams[key] || len(values) == 0 || values[0] == "" {
			continue
		}
		if ints[key] {
			if n, err := strconv.Atoi(values[0]); err == nil {
				filters[key] = n
				continue
			}
		}
		filters[key] = values[0]
	}
	return filters
}
