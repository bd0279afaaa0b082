package request

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oelgazzar/nidgate/internal/store"
)

func TestFilters_Empty(t *testing.T) {
	r := httptest.NewRequest("GET", "/usage", nil)
	assert.Empty(t, Filters(r))
}

func TestFilters_SkipsPagingParams(t *testing.T) {
	r := httptest.NewRequest("GET", "/usage?limit=10&offset=5&order_by=-timestamp&method=POST", nil)
	f := Filters(r)
	assert.Equal(t, store.Fields{"method": "POST"}, f)
}

func TestFilters_IntColumnsConverted(t *testing.T) {
	r := httptest.NewRequest("GET", "/usage?status_code=429&method=GET", nil)
	f := Filters(r, "status_code")
	assert.Equal(t, store.Fields{"status_code": 429, "method": "GET"}, f)
}

func TestFilters_NonNumericIntColumnStaysString(t *testing.T) {
	r := httptest.NewRequest("GET", "/usage?status_code=teapot", nil)
	f := Filters(r, "status_code")
	assert.Equal(t, store.Fields{"status_code": "teapot"}, f)
}

func TestFilters_EmptyValuesDropped(t *testing.T) {
	r := httptest.NewRequest("GET", "/usage?method=&client_id=c-1", nil)
	f := Filters(r)
	assert.Equal(t, store.Fields{"client_id": "c-1"}, f)
}

func TestFilters_UnknownKeysPassThrough(t *testing.T) {
	// Strict filter validation happens in the resource layer, not here.
	r := httptest.NewRequest("GET", "/usage?bogus=1", nil)
	f := Filters(r)
	assert.Equal(t, store.Fields{"bogus": "1"}, f)
}
