// Package api provides the nidgate REST API: service-client management,
// Egyptian national-ID validation, and the request-usage listing, served
// under /api/v1 behind X-API-Key authentication.
package api
