// Package ratelimit provides per-identity sliding-window admission control.
// The window length and request ceiling come from configuration; the
// identity is whatever string the caller keys requests by, typically an API
// key or a network address.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter answers whether a request from the given identity may proceed.
// Allowed requests consume a slot in the identity's window; rejected ones
// do not.
type Limiter interface {
	Allow(ctx context.Context, identity string) (Decision, error)
}
