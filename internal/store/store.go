package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the repositories depend on.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ErrNotFound marks lookups that matched no row. Handlers translate it to a
// 404; everything else stays a 500.
var ErrNotFound = errors.New("not found")

// ValidationError carries a reason safe to echo back to the caller.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// Invalid builds a ValidationError from a format string.
func Invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// Fields is a dynamic payload or equality-filter set keyed by column name.
type Fields map[string]any

// WithoutNil returns a copy of f with nil-valued keys dropped.
func (f Fields) WithoutNil() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}

const (
	DefaultLimit = 100
	MaxLimit     = 100
)

// Page selects a window of a result set. OrderBy names a column, with a "-"
// prefix for descending order.
type Page struct {
	Offset  int
	Limit   int
	OrderBy string
}

func (p Page) normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
