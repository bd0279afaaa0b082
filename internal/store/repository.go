package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/oelgazzar/nidgate/internal/platform"
)

// Repository runs CRUD and dynamic equality queries for one record type.
// Filtering is deliberately lenient: keys the schema does not know are
// dropped with a warning, never an error. Strictness, where wanted, belongs
// to the operation layer above.
type Repository[R any] struct {
	db     DB
	schema Schema[R]
	logger zerolog.Logger
	cols   string
}

func NewRepository[R any](db DB, schema Schema[R], logger zerolog.Logger) *Repository[R] {
	names := make([]string, len(schema.Columns))
	for i, c := range schema.Columns {
		names[i] = c.Name
	}
	return &Repository[R]{
		db:     db,
		schema: schema,
		logger: logger.With().Str("table", schema.Table).Logger(),
		cols:   strings.Join(names, ", "),
	}
}

func (r *Repository[R]) Table() string { return r.schema.Table }

// HasColumn reports whether the schema maps the named column.
func (r *Repository[R]) HasColumn(name string) bool { return r.schema.has(name) }

// Tombstone returns the soft-delete column name, or "".
func (r *Repository[R]) Tombstone() string { return r.schema.Tombstone }

// Create inserts the schema-known subset of fields and returns the stored
// row. A missing primary key is generated; columns absent from the payload
// fall back to their database defaults.
func (r *Repository[R]) Create(ctx context.Context, fields Fields) (R, error) {
	var rec R
	r.warnUnknown(fields)

	cols := []string{r.schema.PK}
	args := []any{platform.NewID()}
	if v, ok := fields[r.schema.PK]; ok {
		args[0] = v
	}
	for _, c := range r.schema.Columns {
		if c.Name == r.schema.PK {
			continue
		}
		v, ok := fields[c.Name]
		if !ok {
			continue
		}
		cols = append(cols, c.Name)
		args = append(args, v)
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		r.schema.Table, strings.Join(cols, ", "), placeholders(len(args)), r.cols,
	)
	if err := r.db.QueryRow(ctx, query, args...).Scan(r.schema.Dest(&rec)...); err != nil {
		return rec, fmt.Errorf("create %s: %w", r.schema.Table, err)
	}
	return rec, nil
}

// Get loads one row by primary key.
func (r *Repository[R]) Get(ctx context.Context, pk any) (R, error) {
	var rec R
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", r.cols, r.schema.Table, r.schema.PK)
	err := r.db.QueryRow(ctx, query, pk).Scan(r.schema.Dest(&rec)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, fmt.Errorf("get %s %v: %w", r.schema.Table, pk, ErrNotFound)
	}
	if err != nil {
		return rec, fmt.Errorf("get %s %v: %w", r.schema.Table, pk, err)
	}
	return rec, nil
}

// All returns an unfiltered window of rows.
func (r *Repository[R]) All(ctx context.Context, page Page) ([]R, error) {
	return r.Filter(ctx, page, nil)
}

// Filter returns the window of rows matching every given equality condition.
// Nil values match SQL NULL.
func (r *Repository[R]) Filter(ctx context.Context, page Page, filters Fields) ([]R, error) {
	page = page.normalize()
	where, args := r.whereClause(filters)
	query := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		r.cols, r.schema.Table, where, r.orderClause(page.OrderBy), len(args)+1, len(args)+2,
	)
	args = append(args, page.Limit, page.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", r.schema.Table, err)
	}
	defer rows.Close()

	var out []R
	for rows.Next() {
		var rec R
		if err := rows.Scan(r.schema.Dest(&rec)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", r.schema.Table, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", r.schema.Table, err)
	}
	return out, nil
}

// First returns the first row matching the filters.
func (r *Repository[R]) First(ctx context.Context, filters Fields) (R, error) {
	var rec R
	where, args := r.whereClause(filters)
	query := fmt.Sprintf("SELECT %s FROM %s%s LIMIT 1", r.cols, r.schema.Table, where)
	err := r.db.QueryRow(ctx, query, args...).Scan(r.schema.Dest(&rec)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, fmt.Errorf("first %s: %w", r.schema.Table, ErrNotFound)
	}
	if err != nil {
		return rec, fmt.Errorf("first %s: %w", r.schema.Table, err)
	}
	return rec, nil
}

// Count reports how many rows match the filters.
func (r *Repository[R]) Count(ctx context.Context, filters Fields) (int64, error) {
	where, args := r.whereClause(filters)
	query := fmt.Sprintf("SELECT count(*) FROM %s%s", r.schema.Table, where)
	var n int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", r.schema.Table, err)
	}
	return n, nil
}

// Exists reports whether any row matches the filters.
func (r *Repository[R]) Exists(ctx context.Context, filters Fields) (bool, error) {
	_, err := r.First(ctx, filters)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Update persists the schema-known subset of fields against pk and returns
// the stored row. A payload with nothing to change loads and returns the
// current row.
func (r *Repository[R]) Update(ctx context.Context, pk any, fields Fields) (R, error) {
	var rec R
	r.warnUnknown(fields)

	var sets []string
	var args []any
	for _, c := range r.schema.Columns {
		if c.Name == r.schema.PK {
			continue
		}
		v, ok := fields[c.Name]
		if !ok {
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = $%d", c.Name, len(args)+1))
		args = append(args, v)
	}
	if len(sets) == 0 {
		return r.Get(ctx, pk)
	}

	query := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d RETURNING %s",
		r.schema.Table, strings.Join(sets, ", "), r.schema.PK, len(args)+1, r.cols,
	)
	args = append(args, pk)

	err := r.db.QueryRow(ctx, query, args...).Scan(r.schema.Dest(&rec)...)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, fmt.Errorf("update %s %v: %w", r.schema.Table, pk, ErrNotFound)
	}
	if err != nil {
		return rec, fmt.Errorf("update %s %v: %w", r.schema.Table, pk, err)
	}
	return rec, nil
}

// Delete removes the row with the given primary key and reports whether a
// row actually went away. A missing row is not an error.
func (r *Repository[R]) Delete(ctx context.Context, pk any) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", r.schema.Table, r.schema.PK)
	tag, err := r.db.Exec(ctx, query, pk)
	if err != nil {
		return false, fmt.Errorf("delete %s %v: %w", r.schema.Table, pk, err)
	}
	return tag.RowsAffected() > 0, nil
}

// ValidateRelations checks that every declared relation is satisfied by the
// payload: the referencing value must be present, non-nil, and point at an
// existing row.
func (r *Repository[R]) ValidateRelations(ctx context.Context, fields Fields) error {
	for _, rel := range r.schema.Relations {
		if rel.Column == r.schema.PK {
			continue
		}
		v, ok := fields[rel.Column]
		if !ok || v == nil {
			return Invalid("%s is required", rel.Column)
		}
		var exists bool
		query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)", rel.Table, rel.Ref)
		if err := r.db.QueryRow(ctx, query, v).Scan(&exists); err != nil {
			return fmt.Errorf("validate %s relation %s: %w", r.schema.Table, rel.Column, err)
		}
		if !exists {
			return Invalid("related %s %v not found", rel.Table, v)
		}
	}
	return nil
}

// ValidateUnique rejects payloads that try to set the primary key and checks
// every unique column present in the payload for a collision.
func (r *Repository[R]) ValidateUnique(ctx context.Context, fields Fields) error {
	if _, ok := fields[r.schema.PK]; ok {
		return Invalid("cannot set primary key %q", r.schema.PK)
	}
	for _, c := range r.schema.Columns {
		if !c.Unique {
			continue
		}
		v, ok := fields[c.Name]
		if !ok || v == nil {
			continue
		}
		var exists bool
		query := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1)", r.schema.Table, c.Name)
		if err := r.db.QueryRow(ctx, query, v).Scan(&exists); err != nil {
			return fmt.Errorf("validate %s unique %s: %w", r.schema.Table, c.Name, err)
		}
		if exists {
			return Invalid("%s %v already exists", c.Name, v)
		}
	}
	return nil
}

// whereClause builds equality conditions for the schema-known filter keys in
// a stable order. Unknown keys are dropped with a warning.
func (r *Repository[R]) whereClause(filters Fields) (string, []any) {
	clause := " WHERE 1=1"
	var args []any
	for _, k := range r.knownKeys(filters) {
		v := filters[k]
		if v == nil {
			clause += fmt.Sprintf(" AND %s IS NULL", k)
			continue
		}
		clause += fmt.Sprintf(" AND %s = $%d", k, len(args)+1)
		args = append(args, v)
	}
	return clause, args
}

func (r *Repository[R]) knownKeys(filters Fields) []string {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		if !r.schema.has(k) {
			r.logger.Warn().Str("field", k).Msg("unknown filter field dropped")
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (r *Repository[R]) warnUnknown(fields Fields) {
	for k := range fields {
		if !r.schema.has(k) {
			r.logger.Warn().Str("field", k).Msg("unknown field dropped")
		}
	}
}

// orderClause resolves an OrderBy directive against the schema. Unknown or
// empty directives fall back to primary-key order so windows stay stable.
func (r *Repository[R]) orderClause(orderBy string) string {
	col, dir := orderBy, "ASC"
	if strings.HasPrefix(orderBy, "-") {
		col, dir = orderBy[1:], "DESC"
	}
	if col == "" || !r.schema.has(col) {
		return r.schema.PK + " ASC"
	}
	return col + " " + dir
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", i+1)
	}
	return strings.Join(parts, ", ")
}
