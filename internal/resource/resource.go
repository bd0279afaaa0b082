// Package resource implements the lifecycle shared by every stored entity.
// Each verb runs a fixed pipeline of validate, pre, store action, on and
// projection steps. Services customise behaviour by supplying hooks at
// construction; an unset hook falls back to the documented default rather
// than being skipped silently.
package resource

import (
	"context"

	"github.com/oelgazzar/nidgate/internal/store"
)

// Store is the persistence seam a Resource drives. *store.Repository
// satisfies it; tests substitute in-memory fakes.
type Store[R any] interface {
	Create(ctx context.Context, fields store.Fields) (R, error)
	Get(ctx context.Context, pk any) (R, error)
	Filter(ctx context.Context, page store.Page, filters store.Fields) ([]R, error)
	Count(ctx context.Context, filters store.Fields) (int64, error)
	Update(ctx context.Context, pk any, fields store.Fields) (R, error)
	Delete(ctx context.Context, pk any) (bool, error)
	ValidateRelations(ctx context.Context, fields store.Fields) error
	ValidateUnique(ctx context.Context, fields store.Fields) error
	HasColumn(name string) bool
	Tombstone() string
	Table() string
}

// CreateHooks intercept the create pipeline. Validate replaces the default
// relation and uniqueness checks, Pre replaces the default nil-stripping of
// the payload, On runs against the stored record before projection.
type CreateHooks[R any] struct {
	Validate func(ctx context.Context, fields store.Fields) error
	Pre      func(ctx context.Context, fields store.Fields) (store.Fields, error)
	On       func(ctx context.Context, rec *R) error
}

// GetHooks intercept single-record reads.
type GetHooks[R any] struct {
	Pre func(ctx context.Context, pk any) error
	On  func(ctx context.Context, rec *R) error
}

// ListHooks intercept unfiltered listings.
type ListHooks struct {
	Validate func(ctx context.Context, page store.Page) error
	Pre      func(ctx context.Context, page store.Page) error
	On       func(ctx context.Context, page store.Page) error
}

// FilterHooks intercept filtered listings. Validate replaces the default
// strict filter-key check.
type FilterHooks struct {
	Validate func(ctx context.Context, page store.Page, filters store.Fields) error
	Pre      func(ctx context.Context, page store.Page, filters store.Fields) error
	On       func(ctx context.Context, page store.Page, filters store.Fields) error
}

// UpdateHooks intercept the update pipeline. Validate and Pre mirror their
// create counterparts.
type UpdateHooks[R any] struct {
	Validate func(ctx context.Context, fields store.Fields) error
	Pre      func(ctx context.Context, fields store.Fields) (store.Fields, error)
	On       func(ctx context.Context, rec *R) error
}

// DeleteHooks intercept deletions. On receives the outcome flag so services
// can react to no-op deletes.
type DeleteHooks struct {
	Validate func(ctx context.Context, pk any) error
	Pre      func(ctx context.Context, pk any) error
	On       func(ctx context.Context, pk any, deleted bool) error
}

// Hooks bundles the per-verb hook sets for one resource.
type Hooks[R any] struct {
	Create CreateHooks[R]
	Get    GetHooks[R]
	List   ListHooks
	Filter FilterHooks
	Update UpdateHooks[R]
	Delete DeleteHooks
}

// SkipValidation suppresses the default relation and uniqueness checks when
// installed as a Create or Update Validate hook.
func SkipValidation(context.Context, store.Fields) error { return nil }

// Resource wires one stored entity through the shared lifecycle and projects
// records to their outward shape.
type Resource[R, Out any] struct {
	store   Store[R]
	project func(*R) Out
	hooks   Hooks[R]
}

// New builds a Resource over st. project maps stored records to the type
// handed back to callers.
func New[R, Out any](st Store[R], project func(*R) Out, hooks Hooks[R]) *Resource[R, Out] {
	return &Resource[R, Out]{store: st, project: project, hooks: hooks}
}

// Create validates fields, applies the pre hook and inserts the record.
func (r *Resource[R, Out]) Create(ctx context.Context, fields store.Fields) (Out, error) {
	var zero Out
	if err := r.validateWrite(ctx, r.hooks.Create.Validate, fields); err != nil {
		return zero, err
	}
	prepared, err := r.prepareWrite(ctx, r.hooks.Create.Pre, fields)
	if err != nil {
		return zero, err
	}
	rec, err := r.store.Create(ctx, prepared)
	if err != nil {
		return zero, err
	}
	if on := r.hooks.Create.On; on != nil {
		if err := on(ctx, &rec); err != nil {
			return zero, err
		}
	}
	return r.project(&rec), nil
}

// Get loads one record by primary key. A missing record surfaces as
// store.ErrNotFound.
func (r *Resource[R, Out]) Get(ctx context.Context, pk any) (Out, error) {
	var zero Out
	if pre := r.hooks.Get.Pre; pre != nil {
		if err := pre(ctx, pk); err != nil {
			return zero, err
		}
	}
	rec, err := r.store.Get(ctx, pk)
	if err != nil {
		return zero, err
	}
	if on := r.hooks.Get.On; on != nil {
		if err := on(ctx, &rec); err != nil {
			return zero, err
		}
	}
	return r.project(&rec), nil
}

// List returns a page of live records. Tombstoned rows are excluded when the
// schema carries a tombstone column.
func (r *Resource[R, Out]) List(ctx context.Context, page store.Page) ([]Out, error) {
	if v := r.hooks.List.Validate; v != nil {
		if err := v(ctx, page); err != nil {
			return nil, err
		}
	}
	if pre := r.hooks.List.Pre; pre != nil {
		if err := pre(ctx, page); err != nil {
			return nil, err
		}
	}
	filters := store.Fields{}
	if ts := r.store.Tombstone(); ts != "" {
		filters[ts] = nil
	}
	recs, err := r.store.Filter(ctx, page, filters)
	if err != nil {
		return nil, err
	}
	if on := r.hooks.List.On; on != nil {
		if err := on(ctx, page); err != nil {
			return nil, err
		}
	}
	return r.projectAll(recs), nil
}

// Filter returns a page of records matching filters. Unlike the store layer,
// which drops unknown filter keys, Filter rejects them. Tombstoned rows stay
// out of reach even when the caller filters on the tombstone column.
func (r *Resource[R, Out]) Filter(ctx context.Context, page store.Page, filters store.Fields) ([]Out, error) {
	merged := make(store.Fields, len(filters)+1)
	for k, v := range filters {
		merged[k] = v
	}
	if ts := r.store.Tombstone(); ts != "" {
		merged[ts] = nil
	}
	if err := r.validateFilter(ctx, page, merged); err != nil {
		return nil, err
	}
	if pre := r.hooks.Filter.Pre; pre != nil {
		if err := pre(ctx, page, merged); err != nil {
			return nil, err
		}
	}
	recs, err := r.store.Filter(ctx, page, merged)
	if err != nil {
		return nil, err
	}
	if on := r.hooks.Filter.On; on != nil {
		if err := on(ctx, page, merged); err != nil {
			return nil, err
		}
	}
	return r.projectAll(recs), nil
}

// FilterParams is the query-string call shape: nil-valued entries mean the
// parameter was absent and are dropped before delegating to Filter.
func (r *Resource[R, Out]) FilterParams(ctx context.Context, page store.Page, params store.Fields) ([]Out, error) {
	return r.Filter(ctx, page, params.WithoutNil())
}

// Count reports how many records match filters. Filter keys are checked the
// same strict way Filter checks them, and tombstoned rows are excluded, so a
// count always agrees with the listing it accompanies.
func (r *Resource[R, Out]) Count(ctx context.Context, filters store.Fields) (int64, error) {
	merged := make(store.Fields, len(filters)+1)
	for k, v := range filters {
		merged[k] = v
	}
	if ts := r.store.Tombstone(); ts != "" {
		merged[ts] = nil
	}
	for k := range merged {
		if !r.store.HasColumn(k) {
			return 0, store.Invalid("invalid filter field: %s", k)
		}
	}
	return r.store.Count(ctx, merged)
}

// Update validates and applies a partial update to the record at pk.
func (r *Resource[R, Out]) Update(ctx context.Context, pk any, fields store.Fields) (Out, error) {
	var zero Out
	if err := r.validateWrite(ctx, r.hooks.Update.Validate, fields); err != nil {
		return zero, err
	}
	prepared, err := r.prepareWrite(ctx, r.hooks.Update.Pre, fields)
	if err != nil {
		return zero, err
	}
	rec, err := r.store.Update(ctx, pk, prepared)
	if err != nil {
		return zero, err
	}
	if on := r.hooks.Update.On; on != nil {
		if err := on(ctx, &rec); err != nil {
			return zero, err
		}
	}
	return r.project(&rec), nil
}

// Delete removes the record at pk. A missing record reports deleted=false
// without an error.
func (r *Resource[R, Out]) Delete(ctx context.Context, pk any) (bool, error) {
	if v := r.hooks.Delete.Validate; v != nil {
		if err := v(ctx, pk); err != nil {
			return false, err
		}
	}
	if pre := r.hooks.Delete.Pre; pre != nil {
		if err := pre(ctx, pk); err != nil {
			return false, err
		}
	}
	deleted, err := r.store.Delete(ctx, pk)
	if err != nil {
		return false, err
	}
	if on := r.hooks.Delete.On; on != nil {
		if err := on(ctx, pk, deleted); err != nil {
			return false, err
		}
	}
	return deleted, nil
}

func (r *Resource[R, Out]) validateWrite(ctx context.Context, hook func(context.Context, store.Fields) error, fields store.Fields) error {
	if hook != nil {
		return hook(ctx, fields)
	}
	if err := r.store.ValidateRelations(ctx, fields); err != nil {
		return err
	}
	return r.store.ValidateUnique(ctx, fields)
}

func (r *Resource[R, Out]) prepareWrite(ctx context.Context, hook func(context.Context, store.Fields) (store.Fields, error), fields store.Fields) (store.Fields, error) {
	if hook != nil {
		return hook(ctx, fields)
	}
	return fields.WithoutNil(), nil
}

func (r *Resource[R, Out]) validateFilter(ctx context.Context, page store.Page, filters store.Fields) error {
	if v := r.hooks.Filter.Validate; v != nil {
		return v(ctx, page, filters)
	}
	for k := range filters {
		if !r.store.HasColumn(k) {
			return store.Invalid("invalid filter field: %s", k)
		}
	}
	return nil
}

func (r *Resource[R, Out]) projectAll(recs []R) []Out {
	out := make([]Out, len(recs))
	for i := range recs {
		out[i] = r.project(&recs[i])
	}
	return out
}
