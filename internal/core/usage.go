package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/oelgazzar/nidgate/internal/model"
	"github.com/oelgazzar/nidgate/internal/resource"
	"github.com/oelgazzar/nidgate/internal/store"
)

func usageSchema() store.Schema[model.Usage] {
	return store.Schema[model.Usage]{
		Table: "api_usage",
		PK:    "id",
		Columns: []store.Column{
			{Name: "id"},
			{Name: "client_id"},
			{Name: "path"},
			{Name: "method"},
			{Name: "status_code"},
			{Name: "duration"},
			{Name: "timestamp"},
		},
		Relations: []store.Relation{
			{Column: "client_id", Table: "clients", Ref: "id"},
		},
		Dest: func(u *model.Usage) []any {
			return []any{&u.ID, &u.ClientID, &u.Path, &u.Method, &u.StatusCode, &u.Duration, &u.Timestamp}
		},
	}
}

// UsageService records one row per completed request and serves the audit
// listing. Rows are immutable; there is no update path.
type UsageService struct {
	repo   *store.Repository[model.Usage]
	res    *resource.Resource[model.Usage, model.Usage]
	logger zerolog.Logger
}

func NewUsageService(db store.DB, logger zerolog.Logger) *UsageService {
	s := &UsageService{
		repo:   store.NewRepository(db, usageSchema(), logger),
		logger: logger,
	}
	// client_id is nullable, so the default relation check cannot apply here.
	s.res = resource.New(s.repo, func(u *model.Usage) model.Usage { return *u }, resource.Hooks[model.Usage]{
		Create: resource.CreateHooks[model.Usage]{Validate: resource.SkipValidation},
	})
	return s
}

// Record writes one usage row. ClientID stays nil for anonymous callers; a
// zero Timestamp defers to the store default.
func (s *UsageService) Record(ctx context.Context, u model.Usage) error {
	fields := store.Fields{
		"path":        u.Path,
		"method":      u.Method,
		"status_code": u.StatusCode,
		"duration":    u.Duration,
	}
	if u.ClientID != nil {
		fields["client_id"] = *u.ClientID
	}
	if !u.Timestamp.IsZero() {
		fields["timestamp"] = u.Timestamp
	}
	_, err := s.res.Create(ctx, fields)
	return err
}

func (s *UsageService) List(ctx context.Context, page store.Page) ([]model.Usage, error) {
	return s.res.List(ctx, page)
}

// FilterParams narrows the listing by query parameters with strict key
// checking.
func (s *UsageService) FilterParams(ctx context.Context, page store.Page, params store.Fields) ([]model.Usage, error) {
	return s.res.FilterParams(ctx, page, params)
}

// Count reports how many usage rows match filters. The audit listing pairs
// it with FilterParams to return a total alongside the page.
func (s *UsageService) Count(ctx context.Context, filters store.Fields) (int64, error) {
	return s.res.Count(ctx, filters)
}
