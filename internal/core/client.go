package core

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/oelgazzar/nidgate/internal/model"
	"github.com/oelgazzar/nidgate/internal/platform"
	"github.com/oelgazzar/nidgate/internal/resource"
	"github.com/oelgazzar/nidgate/internal/store"
)

func clientSchema() store.Schema[model.Client] {
	return store.Schema[model.Client]{
		Table: "clients",
		PK:    "id",
		Columns: []store.Column{
			{Name: "id"},
			{Name: "name", Unique: true},
			{Name: "description"},
			{Name: "api_key", Unique: true},
			{Name: "created_at"},
		},
		Dest: func(c *model.Client) []any {
			return []any{&c.ID, &c.Name, &c.Description, &c.APIKey, &c.CreatedAt}
		},
	}
}

// ClientService manages the service clients that hold API credentials.
type ClientService struct {
	repo   *store.Repository[model.Client]
	res    *resource.Resource[model.Client, model.ClientResponse]
	logger zerolog.Logger
}

func NewClientService(db store.DB, logger zerolog.Logger) *ClientService {
	s := &ClientService{
		repo:   store.NewRepository(db, clientSchema(), logger),
		logger: logger,
	}
	s.res = resource.New(s.repo, projectClient, resource.Hooks[model.Client]{
		Create: resource.CreateHooks[model.Client]{Pre: s.preCreate},
	})
	return s
}

func projectClient(c *model.Client) model.ClientResponse {
	return model.ClientResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		APIKey:      c.APIKey,
	}
}

// preCreate issues the credential. Clients never choose their own key.
func (s *ClientService) preCreate(_ context.Context, fields store.Fields) (store.Fields, error) {
	out := fields.WithoutNil()
	out["api_key"] = platform.NewAPIKey()
	return out, nil
}

func (s *ClientService) Create(ctx context.Context, fields store.Fields) (model.ClientResponse, error) {
	return s.res.Create(ctx, fields)
}

func (s *ClientService) Get(ctx context.Context, id string) (model.ClientResponse, error) {
	return s.res.Get(ctx, id)
}

func (s *ClientService) List(ctx context.Context, page store.Page) ([]model.ClientResponse, error) {
	return s.res.List(ctx, page)
}

// FilterParams narrows the listing by query parameters. Unknown parameter
// names are rejected, unlike the lenient store layer underneath.
func (s *ClientService) FilterParams(ctx context.Context, page store.Page, params store.Fields) ([]model.ClientResponse, error) {
	return s.res.FilterParams(ctx, page, params)
}

// Delete removes a client. Usage rows cascade at the store level. Deleting
// an unknown id reports false without an error.
func (s *ClientService) Delete(ctx context.Context, id string) (bool, error) {
	return s.res.Delete(ctx, id)
}

// GetByAPIKey resolves the client presenting key. The identity middleware
// calls this on every request that carries a credential.
func (s *ClientService) GetByAPIKey(ctx context.Context, key string) (model.Client, error) {
	return s.repo.First(ctx, store.Fields{"api_key": key})
}
