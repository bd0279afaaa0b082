package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/oelgazzar/nidgate/internal/api/response"
	"github.com/oelgazzar/nidgate/internal/model"
	"github.com/oelgazzar/nidgate/internal/store"
)

type contextKey string

const clientIdentityKey contextKey = "client_identity"

// ClientIdentity is the resolved caller attached to the request context.
type ClientIdentity struct {
	ID   string
	Name string
}

// ClientResolver looks up the client that owns an API key.
type ClientResolver interface {
	GetByAPIKey(ctx context.Context, key string) (model.Client, error)
}

// Identity resolves the X-API-Key header into a client identity and stores
// it on the request context. Requests without a key, or with a key that does
// not match any client, proceed anonymously; route groups that need an
// authenticated caller add RequireClient on top.
func Identity(clients ClientResolver, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			client, err := clients.GetByAPIKey(r.Context(), key)
			if err != nil {
				if !errors.Is(err, store.ErrNotFound) {
					logger.Error().Err(err).Msg("API key lookup failed")
				}
				next.ServeHTTP(w, r)
				return
			}

			identity := &ClientIdentity{ID: client.ID, Name: client.Name}
			next.ServeHTTP(w, r.WithContext(WithClient(r.Context(), identity)))
		})
	}
}

// WithClient attaches a client identity to the context.
func WithClient(ctx context.Context, identity *ClientIdentity) context.Context {
	return context.WithValue(ctx, clientIdentityKey, identity)
}

// GetClient returns the identity resolved by Identity, or nil for anonymous
// requests.
func GetClient(ctx context.Context) *ClientIdentity {
	identity, _ := ctx.Value(clientIdentityKey).(*ClientIdentity)
	return identity
}

// RequireClient rejects requests that did not resolve to a known client.
func RequireClient(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetClient(r.Context()) == nil {
			if r.Header.Get("X-API-Key") == "" {
				response.WriteError(w, http.StatusUnauthorized, "missing API key")
			} else {
				response.WriteError(w, http.StatusUnauthorized, "invalid API key")
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}
