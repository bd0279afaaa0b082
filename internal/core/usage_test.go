package core

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oelgazzar/nidgate/internal/model"
	"github.com/oelgazzar/nidgate/internal/store"
)

func scanUsage(u model.Usage) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*dest[0].(*string) = u.ID
		*dest[1].(**string) = u.ClientID
		*dest[2].(*string) = u.Path
		*dest[3].(*string) = u.Method
		*dest[4].(*int) = u.StatusCode
		*dest[5].(*float64) = u.Duration
		*dest[6].(*time.Time) = u.Timestamp
		return nil
	}}
}

// ---------- Record ----------

func TestUsageService_Record_Anonymous(t *testing.T) {
	ctx := context.Background()
	db := &mockDB{}
	svc := NewUsageService(db, zerolog.Nop())

	// Anonymous rows leave client_id out of the insert entirely.
	db.On("QueryRow", ctx, sqlInsertWithout("api_usage", "client_id"), mock.Anything).
		Return(scanUsage(model.Usage{ID: "u-1", Path: "/api/v1/nid-egypt"})).Once()

	err := svc.Record(ctx, model.Usage{
		Path:       "/api/v1/nid-egypt",
		Method:     "POST",
		StatusCode: 200,
		Duration:   0.042,
		Timestamp:  time.Now(),
	})

	require.NoError(t, err)
	db.AssertExpectations(t)
}

func TestUsageService_Record_WithClient(t *testing.T) {
	ctx := context.Background()
	db := &mockDB{}
	svc := NewUsageService(db, zerolog.Nop())

	clientID := "c-1"
	var sent []any
	db.On("QueryRow", ctx, sqlContains("INSERT INTO api_usage", "client_id"), mock.Anything).
		Run(func(args mock.Arguments) {
			sent = args.Get(2).([]any)
		}).
		Return(scanUsage(model.Usage{ID: "u-1", ClientID: &clientID})).Once()

	err := svc.Record(ctx, model.Usage{
		ClientID:   &clientID,
		Path:       "/api/v1/nid-egypt",
		Method:     "POST",
		StatusCode: 200,
		Duration:   0.042,
		Timestamp:  time.Now(),
	})

	require.NoError(t, err)
	// Column order follows the schema: id, client_id, path, ...
	require.GreaterOrEqual(t, len(sent), 2)
	assert.Equal(t, "c-1", sent[1])
	// No relation-existence query runs; validation is suppressed for usage.
	db.AssertNumberOfCalls(t, "QueryRow", 1)
	db.AssertExpectations(t)
}

// ---------- List ----------

func TestUsageService_List(t *testing.T) {
	ctx := context.Background()
	db := &mockDB{}
	svc := NewUsageService(db, zerolog.Nop())

	rows := newMockRows(
		func(dest ...any) error {
			*dest[0].(*string) = "u-1"
			*dest[2].(*string) = "/api/v1/nid-egypt"
			return nil
		},
		func(dest ...any) error {
			*dest[0].(*string) = "u-2"
			*dest[2].(*string) = "/api/v1/clients"
			return nil
		},
	)
	db.On("Query", ctx, sqlContains("FROM api_usage", "ORDER BY"), mock.Anything).
		Return(rows, nil).Once()

	list, err := svc.List(ctx, store.Page{Limit: 50})

	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "u-1", list[0].ID)
	assert.Equal(t, "/api/v1/clients", list[1].Path)
	db.AssertExpectations(t)
}

// ---------- FilterParams ----------

func TestUsageService_FilterParams_ByClient(t *testing.T) {
	ctx := context.Background()
	db := &mockDB{}
	svc := NewUsageService(db, zerolog.Nop())

	clientID := "c-1"
	db.On("Query", ctx, sqlContains("FROM api_usage", "client_id = $1"), mock.Anything).
		Return(newMockRows(func(dest ...any) error {
			*dest[0].(*string) = "u-1"
			*dest[1].(**string) = &clientID
			return nil
		}), nil).Once()

	list, err := svc.FilterParams(ctx, store.Page{}, store.Fields{"client_id": "c-1", "method": nil})

	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].ClientID)
	assert.Equal(t, "c-1", *list[0].ClientID)
	db.AssertExpectations(t)
}

func TestUsageService_FilterParams_UnknownField(t *testing.T) {
	ctx := context.Background()
	db := &mockDB{}
	svc := NewUsageService(db, zerolog.Nop())

	_, err := svc.FilterParams(ctx, store.Page{}, store.Fields{"verb": "POST"})

	var vErr *store.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.EqualError(t, err, "invalid filter field: verb")
	db.AssertExpectations(t)
}

// ---------- Count ----------

func TestUsageService_Count(t *testing.T) {
	ctx := context.Background()
	db := &mockDB{}
	svc := NewUsageService(db, zerolog.Nop())

	db.On("QueryRow", ctx, sqlContains("SELECT count(*) FROM api_usage", "client_id = $1"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			*dest[0].(*int64) = 42
			return nil
		}}).Once()

	n, err := svc.Count(ctx, store.Fields{"client_id": "c-1"})

	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	db.AssertExpectations(t)
}
