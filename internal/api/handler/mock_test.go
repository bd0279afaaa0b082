package handler

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/mock"
)

// handlerMockDB implements store.DB for handler tests that wire real
// services over a mocked database.
type handlerMockDB struct {
	mock.Mock
}

func (m *handlerMockDB) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgconn.CommandTag), args.Error(1)
}

func (m *handlerMockDB) Query(ctx context.Context, sql string, arguments ...any) (pgx.Rows, error) {
	args := m.Called(ctx, sql, arguments)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Rows), args.Error(1)
}

func (m *handlerMockDB) QueryRow(ctx context.Context, sql string, arguments ...any) pgx.Row {
	args := m.Called(ctx, sql, arguments)
	return args.Get(0).(pgx.Row)
}

type handlerMockRow struct {
	scanFunc func(dest ...any) error
}

func (r *handlerMockRow) Scan(dest ...any) error {
	return r.scanFunc(dest...)
}

// handlerMockRows feeds a fixed sequence of scan functions to Filter-style
// queries.
type handlerMockRows struct {
	scanFuncs []func(dest ...any) error
	idx       int
}

func (r *handlerMockRows) Close()                                       {}
func (r *handlerMockRows) Err() error                                   { return nil }
func (r *handlerMockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *handlerMockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *handlerMockRows) Next() bool {
	return r.idx < len(r.scanFuncs)
}
func (r *handlerMockRows) Scan(dest ...any) error {
	err := r.scanFuncs[r.idx](dest...)
	r.idx++
	return err
}
func (r *handlerMockRows) Values() ([]any, error) { return nil, nil }
func (r *handlerMockRows) RawValues() [][]byte    { return nil }
func (r *handlerMockRows) Conn() *pgx.Conn        { return nil }
