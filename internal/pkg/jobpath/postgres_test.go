package jobpath

import (
	"context"
	"errors"
	"testing"

	"jobmon/internal/pkg/client/postgres"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	vals []string
	err  error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		*(d.(*string)) = r.vals[i]
	}
	return nil
}

type pool struct{ row row }

func (p *pool) Ping(context.Context) error { return nil }
func (p *pool) Close()                     {}
func (p *pool) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}
func (p *pool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}
func (p *pool) QueryRow(context.Context, string, ...any) pgx.Row { return p.row }

func TestPostgresStore_Get(t *testing.T) {
	s := NewPostgresStore(postgres.NewWithPool(&pool{row: row{vals: []string{"/o", ""}}}))
	e, found, err := s.Get(context.Background(), "A", "7")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, Entry{StdoutPath: "/o"}, e)

	s = NewPostgresStore(postgres.NewWithPool(&pool{row: row{err: pgx.ErrNoRows}}))
	_, found, err = s.Get(context.Background(), "A", "7")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPostgresStore_Merge(t *testing.T) {
	s := NewPostgresStore(postgres.NewWithPool(&pool{row: row{vals: []string{"/o", "/e"}}}))
	res, err := s.Merge(context.Background(), "A", "7", Entry{StderrPath: "/e"})
	require.NoError(t, err)
	assert.True(t, res.Persisted)
	assert.Equal(t, Entry{StdoutPath: "/o", StderrPath: "/e"}, res.Entry)

	s = NewPostgresStore(postgres.NewWithPool(&pool{row: row{err: errors.New("connection reset")}}))
	res, err = s.Merge(context.Background(), "A", "7", Entry{StderrPath: "/e"})
	require.Error(t, err)
	assert.False(t, res.Persisted)
	assert.Equal(t, "/e", res.Entry.StderrPath)
}

// flakyPool 读取成功, upsert 失败.
type flakyPool struct {
	pool
	calls int
}

func (p *flakyPool) QueryRow(context.Context, string, ...any) pgx.Row {
	p.calls++
	if p.calls == 1 {
		return row{err: errors.New("deadlock detected")}
	}
	return row{vals: []string{"/o", ""}}
}

func TestPostgresStore_MergeFailureKeepsExistingRow(t *testing.T) {
	s := NewPostgresStore(postgres.NewWithPool(&flakyPool{}))
	res, err := s.Merge(context.Background(), "A", "7", Entry{StderrPath: "/e"})
	require.Error(t, err)
	assert.False(t, res.Persisted)
	assert.Equal(t, Entry{StdoutPath: "/o", StderrPath: "/e"}, res.Entry)
}
