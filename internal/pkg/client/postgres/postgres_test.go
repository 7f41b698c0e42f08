package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	vals []string
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		*(d.(*string)) = r.vals[i]
	}
	return nil
}

type fakePool struct {
	row     fakeRow
	sql     string
	args    []any
	execErr error
}

func (p *fakePool) Ping(context.Context) error { return nil }
func (p *fakePool) Close()                     {}
func (p *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	p.sql, p.args = sql, args
	return pgconn.NewCommandTag("CREATE TABLE"), p.execErr
}
func (p *fakePool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}
func (p *fakePool) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	p.sql, p.args = sql, args
	return p.row
}

func TestGetJobPaths(t *testing.T) {
	p := &fakePool{row: fakeRow{vals: []string{"/home/u/slurm-7.out", ""}}}
	c := NewWithPool(p)

	out, errPath, found, err := c.GetJobPaths(context.Background(), "alpha", "7")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/home/u/slurm-7.out", out)
	assert.Equal(t, "", errPath)
	assert.Equal(t, []any{"alpha", "7"}, p.args)
}

func TestGetJobPaths_NoRows(t *testing.T) {
	c := NewWithPool(&fakePool{row: fakeRow{err: pgx.ErrNoRows}})

	_, _, found, err := c.GetJobPaths(context.Background(), "alpha", "7")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMergeJobPaths_KeepsExistingOnEmpty(t *testing.T) {
	p := &fakePool{row: fakeRow{vals: []string{"/o", "/e"}}}
	c := NewWithPool(p)

	out, errPath, err := c.MergeJobPaths(context.Background(), "alpha", "7", "", "/e")
	require.NoError(t, err)
	assert.Equal(t, "/o", out)
	assert.Equal(t, "/e", errPath)
	assert.Contains(t, p.sql, "ON CONFLICT (cluster, job_id) DO UPDATE")
	assert.Contains(t, p.sql, "NULLIF(EXCLUDED.stdout_path, '')")
	assert.Equal(t, []any{"alpha", "7", "", "/e"}, p.args)
}

func TestEnsureJobPathSchema(t *testing.T) {
	p := &fakePool{}
	require.NoError(t, NewWithPool(p).EnsureJobPathSchema(context.Background()))
	assert.Contains(t, p.sql, "CREATE TABLE IF NOT EXISTS job_paths")

	p.execErr = errors.New("permission denied")
	assert.Error(t, NewWithPool(p).EnsureJobPathSchema(context.Background()))
}

func TestPoolOptions(t *testing.T) {
	assert.Empty(t, PoolOptions(0, 0))

	cfg, err := pgxpool.ParseConfig("postgres://jobmon@localhost:5432/jobmon")
	require.NoError(t, err)
	defaultMaxConns := cfg.MaxConns
	for _, o := range PoolOptions(0, time.Minute) {
		o(cfg)
	}
	assert.Equal(t, defaultMaxConns, cfg.MaxConns)
	assert.Equal(t, time.Minute, cfg.MaxConnIdleTime)

	for _, o := range PoolOptions(4, 0) {
		o(cfg)
	}
	assert.Equal(t, int32(4), cfg.MaxConns)
	assert.Equal(t, time.Minute, cfg.MaxConnIdleTime)
}
