package jobpath

import (
	"context"

	"jobmon/internal/pkg/client/postgres"
)

// PostgresStore 每个 (cluster, job id) 一行, 合并通过单条 upsert 原子完成.
type PostgresStore struct {
	db *postgres.Client
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *postgres.Client) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Get(ctx context.Context, cluster, jobID string) (Entry, bool, error) {
	stdout, stderr, found, err := s.db.GetJobPaths(ctx, cluster, jobID)
	if err != nil || !found {
		return Entry{}, false, err
	}
	e := Entry{StdoutPath: stdout, StderrPath: stderr}
	return e, !e.Empty(), nil
}

func (s *PostgresStore) Merge(ctx context.Context, cluster, jobID string, e Entry) (MergeResult, error) {
	stdout, stderr, err := s.db.MergeJobPaths(ctx, cluster, jobID, e.StdoutPath, e.StderrPath)
	if err != nil {
		// 写入失败时尽量以已有记录为底合并, 读取也失败时只能返回本次字段.
		if cur, _, gerr := s.Get(ctx, cluster, jobID); gerr == nil {
			return MergeResult{Entry: cur.Merge(e)}, err
		}
		return MergeResult{Entry: e}, err
	}
	return MergeResult{Entry: Entry{StdoutPath: stdout, StderrPath: stderr}, Persisted: true}, nil
}
