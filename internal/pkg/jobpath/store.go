// Package jobpath 持久化已解析出的作业输出文件路径, 以 (集群, 作业 ID) 为键.
//
// 缓存条目一旦写入便不会自动失效: 同一集群上复用同一作业 ID 的新作业会读到旧路径.
package jobpath

import "context"

// Entry 作业的输出文件路径, 空字符串表示未知.
type Entry struct {
	StdoutPath string `json:"stdout_path,omitempty"`
	StderrPath string `json:"stderr_path,omitempty"`
}

// Empty 两个路径均未知.
func (e Entry) Empty() bool { return e.StdoutPath == "" && e.StderrPath == "" }

// Merge 以 update 中的非空字段覆盖 e, 未涉及的字段保持不变.
func (e Entry) Merge(update Entry) Entry {
	if update.StdoutPath != "" {
		e.StdoutPath = update.StdoutPath
	}
	if update.StderrPath != "" {
		e.StderrPath = update.StderrPath
	}
	return e
}

// MergeResult 合并后的条目以及是否已成功持久化.
type MergeResult struct {
	Entry     Entry
	Persisted bool
}

// Store 作业路径缓存.
type Store interface {
	// Get 返回缓存条目, found 表示存在至少一个已知路径.
	Get(ctx context.Context, cluster, jobID string) (e Entry, found bool, err error)
	// Merge 将 e 中的非空字段合并进缓存. 持久化失败时返回 error, 同时 MergeResult.Entry 仍为合并后的值.
	Merge(ctx context.Context, cluster, jobID string, e Entry) (MergeResult, error)
}
