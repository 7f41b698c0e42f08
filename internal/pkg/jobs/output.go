package jobs

import (
	"context"
	"log/slog"
	"strings"

	"jobmon/internal/pkg/client/exec"
	"jobmon/internal/pkg/jobpath"
	"jobmon/internal/pkg/log"
	"jobmon/internal/pkg/metrics"

	"golang.org/x/sync/singleflight"
)

const (
	DefaultTailLines = 50
	MinTailLines     = 25
	MaxTailLines     = 50
)

// SourceCache 路径来自缓存, 未发起远程调用.
const SourceCache = "cache"

// PathStrategy 一种输出文件路径发现方式. 返回的 Entry 可以只包含部分路径.
type PathStrategy interface {
	Name() string
	Resolve(ctx context.Context, cluster, jobID string) (jobpath.Entry, error)
}

// ScontrolStrategy 从 scontrol show job 的 StdOut/StdErr 字段读取路径.
type ScontrolStrategy struct {
	Runner exec.Runner
}

func (ScontrolStrategy) Name() string { return "scontrol" }

func (s ScontrolStrategy) Resolve(ctx context.Context, cluster, jobID string) (jobpath.Entry, error) {
	res := s.Runner.Run(ctx, cluster, JobDetailCommand(jobID)...)
	if !res.OK() {
		return jobpath.Entry{}, res.Err()
	}
	d := ParseJobDetail(res.Stdout)
	return jobpath.Entry{StdoutPath: d.StdOut, StderrPath: d.StdErr}, nil
}

// WorkDirSearchStrategy 通过 sacct 获取作业工作目录, 再在目录中按文件名查找 .out/.err 文件.
// 适用于已经离开 scontrol 记录的作业.
type WorkDirSearchStrategy struct {
	Runner exec.Runner
}

func (WorkDirSearchStrategy) Name() string { return "workdir-search" }

func (s WorkDirSearchStrategy) Resolve(ctx context.Context, cluster, jobID string) (jobpath.Entry, error) {
	res := s.Runner.Run(ctx, cluster, WorkDirCommand(jobID)...)
	if !res.OK() {
		return jobpath.Entry{}, res.Err()
	}
	dir := firstLine(res.Stdout)
	if dir == "" {
		return jobpath.Entry{}, nil
	}

	res = s.Runner.Run(ctx, cluster, OutputSearchCommand(dir, jobID)...)
	// find 遇到无权限的目录项时退出码非 0, 但已找到的结果仍然有效.
	if !res.OK() && (res.Outcome != exec.OutcomeExited || strings.TrimSpace(res.Stdout) == "") {
		return jobpath.Entry{}, res.Err()
	}
	var e jobpath.Entry
	for _, line := range strings.Split(res.Stdout, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case e.StdoutPath == "" && strings.HasSuffix(line, ".out"):
			e.StdoutPath = line
		case e.StderrPath == "" && strings.HasSuffix(line, ".err"):
			e.StderrPath = line
		}
	}
	return e, nil
}

// Resolution 路径解析结果.
type Resolution struct {
	Paths     jobpath.Entry
	Source    string // cache 或策略名
	Persisted bool   // 结果是否已写入缓存
}

// OutputResolver 解析作业输出文件路径并读取尾部内容. 优先使用缓存, 其次依次尝试各策略.
type OutputResolver struct {
	runner     exec.Runner
	store      jobpath.Store
	strategies []PathStrategy
	tailLines  int
	metrics    *metrics.Metrics
	logger     *slog.Logger
	group      singleflight.Group
}

type OutputOption func(*OutputResolver)

// WithWorkDirSearch 在 scontrol 之后追加工作目录搜索策略.
func WithWorkDirSearch() OutputOption {
	return func(r *OutputResolver) {
		r.strategies = append(r.strategies, WorkDirSearchStrategy{Runner: r.runner})
	}
}

// WithStrategies 替换全部策略.
func WithStrategies(strategies ...PathStrategy) OutputOption {
	return func(r *OutputResolver) {
		r.strategies = strategies
	}
}

// WithTailLines 默认读取的行数, 超出 [MinTailLines, MaxTailLines] 时取边界值.
func WithTailLines(n int) OutputOption {
	return func(r *OutputResolver) {
		r.tailLines = ClampTailLines(n)
	}
}

func WithMetrics(m *metrics.Metrics) OutputOption {
	return func(r *OutputResolver) {
		r.metrics = m
	}
}

func NewOutputResolver(runner exec.Runner, store jobpath.Store, logger *slog.Logger, opts ...OutputOption) *OutputResolver {
	if logger == nil {
		logger = slog.Default()
	}
	r := &OutputResolver{
		runner:     runner,
		store:      store,
		strategies: []PathStrategy{ScontrolStrategy{Runner: runner}},
		tailLines:  DefaultTailLines,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ClampTailLines n <= 0 时返回 DefaultTailLines.
func ClampTailLines(n int) int {
	switch {
	case n <= 0:
		return DefaultTailLines
	case n < MinTailLines:
		return MinTailLines
	case n > MaxTailLines:
		return MaxTailLines
	}
	return n
}

// ResolvePaths 返回作业输出文件路径. 缓存中存在任一路径时直接返回; refresh 为 true 时重新解析并合并缺失字段.
// 所有策略都未得到路径时返回 ErrOutputNotFound; 若每个策略都因连接问题失败, 返回连接错误.
func (r *OutputResolver) ResolvePaths(ctx context.Context, cluster, jobID string, refresh bool) (Resolution, error) {
	cached, found, err := r.store.Get(ctx, cluster, jobID)
	r.metrics.ObserveCacheLookup(found, err)
	if err != nil {
		log.FromContextOr(ctx, r.logger).Warn("unable to read job path cache", "cluster", cluster, "jobid", jobID, "err", err)
		cached, found = jobpath.Entry{}, false
	}
	if found && !refresh {
		return Resolution{Paths: cached, Source: SourceCache, Persisted: true}, nil
	}

	key := cluster + "/" + jobID
	if refresh {
		key += "?refresh"
	}
	// 解析在共享的上下文中进行, 某个调用方取消不会影响等待同一结果的其他调用方.
	// 远程调用仍受 Runner 超时约束.
	ch := r.group.DoChan(key, func() (interface{}, error) {
		return r.resolve(context.WithoutCancel(ctx), cluster, jobID, cached, found)
	})
	select {
	case <-ctx.Done():
		return Resolution{}, ctx.Err()
	case v := <-ch:
		if v.Err != nil {
			return Resolution{}, v.Err
		}
		return v.Val.(Resolution), nil
	}
}

func (r *OutputResolver) resolve(ctx context.Context, cluster, jobID string, cached jobpath.Entry, found bool) (Resolution, error) {
	var (
		resolved     jobpath.Entry
		source       string
		transportErr error
		allTransport = true
	)
	for _, s := range r.strategies {
		if !resolved.Empty() {
			break
		}
		e, err := s.Resolve(ctx, cluster, jobID)
		if err != nil {
			log.FromContextOr(ctx, r.logger).Warn("output path strategy failed", "cluster", cluster, "jobid", jobID, "strategy", s.Name(), "err", err)
			if exec.IsTransport(err) {
				transportErr = err
			} else {
				allTransport = false
			}
			continue
		}
		allTransport = false
		if !e.Empty() {
			resolved, source = e, s.Name()
		}
	}

	if resolved.Empty() {
		switch {
		case found:
			return Resolution{Paths: cached, Source: SourceCache, Persisted: true}, nil
		case allTransport && transportErr != nil:
			return Resolution{}, transportErr
		}
		return Resolution{}, ErrOutputNotFound
	}

	res, err := r.store.Merge(ctx, cluster, jobID, resolved)
	r.metrics.ObserveCacheMerge(res.Persisted)
	if err != nil {
		log.FromContextOr(ctx, r.logger).Warn("unable to cache job paths", "cluster", cluster, "jobid", jobID, "err", err)
	}
	if !res.Persisted {
		res.Entry = cached.Merge(resolved)
	}
	log.FromContextOr(ctx, r.logger).Debug("job paths resolved", "cluster", cluster, "jobid", jobID, "source", source, "persisted", res.Persisted)
	return Resolution{Paths: res.Entry, Source: source, Persisted: res.Persisted}, nil
}

// JobOutput 作业输出尾部内容. 每个流独立报告内容或错误.
type JobOutput struct {
	Cluster     string `json:"cluster"`
	JobID       string `json:"jobid"`
	Stdout      string `json:"stdout,omitempty"`
	StdoutPath  string `json:"stdout_path,omitempty"`
	StdoutError string `json:"stdout_error,omitempty"`
	Stderr      string `json:"stderr,omitempty"`
	StderrPath  string `json:"stderr_path,omitempty"`
	StderrError string `json:"stderr_error,omitempty"`
	Lines       int    `json:"lines"`
	Source      string `json:"source"`
	Persisted   bool   `json:"cache_persisted"`
}

// FetchOptions FetchOutput 参数. Lines 为 0 时使用解析器的默认行数.
type FetchOptions struct {
	Refresh bool
	Lines   int
}

// FetchOutput 解析路径后分别读取 stdout 与 stderr 的最后若干行.
func (r *OutputResolver) FetchOutput(ctx context.Context, cluster, jobID string, opts FetchOptions) (JobOutput, error) {
	out := JobOutput{Cluster: cluster, JobID: jobID, Lines: r.tailLines}
	if opts.Lines != 0 {
		out.Lines = ClampTailLines(opts.Lines)
	}

	res, err := r.ResolvePaths(ctx, cluster, jobID, opts.Refresh)
	if err != nil {
		return out, err
	}
	out.Source, out.Persisted = res.Source, res.Persisted

	if p := res.Paths.StdoutPath; p != "" {
		out.StdoutPath = p
		out.Stdout, out.StdoutError = r.tail(ctx, cluster, p, out.Lines, "stdout")
	}
	if p := res.Paths.StderrPath; p != "" {
		out.StderrPath = p
		out.Stderr, out.StderrError = r.tail(ctx, cluster, p, out.Lines, "stderr")
	}
	return out, nil
}

func (r *OutputResolver) tail(ctx context.Context, cluster, path string, lines int, stream string) (content, errMsg string) {
	res := r.runner.Run(ctx, cluster, TailCommand(path, lines)...)
	if res.OK() {
		return res.Stdout, ""
	}
	msg := resultMessage(res, "failed to read "+stream+" file")
	log.FromContextOr(ctx, r.logger).Warn("unable to read job output", "cluster", cluster, "path", path, "stream", stream, "err", msg)
	return "", msg
}

