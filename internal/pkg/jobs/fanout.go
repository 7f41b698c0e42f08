package jobs

import (
	"context"
	"log/slog"

	"jobmon/internal/pkg/client/exec"
	ctime "jobmon/internal/pkg/common/time"
	"jobmon/internal/pkg/log"

	"golang.org/x/sync/errgroup"
)

// ClusterReport 单个集群的采集结果. Error 非空时 Jobs 与 RecentJobs 均为空.
type ClusterReport struct {
	Cluster    string              `json:"cluster"`
	Error      *string             `json:"error"`
	Jobs       []JobRecord         `json:"jobs"`
	RecentJobs []FinishedJobRecord `json:"recent_jobs"`
	FetchedAt  ctime.Time          `json:"fetched_at"`
}

// Collector 并发采集多个集群的作业列表.
type Collector struct {
	runner exec.Runner
	logger *slog.Logger
}

func NewCollector(runner exec.Runner, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{runner: runner, logger: logger}
}

// Roster 查询集群上当前用户的在线作业. 失败时同时返回原始结果, 便于生成面向用户的错误描述.
func (c *Collector) Roster(ctx context.Context, cluster string) ([]JobRecord, exec.Result, error) {
	res := c.runner.Run(ctx, cluster, RosterCommand()...)
	if !res.OK() {
		return nil, res, res.Err()
	}
	return ParseRoster(res.Stdout), res, nil
}

// History 查询集群上最近结束的 count 个作业, 最新在前.
func (c *Collector) History(ctx context.Context, cluster string, count int) ([]FinishedJobRecord, error) {
	res := c.runner.Run(ctx, cluster, HistoryCommand()...)
	if !res.OK() {
		return nil, res.Err()
	}
	return ParseHistory(res.Stdout, count), nil
}

// FetchCluster 依次查询在线作业与历史作业. 历史查询失败只记录日志.
func (c *Collector) FetchCluster(ctx context.Context, cluster string, recentCount int) (report ClusterReport) {
	report = ClusterReport{
		Cluster:    cluster,
		Jobs:       []JobRecord{},
		RecentJobs: []FinishedJobRecord{},
	}
	defer func() { report.FetchedAt = ctime.Now() }()

	logger := log.FromContextOr(ctx, c.logger)
	roster, res, err := c.Roster(ctx, cluster)
	if err != nil {
		msg := resultMessage(res, "")
		logger.Warn("unable to fetch job roster", "cluster", cluster, "outcome", res.Outcome.String(), "err", msg)
		report.Error = &msg
		return report
	}
	report.Jobs = roster

	recent, err := c.History(ctx, cluster, recentCount)
	if err != nil {
		logger.Warn("unable to fetch job history", "cluster", cluster, "err", err)
		return report
	}
	report.RecentJobs = recent
	return report
}

// Collect 每个集群一个任务并发采集, 结果顺序与 clusters 一致. 单个集群失败不影响其他集群.
func (c *Collector) Collect(ctx context.Context, clusters []string, recentCount int) []ClusterReport {
	reports := make([]ClusterReport, len(clusters))
	if len(clusters) == 0 {
		return reports
	}

	var g errgroup.Group
	g.SetLimit(len(clusters))
	for i, cluster := range clusters {
		i, cluster := i, cluster
		g.Go(func() error {
			reports[i] = c.FetchCluster(ctx, cluster, recentCount)
			return nil
		})
	}
	_ = g.Wait()
	return reports
}
