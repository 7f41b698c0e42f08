// Package metrics 提供远程命令执行与作业路径缓存的 Prometheus 指标.
package metrics

import (
	"context"
	"net/http"
	"time"

	"jobmon/internal/pkg/client/exec"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	versioncollector "github.com/prometheus/client_golang/prometheus/collectors/version"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "jobmon"

type Metrics struct {
	registry *prometheus.Registry

	RemoteCommands *prometheus.CounterVec
	RemoteDuration *prometheus.HistogramVec
	CacheLookups   *prometheus.CounterVec
	CacheMerges    *prometheus.CounterVec
}

// New 创建独立的 Registry 并注册全部指标, 包括 Go 运行时与构建信息.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		RemoteCommands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_commands_total",
			Help:      "Remote commands executed, by host, command and outcome.",
		}, []string{"host", "command", "outcome"}),
		RemoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_command_duration_seconds",
			Help:      "Wall-clock duration of remote commands.",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 15},
		}, []string{"host", "command"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_path_cache_lookups_total",
			Help:      "Job path cache lookups, by result (hit, miss, error).",
		}, []string{"result"}),
		CacheMerges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_path_cache_merges_total",
			Help:      "Job path cache merges, by whether the result was persisted.",
		}, []string{"persisted"}),
	}
	reg.MustRegister(
		m.RemoteCommands,
		m.RemoteDuration,
		m.CacheLookups,
		m.CacheMerges,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		versioncollector.NewCollector(namespace),
	)
	return m
}

// Handler 返回 /metrics 的 HTTP 处理器.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 返回底层 Registry, 便于测试读取指标.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveCacheLookup 记录一次缓存查询.
func (m *Metrics) ObserveCacheLookup(hit bool, err error) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.CacheLookups.WithLabelValues("error").Inc()
	case hit:
		m.CacheLookups.WithLabelValues("hit").Inc()
	default:
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}

// ObserveCacheMerge 记录一次缓存合并写入.
func (m *Metrics) ObserveCacheMerge(persisted bool) {
	if m == nil {
		return
	}
	if persisted {
		m.CacheMerges.WithLabelValues("true").Inc()
	} else {
		m.CacheMerges.WithLabelValues("false").Inc()
	}
}

// Instrument 包装 Runner, 统计每次调用的结果与耗时.
func (m *Metrics) Instrument(r exec.Runner) exec.Runner {
	if m == nil {
		return r
	}
	return &instrumentedRunner{next: r, m: m}
}

type instrumentedRunner struct {
	next exec.Runner
	m    *Metrics
}

func (ir *instrumentedRunner) Run(ctx context.Context, host string, args ...string) exec.Result {
	command := "unknown"
	if len(args) > 0 {
		command = args[0]
	}
	start := time.Now()
	res := ir.next.Run(ctx, host, args...)
	ir.m.RemoteDuration.WithLabelValues(host, command).Observe(time.Since(start).Seconds())
	ir.m.RemoteCommands.WithLabelValues(host, command, res.Outcome.String()).Inc()
	return res
}
