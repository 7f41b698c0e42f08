package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"jobmon/internal/pkg/client/exec"
	"jobmon/internal/pkg/log"
)

// GPUSample nvidia-smi 输出中的一块 GPU. 除序号外均保留原始文本.
type GPUSample struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	GPUUtil     string `json:"gpu_util"`
	MemUtil     string `json:"mem_util"`
	MemUsed     string `json:"mem_used"`
	MemTotal    string `json:"mem_total"`
	Temperature string `json:"temperature"`
}

// NodeGPUReport 单个计算节点的 GPU 采集结果. Error 非空时 GPUs 为空.
type NodeGPUReport struct {
	Node  string      `json:"node"`
	Error *string     `json:"error"`
	GPUs  []GPUSample `json:"gpus"`
}

// GPUReport 作业的 GPU 归属与各节点采集结果.
type GPUReport struct {
	Cluster    string          `json:"cluster"`
	JobID      string          `json:"jobid"`
	NodeList   string          `json:"nodelist"`
	Gres       string          `json:"gres"`
	GPUIndices []int           `json:"gpu_indices"`
	Nodes      []NodeGPUReport `json:"nodes"`
}

const gpuSampleFields = 7

// ParseGPUSamples 解析 nvidia-smi csv 输出, 字段少于 7 个或序号不是整数的行被忽略.
func ParseGPUSamples(out string) []GPUSample {
	samples := make([]GPUSample, 0)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.Split(line, ",")
		if len(parts) < gpuSampleFields {
			continue
		}
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		idx, err := strconv.Atoi(parts[0])
		if err != nil {
			continue
		}
		samples = append(samples, GPUSample{
			Index:       idx,
			Name:        parts[1],
			GPUUtil:     parts[2],
			MemUtil:     parts[3],
			MemUsed:     parts[4],
			MemTotal:    parts[5],
			Temperature: parts[6],
		})
	}
	return samples
}

// FilterGPUs 只保留 set 中的 GPU, set 为空时原样返回.
func FilterGPUs(samples []GPUSample, set GPUSet) []GPUSample {
	out := make([]GPUSample, 0, len(samples))
	for _, s := range samples {
		if set.Contains(s.Index) {
			out = append(out, s)
		}
	}
	return out
}

// GPUResolver 查询作业所在节点及 GPU 序号, 逐个节点采集利用率.
type GPUResolver struct {
	runner exec.Runner
	logger *slog.Logger
}

func NewGPUResolver(runner exec.Runner, logger *slog.Logger) *GPUResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &GPUResolver{runner: runner, logger: logger}
}

// Allocation 返回作业的节点列表与 GRES 描述. 作业不在运行时返回 ErrJobNotRunning.
func (r *GPUResolver) Allocation(ctx context.Context, cluster, jobID string) (nodelist, gres string, err error) {
	res := r.runner.Run(ctx, cluster, GPUAllocationCommand(jobID)...)
	if !res.OK() {
		return "", "", res.Err()
	}
	line := firstLine(res.Stdout)
	if line == "" {
		return "", "", ErrJobNotRunning
	}
	nodelist, gres, ok := strings.Cut(line, "|")
	if !ok {
		return "", "", fmt.Errorf("%w: allocation line %q", ErrParse, line)
	}
	nodelist = strings.TrimSpace(nodelist)
	if nodelist == "" {
		return "", "", ErrJobNotRunning
	}
	return nodelist, strings.TrimSpace(gres), nil
}

// Resolve 按节点顺序依次采集, 单个节点失败记录在该节点的 Error 中, 不中断其余节点.
func (r *GPUResolver) Resolve(ctx context.Context, cluster, jobID string) (GPUReport, error) {
	report := GPUReport{Cluster: cluster, JobID: jobID}

	nodelist, gres, err := r.Allocation(ctx, cluster, jobID)
	if err != nil {
		return report, err
	}
	report.NodeList, report.Gres = nodelist, gres

	set, err := ParseGPUIndices(gres)
	if err != nil {
		return report, err
	}
	report.GPUIndices = set.Sorted()

	nodes, err := ExpandHostlist(nodelist)
	if err != nil {
		return report, err
	}

	report.Nodes = make([]NodeGPUReport, 0, len(nodes))
	for _, node := range nodes {
		report.Nodes = append(report.Nodes, r.sample(ctx, cluster, node, set))
	}
	return report, nil
}

func (r *GPUResolver) sample(ctx context.Context, cluster, node string, set GPUSet) NodeGPUReport {
	rep := NodeGPUReport{Node: node, GPUs: []GPUSample{}}
	res := r.runner.Run(ctx, cluster, GPUTelemetryCommand(node)...)
	if !res.OK() {
		msg := resultMessage(res, "failed to get GPU info")
		log.FromContextOr(ctx, r.logger).Warn("unable to sample node gpus", "cluster", cluster, "node", node, "outcome", res.Outcome.String(), "err", msg)
		rep.Error = &msg
		return rep
	}
	rep.GPUs = FilterGPUs(ParseGPUSamples(res.Stdout), set)
	return rep
}

func firstLine(out string) string {
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
