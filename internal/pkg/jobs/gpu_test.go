package jobs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nvidiaSmiOut = `0, NVIDIA A100-SXM4-40GB, 0, 0, 3, 40960, 31
1, NVIDIA A100-SXM4-40GB, 0, 0, 3, 40960, 30
2, NVIDIA A100-SXM4-40GB, 97, 61, 30211, 40960, 64
3, NVIDIA A100-SXM4-40GB, 95, 58, 30187, 40960, 62
`

func TestParseGPUSamples(t *testing.T) {
	samples := ParseGPUSamples(nvidiaSmiOut + "garbage line\nx, a, b, c, d, e, f\n")
	require.Len(t, samples, 4)
	assert.Equal(t, GPUSample{
		Index:       2,
		Name:        "NVIDIA A100-SXM4-40GB",
		GPUUtil:     "97",
		MemUtil:     "61",
		MemUsed:     "30211",
		MemTotal:    "40960",
		Temperature: "64",
	}, samples[2])
}

func TestGPUResolver_FiltersByJobIndices(t *testing.T) {
	r := newFakeRunner().
		on(ok("gpu[01-02]|gres/gpu:a100:2(IDX:2-3)\n"), "juwels", GPUAllocationCommand("4242")...).
		on(ok(nvidiaSmiOut), "juwels", GPUTelemetryCommand("gpu01")...).
		on(timedOut(), "juwels", GPUTelemetryCommand("gpu02")...)

	report, err := NewGPUResolver(r, nil).Resolve(context.Background(), "juwels", "4242")
	require.NoError(t, err)

	assert.Equal(t, "gpu[01-02]", report.NodeList)
	assert.Equal(t, []int{2, 3}, report.GPUIndices)
	require.Len(t, report.Nodes, 2)

	assert.Equal(t, "gpu01", report.Nodes[0].Node)
	assert.Nil(t, report.Nodes[0].Error)
	require.Len(t, report.Nodes[0].GPUs, 2)
	assert.Equal(t, 2, report.Nodes[0].GPUs[0].Index)
	assert.Equal(t, 3, report.Nodes[0].GPUs[1].Index)

	assert.Equal(t, "gpu02", report.Nodes[1].Node)
	require.NotNil(t, report.Nodes[1].Error)
	assert.Equal(t, "SSH connection timed out", *report.Nodes[1].Error)
	assert.Empty(t, report.Nodes[1].GPUs)
}

func TestGPUResolver_NoIndexKeepsAllGPUs(t *testing.T) {
	r := newFakeRunner().
		on(ok("jwb0012|gres/gpu:4\n"), "juwels", GPUAllocationCommand("7")...).
		on(ok(nvidiaSmiOut), "juwels", GPUTelemetryCommand("jwb0012")...)

	report, err := NewGPUResolver(r, nil).Resolve(context.Background(), "juwels", "7")
	require.NoError(t, err)
	require.Len(t, report.Nodes, 1)
	assert.Len(t, report.Nodes[0].GPUs, 4)
}

func TestGPUResolver_NodeFailureUsesStderr(t *testing.T) {
	r := newFakeRunner().
		on(ok("n1,n2|gpu:1(IDX:0)"), "juwels", GPUAllocationCommand("7")...).
		on(exited(127, "bash: nvidia-smi: command not found\n"), "juwels", GPUTelemetryCommand("n1")...).
		on(exited(255, ""), "juwels", GPUTelemetryCommand("n2")...)

	report, err := NewGPUResolver(r, nil).Resolve(context.Background(), "juwels", "7")
	require.NoError(t, err)
	require.Len(t, report.Nodes, 2)
	assert.Equal(t, "bash: nvidia-smi: command not found", *report.Nodes[0].Error)
	assert.Equal(t, "failed to get GPU info", *report.Nodes[1].Error)
}

func TestGPUResolver_NotRunning(t *testing.T) {
	r := newFakeRunner().on(ok(""), "juwels", GPUAllocationCommand("7")...)
	_, err := NewGPUResolver(r, nil).Resolve(context.Background(), "juwels", "7")
	assert.ErrorIs(t, err, ErrJobNotRunning)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, 1, r.total())
}

func TestGPUResolver_PendingJobHasNoNodes(t *testing.T) {
	r := newFakeRunner().on(ok("|gres/gpu:4\n"), "juwels", GPUAllocationCommand("7")...)
	_, err := NewGPUResolver(r, nil).Resolve(context.Background(), "juwels", "7")
	assert.ErrorIs(t, err, ErrJobNotRunning)
}

func TestGPUResolver_MalformedAllocation(t *testing.T) {
	r := newFakeRunner().on(ok("gpu01 gres/gpu:4"), "juwels", GPUAllocationCommand("7")...)
	_, err := NewGPUResolver(r, nil).Resolve(context.Background(), "juwels", "7")
	assert.ErrorIs(t, err, ErrParse)
}

func TestGPUResolver_AllocationTimeout(t *testing.T) {
	r := newFakeRunner().on(timedOut(), "juwels", GPUAllocationCommand("7")...)
	_, err := NewGPUResolver(r, nil).Resolve(context.Background(), "juwels", "7")
	require.Error(t, err)
	assert.Equal(t, "SSH connection timed out", err.Error())
}

func TestNodeGPUReport_JSON(t *testing.T) {
	b, err := json.Marshal(NodeGPUReport{Node: "n1", GPUs: []GPUSample{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"node":"n1","error":null,"gpus":[]}`, string(b))
}
