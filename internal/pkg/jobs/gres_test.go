package jobs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGPUIndices(t *testing.T) {
	cases := map[string][]int{
		"gres/gpu:a100:2(IDX:2-3)": {2, 3},
		"gpu:1(IDX:1)":             {1},
		"gpu:3(IDX:0,2-3)":         {0, 2, 3},
		"gpu:4(IDX:0-1),mps:0":     {0, 1},
		"gres/gpu:4":               {},
		"(null)":                   {},
		"gpu:0(IDX:N/A)":           {},
		"":                         {},
	}
	for gres, want := range cases {
		set, err := ParseGPUIndices(gres)
		require.NoError(t, err, gres)
		assert.Equal(t, want, set.Sorted(), gres)
	}
}

func TestParseGPUIndices_Invalid(t *testing.T) {
	for _, gres := range []string{"gpu:2(IDX:x)", "gpu:2(IDX:3-1)", "gpu:2(IDX:1-y)"} {
		_, err := ParseGPUIndices(gres)
		assert.ErrorIs(t, err, ErrParse, gres)
	}
}

func TestGPUSet_Contains(t *testing.T) {
	assert.True(t, GPUSet{}.Contains(7))
	set := GPUSet{2: {}, 3: {}}
	assert.True(t, set.Contains(2))
	assert.False(t, set.Contains(0))
}

func TestParseGPUIndices_RangeIsBounded(t *testing.T) {
	for _, gres := range []string{
		"gres/gpu:4(IDX:0-2000000000)",
		"gres/gpu:4(IDX:0-9223372036854775807)",
		"gres/gpu:4(IDX:0-4000,5000-6000)",
	} {
		_, err := ParseGPUIndices(gres)
		assert.ErrorIs(t, err, ErrParse, gres)
	}

	set, err := ParseGPUIndices("gres/gpu:4(IDX:0-4095)")
	require.NoError(t, err)
	assert.Len(t, set, 4096)
}
