package jobs

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// maxGPUIndices 单个 GRES 描述展开后的序号数上限.
const maxGPUIndices = maxHostlistNodes

// GPUSet 作业被分配的 GPU 序号集合. 空集合表示不过滤.
type GPUSet map[int]struct{}

// Contains 空集合包含任意序号.
func (s GPUSet) Contains(idx int) bool {
	if len(s) == 0 {
		return true
	}
	_, ok := s[idx]
	return ok
}

// Sorted 返回升序序号列表.
func (s GPUSet) Sorted() []int {
	out := make([]int, 0, len(s))
	for i := range s {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// ParseGPUIndices 读取 GRES 描述中的 IDX 列表, 如 "gres/gpu:a100:2(IDX:2-3)".
// 支持 IDX:1, IDX:2-3, IDX:0,2-3. 没有 IDX 或 IDX:N/A 时返回空集合.
func ParseGPUIndices(gres string) (GPUSet, error) {
	set := GPUSet{}
	_, after, ok := strings.Cut(gres, "IDX:")
	if !ok {
		return set, nil
	}
	if i := strings.IndexByte(after, ')'); i >= 0 {
		after = after[:i]
	}
	after = strings.TrimSpace(after)
	if after == "" || after == "N/A" {
		return set, nil
	}

	for _, item := range strings.Split(after, ",") {
		lo, hi, isRange := strings.Cut(strings.TrimSpace(item), "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("%w: gres %q: invalid index %q", ErrParse, gres, lo)
		}
		stop := start
		if isRange {
			if stop, err = strconv.Atoi(hi); err != nil {
				return nil, fmt.Errorf("%w: gres %q: invalid index %q", ErrParse, gres, hi)
			}
		}
		if stop < start || start < 0 {
			return nil, fmt.Errorf("%w: gres %q: invalid range %q", ErrParse, gres, item)
		}
		if stop-start >= maxGPUIndices || len(set)+stop-start >= maxGPUIndices {
			return nil, fmt.Errorf("%w: gres %q: more than %d gpu indices", ErrParse, gres, maxGPUIndices)
		}
		for i := start; i <= stop; i++ {
			set[i] = struct{}{}
		}
	}
	return set, nil
}
