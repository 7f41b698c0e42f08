package jobs

import (
	"fmt"
	"strconv"
	"strings"
)

// maxHostlistNodes 单个表达式展开后的节点数上限.
const maxHostlistNodes = 4096

// ExpandHostlist 展开 Slurm 节点列表表达式.
//
//	node01            -> node01
//	node[012-015]     -> node012 node013 node014 node015
//	gpu[01-02,05]     -> gpu01 gpu02 gpu05
//	a01,b[1-2]        -> a01 b1 b2
//	rack[1-2]-n[1-2]  -> rack1-n1 rack1-n2 rack2-n1 rack2-n2
//
// 区间按下界文本的宽度补零.
func ExpandHostlist(expr string) ([]string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return []string{}, nil
	}
	groups, err := splitTopLevel(expr)
	if err != nil {
		return nil, err
	}
	nodes := make([]string, 0, len(groups))
	for _, g := range groups {
		expanded, err := expandGroup(g)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, expanded...)
		if len(nodes) > maxHostlistNodes {
			return nil, fmt.Errorf("%w: hostlist %q expands to more than %d nodes", ErrParse, expr, maxHostlistNodes)
		}
	}
	return nodes, nil
}

// splitTopLevel 按方括号之外的逗号切分.
func splitTopLevel(expr string) ([]string, error) {
	var groups []string
	depth, start := 0, 0
	for i, r := range expr {
		switch r {
		case '[':
			depth++
			if depth > 1 {
				return nil, fmt.Errorf("%w: nested bracket in hostlist %q", ErrParse, expr)
			}
		case ']':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced bracket in hostlist %q", ErrParse, expr)
			}
		case ',':
			if depth == 0 {
				if g := strings.TrimSpace(expr[start:i]); g != "" {
					groups = append(groups, g)
				}
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unbalanced bracket in hostlist %q", ErrParse, expr)
	}
	if g := strings.TrimSpace(expr[start:]); g != "" {
		groups = append(groups, g)
	}
	return groups, nil
}

func expandGroup(group string) ([]string, error) {
	open := strings.IndexByte(group, '[')
	if open < 0 {
		return []string{group}, nil
	}
	end := strings.IndexByte(group[open:], ']')
	if end < 0 {
		return nil, fmt.Errorf("%w: unbalanced bracket in hostlist %q", ErrParse, group)
	}
	end += open
	prefix, inner, rest := group[:open], group[open+1:end], group[end+1:]

	heads, err := expandRanges(inner)
	if err != nil {
		return nil, fmt.Errorf("%w: hostlist %q: %v", ErrParse, group, err)
	}
	tails, err := expandGroup(rest)
	if err != nil {
		return nil, err
	}
	nodes := make([]string, 0, len(heads)*len(tails))
	for _, h := range heads {
		for _, t := range tails {
			nodes = append(nodes, prefix+h+t)
			if len(nodes) > maxHostlistNodes {
				return nil, fmt.Errorf("%w: hostlist %q expands to more than %d nodes", ErrParse, group, maxHostlistNodes)
			}
		}
	}
	return nodes, nil
}

// expandRanges 展开 "012-015,020" 形式的列表, 保留补零宽度.
func expandRanges(list string) ([]string, error) {
	var out []string
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("empty range item")
		}
		lo, hi, isRange := strings.Cut(item, "-")
		start, err := strconv.Atoi(lo)
		if err != nil {
			return nil, fmt.Errorf("invalid range bound %q", lo)
		}
		if !isRange {
			out = append(out, lo)
			continue
		}
		stop, err := strconv.Atoi(hi)
		if err != nil {
			return nil, fmt.Errorf("invalid range bound %q", hi)
		}
		if stop < start {
			return nil, fmt.Errorf("descending range %q", item)
		}
		if stop-start >= maxHostlistNodes {
			return nil, fmt.Errorf("range %q too large", item)
		}
		width := len(lo)
		for n := start; n <= stop; n++ {
			out = append(out, fmt.Sprintf("%0*d", width, n))
		}
	}
	return out, nil
}
