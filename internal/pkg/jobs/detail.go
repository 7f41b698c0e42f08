package jobs

import "strings"

// JobDetail scontrol show job 输出中关心的字段. 空字符串表示缺失.
type JobDetail struct {
	JobID    string
	JobState string
	WorkDir  string
	StdOut   string
	StdErr   string
	NodeList string
	Gres     string
}

// ParseJobDetail 扫描 scontrol show job 的 Key=Value 记号. 值为空或 (null) 视为缺失.
// 包含空格的值(如带空格的路径)会被截断, 与 scontrol 的输出格式一致.
func ParseJobDetail(out string) JobDetail {
	var d JobDetail
	fields := map[string]*string{
		"JobId":       &d.JobID,
		"JobState":    &d.JobState,
		"WorkDir":     &d.WorkDir,
		"StdOut":      &d.StdOut,
		"StdErr":      &d.StdErr,
		"NodeList":    &d.NodeList,
		"TresPerNode": &d.Gres,
	}
	for _, tok := range strings.Fields(out) {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		dst, ok := fields[key]
		if !ok || *dst != "" {
			continue
		}
		if val == "" || val == "(null)" {
			continue
		}
		*dst = val
	}
	return d
}
