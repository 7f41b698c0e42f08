package jobs

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"
)

// JobRecord squeue 输出中的一行. 列顺序与表头一致, 列名唯一.
type JobRecord struct {
	columns []string
	values  []string
}

// NewJobRecord 按 columns 顺序构造记录, values 不足的列补空字符串.
func NewJobRecord(columns []string, values ...string) JobRecord {
	r := JobRecord{columns: columns, values: make([]string, len(columns))}
	copy(r.values, values)
	return r
}

func (r JobRecord) Columns() []string { return r.columns }

func (r JobRecord) Len() int { return len(r.columns) }

// Get 返回列值以及该列是否存在.
func (r JobRecord) Get(column string) (string, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.values[i], true
		}
	}
	return "", false
}

// MarshalJSON 按表头顺序输出对象.
func (r JobRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ParseRoster 解析 squeue 表格输出. 第一行为表头, 只有表头或空输出时返回空列表.
// 每行最多切分为 len(表头) 个字段, 最后一列保留其中的空格(如 NODELIST(REASON) 中的原因描述).
func ParseRoster(out string) []JobRecord {
	jobs := make([]JobRecord, 0)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) <= 1 {
		return jobs
	}

	header := strings.Fields(lines[0])
	if len(header) == 0 {
		return jobs
	}
	// 重复列名只保留第一次出现的位置, 值取最后一次出现的字段.
	columns := make([]string, 0, len(header))
	slot := make([]int, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		if j, ok := seen[h]; ok {
			slot[i] = j
			continue
		}
		seen[h] = len(columns)
		slot[i] = len(columns)
		columns = append(columns, h)
	}

	for _, line := range lines[1:] {
		parts := splitFieldsN(line, len(header))
		if len(parts) == 0 {
			continue
		}
		values := make([]string, len(columns))
		for i, p := range parts {
			values[slot[i]] = p
		}
		jobs = append(jobs, JobRecord{columns: columns, values: values})
	}
	return jobs
}

// splitFieldsN 按连续空白切分, 最多 n 段, 最后一段保留内部空白.
func splitFieldsN(s string, n int) []string {
	s = strings.TrimSpace(s)
	if s == "" || n <= 0 {
		return nil
	}
	out := make([]string, 0, n)
	for len(out) < n-1 {
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			break
		}
		out = append(out, s[:i])
		s = strings.TrimLeftFunc(s[i:], unicode.IsSpace)
	}
	return append(out, s)
}
