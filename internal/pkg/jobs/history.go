package jobs

import (
	"strings"

	"jobmon/internal/pkg/common/slurm"
)

// FinishedJobRecord sacct 中已结束的作业.
type FinishedJobRecord struct {
	JobID    string `json:"JobID"`
	JobName  string `json:"JobName"`
	State    string `json:"State"`
	Elapsed  string `json:"Elapsed"`
	Start    string `json:"Start"`
	End      string `json:"End"`
	ExitCode string `json:"ExitCode"`
}

const historyFields = 7

// ParseHistory 解析 sacct --parsable2 输出, 只保留终止状态的记录, 取最后 count 条并倒序(最新在前).
// count <= 0 时不截断.
func ParseHistory(out string, count int) []FinishedJobRecord {
	finished := make([]FinishedJobRecord, 0)
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		parts := strings.Split(strings.TrimRight(line, "\r"), "|")
		if len(parts) < historyFields {
			continue
		}
		rec := FinishedJobRecord{
			JobID:    parts[0],
			JobName:  parts[1],
			State:    parts[2],
			Elapsed:  parts[3],
			Start:    parts[4],
			End:      parts[5],
			ExitCode: parts[6],
		}
		if !slurm.IsFinished(rec.State) {
			continue
		}
		finished = append(finished, rec)
	}

	if count > 0 && len(finished) > count {
		finished = finished[len(finished)-count:]
	}
	for i, j := 0, len(finished)-1; i < j; i, j = i+1, j-1 {
		finished[i], finished[j] = finished[j], finished[i]
	}
	return finished
}
