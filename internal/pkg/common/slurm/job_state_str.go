package slurm

import "strings"

// JobState Slurm 作业基础状态, 与 slurm.h 中 job_states 的取值一致.
type JobState uint64

const (
	JOB_PENDING   JobState = iota // queued waiting for initiation
	JOB_RUNNING                   // allocated resources and executing
	JOB_SUSPENDED                 // allocated resources, execution suspended
	JOB_COMPLETE                  // completed execution successfully
	JOB_CANCELLED                 // cancelled by user
	JOB_FAILED                    // completed execution unsuccessfully
	JOB_TIMEOUT                   // terminated on reaching time limit
	JOB_NODE_FAIL                 // terminated on node failure
	JOB_PREEMPTED                 // terminated due to preemption
	JOB_BOOT_FAIL                 // terminated due to node boot failure
	JOB_DEADLINE                  // terminated on deadline
	JOB_OOM                       // experienced out of memory error
	JOB_END                       // not a real state, last entry in table
)

// String 返回 squeue/sacct 输出中使用的状态名称.
func (s JobState) String() string {
	switch s {
	case JOB_PENDING:
		return "PENDING"
	case JOB_RUNNING:
		return "RUNNING"
	case JOB_SUSPENDED:
		return "SUSPENDED"
	case JOB_COMPLETE:
		return "COMPLETED"
	case JOB_CANCELLED:
		return "CANCELLED"
	case JOB_FAILED:
		return "FAILED"
	case JOB_TIMEOUT:
		return "TIMEOUT"
	case JOB_NODE_FAIL:
		return "NODE_FAIL"
	case JOB_PREEMPTED:
		return "PREEMPTED"
	case JOB_BOOT_FAIL:
		return "BOOT_FAIL"
	case JOB_DEADLINE:
		return "DEADLINE"
	case JOB_OOM:
		return "OUT_OF_MEMORY"
	default:
		return "?"
	}
}

// FinishedStates 历史作业列表中保留的终止状态. sacct 可能输出带后缀的状态, 如 "CANCELLED by 1234",
// 因此按前缀匹配.
var FinishedStates = []JobState{JOB_COMPLETE, JOB_FAILED, JOB_CANCELLED, JOB_TIMEOUT}

// IsFinished 判断 sacct 状态字符串是否以终止状态开头.
func IsFinished(state string) bool {
	for _, s := range FinishedStates {
		if strings.HasPrefix(state, s.String()) {
			return true
		}
	}
	return false
}
