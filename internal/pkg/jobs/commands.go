package jobs

import "strconv"

// SqueueFormat 在线作业列表的列格式, 列名由 squeue 输出的表头给出.
const SqueueFormat = "%.18i %.12P %.30j %.8T %.10M %.12l %.20b %.20V %.6D %R"

// HistoryWindow 历史作业查询的时间窗口.
const HistoryWindow = "now-7days"

// GPUQueryFields nvidia-smi 查询字段, 顺序与 GPUSample 字段对应.
const GPUQueryFields = "index,name,utilization.gpu,utilization.memory,memory.used,memory.total,temperature.gpu"

func RosterCommand() []string {
	return []string{"squeue", "--me", "--format", SqueueFormat}
}

func HistoryCommand() []string {
	return []string{
		"sacct", "--parsable2", "--noheader", "--allocations",
		"--starttime=" + HistoryWindow,
		"--format=JobID,JobName,State,Elapsed,Start,End,ExitCode",
	}
}

func JobDetailCommand(jobID string) []string {
	return []string{"scontrol", "show", "job", jobID}
}

func WorkDirCommand(jobID string) []string {
	return []string{"sacct", "-j", jobID, "--allocations", "--noheader", "--parsable2", "--format=WorkDir"}
}

// OutputSearchCommand 在 dir 下(不递归)查找文件名包含作业 ID 的 .out/.err 文件.
// 作业 ID 前必须是非数字字符或文件名开头, 避免 42 匹配到 slurm-1423.out.
func OutputSearchCommand(dir, jobID string) []string {
	return []string{
		"find", dir, "-maxdepth", "1", "-type", "f", "(",
		"-name", "*[!0-9]" + jobID + ".out", "-o",
		"-name", jobID + ".out", "-o",
		"-name", "*[!0-9]" + jobID + ".err", "-o",
		"-name", jobID + ".err",
		")",
	}
}

func TailCommand(path string, lines int) []string {
	return []string{"tail", "-n", strconv.Itoa(lines), path}
}

func GPUAllocationCommand(jobID string) []string {
	return []string{"squeue", "--me", "--jobs=" + jobID, "--format=%N|%b", "--noheader"}
}

// GPUTelemetryCommand 经由集群登录节点跳转到计算节点执行 nvidia-smi.
// 计算节点位于集群内部, 不单独校验其主机密钥.
func GPUTelemetryCommand(node string) []string {
	return []string{
		"ssh", "-o", "StrictHostKeyChecking=no", "-o", "UserKnownHostsFile=/dev/null", node,
		"nvidia-smi", "--query-gpu=" + GPUQueryFields, "--format=csv,noheader,nounits",
	}
}
