package jobs

import (
	"errors"
	"strings"

	"jobmon/internal/pkg/client/exec"
)

var (
	// ErrOutputNotFound 所有策略均未解析出输出文件路径.
	ErrOutputNotFound = errors.New("could not find output file paths for this job")
	// ErrJobNotRunning 作业不在运行队列中, GPU 查询只支持正在运行的作业.
	ErrJobNotRunning = errors.New("job not found or not running")
	// ErrParse 调度器输出格式与预期不符.
	ErrParse = errors.New("unable to parse scheduler output")
)

// IsNotFound 判断 err 是否为"查询成功但无数据"类错误.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOutputNotFound) || errors.Is(err, ErrJobNotRunning)
}

// resultMessage 将失败的远程调用转换为面向用户的错误描述, fallback 用于 stderr 为空的情况.
func resultMessage(res exec.Result, fallback string) string {
	switch res.Outcome {
	case exec.OutcomeExited:
		if msg := strings.TrimSpace(res.Stderr); msg != "" {
			return msg
		}
		if fallback != "" {
			return fallback
		}
	}
	return res.Err().Error()
}
