package exec

import (
	"errors"
	"fmt"
	"strings"
)

// Outcome 远程命令执行结果分类.
type Outcome int

const (
	OutcomeOK        Outcome = iota // 退出码为 0
	OutcomeExited                   // 退出码非 0(包括命令不存在), 不视为异常
	OutcomeTimeout                  // 超时, 连接或命令未在限定时间内完成
	OutcomeExecError                // 进程无法启动、无法建立连接或调用方已取消
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeExited:
		return "exited"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeExecError:
		return "exec_error"
	default:
		return "unknown"
	}
}

var (
	// ErrTimeout 远程调用超时.
	ErrTimeout = errors.New("SSH connection timed out")
	// ErrExec 进程启动失败或连接失败.
	ErrExec = errors.New("execution error")
)

// CommandError 远程命令以非 0 退出码结束.
type CommandError struct {
	Host     string
	Command  string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return e.Stderr
	}
	return fmt.Sprintf("command %q on %s exited with status %d", e.Command, e.Host, e.ExitCode)
}

// Result 一次远程命令执行的完整结果. Runner 从不返回 error, 调用方根据 Outcome 分支.
type Result struct {
	Host     string
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Outcome  Outcome
	Cause    error // 仅当 Outcome 为 OutcomeExecError 时非空, 调用方取消时为 context.Canceled
}

// OK 命令是否以退出码 0 结束.
func (r Result) OK() bool { return r.Outcome == OutcomeOK }

// TimedOut 命令是否超时.
func (r Result) TimedOut() bool { return r.Outcome == OutcomeTimeout }

// Err 将非成功结果转换为 error. 超时包装 ErrTimeout, 启动失败包装 ErrExec, 非 0 退出返回 *CommandError.
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeOK:
		return nil
	case OutcomeTimeout:
		return ErrTimeout
	case OutcomeExecError:
		if r.Cause != nil {
			return fmt.Errorf("%w: %w", ErrExec, r.Cause)
		}
		return ErrExec
	default:
		return &CommandError{
			Host:     r.Host,
			Command:  r.Command,
			ExitCode: r.ExitCode,
			Stderr:   strings.TrimSpace(r.Stderr),
		}
	}
}

// IsTransport 判断 err 是否为传输层错误(超时或无法执行).
func IsTransport(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrExec)
}
