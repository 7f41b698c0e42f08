package exec

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout 单次远程调用的时间上限.
const DefaultTimeout = 15 * time.Second

// DefaultSSHArgs 非交互模式, 避免 ssh 在等待密码输入时挂起.
var DefaultSSHArgs = []string{"-o", "BatchMode=yes"}

// Runner 在指定主机上执行一条远程命令.
type Runner interface {
	Run(ctx context.Context, host string, args ...string) Result
}

type ExecCommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Client 通过系统 ssh 二进制执行远程命令, 支持 ~/.ssh/config 中的主机别名.
type Client struct {
	execCommand ExecCommandFunc
	sshArgs     []string
	timeout     time.Duration
	logger      *slog.Logger
}

// New 创建 Client. timeout <= 0 时使用 DefaultTimeout, sshArgs 为空时使用 DefaultSSHArgs.
func New(execCommand ExecCommandFunc, timeout time.Duration, logger *slog.Logger, sshArgs ...string) *Client {
	c := &Client{}
	c.Set(execCommand, logger)
	c.timeout = timeout
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	c.sshArgs = sshArgs
	if len(c.sshArgs) == 0 {
		c.sshArgs = DefaultSSHArgs
	}
	return c
}

func (c *Client) Set(exec ExecCommandFunc, logger *slog.Logger) *Client {
	c.execCommand = exec
	c.logger = logger
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Run 执行 ssh <sshArgs> <host> <quoted args>. 超时后本地 ssh 进程被终止, 远端进程不保证退出.
func (c *Client) Run(ctx context.Context, host string, args ...string) Result {
	timeout := c.timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	remote := RemoteCommand(args...)
	argv := make([]string, 0, len(c.sshArgs)+2)
	argv = append(argv, c.sshArgs...)
	argv = append(argv, host, remote)

	var stdout, stderr bytes.Buffer
	cmd := c.execCommand(ctx, "ssh", argv...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Host:    host,
		Command: remote,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Outcome = OutcomeTimeout
		res.ExitCode = -1
	case ctx.Err() != nil:
		// 调用方取消, ssh 进程被终止, 退出码不代表远端命令的结果.
		res.Outcome = OutcomeExecError
		res.ExitCode = -1
		res.Cause = ctx.Err()
	case err == nil:
		res.Outcome = OutcomeOK
	case errors.As(err, &exitErr):
		res.Outcome = OutcomeExited
		res.ExitCode = exitErr.ExitCode()
	default:
		res.Outcome = OutcomeExecError
		res.ExitCode = -1
		res.Cause = err
	}

	c.logger.Debug("remote command finished", "host", host, "cmd", remote, "outcome", res.Outcome.String(), "exit_code", res.ExitCode, "elapsed", time.Since(start))
	if res.Outcome == OutcomeExecError && ctx.Err() == nil {
		c.logger.Error("unable to execute command", "host", host, "cmd", remote, "err", err)
	}
	return res
}

// RemoteCommand 将参数向量拼接为远端 shell 可解析的一行命令, 必要时对参数加单引号.
func RemoteCommand(args ...string) string {
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		quoted = append(quoted, Quote(a))
	}
	return strings.Join(quoted, " ")
}

// Quote 对单个参数进行 POSIX shell 引用. 仅包含安全字符的参数原样返回.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isSafeShellRune(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func isSafeShellRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("-_./=:,+@%", r)
}
