package jobs

import (
	"context"
	"sync"
	"time"

	"jobmon/internal/pkg/client/exec"
)

// fakeRunner 按 "host|远程命令" 返回预置结果, 未预置的命令按 command not found 处理.
type fakeRunner struct {
	mu        sync.Mutex
	responses map[string]exec.Result
	delay     time.Duration
	calls     []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: make(map[string]exec.Result)}
}

func key(host string, args ...string) string {
	return host + "|" + exec.RemoteCommand(args...)
}

func (f *fakeRunner) on(res exec.Result, host string, args ...string) *fakeRunner {
	f.responses[key(host, args...)] = res
	return f
}

func (f *fakeRunner) Run(ctx context.Context, host string, args ...string) exec.Result {
	k := key(host, args...)
	f.mu.Lock()
	f.calls = append(f.calls, k)
	res, ok := f.responses[k]
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
		}
	}
	if !ok {
		res = exited(127, "bash: command not found")
	}
	res.Host = host
	res.Command = exec.RemoteCommand(args...)
	return res
}

func (f *fakeRunner) count(host string, args ...string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := key(host, args...)
	n := 0
	for _, c := range f.calls {
		if c == k {
			n++
		}
	}
	return n
}

func (f *fakeRunner) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func ok(stdout string) exec.Result {
	return exec.Result{Stdout: stdout, Outcome: exec.OutcomeOK}
}

func exited(code int, stderr string) exec.Result {
	return exec.Result{ExitCode: code, Stderr: stderr, Outcome: exec.OutcomeExited}
}

func timedOut() exec.Result {
	return exec.Result{ExitCode: -1, Outcome: exec.OutcomeTimeout}
}
