package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	cexec "jobmon/internal/pkg/client/exec"

	xssh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Conf 原生 SSH 客户端配置.
type Conf struct {
	User           string        // 登录用户, 为空时使用 $USER
	Port           int           // 端口, 默认 22
	IdentityFile   string        // 私钥文件
	KnownHostsFile string        // known_hosts 文件, 默认 ~/.ssh/known_hosts
	AgentSocket    string        // ssh-agent 套接字, 默认 $SSH_AUTH_SOCK
	Timeout        time.Duration // 单次命令时间上限
}

// ClientConfig 根据 Conf 构造 x/crypto/ssh 配置. 返回的 cleanup 用于关闭 agent 连接.
func (conf Conf) ClientConfig() (*xssh.ClientConfig, func(), error) {
	cleanup := func() {}
	user := conf.User
	if user == "" {
		user = os.Getenv("USER")
	}

	auth := make([]xssh.AuthMethod, 0, 2)
	sock := conf.AgentSocket
	if sock == "" {
		sock = os.Getenv("SSH_AUTH_SOCK")
	}
	if sock != "" {
		conn, err := net.Dial("unix", sock)
		if err == nil {
			cleanup = func() { _ = conn.Close() }
			auth = append(auth, xssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}
	if conf.IdentityFile != "" {
		key, err := os.ReadFile(conf.IdentityFile)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("unable to read identity file(%s): %w", conf.IdentityFile, err)
		}
		signer, err := xssh.ParsePrivateKey(key)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("unable to parse identity file(%s): %w", conf.IdentityFile, err)
		}
		auth = append(auth, xssh.PublicKeys(signer))
	}
	if len(auth) == 0 {
		return nil, nil, fmt.Errorf("no ssh auth method available: set --ssh.identity or SSH_AUTH_SOCK")
	}

	khFile := conf.KnownHostsFile
	if khFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("unable to locate known_hosts: %w", err)
		}
		khFile = filepath.Join(home, ".ssh", "known_hosts")
	}
	hostKeyCallback, err := knownhosts.New(khFile)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("unable to load known_hosts(%s): %w", khFile, err)
	}

	return &xssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         conf.timeout(),
	}, cleanup, nil
}

func (conf Conf) timeout() time.Duration {
	if conf.Timeout <= 0 {
		return cexec.DefaultTimeout
	}
	return conf.Timeout
}

func (conf Conf) addr(host string) string {
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	port := conf.Port
	if port <= 0 {
		port = 22
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Client 基于 golang.org/x/crypto/ssh 的远程命令执行器, 每个主机复用一个连接.
type Client struct {
	conf    Conf
	pool    *Pool
	cleanup func()
	logger  *slog.Logger
}

var _ cexec.Runner = (*Client)(nil)

func New(conf Conf, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg, cleanup, err := conf.ClientConfig()
	if err != nil {
		return nil, err
	}
	c := &Client{conf: conf, cleanup: cleanup, logger: logger}
	c.pool = NewPool(func(ctx context.Context, host string) (*xssh.Client, error) {
		return dial(ctx, conf.addr(host), cfg)
	})
	return c, nil
}

func dial(ctx context.Context, addr string, cfg *xssh.ClientConfig) (*xssh.Client, error) {
	d := net.Dialer{Timeout: cfg.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	sc, chans, reqs, err := xssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})
	return xssh.NewClient(sc, chans, reqs), nil
}

// Run 在 host 上执行命令. 超时会关闭当前会话, 远端进程是否退出取决于 sshd.
func (c *Client) Run(ctx context.Context, host string, args ...string) cexec.Result {
	ctx, cancel := context.WithTimeout(ctx, c.conf.timeout())
	defer cancel()

	remote := cexec.RemoteCommand(args...)
	res := cexec.Result{Host: host, Command: remote, ExitCode: -1}

	cli, err := c.pool.FetchOrCreate(ctx, host)
	if err != nil {
		return c.failed(ctx, res, err)
	}
	sess, err := cli.NewSession()
	if err != nil {
		c.pool.Evict(host, cli)
		return c.failed(ctx, res, err)
	}
	defer sess.Close()
	stop := context.AfterFunc(ctx, func() { _ = sess.Close() })
	defer stop()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr
	err = sess.Run(remote)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()

	var exitErr *xssh.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.Outcome = cexec.OutcomeTimeout
	case ctx.Err() != nil:
		// 调用方取消, 会话已被关闭, 退出状态不代表远端命令的结果.
		res.Outcome = cexec.OutcomeExecError
		res.Cause = ctx.Err()
	case err == nil:
		res.Outcome = cexec.OutcomeOK
		res.ExitCode = 0
	case errors.As(err, &exitErr):
		res.Outcome = cexec.OutcomeExited
		res.ExitCode = exitErr.ExitStatus()
	default:
		c.pool.Evict(host, cli)
		return c.failed(ctx, res, err)
	}
	c.logger.Debug("remote command finished", "host", host, "cmd", remote, "outcome", res.Outcome.String(), "exit_code", res.ExitCode)
	return res
}

func (c *Client) failed(ctx context.Context, res cexec.Result, err error) cexec.Result {
	var netErr net.Error
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		res.Outcome = cexec.OutcomeTimeout
		return res
	}
	if ctx.Err() != nil {
		res.Outcome = cexec.OutcomeExecError
		res.Cause = ctx.Err()
		return res
	}
	c.logger.Error("unable to execute command", "host", res.Host, "cmd", res.Command, "err", err)
	res.Outcome = cexec.OutcomeExecError
	res.Cause = err
	return res
}

// Close 关闭连接池与 agent 连接.
func (c *Client) Close() {
	c.pool.Close()
	if c.cleanup != nil {
		c.cleanup()
	}
}
