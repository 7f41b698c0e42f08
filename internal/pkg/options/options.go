package options

import "time"

// Server 进程级参数, 由命令行绑定.
type Server struct {
	Log    Log
	Web    Web
	SSH    SSH
	Cache  Cache
	Output Output

	ConfigFile string
}

type Log struct {
	Output string
	Format string
	File   string
	Level  string
}

type Web struct {
	ListenAddr      string
	ShutdownTimeout time.Duration
	RateLimit       float64 // 每个客户端 IP 每秒请求数, <= 0 表示不限制
	RateBurst       int
	StaticDir       string
}

type SSH struct {
	Mode           string // exec 或 native
	Timeout        time.Duration
	User           string
	Port           int
	IdentityFile   string
	KnownHostsFile string
}

type Cache struct {
	File string
	DSN  string // 非空时使用 PostgreSQL 保存作业路径

	MaxConns        int           // 连接池最大连接数, 0 表示使用 pgxpool 默认值
	MaxConnIdleTime time.Duration // 连接最长空闲时间, 0 表示使用 pgxpool 默认值
}

type Output struct {
	TailLines     int
	SearchWorkDir bool
}

const (
	SSHModeExec   = "exec"
	SSHModeNative = "native"
)
