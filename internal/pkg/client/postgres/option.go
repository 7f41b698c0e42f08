package postgres

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Option 使用函数式选项模式配置连接池。
type Option func(cfg *pgxpool.Config)

// WithMaxConns 设置最大连接数。
func WithMaxConns(n int32) Option {
	return func(cfg *pgxpool.Config) { cfg.MaxConns = n }
}

// PoolOptions 将命令行参数转换为选项, 非正值保持 pgxpool 默认值。
func PoolOptions(maxConns int, maxIdle time.Duration) []Option {
	var opts []Option
	if maxConns > 0 {
		opts = append(opts, WithMaxConns(int32(maxConns)))
	}
	if maxIdle > 0 {
		opts = append(opts, WithMaxConnIdleTime(maxIdle))
	}
	return opts
}

// WithMaxConnIdleTime 设置连接的最长空闲时间。
func WithMaxConnIdleTime(d time.Duration) Option {
	return func(cfg *pgxpool.Config) { cfg.MaxConnIdleTime = d }
}
