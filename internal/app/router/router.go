package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// Options 引擎级中间件参数.
type Options struct {
	RateLimit float64 // 每个客户端 IP 每秒请求数, <= 0 表示不限制
	RateBurst int
}

// New 创建 gin 引擎并挂载公共中间件: 异常恢复, 请求 ID, 访问日志, 限流.
func New(logger *slog.Logger, opts Options) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(AccessLog(logger))
	if opts.RateLimit > 0 {
		r.Use(RateLimit(opts.RateLimit, opts.RateBurst))
	}
	return r
}
