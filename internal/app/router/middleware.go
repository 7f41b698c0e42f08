package router

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"jobmon/internal/pkg/log"
	"jobmon/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	HeaderRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
)

// RequestID 沿用客户端传入的 X-Request-ID, 没有时生成 UUID, 并写回响应头.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestIDFrom 返回当前请求的 ID.
func RequestIDFrom(c *gin.Context) string {
	return c.GetString(ctxRequestID)
}

// AccessLog 记录每个请求, 并将带有 request_id 的 logger 放入请求 context.
func AccessLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		reqLogger := logger.With("request_id", RequestIDFrom(c))
		c.Request = c.Request.WithContext(log.WithContext(c.Request.Context(), reqLogger))

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "err", c.Errors.String())
		}
		switch {
		case status >= http.StatusInternalServerError:
			reqLogger.Error("request served", attrs...)
		case status >= http.StatusBadRequest:
			reqLogger.Warn("request served", attrs...)
		default:
			reqLogger.Debug("request served", attrs...)
		}
	}
}

type cachedLimiter struct {
	limiter   *rate.Limiter
	expiresAt time.Time
}

// limiterCache 按客户端 IP 缓存限流器. 过期条目在每个 ttl 周期内最多清理一次.
type limiterCache struct {
	limit     rate.Limit
	burst     int
	ttl       time.Duration
	limiters  sync.Map // client ip -> *cachedLimiter
	mu        sync.Mutex
	lastSweep time.Time
}

func newLimiterCache(limit float64, burst int, ttl time.Duration) *limiterCache {
	return &limiterCache{limit: rate.Limit(limit), burst: burst, ttl: ttl, lastSweep: time.Now()}
}

func (lc *limiterCache) get(ip string, now time.Time) *rate.Limiter {
	lc.sweep(now)
	if v, ok := lc.limiters.Load(ip); ok {
		cached := v.(*cachedLimiter)
		if now.Before(cached.expiresAt) {
			return cached.limiter
		}
	}
	l := rate.NewLimiter(lc.limit, lc.burst)
	lc.limiters.Store(ip, &cachedLimiter{limiter: l, expiresAt: now.Add(lc.ttl)})
	return l
}

func (lc *limiterCache) sweep(now time.Time) {
	lc.mu.Lock()
	if now.Sub(lc.lastSweep) < lc.ttl {
		lc.mu.Unlock()
		return
	}
	lc.lastSweep = now
	lc.mu.Unlock()

	lc.limiters.Range(func(k, v any) bool {
		if !now.Before(v.(*cachedLimiter).expiresAt) {
			lc.limiters.CompareAndDelete(k, v)
		}
		return true
	})
}

func (lc *limiterCache) len() int {
	n := 0
	lc.limiters.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// RateLimit 按客户端 IP 的令牌桶限流. 每个 IP 的限流器 5 分钟后重建, 过期的 IP 会被移除.
func RateLimit(limit float64, burst int) gin.HandlerFunc {
	if burst <= 0 {
		burst = 1
	}
	limiters := newLimiterCache(limit, burst, 5*time.Minute)

	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP(), time.Now()).Allow() {
			c.Header("Retry-After", "1")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, response.Fail("Too Many Requests", nil))
			return
		}
		c.Next()
	}
}
