package settings

import (
	"log/slog"

	"jobmon/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

type Router struct {
	conf   *config.Store
	logger *slog.Logger
}

func NewRouter(conf *config.Store, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{conf: conf, logger: logger}
}

func (rt *Router) Register(g *gin.RouterGroup) {
	g.GET("/config", rt.HandlerGetConfig)     // GET /api/v1/config
	g.POST("/config", rt.HandlerUpdateConfig) // POST /api/v1/config
}
