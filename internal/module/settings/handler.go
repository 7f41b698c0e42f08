package settings

import (
	"net/http"

	"jobmon/internal/pkg/config"
	"jobmon/internal/pkg/log"
	"jobmon/internal/pkg/response"
	apierrors "jobmon/pkg/errors"

	"github.com/gin-gonic/gin"
	oaerrors "github.com/go-openapi/errors"
)

// Settings 配置文档以及各字段的可选范围.
type Settings struct {
	config.Config
	RefreshIntervals []int `json:"refresh_intervals"`
	MinRecentJobs    int   `json:"min_recent_jobs"`
	MaxRecentJobs    int   `json:"max_recent_jobs"`
}

func newSettings(cfg config.Config) Settings {
	return Settings{
		Config:           cfg,
		RefreshIntervals: config.RefreshIntervals,
		MinRecentJobs:    config.MinRecentJobs,
		MaxRecentJobs:    config.MaxRecentJobs,
	}
}

// HandlerGetConfig 获取当前配置.
// @Summary 获取配置
// @Tags 配置
// @Produce json
// @Success 200 {object} response.Response{results=Settings}
// @Router /api/v1/config [get]
func (rt *Router) HandlerGetConfig(c *gin.Context) {
	c.JSON(http.StatusOK, response.New(newSettings(rt.conf.Load())))
}

// HandlerUpdateConfig 部分更新配置, 未提供的字段保持不变.
// @Summary 更新配置
// @Description clusters 不能为空且名称只能包含字母, 数字, '.', '_', '-'; recent_jobs_count 取值 1-50; refresh_interval 取值 0, 5, 10, 30, 60.
// @Tags 配置
// @Accept json
// @Produce json
// @Param body body config.Patch true "需要修改的字段"
// @Success 200 {object} response.Response{results=Settings}
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/config [post]
func (rt *Router) HandlerUpdateConfig(c *gin.Context) {
	var patch config.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		apierrors.Abort(c, oaerrors.New(http.StatusBadRequest, "invalid request body: %v", err))
		return
	}

	cfg, err := rt.conf.Update(patch)
	if err != nil {
		log.FromContextOr(c.Request.Context(), rt.logger).Warn("unable to update config", "err", err)
		apierrors.Abort(c, err)
		return
	}
	c.JSON(http.StatusOK, response.New(newSettings(cfg)))
}
