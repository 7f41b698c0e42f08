package slurm

import (
	"net/http"

	"jobmon/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

// HandlerListJobs 并发查询所有已配置集群的在线作业与近期结束作业.
// @Summary 获取所有集群的作业列表
// @Description 对每个已配置集群执行 squeue 与 sacct, 结果顺序与配置一致. 单个集群失败时该集群的 error 字段非空, 接口仍返回 200.
// @Tags 作业
// @Produce json
// @Success 200 {object} response.Response{results=[]jobs.ClusterReport}
// @Router /api/v1/jobs [get]
func (rt *Router) HandlerListJobs(c *gin.Context) {
	cfg := rt.conf.Load()
	reports := rt.collector.Collect(c.Request.Context(), cfg.Clusters, cfg.RecentJobsCount)
	c.JSON(http.StatusOK, response.New(reports))
}
