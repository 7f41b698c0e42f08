package slurm

import (
	"net/http"

	"jobmon/internal/pkg/jobs"
	"jobmon/internal/pkg/response"
	apierrors "jobmon/pkg/errors"

	"github.com/gin-gonic/gin"
)

// HandlerGetJobOutput 获取作业 stdout/stderr 的最后若干行.
// @Summary 获取作业输出
// @Description 优先使用缓存中的输出文件路径, 缺失时通过 scontrol 解析, 仍缺失时在作业工作目录中查找. stdout 与 stderr 分别报告内容或错误.
// @Tags 作业
// @Produce json
// @Param cluster path string true "集群名称" example("juwels")
// @Param jobid path string true "作业 ID" example("4242")
// @Param refresh query bool false "忽略缓存重新解析路径" default(false)
// @Param lines query int false "读取行数" minimum(25) maximum(50) default(50)
// @Success 200 {object} response.Response{results=jobs.JobOutput}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Failure 504 {object} response.Response
// @Router /api/v1/{cluster}/slurm/jobs/{jobid}/output [get]
func (rt *Router) HandlerGetJobOutput(c *gin.Context) {
	cluster, jobID, err := rt.jobParams(c)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}
	refresh, err := queryBool(c, "refresh")
	if err != nil {
		apierrors.Abort(c, err)
		return
	}
	lines, err := queryLines(c)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	out, err := rt.output.FetchOutput(c.Request.Context(), cluster, jobID, jobs.FetchOptions{Refresh: refresh, Lines: lines})
	if err != nil {
		rt.serveJobError(c, cluster, jobID, err)
		return
	}
	c.JSON(http.StatusOK, response.New(out))
}
