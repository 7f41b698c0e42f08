package slurm

import (
	"net/http"

	"jobmon/internal/pkg/response"
	apierrors "jobmon/pkg/errors"

	"github.com/gin-gonic/gin"
)

// HandlerGetJobGPU 获取运行中作业所占用 GPU 的利用率.
// @Summary 获取作业 GPU 状态
// @Description 通过 squeue 获取作业节点列表与 GRES 序号, 逐个节点执行 nvidia-smi 并只保留作业所属的 GPU. 单个节点失败记录在该节点的 error 字段中.
// @Tags 作业
// @Produce json
// @Param cluster path string true "集群名称" example("juwels")
// @Param jobid path string true "作业 ID" example("4242")
// @Success 200 {object} response.Response{results=jobs.GPUReport}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 502 {object} response.Response
// @Failure 504 {object} response.Response
// @Router /api/v1/{cluster}/slurm/jobs/{jobid}/gpu [get]
func (rt *Router) HandlerGetJobGPU(c *gin.Context) {
	cluster, jobID, err := rt.jobParams(c)
	if err != nil {
		apierrors.Abort(c, err)
		return
	}

	report, err := rt.gpu.Resolve(c.Request.Context(), cluster, jobID)
	if err != nil {
		rt.serveJobError(c, cluster, jobID, err)
		return
	}
	c.JSON(http.StatusOK, response.New(report))
}
