package slurm

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"

	"jobmon/internal/pkg/client/exec"
	"jobmon/internal/pkg/jobs"
	"jobmon/internal/pkg/log"
	"jobmon/internal/pkg/response"
	apierrors "jobmon/pkg/errors"

	"github.com/gin-gonic/gin"
	oaerrors "github.com/go-openapi/errors"
)

var jobIDPattern = regexp.MustCompile(`^[0-9]+$`)

// outputNotFoundHint 路径无法确定时返回给前端的说明.
const outputNotFoundHint = "scontrol no longer knows this job and no matching .out/.err file was found in its working directory"

// jobParams 解析并校验路径参数 cluster 与 jobid. cluster 必须是已配置的集群.
func (rt *Router) jobParams(c *gin.Context) (cluster, jobID string, err error) {
	cluster, jobID = c.Param("cluster"), c.Param("jobid")

	var res []error
	cfg := rt.conf.Load()
	if !cfg.HasCluster(cluster) {
		values := make([]interface{}, 0, len(cfg.Clusters))
		for _, name := range cfg.Clusters {
			values = append(values, name)
		}
		res = append(res, oaerrors.EnumFail("cluster", "path", cluster, values))
	}
	if !jobIDPattern.MatchString(jobID) {
		res = append(res, oaerrors.FailedPattern("jobid", "path", jobIDPattern.String(), jobID))
	}
	if len(res) > 0 {
		return "", "", oaerrors.CompositeValidationError(res...)
	}
	return cluster, jobID, nil
}

func queryBool(c *gin.Context, name string) (bool, error) {
	v, ok := c.GetQuery(name)
	if !ok || v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, oaerrors.InvalidType(name, "query", "boolean", v)
	}
	return b, nil
}

func queryLines(c *gin.Context) (int, error) {
	v, ok := c.GetQuery("lines")
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, oaerrors.InvalidType("lines", "query", "integer", v)
	}
	if n < jobs.MinTailLines {
		return 0, oaerrors.ExceedsMinimum("lines", "query", jobs.MinTailLines, false, n)
	}
	if n > jobs.MaxTailLines {
		return 0, oaerrors.ExceedsMaximum("lines", "query", jobs.MaxTailLines, false, n)
	}
	return n, nil
}

// serveJobError 将解析器错误映射为 HTTP 状态码.
func (rt *Router) serveJobError(c *gin.Context, cluster, jobID string, err error) {
	var cmdErr *exec.CommandError
	switch {
	case jobs.IsNotFound(err):
		if errors.Is(err, jobs.ErrOutputNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, response.Fail(err.Error(), gin.H{"details": outputNotFoundHint}))
			return
		}
		err = oaerrors.NotFound("%s", err.Error())
	case errors.Is(err, exec.ErrTimeout):
		err = oaerrors.New(http.StatusGatewayTimeout, "%s", err.Error())
	case errors.Is(err, exec.ErrExec), errors.Is(err, jobs.ErrParse), errors.As(err, &cmdErr):
		err = oaerrors.New(http.StatusBadGateway, "%s", err.Error())
	}
	log.FromContextOr(c.Request.Context(), rt.logger).Warn("job request failed", "cluster", cluster, "jobid", jobID, "err", err)
	apierrors.Abort(c, err)
}
