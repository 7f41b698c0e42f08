package slurm

import (
	"log/slog"

	"jobmon/internal/pkg/config"
	"jobmon/internal/pkg/jobs"

	"github.com/gin-gonic/gin"
)

type Router struct {
	conf      *config.Store
	collector *jobs.Collector
	output    *jobs.OutputResolver
	gpu       *jobs.GPUResolver
	logger    *slog.Logger
}

func NewRouter(conf *config.Store, collector *jobs.Collector, output *jobs.OutputResolver, gpu *jobs.GPUResolver, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		conf:      conf,
		collector: collector,
		output:    output,
		gpu:       gpu,
		logger:    logger,
	}
}

func (rt *Router) Register(g *gin.RouterGroup) {
	g.GET("/jobs", rt.HandlerListJobs) // GET /api/v1/jobs
	{
		cg := g.Group("/:cluster/slurm")
		cg.GET("/jobs/:jobid/output", rt.HandlerGetJobOutput) // GET /api/v1/{cluster}/slurm/jobs/{jobid}/output
		cg.GET("/jobs/:jobid/gpu", rt.HandlerGetJobGPU)       // GET /api/v1/{cluster}/slurm/jobs/{jobid}/gpu
	}
}
