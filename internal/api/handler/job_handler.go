package handler

import (
	"context"

	"interview-prep-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// JobService 岗位上下文的创建与查询
type JobService interface {
	CreateJobContext(ctx context.Context, job *types.JobContext) (*types.JobContext, error)
	GetJobContext(ctx context.Context, id string) (*types.JobContext, error)
}

// JobHandler 处理岗位上下文请求
type JobHandler struct {
	service JobService
}

// NewJobHandler 创建 JobHandler
func NewJobHandler(service JobService) *JobHandler {
	return &JobHandler{service: service}
}

// HandleCreateJob 创建岗位上下文，字段校验由服务层完成。
// POST /api/v1/jobs
func (h *JobHandler) HandleCreateJob(c context.Context, ctx *app.RequestContext) {
	var req types.JobContext
	if err := ctx.BindJSON(&req); err != nil {
		badRequest(ctx, "请求体不是合法的JSON")
		return
	}

	job, err := h.service.CreateJobContext(c, &req)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, job)
}

// HandleGetJob 查询岗位上下文
// GET /api/v1/jobs/:id
func (h *JobHandler) HandleGetJob(c context.Context, ctx *app.RequestContext) {
	job, err := h.service.GetJobContext(c, ctx.Param("id"))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, job)
}
