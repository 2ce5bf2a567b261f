package handler

import (
	"context"
	"strconv"

	"interview-prep-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/go-playground/validator/v10"
)

// InterviewService 面试会话操作，由 processor.InterviewService 实现
type InterviewService interface {
	StartInterview(ctx context.Context, jobID string, level int) (types.SessionSnapshot, error)
	GetInterview(id string) (types.SessionSnapshot, error)
	SubmitAnswer(ctx context.Context, id, answer string) (types.SessionSnapshot, error)
	Advance(ctx context.Context, id string) (types.SessionSnapshot, error)
	ScoreAnswer(ctx context.Context, id string, index, score int, feedback string) (types.SessionSnapshot, error)
	CompleteInterview(ctx context.Context, id string, totalScore int) (types.SessionSnapshot, error)
	ResetInterview(ctx context.Context, id string) error
}

// StartInterviewRequest 开始面试的请求体
type StartInterviewRequest struct {
	JobID string `json:"job_id" validate:"required"`
	Level int    `json:"level"`
}

// SubmitAnswerRequest 提交回答的请求体
type SubmitAnswerRequest struct {
	Answer string `json:"answer" validate:"max=20000"`
}

// ScoreRequest 为单个回答打分
type ScoreRequest struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback" validate:"max=5000"`
}

// CompleteRequest 结束面试的请求体
type CompleteRequest struct {
	TotalScore int `json:"total_score"`
}

// InterviewHandler 处理面试会话请求
type InterviewHandler struct {
	service  InterviewService
	validate *validator.Validate
}

// NewInterviewHandler 创建 InterviewHandler
func NewInterviewHandler(service InterviewService) *InterviewHandler {
	return &InterviewHandler{
		service:  service,
		validate: validator.New(),
	}
}

// bind 解析并校验 JSON 请求体，失败时已写出 400 响应
func (h *InterviewHandler) bind(ctx *app.RequestContext, req interface{}) bool {
	if err := ctx.BindJSON(req); err != nil {
		badRequest(ctx, "请求体不是合法的JSON")
		return false
	}
	if err := h.validate.Struct(req); err != nil {
		badRequest(ctx, err.Error())
		return false
	}
	return true
}

// HandleStart POST /api/v1/interviews
func (h *InterviewHandler) HandleStart(c context.Context, ctx *app.RequestContext) {
	var req StartInterviewRequest
	if !h.bind(ctx, &req) {
		return
	}

	snap, err := h.service.StartInterview(c, req.JobID, req.Level)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusCreated, utils.H{"session_id": snap.ID, "session": snap})
}

// HandleGet GET /api/v1/interviews/:id
func (h *InterviewHandler) HandleGet(c context.Context, ctx *app.RequestContext) {
	snap, err := h.service.GetInterview(ctx.Param("id"))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, snap)
}

// HandleSubmitAnswer POST /api/v1/interviews/:id/answers
func (h *InterviewHandler) HandleSubmitAnswer(c context.Context, ctx *app.RequestContext) {
	var req SubmitAnswerRequest
	if !h.bind(ctx, &req) {
		return
	}

	snap, err := h.service.SubmitAnswer(c, ctx.Param("id"), req.Answer)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, snap)
}

// HandleAdvance POST /api/v1/interviews/:id/advance
func (h *InterviewHandler) HandleAdvance(c context.Context, ctx *app.RequestContext) {
	snap, err := h.service.Advance(c, ctx.Param("id"))
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, snap)
}

// HandleScore POST /api/v1/interviews/:id/responses/:index/score
func (h *InterviewHandler) HandleScore(c context.Context, ctx *app.RequestContext) {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		badRequest(ctx, "index 必须是整数")
		return
	}

	var req ScoreRequest
	if !h.bind(ctx, &req) {
		return
	}

	snap, err := h.service.ScoreAnswer(c, ctx.Param("id"), index, req.Score, req.Feedback)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, snap)
}

// HandleComplete POST /api/v1/interviews/:id/complete
func (h *InterviewHandler) HandleComplete(c context.Context, ctx *app.RequestContext) {
	var req CompleteRequest
	if !h.bind(ctx, &req) {
		return
	}

	snap, err := h.service.CompleteInterview(c, ctx.Param("id"), req.TotalScore)
	if err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.JSON(consts.StatusOK, snap)
}

// HandleReset DELETE /api/v1/interviews/:id
func (h *InterviewHandler) HandleReset(c context.Context, ctx *app.RequestContext) {
	if err := h.service.ResetInterview(c, ctx.Param("id")); err != nil {
		writeError(c, ctx, err)
		return
	}
	ctx.Status(consts.StatusNoContent)
}
