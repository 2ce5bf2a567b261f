package handler

import (
	"context"
	"errors"

	"interview-prep-go/internal/interview"
	"interview-prep-go/internal/logger"
	"interview-prep-go/internal/processor"
	"interview-prep-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"go.opentelemetry.io/otel/trace"
)

// 非简历流水线错误的 kind 取值
const (
	KindInvalidRequest = "InvalidRequest"
	KindNotFound       = "NotFound"
	KindSessionState   = "SessionStateError"
	KindUpstream       = "UpstreamError"
	KindInternal       = "InternalError"
)

// errorStatus 把领域错误映射为 HTTP 状态码、kind 和可展示的消息
func errorStatus(err error) (int, string, string) {
	if re, ok := processor.AsResumeError(err); ok {
		switch re.Kind {
		case processor.KindValidation:
			return consts.StatusBadRequest, string(re.Kind), re.UserMessage()
		case processor.KindContentTooShort, processor.KindExtraction:
			return consts.StatusUnprocessableEntity, string(re.Kind), re.UserMessage()
		default:
			return consts.StatusInternalServerError, string(re.Kind), re.UserMessage()
		}
	}

	switch {
	case errors.Is(err, processor.ErrInvalidJobContext),
		errors.Is(err, processor.ErrInvalidLevel),
		errors.Is(err, processor.ErrInvalidScore):
		return consts.StatusBadRequest, KindInvalidRequest, err.Error()
	case errors.Is(err, processor.ErrJobNotFound),
		errors.Is(err, interview.ErrSessionNotFound),
		errors.Is(err, interview.ErrResponseNotFound):
		return consts.StatusNotFound, KindNotFound, err.Error()
	case errors.Is(err, interview.ErrSessionNotActive),
		errors.Is(err, interview.ErrAlreadyAnswered),
		errors.Is(err, interview.ErrNoCurrentQuestion),
		errors.Is(err, interview.ErrNoMoreQuestions),
		errors.Is(err, interview.ErrNoQuestions):
		return consts.StatusConflict, KindSessionState, err.Error()
	case errors.Is(err, processor.ErrQuestionGenFailed):
		return consts.StatusBadGateway, KindUpstream, "面试题生成失败，请稍后重试"
	default:
		return consts.StatusInternalServerError, KindInternal, "服务内部错误"
	}
}

// writeError 写出统一格式的错误响应 {"error": ..., "kind": ...}
func writeError(c context.Context, ctx *app.RequestContext, err error) {
	status, kind, message := errorStatus(err)

	span := trace.SpanFromContext(c)
	tracing.RecordHTTPError(span, err, status)

	event := logger.Ctx(c).Warn()
	if status >= consts.StatusInternalServerError {
		event = logger.Ctx(c).Error()
	}
	event.Err(err).
		Int("status", status).
		Str("kind", kind).
		Str("path", string(ctx.Path())).
		Msg("请求处理失败")

	ctx.JSON(status, utils.H{"error": message, "kind": kind})
}

// badRequest 请求体或参数不合法
func badRequest(ctx *app.RequestContext, message string) {
	ctx.JSON(consts.StatusBadRequest, utils.H{"error": message, "kind": KindInvalidRequest})
}
