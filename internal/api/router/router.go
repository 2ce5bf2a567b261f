package router

import (
	"context"

	"interview-prep-go/internal/api/handler"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// Handlers 路由依赖的全部 handler
type Handlers struct {
	Resume    *handler.ResumeHandler
	Job       *handler.JobHandler
	Interview *handler.InterviewHandler
}

// RegisterRoutes 注册 API 路由。apiKeys 非空时 /api/v1 下的接口需要 Bearer API Key。
func RegisterRoutes(h *server.Hertz, handlers Handlers, apiKeys []string) {
	// 健康检查不鉴权
	h.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api := h.Group("/api/v1")
	if len(apiKeys) > 0 {
		api.Use(newKeyAuth(apiKeys))
	}

	api.POST("/resumes/validate", handlers.Resume.HandleValidate)
	api.POST("/resumes/parse", handlers.Resume.HandleParse)

	api.POST("/jobs", handlers.Job.HandleCreateJob)
	api.GET("/jobs/:id", handlers.Job.HandleGetJob)

	api.POST("/interviews", handlers.Interview.HandleStart)
	api.GET("/interviews/:id", handlers.Interview.HandleGet)
	api.POST("/interviews/:id/answers", handlers.Interview.HandleSubmitAnswer)
	api.POST("/interviews/:id/advance", handlers.Interview.HandleAdvance)
	api.POST("/interviews/:id/responses/:index/score", handlers.Interview.HandleScore)
	api.POST("/interviews/:id/complete", handlers.Interview.HandleComplete)
	api.DELETE("/interviews/:id", handlers.Interview.HandleReset)
}

func newKeyAuth(apiKeys []string) app.HandlerFunc {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, k := range apiKeys {
		allowed[k] = struct{}{}
	}

	return keyauth.New(
		keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
		keyauth.WithValidator(func(_ context.Context, _ *app.RequestContext, key string) (bool, error) {
			_, ok := allowed[key]
			return ok, nil
		}),
		keyauth.WithErrorHandler(func(_ context.Context, ctx *app.RequestContext, err error) {
			ctx.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "API Key 无效或缺失", "kind": "Unauthorized"})
		}),
	)
}
