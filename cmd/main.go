package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"interview-prep-go/internal/agent"
	"interview-prep-go/internal/api/handler"
	"interview-prep-go/internal/api/router"
	"interview-prep-go/internal/config"
	"interview-prep-go/internal/constants"
	appCoreLogger "interview-prep-go/internal/logger"
	"interview-prep-go/internal/parser"
	"interview-prep-go/internal/processor"
	"interview-prep-go/internal/storage"
	"interview-prep-go/internal/tracing"
	"interview-prep-go/pkg/ratelimit"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/middlewares/server/recovery"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

var (
	version = "1.0.0" //nolint:gochecknoglobals
)

// 没有配置 API Key 时使用的离线题目
const offlineQuestions = `{"questions":[
{"text":"Walk me through a project you are proud of and your role in it.","category":"behavioral"},
{"text":"Describe a technical trade-off you made recently and how you evaluated it.","category":"technical"},
{"text":"How would you design a service that must stay available during a dependency outage?","category":"system_design"}
]}`

func main() {
	_ = godotenv.Load()

	var configPath, sampleConfigPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.StringVar(&sampleConfigPath, "init-config", "", "写出一份默认配置到指定路径后退出")
	pflag.Parse()

	if sampleConfigPath != "" {
		if err := config.CreateSampleConfig(sampleConfigPath); err != nil {
			glog.Fatalf("生成示例配置失败: %v", err)
		}
		glog.Infof("示例配置已写入 %s", sampleConfigPath)
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		glog.Fatalf("加载配置失败: %v", err)
	}
	initLogger(cfg)
	appCoreLogger.Info().Str("version", version).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, tracing.ProviderConfig{
		ServiceName: constants.ServiceName,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
	})
	if err != nil {
		glog.Fatalf("初始化链路追踪失败: %v", err)
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	resumeProcessor := newResumeProcessor(cfg, storageManager)
	glog.Info("ResumeProcessor初始化成功")

	generator := parser.NewLLMQuestionGenerator(
		newChatModel(cfg),
		parser.WithQuestionCount(cfg.Interview.QuestionCount),
		parser.WithResumeExcerptLen(cfg.Interview.ResumeExcerptLen),
	)

	interviewService := newInterviewService(cfg, storageManager, generator)
	go interviewService.RunSessionSweeper(ctx, config.GetDuration(cfg.Interview.SessionSweepInterval, 5*time.Minute))
	glog.Info("InterviewService初始化成功")

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		server.WithMaxRequestBodySize(int(cfg.Resume.MaxFileSizeBytes)+1<<20),
		tracer,
	)
	// handler 中的 panic 转成 500，不中断进程
	h.Use(recovery.Recovery())
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxInfof(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxInfof(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, router.Handlers{
		Resume:    handler.NewResumeHandler(resumeProcessor),
		Job:       handler.NewJobHandler(interviewService),
		Interview: handler.NewInterviewHandler(interviewService),
	}, cfg.Auth.APIKeys)
	glog.Infof("HTTP路由注册成功, API Key 鉴权: %t", len(cfg.Auth.APIKeys) > 0)

	glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

func initLogger(cfg *config.Config) {
	appCoreLogger.Init(appCoreLogger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	// hertz 的日志也走同一个 zerolog 实例
	glog.SetLogger(hertzadapter.From(appCoreLogger.Logger))
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	} else {
		glog.SetLevel(glog.LevelInfo)
	}
}

// newResumeProcessor 只接入初始化成功的存储组件
func newResumeProcessor(cfg *config.Config, s *storage.Storage) *processor.ResumeProcessor {
	var opts []processor.ProcessorOption
	if s.Redis != nil {
		opts = append(opts, processor.WithParseCache(s.Redis, s.Redis.ParseCacheTTL()))
	}
	if s.MinIO != nil {
		opts = append(opts, processor.WithResumeArchive(s.MinIO))
	}
	return processor.NewResumeProcessor(cfg.Resume, opts...)
}

// newChatModel 创建带限流的大模型客户端，未配置 API Key 时回退到离线题目
func newChatModel(cfg *config.Config) model.BaseChatModel {
	chatModel, err := agent.NewChatModel(agent.ChatModelConfig{
		APIKey:      cfg.LLM.APIKey,
		APIURL:      cfg.LLM.APIURL,
		Model:       cfg.LLM.Model,
		Temperature: float32(cfg.LLM.Temperature),
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     config.GetDuration(cfg.LLM.Timeout, 60*time.Second),
	})
	if err != nil {
		glog.Warnf("大模型客户端初始化失败, 使用离线题目: %v", err)
		return agent.NewMockChatModel(offlineQuestions, nil)
	}

	qpm := cfg.QPMForModel(chatModel.ModelName())
	glog.Infof("大模型 %s 限流: %d QPM", chatModel.ModelName(), qpm)
	return ratelimit.NewLLMWithRateLimit(
		chatModel,
		qpm,
		cfg.LLM.MaxRetries,
		time.Duration(cfg.LLM.RetryWaitSeconds)*time.Second,
	)
}

func newInterviewService(cfg *config.Config, s *storage.Storage, generator processor.QuestionGenerator) *processor.InterviewService {
	opts := []processor.ServiceOption{
		processor.WithInterviewRecorder(s.MySQL),
		processor.WithMaxLevel(cfg.Interview.MaxLevel),
		processor.WithSessionExpiry(
			config.GetDuration(cfg.Interview.SessionIdleTTL, 2*time.Hour),
			config.GetDuration(cfg.Interview.SessionCompletedTTL, 30*time.Minute),
		),
	}
	if s.MinIO != nil {
		opts = append(opts, processor.WithArchive(s.MinIO))
	}
	if s.RabbitMQ != nil {
		publisher, err := s.RabbitMQ.NewExchangePublisher(
			cfg.RabbitMQ.InterviewEventsExchange,
			config.GetDuration(cfg.RabbitMQ.PublishTimeout, 5*time.Second),
		)
		if err != nil {
			glog.Warnf("初始化事件发布失败, 事件将不会发布: %v", err)
		} else {
			opts = append(opts, processor.WithEventPublisher(publisher, cfg.RabbitMQ.JobCreatedRoutingKey, cfg.RabbitMQ.CompletedRoutingKey))
		}
	}
	return processor.NewInterviewService(s.MySQL, generator, opts...)
}
