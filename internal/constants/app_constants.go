package constants

import "time"

const (
	// ServiceName 服务名，用于 tracing 和日志
	ServiceName = "interview-prep-go"

	// ParserVersion 简历解析流水线版本，写入缓存键，升级后旧缓存自然失效
	ParserVersion = "v1"

	// DefaultParseCacheTTL 解析结果缓存默认有效期
	DefaultParseCacheTTL = 24 * time.Hour

	// EventJobContextCreated 岗位上下文创建事件的 routing key
	EventJobContextCreated = "job_context.created"
	// EventInterviewCompleted 面试完成事件的 routing key
	EventInterviewCompleted = "interview.completed"
)
