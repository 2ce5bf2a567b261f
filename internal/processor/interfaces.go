package processor

import (
	"context"
	"time"

	"interview-prep-go/internal/types"
)

//
// 简历解析相关接口
//

// ParseCache 以文件内容 MD5 为键缓存解析结果
type ParseCache interface {
	GetParsedResume(ctx context.Context, kind, contentMD5 string) (*types.ParsedResume, bool, error)
	SetParsedResume(ctx context.Context, kind, contentMD5 string, parsed *types.ParsedResume, ttl time.Duration) error
}

// ResumeArchive 对象存储中的简历归档
type ResumeArchive interface {
	// ArchiveOriginal 保存原始上传文件，返回对象名
	ArchiveOriginal(ctx context.Context, contentMD5 string, file *types.ResumeFile) (string, error)
	// ArchiveParsedText 保存岗位关联的简历文本，返回对象名
	ArchiveParsedText(ctx context.Context, jobID string, text string) (string, error)
}

//
// 面试相关接口
//

// JobStore 岗位上下文记录的持久化
type JobStore interface {
	CreateJobContext(ctx context.Context, job *types.JobContext) (string, error)
	GetJobContext(ctx context.Context, id string) (*types.JobContext, error)
}

// QuestionGenerator 根据岗位上下文生成有序的面试题
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, job types.JobContext, level int) ([]types.Question, error)
}

// InterviewRecorder 持久化完成的面试
type InterviewRecorder interface {
	SaveInterviewResult(ctx context.Context, result *types.InterviewResult) error
}

// EventPublisher 发布领域事件
type EventPublisher interface {
	PublishJSON(ctx context.Context, routingKey string, payload interface{}) error
}
