package processor

import (
	"time"

	"interview-prep-go/internal/interview"
	"interview-prep-go/internal/parser"
)

// ProcessorOption 简历处理器选项
type ProcessorOption func(*ResumeProcessor)

// WithExtractors 替换格式提取器
func WithExtractors(extractors *parser.Extractors) ProcessorOption {
	return func(p *ResumeProcessor) {
		if extractors != nil {
			p.extractors = extractors
		}
	}
}

// WithParseCache 启用解析结果缓存
func WithParseCache(cache ParseCache, ttl time.Duration) ProcessorOption {
	return func(p *ResumeProcessor) {
		p.cache = cache
		if ttl > 0 {
			p.cacheTTL = ttl
		}
	}
}

// WithResumeArchive 解析成功后归档原始文件
func WithResumeArchive(archive ResumeArchive) ProcessorOption {
	return func(p *ResumeProcessor) {
		p.archive = archive
	}
}

// ServiceOption 面试服务选项
type ServiceOption func(*InterviewService)

// WithArchive 归档岗位关联的简历文本
func WithArchive(archive ResumeArchive) ServiceOption {
	return func(s *InterviewService) {
		s.archive = archive
	}
}

// WithEventPublisher 发布岗位创建和面试完成事件
func WithEventPublisher(publisher EventPublisher, jobCreatedKey, completedKey string) ServiceOption {
	return func(s *InterviewService) {
		s.publisher = publisher
		if jobCreatedKey != "" {
			s.jobCreatedKey = jobCreatedKey
		}
		if completedKey != "" {
			s.completedKey = completedKey
		}
	}
}

// WithInterviewRecorder 持久化完成的面试
func WithInterviewRecorder(recorder InterviewRecorder) ServiceOption {
	return func(s *InterviewService) {
		s.recorder = recorder
	}
}

// WithMaxLevel 设置难度上限
func WithMaxLevel(maxLevel int) ServiceOption {
	return func(s *InterviewService) {
		if maxLevel > 0 {
			s.maxLevel = maxLevel
		}
	}
}

// WithSessionExpiry 回收长时间无访问的会话，completedTTL 对已完成会话生效。
// 需要配合 RunSessionSweeper 周期执行。
func WithSessionExpiry(idleTTL, completedTTL time.Duration, opts ...interview.ManagerOption) ServiceOption {
	return func(s *InterviewService) {
		opts = append([]interview.ManagerOption{
			interview.WithIdleTTL(idleTTL),
			interview.WithCompletedTTL(completedTTL),
		}, opts...)
		s.sessions = interview.NewManager(opts...)
	}
}

// WithClock 替换时间来源，测试使用
func WithClock(now func() time.Time) ServiceOption {
	return func(s *InterviewService) {
		if now != nil {
			s.now = now
		}
	}
}
