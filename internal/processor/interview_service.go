package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"interview-prep-go/internal/constants"
	"interview-prep-go/internal/interview"
	"interview-prep-go/internal/logger"
	"interview-prep-go/internal/storage"
	"interview-prep-go/internal/tracing"
	"interview-prep-go/internal/types"
	"interview-prep-go/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// 面试服务错误
var (
	ErrInvalidJobContext = errors.New("invalid job context")
	ErrJobNotFound       = errors.New("job context not found")
	ErrInvalidLevel      = errors.New("invalid interview level")
	ErrInvalidScore      = errors.New("invalid score")
	ErrQuestionGenFailed = errors.New("failed to generate interview questions")
)

// InterviewService 串联岗位上下文、题目生成和面试会话
type InterviewService struct {
	store     JobStore
	generator QuestionGenerator
	sessions  *interview.Manager

	archive       ResumeArchive
	publisher     EventPublisher
	jobCreatedKey string
	completedKey  string
	recorder      InterviewRecorder

	maxLevel int
	now      func() time.Time
	validate *validator.Validate
}

// NewInterviewService 创建面试服务
func NewInterviewService(store JobStore, generator QuestionGenerator, opts ...ServiceOption) *InterviewService {
	s := &InterviewService{
		store:         store,
		generator:     generator,
		sessions:      interview.NewManager(),
		jobCreatedKey: constants.EventJobContextCreated,
		completedKey:  constants.EventInterviewCompleted,
		maxLevel:      5,
		now:           time.Now,
		validate:      validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateJobContext 校验并持久化岗位上下文，返回带 ID 的记录
func (s *InterviewService) CreateJobContext(ctx context.Context, job *types.JobContext) (*types.JobContext, error) {
	if job == nil {
		return nil, fmt.Errorf("%w: empty request", ErrInvalidJobContext)
	}

	ctx, span := tracer.Start(ctx, "interview.create_job_context")
	defer span.End()

	record := *job
	record.Title = strings.TrimSpace(record.Title)
	record.Description = strings.TrimSpace(record.Description)
	// 空白简历文本按未提供处理
	if record.ResumeText != nil {
		record.ResumeText = utils.StringPtr(strings.TrimSpace(*record.ResumeText))
	}
	if err := s.validate.Struct(&record); err != nil {
		err = fmt.Errorf("%w: %v", ErrInvalidJobContext, err)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, fmt.Errorf("生成岗位ID失败: %w", err)
	}
	record.ID = id.String()
	record.CreatedAt = s.now()
	span.SetAttributes(attribute.String("job.id", record.ID))
	if record.ResumeText != nil {
		span.SetAttributes(
			attribute.Int("job.resume_length", len([]rune(*record.ResumeText))),
			attribute.String("job.resume_preview", tracing.SafeResumeContent(*record.ResumeText)),
		)
	}

	if _, err := s.store.CreateJobContext(ctx, &record); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, fmt.Errorf("保存岗位上下文失败: %w", err)
	}

	if record.ResumeText != nil && s.archive != nil {
		if objectName, err := s.archive.ArchiveParsedText(ctx, record.ID, *record.ResumeText); err != nil {
			logger.Ctx(ctx).Warn().Err(err).Str("job_id", record.ID).Msg("归档岗位简历文本失败")
		} else {
			logger.Ctx(ctx).Debug().Str("object", objectName).Msg("岗位简历文本已归档")
		}
	}

	s.publish(ctx, s.jobCreatedKey, types.JobContextCreatedEvent{
		JobID:     record.ID,
		Title:     record.Title,
		HasResume: record.ResumeText != nil,
		CreatedAt: record.CreatedAt,
	})

	logger.Ctx(ctx).Info().Str("job_id", record.ID).Msg("岗位上下文已创建")
	return &record, nil
}

// GetJobContext 读取岗位上下文
func (s *InterviewService) GetJobContext(ctx context.Context, id string) (*types.JobContext, error) {
	job, err := s.store.GetJobContext(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrJobNotFound, id)
		}
		return nil, fmt.Errorf("读取岗位上下文失败: %w", err)
	}
	return job, nil
}

// StartInterview 加载岗位上下文、生成题目并开启一场受管的面试
func (s *InterviewService) StartInterview(ctx context.Context, jobID string, level int) (types.SessionSnapshot, error) {
	if level < 1 || level > s.maxLevel {
		return types.SessionSnapshot{}, fmt.Errorf("%w: %d (1-%d)", ErrInvalidLevel, level, s.maxLevel)
	}

	ctx, span := tracer.Start(ctx, "interview.start", trace.WithAttributes(
		attribute.String("job.id", jobID),
		attribute.Int("interview.level", level),
	))
	defer span.End()

	job, err := s.GetJobContext(ctx, jobID)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return types.SessionSnapshot{}, err
	}

	questions, err := s.generator.GenerateQuestions(ctx, *job, level)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeLLM)
		return types.SessionSnapshot{}, fmt.Errorf("%w: %v", ErrQuestionGenFailed, err)
	}

	id, session, err := s.sessions.Create()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return types.SessionSnapshot{}, err
	}
	if err := session.Start(job.ID, level, questions); err != nil {
		_ = s.sessions.Remove(id)
		tracing.RecordError(span, err, tracing.ErrorTypeSessionState)
		return types.SessionSnapshot{}, fmt.Errorf("%w: %v", ErrQuestionGenFailed, err)
	}

	span.SetAttributes(attribute.String("interview.session_id", id), attribute.Int("interview.question_count", len(questions)))
	logger.Ctx(ctx).Info().
		Str("session_id", id).
		Str("job_id", job.ID).
		Int("level", level).
		Int("questions", len(questions)).
		Msg("面试已开始")

	return snapshotWithID(id, session), nil
}

// GetInterview 返回会话快照
func (s *InterviewService) GetInterview(id string) (types.SessionSnapshot, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return types.SessionSnapshot{}, err
	}
	return snapshotWithID(id, session), nil
}

// SubmitAnswer 记录当前题目的回答
func (s *InterviewService) SubmitAnswer(ctx context.Context, id, answer string) (types.SessionSnapshot, error) {
	ctx, span := tracer.Start(ctx, "interview.submit_answer", trace.WithAttributes(
		attribute.String("interview.session_id", id),
		attribute.Int("interview.answer_length", len([]rune(answer))),
		attribute.String("interview.answer", tracing.SafeAnswer(answer)),
	))
	defer span.End()

	session, err := s.sessions.Get(id)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeSessionState)
		return types.SessionSnapshot{}, err
	}
	if err := session.SubmitAnswer(answer); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeSessionState)
		logger.Ctx(ctx).Debug().Err(err).Str("session_id", id).Msg("提交回答被拒绝")
		return types.SessionSnapshot{}, err
	}
	return snapshotWithID(id, session), nil
}

// Advance 前进到下一题
func (s *InterviewService) Advance(ctx context.Context, id string) (types.SessionSnapshot, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return types.SessionSnapshot{}, err
	}
	if err := session.Advance(); err != nil {
		logger.Ctx(ctx).Debug().Err(err).Str("session_id", id).Msg("前进被拒绝")
		return types.SessionSnapshot{}, err
	}
	return snapshotWithID(id, session), nil
}

// ScoreAnswer 为某条回答打分
func (s *InterviewService) ScoreAnswer(ctx context.Context, id string, index, score int, feedback string) (types.SessionSnapshot, error) {
	if score < 0 {
		return types.SessionSnapshot{}, fmt.Errorf("%w: %d", ErrInvalidScore, score)
	}
	session, err := s.sessions.Get(id)
	if err != nil {
		return types.SessionSnapshot{}, err
	}
	if err := session.ScoreResponse(index, score, feedback); err != nil {
		return types.SessionSnapshot{}, err
	}
	return snapshotWithID(id, session), nil
}

// CompleteInterview 结束面试。只有真正完成会话的那次调用会持久化结果并发布事件。
func (s *InterviewService) CompleteInterview(ctx context.Context, id string, totalScore int) (types.SessionSnapshot, error) {
	if totalScore < 0 {
		return types.SessionSnapshot{}, fmt.Errorf("%w: %d", ErrInvalidScore, totalScore)
	}

	ctx, span := tracer.Start(ctx, "interview.complete", trace.WithAttributes(
		attribute.String("interview.session_id", id),
	))
	defer span.End()

	session, err := s.sessions.Get(id)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeSessionState)
		return types.SessionSnapshot{}, err
	}

	snap, done, err := session.TryComplete(totalScore)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeSessionState)
		return types.SessionSnapshot{}, err
	}
	snap.ID = id
	if !done {
		return snap, nil
	}

	result := &types.InterviewResult{
		SessionID:   id,
		JobID:       snap.JobID,
		Level:       snap.Level,
		Questions:   snap.Questions,
		Responses:   snap.Responses,
		TotalScore:  *snap.TotalScore,
		StartedAt:   snap.StartedAt,
		CompletedAt: *snap.CompletedAt,
	}

	if s.recorder != nil {
		if err := s.recorder.SaveInterviewResult(ctx, result); err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeDB)
			logger.Ctx(ctx).Error().Err(err).Str("session_id", id).Msg("保存面试结果失败")
		}
	}

	s.publish(ctx, s.completedKey, types.InterviewCompletedEvent{
		SessionID:     id,
		JobID:         snap.JobID,
		Level:         snap.Level,
		TotalScore:    result.TotalScore,
		QuestionCount: len(snap.Questions),
		AnswerCount:   countAnswered(snap.Responses),
		CompletedAt:   result.CompletedAt,
	})

	logger.Ctx(ctx).Info().Str("session_id", id).Int("total_score", result.TotalScore).Msg("面试已完成")
	return snap, nil
}

// RunSessionSweeper 周期回收过期会话，直到 ctx 结束。未配置 WithSessionExpiry 时立即返回。
func (s *InterviewService) RunSessionSweeper(ctx context.Context, interval time.Duration) {
	s.sessions.Run(ctx, interval)
}

// ResetInterview 重置并丢弃会话
func (s *InterviewService) ResetInterview(ctx context.Context, id string) error {
	if err := s.sessions.Remove(id); err != nil {
		return err
	}
	logger.Ctx(ctx).Debug().Str("session_id", id).Msg("面试会话已重置")
	return nil
}

func (s *InterviewService) publish(ctx context.Context, routingKey string, payload interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishJSON(ctx, routingKey, payload); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("routing_key", routingKey).Msg("发布事件失败")
	}
}

func snapshotWithID(id string, session *interview.Session) types.SessionSnapshot {
	snap := session.Snapshot()
	snap.ID = id
	return snap
}

func countAnswered(responses []types.Response) int {
	n := 0
	for _, r := range responses {
		if r.Answer != "" {
			n++
		}
	}
	return n
}
