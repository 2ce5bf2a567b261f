package storage

import (
	"context"
	"testing"
	"time"

	"interview-prep-go/internal/config"
	"interview-prep-go/internal/types"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestParsedResumeKey(t *testing.T) {
	assert.Equal(t, "app:resume:parsed:v1:pdf:abc123", ParsedResumeKey("pdf", "abc123"))
	assert.NotEqual(t, ParsedResumeKey("plain_text", "abc123"), ParsedResumeKey("word", "abc123"))
}

func TestParseCacheTTL(t *testing.T) {
	r := &Redis{config: &config.RedisConfig{ParseCacheTTLHours: 6}}
	assert.Equal(t, 6*time.Hour, r.ParseCacheTTL())

	r = &Redis{config: &config.RedisConfig{}}
	assert.Equal(t, 24*time.Hour, r.ParseCacheTTL())
}

func TestRedisWithoutClient(t *testing.T) {
	r := &Redis{}
	_, err := r.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, r.Set(context.Background(), "k", "v", time.Minute))
	assert.Error(t, r.SetParsedResume(context.Background(), "pdf", "md5", nil, 0))
}

func TestObjectNames(t *testing.T) {
	assert.Equal(t, "resume/abc/original.pdf", OriginalObjectName("abc", "application/pdf"))
	assert.Equal(t, "resume/abc/original.txt", OriginalObjectName("abc", "text/plain; charset=utf-8"))
	assert.Equal(t, "resume/abc/original.docx", OriginalObjectName("abc", types.MediaTypeWordDocx))
	assert.Equal(t, "resume/abc/original.bin", OriginalObjectName("abc", "image/png"))
	assert.Equal(t, "job/j-1/resume_text.txt", ParsedTextObjectName("j-1"))
}

func TestJobContextModelConversion(t *testing.T) {
	resume := "Experience: 5 years"
	job := &types.JobContext{
		ID:                "0190c6e4-0000-7000-8000-000000000001",
		Title:             "Backend Engineer",
		Description:       "Build services",
		Skills:            []string{"Golang", "Redis"},
		YearsOfExperience: 3,
		ResumeText:        &resume,
		CreatedAt:         time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	record := JobContextToModel(job)
	assert.JSONEq(t, `["Golang","Redis"]`, string(record.SkillsJSON))

	back, err := ModelToJobContext(record)
	require.NoError(t, err)
	assert.Equal(t, job, back)
}

func TestJobContextModelWithoutSkills(t *testing.T) {
	record := JobContextToModel(&types.JobContext{ID: "x", Title: "t", Description: "d"})
	assert.Equal(t, "[]", string(record.SkillsJSON))

	back, err := ModelToJobContext(record)
	require.NoError(t, err)
	assert.Empty(t, back.Skills)
}

func TestInterviewResultToModel(t *testing.T) {
	_, err := InterviewResultToModel(&types.InterviewResult{})
	assert.Error(t, err)

	record, err := InterviewResultToModel(&types.InterviewResult{
		SessionID:  "s-1",
		JobID:      "j-1",
		Level:      2,
		Questions:  []types.Question{{Text: "q1"}},
		Responses:  []types.Response{{Question: "q1", Answer: "a"}},
		TotalScore: 85,
	})
	require.NoError(t, err)
	assert.Equal(t, "s-1", record.SessionID)
	assert.Equal(t, 85, record.TotalScore)
	assert.JSONEq(t, `[{"text":"q1"}]`, string(record.QuestionsJSON))
	assert.JSONEq(t, `[{"question":"q1","answer":"a"}]`, string(record.ResponsesJSON))
}

func TestGormLogLevel(t *testing.T) {
	assert.NotEqual(t, gormLogLevel(1), gormLogLevel(4))
	assert.Equal(t, gormLogLevel(4), gormLogLevel(0))
}

func TestAMQPHeaderCarrierPropagatesTrace(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	ctx, span := tp.Tracer("test").Start(context.Background(), "publish")
	defer span.End()

	headers := amqp.Table{}
	prop := propagation.TraceContext{}
	prop.Inject(ctx, AMQPHeaderCarrier(headers))
	require.Contains(t, headers, "traceparent")

	extracted := prop.Extract(context.Background(), AMQPHeaderCarrier(headers))
	assert.Equal(t, span.SpanContext().TraceID(), trace.SpanContextFromContext(extracted).TraceID())
	assert.Contains(t, AMQPHeaderCarrier(headers).Keys(), "traceparent")
	assert.Empty(t, AMQPHeaderCarrier(headers).Get("missing"))
}
