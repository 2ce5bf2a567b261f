package processor

import (
	"context"
	"errors"
	"sync"
	"time"

	"interview-prep-go/internal/storage"
	"interview-prep-go/internal/types"
)

// MockFormatExtractor 可控的格式提取器
type MockFormatExtractor struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
	fn    func(ctx context.Context, content []byte) (string, error)
}

func (m *MockFormatExtractor) Extract(ctx context.Context, content []byte) (string, error) {
	m.mu.Lock()
	m.calls++
	fn := m.fn
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, content)
	}
	return m.text, m.err
}

func (m *MockFormatExtractor) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockParseCache 内存版解析缓存
type MockParseCache struct {
	mu      sync.Mutex
	entries map[string]types.ParsedResume
	getErr  error
	setErr  error
	sets    int
	lastTTL time.Duration
}

func NewMockParseCache() *MockParseCache {
	return &MockParseCache{entries: make(map[string]types.ParsedResume)}
}

func (m *MockParseCache) GetParsedResume(_ context.Context, kind, contentMD5 string) (*types.ParsedResume, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.entries[kind+":"+contentMD5]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (m *MockParseCache) SetParsedResume(_ context.Context, kind, contentMD5 string, parsed *types.ParsedResume, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.lastTTL = ttl
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[kind+":"+contentMD5] = *parsed
	return nil
}

// MockArchive 记录归档调用
type MockArchive struct {
	mu        sync.Mutex
	originals []string
	texts     map[string]string
	err       error
}

func NewMockArchive() *MockArchive {
	return &MockArchive{texts: make(map[string]string)}
}

func (m *MockArchive) ArchiveOriginal(_ context.Context, contentMD5 string, _ *types.ResumeFile) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.originals = append(m.originals, contentMD5)
	return "resume/" + contentMD5, nil
}

func (m *MockArchive) ArchiveParsedText(_ context.Context, jobID string, text string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.texts[jobID] = text
	return "job/" + jobID, nil
}

// MockJobStore 内存版岗位存储
type MockJobStore struct {
	mu        sync.Mutex
	jobs      map[string]types.JobContext
	createErr error
	getErr    error
}

func NewMockJobStore() *MockJobStore {
	return &MockJobStore{jobs: make(map[string]types.JobContext)}
}

func (m *MockJobStore) CreateJobContext(_ context.Context, job *types.JobContext) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return "", m.createErr
	}
	m.jobs[job.ID] = *job
	return job.ID, nil
}

func (m *MockJobStore) GetJobContext(_ context.Context, id string) (*types.JobContext, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	job, ok := m.jobs[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &job, nil
}

// MockQuestionGenerator 返回固定题目
type MockQuestionGenerator struct {
	questions []types.Question
	err       error
	lastLevel int
	lastJob   types.JobContext
}

func (m *MockQuestionGenerator) GenerateQuestions(_ context.Context, job types.JobContext, level int) ([]types.Question, error) {
	m.lastJob = job
	m.lastLevel = level
	if m.err != nil {
		return nil, m.err
	}
	return m.questions, nil
}

// MockRecorder 记录保存的面试结果
type MockRecorder struct {
	mu      sync.Mutex
	results []types.InterviewResult
	err     error
}

func (m *MockRecorder) SaveInterviewResult(_ context.Context, result *types.InterviewResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.results = append(m.results, *result)
	return nil
}

// MockPublisher 记录发布的事件
type MockPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

type publishedEvent struct {
	routingKey string
	payload    interface{}
}

func (m *MockPublisher) PublishJSON(_ context.Context, routingKey string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, publishedEvent{routingKey: routingKey, payload: payload})
	return nil
}

func (m *MockPublisher) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.events))
	for _, e := range m.events {
		keys = append(keys, e.routingKey)
	}
	return keys
}

var errBoom = errors.New("boom")
