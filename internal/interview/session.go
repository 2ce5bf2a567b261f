package interview

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"interview-prep-go/internal/types"
	"interview-prep-go/pkg/utils"
)

// 会话状态错误
var (
	ErrNoQuestions       = errors.New("interview requires at least one question")
	ErrSessionNotActive  = errors.New("interview session is not in progress")
	ErrAlreadyAnswered   = errors.New("current question has already been answered")
	ErrNoCurrentQuestion = errors.New("no question at the current position")
	ErrNoMoreQuestions   = errors.New("already past the last question")
	ErrResponseNotFound  = errors.New("response index out of range")
)

// Session 单场面试的内存状态机：pending -> in_progress -> completed。
// completed 为终态，只能通过 Reset 回到 pending。所有方法并发安全。
type Session struct {
	mu sync.Mutex

	jobID        string
	level        int
	questions    []types.Question
	currentIndex int
	responses    []types.Response
	status       types.SessionStatus
	totalScore   *int
	startedAt    time.Time
	completedAt  *time.Time

	now func() time.Time
}

// NewSession 创建一个 pending 状态的会话
func NewSession() *Session {
	return &Session{status: types.SessionPending, now: time.Now}
}

// Start 开始一场面试，覆盖之前的任何状态。题目列表在会话期间固定。
func (s *Session) Start(jobID string, level int, questions []types.Question) error {
	if len(questions) == 0 {
		return ErrNoQuestions
	}

	fixed := make([]types.Question, len(questions))
	copy(fixed, questions)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobID = jobID
	s.level = level
	s.questions = fixed
	s.currentIndex = 0
	s.responses = make([]types.Response, 0, len(fixed))
	s.status = types.SessionInProgress
	s.totalScore = nil
	s.startedAt = s.now()
	s.completedAt = nil
	return nil
}

// SubmitAnswer 记录当前题目的回答，不会自动前进。
// 每道题只能回答一次，回答数因此不会超过题目数。
func (s *Session) SubmitAnswer(answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != types.SessionInProgress {
		return ErrSessionNotActive
	}
	if s.currentIndex >= len(s.questions) {
		return ErrNoCurrentQuestion
	}
	if len(s.responses) > s.currentIndex {
		return ErrAlreadyAnswered
	}
	// 跳过的题目留空，保证 responses[i] 对应 questions[i]
	for len(s.responses) < s.currentIndex {
		s.responses = append(s.responses, types.Response{Question: s.questions[len(s.responses)].Text})
	}

	s.responses = append(s.responses, types.Response{
		Question: s.questions[s.currentIndex].Text,
		Answer:   answer,
	})
	return nil
}

// Advance 前进到下一题。索引最多等于题目数，再前进返回 ErrNoMoreQuestions 且索引不变。
func (s *Session) Advance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != types.SessionInProgress {
		return ErrSessionNotActive
	}
	if s.currentIndex >= len(s.questions) {
		return ErrNoMoreQuestions
	}
	s.currentIndex++
	return nil
}

// ScoreResponse 为第 i 条回答打分并附上反馈
func (s *Session) ScoreResponse(i int, score int, feedback string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != types.SessionInProgress {
		return ErrSessionNotActive
	}
	if i < 0 || i >= len(s.responses) {
		return fmt.Errorf("%w: %d", ErrResponseNotFound, i)
	}

	s.responses[i].Score = utils.IntPtr(score)
	s.responses[i].Feedback = utils.StringPtr(feedback)
	return nil
}

// Complete 结束面试并记录总分。已完成的会话再次调用不做任何修改。
func (s *Session) Complete(totalScore int) error {
	_, _, err := s.TryComplete(totalScore)
	return err
}

// TryComplete 与 Complete 相同，额外返回本次调用是否真正完成了会话，
// 以及在同一把锁内取得的快照。调用方应基于该快照构造结果，
// 解锁后会话可能已被并发 Reset。
func (s *Session) TryComplete(totalScore int) (types.SessionSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case types.SessionCompleted:
		return s.snapshotLocked(), false, nil
	case types.SessionInProgress:
	default:
		return types.SessionSnapshot{}, false, ErrSessionNotActive
	}

	completedAt := s.now()
	s.totalScore = utils.IntPtr(totalScore)
	s.completedAt = &completedAt
	s.status = types.SessionCompleted
	return s.snapshotLocked(), true, nil
}

// Reset 清空会话，回到 pending，任何状态下都成功
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobID = ""
	s.level = 0
	s.questions = nil
	s.currentIndex = 0
	s.responses = nil
	s.status = types.SessionPending
	s.totalScore = nil
	s.startedAt = time.Time{}
	s.completedAt = nil
}

// Status 返回当前状态
func (s *Session) Status() types.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot 返回会话的深拷贝，调用方修改它不会影响会话
func (s *Session) Snapshot() types.SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// snapshotLocked 调用方需持有 s.mu
func (s *Session) snapshotLocked() types.SessionSnapshot {
	snap := types.SessionSnapshot{
		JobID:        s.jobID,
		Level:        s.level,
		Questions:    make([]types.Question, len(s.questions)),
		CurrentIndex: s.currentIndex,
		Responses:    make([]types.Response, len(s.responses)),
		Status:       s.status,
		StartedAt:    s.startedAt,
	}
	copy(snap.Questions, s.questions)
	for i, r := range s.responses {
		snap.Responses[i] = copyResponse(r)
	}
	if s.totalScore != nil {
		snap.TotalScore = utils.IntPtr(*s.totalScore)
	}
	if s.completedAt != nil {
		snap.CompletedAt = utils.TimePtr(*s.completedAt)
	}
	return snap
}

func copyResponse(r types.Response) types.Response {
	out := types.Response{Question: r.Question, Answer: r.Answer}
	if r.Score != nil {
		out.Score = utils.IntPtr(*r.Score)
	}
	if r.Feedback != nil {
		v := *r.Feedback
		out.Feedback = &v
	}
	return out
}
