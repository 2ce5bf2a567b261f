package interview

import (
	"sync"
	"testing"

	"interview-prep-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	q1 = types.Question{Text: "What is a goroutine?"}
	q2 = types.Question{Text: "Describe a hard bug you fixed."}
)

func TestSessionScenario(t *testing.T) {
	s := NewSession()
	assert.Equal(t, types.SessionPending, s.Status())

	require.NoError(t, s.Start("job-1", 2, []types.Question{q1, q2}))
	snap := s.Snapshot()
	assert.Equal(t, types.SessionInProgress, snap.Status)
	assert.Equal(t, 0, snap.CurrentIndex)
	assert.Empty(t, snap.Responses)
	assert.Nil(t, snap.TotalScore)

	require.NoError(t, s.SubmitAnswer("ans-a"))
	snap = s.Snapshot()
	require.Len(t, snap.Responses, 1)
	assert.Equal(t, q1.Text, snap.Responses[0].Question)
	assert.Equal(t, "ans-a", snap.Responses[0].Answer)
	assert.Equal(t, 0, snap.CurrentIndex, "提交回答不会自动前进")

	require.NoError(t, s.Advance())
	assert.Equal(t, 1, s.Snapshot().CurrentIndex)

	require.NoError(t, s.SubmitAnswer("ans-b"))
	assert.Len(t, s.Snapshot().Responses, 2)

	require.NoError(t, s.Complete(85))
	snap = s.Snapshot()
	assert.Equal(t, types.SessionCompleted, snap.Status)
	require.NotNil(t, snap.TotalScore)
	assert.Equal(t, 85, *snap.TotalScore)
	assert.NotNil(t, snap.CompletedAt)

	assert.ErrorIs(t, s.SubmitAnswer("late"), ErrSessionNotActive)
	assert.Len(t, s.Snapshot().Responses, 2)
}

func TestStartRequiresQuestions(t *testing.T) {
	s := NewSession()
	assert.ErrorIs(t, s.Start("job-1", 1, nil), ErrNoQuestions)
	assert.Equal(t, types.SessionPending, s.Status())
}

func TestStartCopiesQuestions(t *testing.T) {
	qs := []types.Question{q1}
	s := NewSession()
	require.NoError(t, s.Start("job-1", 1, qs))
	qs[0].Text = "mutated"
	assert.Equal(t, q1.Text, s.Snapshot().Questions[0].Text)
}

func TestStartReplacesExistingSession(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("job-1", 1, []types.Question{q1, q2}))
	require.NoError(t, s.SubmitAnswer("a"))
	require.NoError(t, s.Complete(10))

	require.NoError(t, s.Start("job-2", 3, []types.Question{q2}))
	snap := s.Snapshot()
	assert.Equal(t, "job-2", snap.JobID)
	assert.Equal(t, types.SessionInProgress, snap.Status)
	assert.Empty(t, snap.Responses)
	assert.Nil(t, snap.TotalScore)
	assert.Nil(t, snap.CompletedAt)
}

func TestOperationsRequireInProgress(t *testing.T) {
	s := NewSession()
	assert.ErrorIs(t, s.SubmitAnswer("x"), ErrSessionNotActive)
	assert.ErrorIs(t, s.Advance(), ErrSessionNotActive)
	assert.ErrorIs(t, s.Complete(1), ErrSessionNotActive)
	assert.ErrorIs(t, s.ScoreResponse(0, 1, ""), ErrSessionNotActive)
}

func TestAdvanceClampsAtEnd(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("job-1", 1, []types.Question{q1, q2}))

	require.NoError(t, s.Advance())
	require.NoError(t, s.Advance())
	assert.Equal(t, 2, s.Snapshot().CurrentIndex)

	assert.ErrorIs(t, s.Advance(), ErrNoMoreQuestions)
	assert.Equal(t, 2, s.Snapshot().CurrentIndex, "索引不会超过题目数")
	assert.ErrorIs(t, s.SubmitAnswer("x"), ErrNoCurrentQuestion)
}

func TestSubmitAnswerOncePerQuestion(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("job-1", 1, []types.Question{q1, q2}))
	require.NoError(t, s.SubmitAnswer("first"))
	assert.ErrorIs(t, s.SubmitAnswer("second"), ErrAlreadyAnswered)

	snap := s.Snapshot()
	require.Len(t, snap.Responses, 1)
	assert.Equal(t, "first", snap.Responses[0].Answer)
}

func TestSkippedQuestionsKeepAlignment(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("job-1", 1, []types.Question{q1, q2}))
	require.NoError(t, s.Advance())
	require.NoError(t, s.SubmitAnswer("only second"))

	snap := s.Snapshot()
	require.Len(t, snap.Responses, 2)
	assert.Equal(t, q1.Text, snap.Responses[0].Question)
	assert.Empty(t, snap.Responses[0].Answer)
	assert.Equal(t, q2.Text, snap.Responses[1].Question)
	assert.Equal(t, "only second", snap.Responses[1].Answer)
}

func TestCompleteIsIdempotent(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("job-1", 1, []types.Question{q1}))

	snap, done, err := s.TryComplete(70)
	require.NoError(t, err)
	assert.True(t, done)
	require.NotNil(t, snap.TotalScore)
	assert.Equal(t, 70, *snap.TotalScore)

	snap, done, err = s.TryComplete(99)
	require.NoError(t, err)
	assert.False(t, done)
	require.NotNil(t, snap.TotalScore)
	assert.Equal(t, 70, *snap.TotalScore, "再次完成不会覆盖总分")
	assert.Equal(t, 70, *s.Snapshot().TotalScore)
}

func TestTryCompleteSnapshotSurvivesConcurrentReset(t *testing.T) {
	for i := 0; i < 200; i++ {
		s := NewSession()
		require.NoError(t, s.Start("job-1", 1, []types.Question{q1}))

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Reset()
		}()

		snap, done, err := s.TryComplete(42)
		wg.Wait()

		if err != nil {
			// Reset 先执行，会话已回到 pending
			assert.ErrorIs(t, err, ErrSessionNotActive)
			assert.False(t, done)
			continue
		}
		assert.True(t, done)
		require.NotNil(t, snap.TotalScore)
		require.NotNil(t, snap.CompletedAt)
		assert.Equal(t, 42, *snap.TotalScore)
		assert.Equal(t, types.SessionCompleted, snap.Status)
	}
}

func TestScoreResponse(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("job-1", 1, []types.Question{q1}))
	require.NoError(t, s.SubmitAnswer("a"))

	require.NoError(t, s.ScoreResponse(0, 8, "clear and concise"))
	assert.ErrorIs(t, s.ScoreResponse(1, 8, ""), ErrResponseNotFound)

	snap := s.Snapshot()
	require.NotNil(t, snap.Responses[0].Score)
	assert.Equal(t, 8, *snap.Responses[0].Score)
	assert.Equal(t, "clear and concise", *snap.Responses[0].Feedback)

	// 快照是深拷贝
	*snap.Responses[0].Score = 0
	assert.Equal(t, 8, *s.Snapshot().Responses[0].Score)
}

func TestResetAlwaysSucceeds(t *testing.T) {
	s := NewSession()
	s.Reset()
	assert.Equal(t, types.SessionPending, s.Status())

	require.NoError(t, s.Start("job-1", 1, []types.Question{q1}))
	require.NoError(t, s.Complete(50))
	s.Reset()

	snap := s.Snapshot()
	assert.Equal(t, types.SessionPending, snap.Status)
	assert.Empty(t, snap.Questions)
	assert.Empty(t, snap.Responses)
	assert.Nil(t, snap.TotalScore)
}

func TestSessionConcurrentAnswers(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Start("job-1", 1, []types.Question{q1, q2}))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.SubmitAnswer("a")
			_ = s.Advance()
		}()
	}
	wg.Wait()

	snap := s.Snapshot()
	assert.LessOrEqual(t, len(snap.Responses), len(snap.Questions))
	assert.LessOrEqual(t, snap.CurrentIndex, len(snap.Questions))
}
