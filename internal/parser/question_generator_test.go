package parser

import (
	"context"
	"errors"
	"strings"
	"testing"

	"interview-prep-go/internal/agent"
	"interview-prep-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJob() types.JobContext {
	resume := strings.Repeat("r", 5000)
	return types.JobContext{
		ID:                "job-1",
		Title:             "Backend Engineer",
		Description:       "Build APIs in Go",
		Skills:            []string{"Go", "MySQL"},
		YearsOfExperience: 3,
		ResumeText:        &resume,
	}
}

func TestGenerateQuestions(t *testing.T) {
	mock := agent.NewMockChatModel("```json\n"+`{"questions":[
		{"text":"Explain goroutines","category":"technical","hint":"scheduler"},
		{"text":"  ","category":"technical"},
		{"text":"Tell me about a conflict","category":"behavioral"}
	]}`+"\n```", nil)
	g := NewLLMQuestionGenerator(mock, WithQuestionCount(5))

	questions, err := g.GenerateQuestions(context.Background(), sampleJob(), 2)
	require.NoError(t, err)
	require.Len(t, questions, 2, "空题目应被丢弃")
	assert.Equal(t, "Explain goroutines", questions[0].Text)
	assert.Equal(t, "scheduler", questions[0].Hint)
	assert.Equal(t, "behavioral", questions[1].Category)

	msgs := mock.LastMessages()
	require.Len(t, msgs, 2)
	user := msgs[1].Content
	assert.Contains(t, user, "Backend Engineer")
	assert.Contains(t, user, "Go, MySQL")
	assert.Contains(t, user, "Difficulty level: 2")
	// 简历摘录被截断到 4000 字符
	assert.Contains(t, user, strings.Repeat("r", 4000))
	assert.NotContains(t, user, strings.Repeat("r", 4001))
}

func TestGenerateQuestionsCapsCount(t *testing.T) {
	mock := agent.NewMockChatModel(`{"questions":[{"text":"q1"},{"text":"q2"},{"text":"q3"}]}`, nil)
	questions, err := NewLLMQuestionGenerator(mock, WithQuestionCount(2)).GenerateQuestions(context.Background(), sampleJob(), 1)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
}

func TestGenerateQuestionsRepairsUnescapedQuotes(t *testing.T) {
	mock := agent.NewMockChatModel(`{"questions":[{"text":"What does "defer" do?","category":"technical"}]}`, nil)
	questions, err := NewLLMQuestionGenerator(mock).GenerateQuestions(context.Background(), sampleJob(), 1)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, `What does "defer" do?`, questions[0].Text)
}

func TestGenerateQuestionsFailures(t *testing.T) {
	_, err := NewLLMQuestionGenerator(agent.NewMockChatModel(`{"questions":[]}`, nil)).
		GenerateQuestions(context.Background(), sampleJob(), 1)
	assert.ErrorIs(t, err, ErrNoQuestions)

	_, err = NewLLMQuestionGenerator(agent.NewMockChatModel("no json here", nil)).
		GenerateQuestions(context.Background(), sampleJob(), 1)
	assert.Error(t, err)

	boom := errors.New("upstream down")
	_, err = NewLLMQuestionGenerator(agent.NewMockChatModel("", boom)).
		GenerateQuestions(context.Background(), sampleJob(), 1)
	assert.ErrorIs(t, err, boom)

	_, err = NewLLMQuestionGenerator(nil).GenerateQuestions(context.Background(), sampleJob(), 1)
	assert.Error(t, err)
}
