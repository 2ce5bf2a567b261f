package agent

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChatModelRequiresKey(t *testing.T) {
	_, err := NewChatModel(ChatModelConfig{})
	assert.Error(t, err)
}

func TestChatModelGenerate(t *testing.T) {
	var captured chatCompletionRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","model":"qwen-plus","choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}],"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`))
	}))
	defer server.Close()

	m, err := NewChatModel(ChatModelConfig{APIKey: "sk-test", APIURL: server.URL, Temperature: 0.2})
	require.NoError(t, err)

	out, err := m.Generate(context.Background(), []*schema.Message{
		schema.SystemMessage("sys"),
		schema.UserMessage("hi"),
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out.Content)
	assert.Equal(t, schema.Assistant, out.Role)
	require.NotNil(t, out.ResponseMeta)
	assert.Equal(t, 4, out.ResponseMeta.Usage.TotalTokens)

	assert.Equal(t, "qwen-plus", captured.Model)
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, "system", captured.Messages[0].Role)
	require.NotNil(t, captured.Temperature)
	assert.InDelta(t, 0.2, *captured.Temperature, 1e-6)
}

func TestChatModelGenerateStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	m, err := NewChatModel(ChatModelConfig{APIKey: "sk-test", APIURL: server.URL})
	require.NoError(t, err)

	_, err = m.Generate(context.Background(), []*schema.Message{schema.UserMessage("hi")})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.True(t, apiErr.Retryable())
}

func TestMockChatModelSequential(t *testing.T) {
	m := NewMockChatModelSequential(
		MockResponse{Error: errors.New("first fails")},
		MockResponse{Content: "second"},
	)

	_, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("a")})
	assert.Error(t, err)

	out, err := m.Generate(context.Background(), []*schema.Message{schema.UserMessage("b")})
	require.NoError(t, err)
	assert.Equal(t, "second", out.Content)

	// 最后一条响应会被重复使用
	stream, err := m.Stream(context.Background(), []*schema.Message{schema.UserMessage("c")})
	require.NoError(t, err)
	chunk, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, "second", chunk.Content)

	assert.Equal(t, 3, m.Calls())
	assert.Equal(t, "c", m.LastMessages()[0].Content)
}
