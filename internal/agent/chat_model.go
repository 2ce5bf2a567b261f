package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"interview-prep-go/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const (
	// DashScope 的 OpenAI 兼容接口
	defaultAPIURL    = "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions"
	defaultModelName = "qwen-plus"
	defaultTimeout   = 60 * time.Second
)

// ChatModelConfig OpenAI 兼容聊天模型配置
type ChatModelConfig struct {
	APIKey      string
	APIURL      string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
}

// ChatModel 通过 OpenAI 兼容的 /chat/completions 接口调用大模型，实现 eino model.BaseChatModel
type ChatModel struct {
	cfg        ChatModelConfig
	httpClient *client.Client
}

var _ model.BaseChatModel = (*ChatModel)(nil)

// NewChatModel 创建聊天模型客户端
func NewChatModel(cfg ChatModelConfig) (*ChatModel, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("API 密钥不能为空")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = defaultModelName
	}
	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = defaultAPIURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c, err := client.NewClient(client.WithDialTimeout(10 * time.Second))
	if err != nil {
		return nil, fmt.Errorf("创建 HTTP 客户端失败: %w", err)
	}

	logger.Info().Str("api_url", cfg.APIURL).Str("model", cfg.Model).Msg("初始化大模型客户端")
	return &ChatModel{cfg: cfg, httpClient: c}, nil
}

// ModelName 返回实际使用的模型名
func (m *ChatModel) ModelName() string {
	return m.cfg.Model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float32      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage,omitempty"`
}

// Generate 实现 model.BaseChatModel
func (m *ChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	defaults := &model.Options{Model: &m.cfg.Model}
	if m.cfg.Temperature > 0 {
		defaults.Temperature = &m.cfg.Temperature
	}
	if m.cfg.MaxTokens > 0 {
		defaults.MaxTokens = &m.cfg.MaxTokens
	}
	options := model.GetCommonOptions(defaults, opts...)

	payload := chatCompletionRequest{
		Model:       *options.Model,
		Messages:    make([]chatMessage, 0, len(messages)),
		Temperature: options.Temperature,
		MaxTokens:   options.MaxTokens,
	}
	for _, msg := range messages {
		if msg == nil {
			continue
		}
		payload.Messages = append(payload.Messages, chatMessage{Role: string(msg.Role), Content: msg.Content})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(m.cfg.APIURL)
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.SetContentTypeBytes([]byte("application/json"))
	req.SetBody(body)

	start := time.Now()
	if err := m.httpClient.DoTimeout(ctx, req, resp, m.cfg.Timeout); err != nil {
		return nil, fmt.Errorf("发送 HTTP 请求失败: %w", err)
	}

	respBody := resp.Body()
	logger.Ctx(ctx).Debug().
		Int("status", resp.StatusCode()).
		Dur("latency", time.Since(start)).
		Int("response_bytes", len(respBody)).
		Msg("大模型响应")

	if resp.StatusCode() != consts.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode(), Body: string(respBody)}
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, fmt.Errorf("反序列化 API 响应失败: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("API 返回的 choices 为空")
	}

	choice := completion.Choices[0]
	content := ""
	if choice.Message.Content != nil {
		content = *choice.Message.Content
	}
	role := schema.RoleType(choice.Message.Role)
	if role == "" {
		role = schema.Assistant
	}

	out := &schema.Message{Role: role, Content: content}
	if completion.Usage != nil {
		out.ResponseMeta = &schema.ResponseMeta{
			FinishReason: choice.FinishReason,
			Usage: &schema.TokenUsage{
				PromptTokens:     completion.Usage.PromptTokens,
				CompletionTokens: completion.Usage.CompletionTokens,
				TotalTokens:      completion.Usage.TotalTokens,
			},
		}
	}
	return out, nil
}

// Stream 退化为一次 Generate，结果作为单个分片返回
func (m *ChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// APIError 接口返回了非 200 状态码
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("API 请求失败，状态码 %d: %s", e.StatusCode, body)
}

// Retryable 限流和服务端错误可以重试
func (e *APIError) Retryable() bool {
	return e.StatusCode == consts.StatusTooManyRequests || e.StatusCode >= 500
}
