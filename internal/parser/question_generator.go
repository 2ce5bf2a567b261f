package parser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"interview-prep-go/internal/logger"
	"interview-prep-go/internal/types"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
)

const (
	defaultQuestionCount    = 5
	defaultResumeExcerptLen = 4000
)

// ErrNoQuestions 模型没有返回任何可用的题目
var ErrNoQuestions = errors.New("question generator returned no usable questions")

// llmQuestionResponse 模型输出的 JSON 结构
type llmQuestionResponse struct {
	Questions []types.Question `json:"questions"`
}

// LLMQuestionGenerator 基于岗位上下文调用大模型生成面试题
type LLMQuestionGenerator struct {
	llmModel         model.BaseChatModel
	questionCount    int
	resumeExcerptLen int
	systemPrompt     string
}

// QuestionGeneratorOption 题目生成器配置选项
type QuestionGeneratorOption func(*LLMQuestionGenerator)

// WithQuestionCount 设置每场面试的题目数量上限
func WithQuestionCount(n int) QuestionGeneratorOption {
	return func(g *LLMQuestionGenerator) {
		if n > 0 {
			g.questionCount = n
		}
	}
}

// WithResumeExcerptLen 设置写入 prompt 的简历字符数上限
func WithResumeExcerptLen(n int) QuestionGeneratorOption {
	return func(g *LLMQuestionGenerator) {
		if n > 0 {
			g.resumeExcerptLen = n
		}
	}
}

// WithSystemPrompt 覆盖默认的系统提示词
func WithSystemPrompt(prompt string) QuestionGeneratorOption {
	return func(g *LLMQuestionGenerator) {
		g.systemPrompt = prompt
	}
}

// NewLLMQuestionGenerator 创建题目生成器
func NewLLMQuestionGenerator(llmModel model.BaseChatModel, options ...QuestionGeneratorOption) *LLMQuestionGenerator {
	g := &LLMQuestionGenerator{
		llmModel:         llmModel,
		questionCount:    defaultQuestionCount,
		resumeExcerptLen: defaultResumeExcerptLen,
		systemPrompt:     defaultQuestionSystemPrompt,
	}
	for _, opt := range options {
		opt(g)
	}
	return g
}

const defaultQuestionSystemPrompt = `You are a senior technical interviewer. Given a job context you write interview questions that a real hiring panel would ask.

Output rules:
- Respond with a single JSON object and nothing else: {"questions":[{"text":"...","category":"...","hint":"..."}]}
- "text" is the question itself and must not be empty.
- "category" is one of: technical, behavioral, system_design, situational.
- "hint" is one short sentence on what a strong answer covers.
- Escape every double quote inside string values.`

// GenerateQuestions 根据岗位上下文和难度生成有序的面试题列表
func (g *LLMQuestionGenerator) GenerateQuestions(ctx context.Context, job types.JobContext, level int) ([]types.Question, error) {
	if g.llmModel == nil {
		return nil, fmt.Errorf("LLMQuestionGenerator: llmModel is not initialized")
	}

	messages := []*einoschema.Message{
		einoschema.SystemMessage(g.systemPrompt),
		einoschema.UserMessage(g.buildUserPrompt(job, level)),
	}

	log := logger.Ctx(ctx)
	log.Debug().
		Str("job_id", job.ID).
		Int("level", level).
		Int("question_count", g.questionCount).
		Msg("请求大模型生成面试题")

	response, err := g.llmModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("LLMQuestionGenerator: LLM call failed: %w", err)
	}
	if response == nil || strings.TrimSpace(response.Content) == "" {
		return nil, fmt.Errorf("LLMQuestionGenerator: LLM returned empty response")
	}

	questions, err := parseQuestionResponse(response.Content)
	if err != nil {
		log.Warn().Err(err).Str("content", truncateForLog(response.Content, 300)).Msg("面试题响应解析失败")
		return nil, err
	}

	if len(questions) > g.questionCount {
		questions = questions[:g.questionCount]
	}
	return questions, nil
}

func (g *LLMQuestionGenerator) buildUserPrompt(job types.JobContext, level int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write exactly %d interview questions.\n", g.questionCount)
	fmt.Fprintf(&sb, "Difficulty level: %d (1 is entry level, higher is harder)\n\n", level)
	fmt.Fprintf(&sb, "Job title: %s\n", job.Title)
	fmt.Fprintf(&sb, "Years of experience required: %d\n", job.YearsOfExperience)
	if len(job.Skills) > 0 {
		fmt.Fprintf(&sb, "Required skills: %s\n", strings.Join(job.Skills, ", "))
	}
	fmt.Fprintf(&sb, "\nJob description:\n\"\"\"\n%s\n\"\"\"\n", job.Description)

	if job.ResumeText != nil && strings.TrimSpace(*job.ResumeText) != "" {
		excerpt, _ := TruncateRunes(*job.ResumeText, g.resumeExcerptLen, "")
		fmt.Fprintf(&sb, "\nCandidate resume (tailor some questions to it):\n\"\"\"\n%s\n\"\"\"\n", excerpt)
	}
	return sb.String()
}

// parseQuestionResponse 解析模型输出，容忍 markdown 代码块和字符串内未转义的引号
func parseQuestionResponse(content string) ([]types.Question, error) {
	content = strings.TrimPrefix(strings.TrimSpace(content), "\uFEFF")

	jsonStr := extractJSONObject(content)
	if jsonStr == "" {
		return nil, fmt.Errorf("LLMQuestionGenerator: no JSON object in response")
	}
	if !utf8.ValidString(jsonStr) {
		jsonStr = strings.ToValidUTF8(jsonStr, "")
	}

	var resp llmQuestionResponse
	if err := json.Unmarshal([]byte(jsonStr), &resp); err != nil {
		// 修复未转义的引号后再试一次
		if retryErr := json.Unmarshal([]byte(sanitizeJSON(jsonStr)), &resp); retryErr != nil {
			return nil, fmt.Errorf("LLMQuestionGenerator: failed to unmarshal response: %w", err)
		}
	}

	questions := make([]types.Question, 0, len(resp.Questions))
	for _, q := range resp.Questions {
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			continue
		}
		q.Category = strings.TrimSpace(q.Category)
		q.Hint = strings.TrimSpace(q.Hint)
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return questions, nil
}

// extractJSONObject 返回文本中第一个括号配平的 JSON 对象
func extractJSONObject(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}
	level := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			level++
		case '}':
			level--
			if level == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// sanitizeJSON 将字符串字面量内部的裸双引号转义为 \"。
// 一个 " 之后的下一个非空白字符是 : , ] } 之一时，才认为它结束了字符串。
func sanitizeJSON(src string) string {
	var b strings.Builder
	inStr := false
	escaped := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		switch {
		case c == '"' && !escaped:
			if !inStr {
				inStr = true
				b.WriteByte(c)
				break
			}
			j := i + 1
			for j < len(src) && (src[j] == ' ' || src[j] == '\t' || src[j] == '\n' || src[j] == '\r') {
				j++
			}
			if j < len(src) && (src[j] == ':' || src[j] == ',' || src[j] == ']' || src[j] == '}') {
				inStr = false
				b.WriteByte(c)
			} else {
				b.WriteString("\\\"")
			}
			escaped = false
		case c == '\\' && !escaped:
			escaped = true
			b.WriteByte(c)
		default:
			b.WriteByte(c)
			escaped = false
		}
	}
	return b.String()
}

func truncateForLog(s string, n int) string {
	out, _ := TruncateRunes(s, n, "...")
	return out
}
