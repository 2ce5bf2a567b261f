package types

import "time"

// SessionStatus 面试会话状态
type SessionStatus string

const (
	SessionPending    SessionStatus = "pending"
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// Question 题目生成服务返回的单个面试题
type Question struct {
	Text     string `json:"text"`
	Category string `json:"category,omitempty"` // behavioral, technical, system_design ...
	Hint     string `json:"hint,omitempty"`
}

// Response 对某一题的作答记录
type Response struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Score    *int    `json:"score,omitempty"`
	Feedback *string `json:"feedback,omitempty"`
}

// SessionSnapshot 面试会话在某一时刻的只读副本
type SessionSnapshot struct {
	ID           string        `json:"id,omitempty"`
	JobID        string        `json:"job_id"`
	Level        int           `json:"level"`
	Questions    []Question    `json:"questions"`
	CurrentIndex int           `json:"current_index"`
	Responses    []Response    `json:"responses"`
	Status       SessionStatus `json:"status"`
	TotalScore   *int          `json:"total_score,omitempty"`
	StartedAt    time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time    `json:"completed_at,omitempty"`
}

// JobContext 提交给题目生成服务的岗位上下文记录
type JobContext struct {
	ID                string    `json:"id"`
	Title             string    `json:"title" validate:"required,max=255"`
	Description       string    `json:"description" validate:"required"`
	Skills            []string  `json:"skills" validate:"dive,required"`
	YearsOfExperience int       `json:"years_of_experience" validate:"gte=0,lte=80"`
	ResumeText        *string   `json:"resume_text,omitempty"`
	ResumeFileName    *string   `json:"resume_file_name,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// InterviewResult 面试完成后持久化的结果
type InterviewResult struct {
	SessionID   string     `json:"session_id"`
	JobID       string     `json:"job_id"`
	Level       int        `json:"level"`
	Questions   []Question `json:"questions"`
	Responses   []Response `json:"responses"`
	TotalScore  int        `json:"total_score"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt time.Time  `json:"completed_at"`
}

// JobContextCreatedEvent 岗位上下文创建后发布的事件
type JobContextCreatedEvent struct {
	JobID     string    `json:"job_id"`
	Title     string    `json:"title"`
	HasResume bool      `json:"has_resume"`
	CreatedAt time.Time `json:"created_at"`
}

// InterviewCompletedEvent 面试完成后发布的事件
type InterviewCompletedEvent struct {
	SessionID     string    `json:"session_id"`
	JobID         string    `json:"job_id"`
	Level         int       `json:"level"`
	TotalScore    int       `json:"total_score"`
	QuestionCount int       `json:"question_count"`
	AnswerCount   int       `json:"answer_count"`
	CompletedAt   time.Time `json:"completed_at"`
}
