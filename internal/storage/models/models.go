package models

import (
	"time"

	"gorm.io/datatypes"
)

// JobContext 岗位上下文表，题目生成的输入
type JobContext struct {
	JobID             string         `gorm:"type:char(36);primaryKey"`
	Title             string         `gorm:"type:varchar(255);not null"`
	Description       string         `gorm:"type:text;not null"`
	SkillsJSON        datatypes.JSON `gorm:"type:json"`
	YearsOfExperience int            `gorm:"not null;default:0"`
	ResumeText        *string        `gorm:"type:mediumtext"`
	ResumeFileName    *string        `gorm:"type:varchar(255)"`
	CreatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_jc_created_at"`
	UpdatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (JobContext) TableName() string {
	return "job_contexts"
}

// InterviewResult 已完成面试的结果表
type InterviewResult struct {
	SessionID     string         `gorm:"type:char(36);primaryKey"`
	JobID         string         `gorm:"type:char(36);not null;index:idx_ir_job_id"`
	Level         int            `gorm:"not null"`
	QuestionsJSON datatypes.JSON `gorm:"type:json"`
	ResponsesJSON datatypes.JSON `gorm:"type:json"`
	TotalScore    int            `gorm:"not null;index:idx_ir_total_score"`
	StartedAt     time.Time      `gorm:"type:datetime(6)"`
	CompletedAt   time.Time      `gorm:"type:datetime(6);index:idx_ir_completed_at"`
	CreatedAt     time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`

	JobContext *JobContext `gorm:"foreignKey:JobID;references:JobID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (InterviewResult) TableName() string {
	return "interview_results"
}
