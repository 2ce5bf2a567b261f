package processor

import (
	"fmt"

	"interview-prep-go/internal/config"
	"interview-prep-go/internal/parser"
)

// ResumeValidator 解析前检查声明的媒体类型和大小，无副作用。
// 快速检查与深度解析各自使用独立配置的大小上限。
type ResumeValidator struct {
	quickCheckMaxBytes int64
	maxFileSizeBytes   int64
}

// NewResumeValidator 根据配置创建校验器，未配置的上限使用默认值
func NewResumeValidator(cfg config.ResumeConfig) *ResumeValidator {
	v := &ResumeValidator{
		quickCheckMaxBytes: cfg.QuickCheckMaxBytes,
		maxFileSizeBytes:   cfg.MaxFileSizeBytes,
	}
	if v.quickCheckMaxBytes <= 0 {
		v.quickCheckMaxBytes = config.DefaultQuickCheckMaxBytes
	}
	if v.maxFileSizeBytes <= 0 {
		v.maxFileSizeBytes = config.DefaultMaxFileSizeBytes
	}
	return v
}

// Validate 深度解析使用的校验
func (v *ResumeValidator) Validate(fileName, mediaType string, size int64) error {
	return validateFile(fileName, mediaType, size, v.maxFileSizeBytes)
}

// QuickCheck 上传前"是否是有效简历"的快速检查，上限更严格
func (v *ResumeValidator) QuickCheck(fileName, mediaType string, size int64) error {
	return validateFile(fileName, mediaType, size, v.quickCheckMaxBytes)
}

// MaxFileSizeBytes 深度解析的大小上限
func (v *ResumeValidator) MaxFileSizeBytes() int64 { return v.maxFileSizeBytes }

// QuickCheckMaxBytes 快速检查的大小上限
func (v *ResumeValidator) QuickCheckMaxBytes() int64 { return v.quickCheckMaxBytes }

// validateFile 先判断类型再判断大小：不支持的类型无论大小都拒绝
func validateFile(fileName, mediaType string, size, limit int64) error {
	if parser.KindOf(mediaType) == parser.KindUnsupported {
		return NewValidationError(fileName, ReasonUnsupportedType,
			fmt.Sprintf("Unsupported file type %q. Please upload a PDF, plain text or Word document.", mediaType))
	}
	if size < 0 {
		return NewValidationError(fileName, ReasonInvalidSize, "The file size could not be determined.")
	}
	if size > limit {
		return NewValidationError(fileName, ReasonFileTooLarge,
			fmt.Sprintf("The file is too large (%s). The maximum allowed size is %s.", formatBytes(size), formatBytes(limit)))
	}
	return nil
}

func formatBytes(n int64) string {
	const mb = 1024 * 1024
	if n >= mb {
		return fmt.Sprintf("%.1f MB", float64(n)/mb)
	}
	return fmt.Sprintf("%.1f KB", float64(n)/1024)
}
