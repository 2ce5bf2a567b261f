package processor

import (
	"errors"
	"fmt"
)

// ErrorKind 简历解析失败的类别
type ErrorKind string

const (
	KindValidation      ErrorKind = "ValidationError"
	KindExtraction      ErrorKind = "ExtractionError"
	KindContentTooShort ErrorKind = "ContentTooShortError"
	KindParse           ErrorKind = "ParseError"
)

// 基础错误，配合 errors.Is 判断类别
var (
	ErrValidation      = errors.New("简历文件校验失败")
	ErrExtraction      = errors.New("简历文本提取失败")
	ErrContentTooShort = errors.New("简历文本过短")
	ErrParse           = errors.New("简历解析失败")
)

// 校验失败的具体原因
const (
	ReasonUnsupportedType = "unsupported_type"
	ReasonFileTooLarge    = "file_too_large"
	ReasonInvalidSize     = "invalid_size"
)

func (k ErrorKind) base() error {
	switch k {
	case KindValidation:
		return ErrValidation
	case KindExtraction:
		return ErrExtraction
	case KindContentTooShort:
		return ErrContentTooShort
	default:
		return ErrParse
	}
}

// ResumeError 简历流水线返回的错误。Message 可直接展示给用户，Err 为底层原因。
type ResumeError struct {
	Kind     ErrorKind
	Reason   string
	Op       string
	FileName string
	Message  string
	Err      error
}

func (e *ResumeError) Error() string {
	msg := fmt.Sprintf("%s (操作:%s, 文件:%s)", e.Kind.base(), e.Op, e.FileName)
	if e.Reason != "" {
		msg += " [" + e.Reason + "]"
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResumeError) Unwrap() error {
	return e.Err
}

// Is 使 errors.Is(err, ErrValidation) 等按类别匹配
func (e *ResumeError) Is(target error) bool {
	return target == e.Kind.base()
}

// UserMessage 返回面向用户的提示
func (e *ResumeError) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case KindValidation:
		return "The selected file cannot be used as a resume."
	case KindExtraction:
		return "We could not read text from this file. Please try another file or format."
	case KindContentTooShort:
		return "The resume text is too short. Please upload a more complete resume."
	default:
		return "Something went wrong while reading your resume. Please try again."
	}
}

// 错误构造函数

func NewValidationError(fileName, reason, message string) error {
	return &ResumeError{
		Kind:     KindValidation,
		Reason:   reason,
		Op:       "validate",
		FileName: fileName,
		Message:  message,
	}
}

func NewExtractionError(fileName, message string, cause error) error {
	return &ResumeError{
		Kind:     KindExtraction,
		Op:       "extract",
		FileName: fileName,
		Message:  message,
		Err:      cause,
	}
}

func NewContentTooShortError(fileName string, length, minLength int) error {
	return &ResumeError{
		Kind:     KindContentTooShort,
		Op:       "normalize",
		FileName: fileName,
		Message: fmt.Sprintf("The resume text is too short (%d characters, at least %d required). "+
			"Please upload a more complete resume.", length, minLength),
	}
}

func NewParseError(fileName, op string, cause error) error {
	return &ResumeError{
		Kind:     KindParse,
		Op:       op,
		FileName: fileName,
		Err:      cause,
	}
}

// AsResumeError 取出错误链中的 *ResumeError
func AsResumeError(err error) (*ResumeError, bool) {
	var re *ResumeError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
