package parser

import (
	"context"
	"fmt"
	"strings"

	"interview-prep-go/internal/types"
)

// MediaKind 简历文件格式，封闭枚举，新增格式时所有 switch 都需要补齐
type MediaKind int

const (
	KindUnsupported MediaKind = iota
	KindPDF
	KindPlainText
	KindWord
)

// String 返回格式名
func (k MediaKind) String() string {
	switch k {
	case KindPDF:
		return "pdf"
	case KindPlainText:
		return "plain_text"
	case KindWord:
		return "word"
	case KindUnsupported:
		return "unsupported"
	}
	return fmt.Sprintf("MediaKind(%d)", int(k))
}

// KindOf 将声明的 media type 映射为 MediaKind。
// 忽略大小写和参数部分，例如 "text/plain; charset=utf-8"。
func KindOf(mediaType string) MediaKind {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}

	switch mt {
	case types.MediaTypePDF:
		return KindPDF
	case types.MediaTypeText:
		return KindPlainText
	case types.MediaTypeWordDoc, types.MediaTypeWordDocx:
		return KindWord
	default:
		return KindUnsupported
	}
}

// FormatExtractor 从某一种格式的字节内容中提取原始文本
type FormatExtractor interface {
	Extract(ctx context.Context, content []byte) (string, error)
}

// ExtractError 文本提取失败。Message 可以直接展示给用户。
type ExtractError struct {
	Kind    MediaKind
	Message string
	Err     error
}

func (e *ExtractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s extraction: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s extraction: %s", e.Kind, e.Message)
}

func (e *ExtractError) Unwrap() error {
	return e.Err
}

// 用户可见的提取失败提示
const (
	MsgUnsupportedType = "unsupported file type"
	MsgWordUnsupported = "Word documents are not supported yet. Please convert your resume to PDF or plain text and upload it again."
	MsgPDFUnreadable   = "the PDF file could not be read, it may be damaged or encrypted"
	MsgTextUnreadable  = "the text file could not be read"
)

// Extractors 按 MediaKind 分发到具体的提取器
type Extractors struct {
	PDF  FormatExtractor
	Text FormatExtractor
	Word FormatExtractor
}

// NewExtractors 返回默认的提取器组合
func NewExtractors() *Extractors {
	return &Extractors{
		PDF:  NewPDFExtractor(),
		Text: NewTextExtractor(),
		Word: NewWordExtractor(),
	}
}

// Extract 根据格式选择提取器并提取文本
func (e *Extractors) Extract(ctx context.Context, kind MediaKind, content []byte) (string, error) {
	var extractor FormatExtractor
	switch kind {
	case KindPDF:
		extractor = e.PDF
	case KindPlainText:
		extractor = e.Text
	case KindWord:
		extractor = e.Word
	case KindUnsupported:
		return "", &ExtractError{Kind: kind, Message: MsgUnsupportedType}
	default:
		return "", &ExtractError{Kind: KindUnsupported, Message: MsgUnsupportedType}
	}

	if extractor == nil {
		return "", &ExtractError{Kind: kind, Message: MsgUnsupportedType, Err: fmt.Errorf("no extractor registered for %s", kind)}
	}
	return extractor.Extract(ctx, content)
}
