package parser

import "context"

// WordExtractor 暂不支持 Word 格式，总是返回转换提示
type WordExtractor struct{}

// NewWordExtractor 创建 Word 提取器
func NewWordExtractor() *WordExtractor {
	return &WordExtractor{}
}

// Extract 无论内容如何都失败，提示用户转换为 PDF 或纯文本
func (e *WordExtractor) Extract(context.Context, []byte) (string, error) {
	return "", &ExtractError{Kind: KindWord, Message: MsgWordUnsupported}
}
