package parser

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// TextExtractor 纯文本提取器。带 BOM 的 UTF-16 文件会被转成 UTF-8，
// 其余内容按 UTF-8 处理，非法字节序列被丢弃。
type TextExtractor struct{}

// NewTextExtractor 创建纯文本提取器
func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Extract 解码文本内容
func (e *TextExtractor) Extract(_ context.Context, content []byte) (string, error) {
	if content == nil {
		return "", &ExtractError{Kind: KindPlainText, Message: MsgTextUnreadable, Err: fmt.Errorf("no content")}
	}

	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, _, err := transform.Bytes(decoder, content)
	if err != nil {
		return "", &ExtractError{Kind: KindPlainText, Message: MsgTextUnreadable, Err: err}
	}

	return strings.ToValidUTF8(string(decoded), ""), nil
}
