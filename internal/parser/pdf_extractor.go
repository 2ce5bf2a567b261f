package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/dslipak/pdf"
)

// PDFExtractor 逐页读取 PDF 中的文本片段
type PDFExtractor struct{}

// NewPDFExtractor 创建 PDF 文本提取器
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{}
}

// Extract 按页序遍历文档，每个文本片段后接一个空格，每页结束换行。
// 任何一页解码失败都视为整份文档提取失败。
func (e *PDFExtractor) Extract(ctx context.Context, content []byte) (text string, err error) {
	// pdf 库遇到损坏的对象流会直接 panic
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = &ExtractError{Kind: KindPDF, Message: MsgPDFUnreadable, Err: fmt.Errorf("pdf decode panic: %v", r)}
		}
	}()

	if len(content) == 0 {
		return "", &ExtractError{Kind: KindPDF, Message: MsgPDFUnreadable, Err: fmt.Errorf("empty document")}
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", &ExtractError{Kind: KindPDF, Message: MsgPDFUnreadable, Err: err}
	}

	numPages := reader.NumPage()
	pages := make([][]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			return "", &ExtractError{Kind: KindPDF, Message: MsgPDFUnreadable, Err: fmt.Errorf("page %d is missing", i)}
		}

		runs := page.Content().Text
		texts := make([]string, len(runs))
		for j, run := range runs {
			texts[j] = run.S
		}
		pages = append(pages, texts)
	}

	return joinPageRuns(pages), nil
}

// joinPageRuns 拼接各页文本片段：片段后加空格，页尾加换行
func joinPageRuns(pages [][]string) string {
	var sb strings.Builder
	for _, runs := range pages {
		for _, s := range runs {
			sb.WriteString(s)
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
