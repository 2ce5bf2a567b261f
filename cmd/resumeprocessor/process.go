package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"interview-prep-go/internal/processor"
	"interview-prep-go/internal/types"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/sync/errgroup"
)

// fileResult 单个文件的处理结果
type fileResult struct {
	Path    string               `json:"path"`
	Resume  *types.ParsedResume  `json:"resume,omitempty"`
	KeyInfo *types.ResumeKeyInfo `json:"key_info,omitempty"`
	Elapsed time.Duration        `json:"elapsed_ns"`
	Err     error                `json:"-"`
	Error   string               `json:"error,omitempty"`
	Kind    string               `json:"kind,omitempty"`
}

// resumeParser 命令行用到的流水线能力
type resumeParser interface {
	Parse(ctx context.Context, file *types.ResumeFile) (*types.ParsedResume, error)
	ParseWithKeyInfo(ctx context.Context, file *types.ResumeFile) (*types.ParsedResume, *types.ResumeKeyInfo, error)
}

// processFiles 并发解析文件。单个文件失败不影响其他文件，结果顺序与输入一致。
func processFiles(ctx context.Context, p resumeParser, paths []string, keyInfo bool, workers int) []fileResult {
	results := make([]fileResult, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = processFile(gCtx, p, path, keyInfo)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func processFile(ctx context.Context, p resumeParser, path string, keyInfo bool) (res fileResult) {
	res.Path = path
	start := time.Now()
	defer func() {
		res.Elapsed = time.Since(start)
	}()

	file, err := loadResumeFile(path)
	if err != nil {
		res.setErr(err)
		return res
	}

	if keyInfo {
		res.Resume, res.KeyInfo, err = p.ParseWithKeyInfo(ctx, file)
	} else {
		res.Resume, err = p.Parse(ctx, file)
	}
	if err != nil {
		res.setErr(err)
	}
	return res
}

func (r *fileResult) setErr(err error) {
	r.Err = err
	r.Error = err.Error()
	if re, ok := processor.AsResumeError(err); ok {
		r.Kind = string(re.Kind)
		r.Error = re.UserMessage()
	}
}

// loadResumeFile 读取文件并按内容探测媒体类型
func loadResumeFile(path string) (*types.ResumeFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取文件失败: %w", err)
	}
	return &types.ResumeFile{
		Name:      filepath.Base(path),
		Size:      int64(len(content)),
		MediaType: mimetype.Detect(content).String(),
		Content:   content,
	}, nil
}

func render(w io.Writer, results []fileResult, format string, maxLen int) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, r := range results {
		fmt.Fprintf(w, "===== %s (耗时 %v) =====\n", r.Path, r.Elapsed.Round(time.Millisecond))
		if r.Err != nil {
			fmt.Fprintf(w, "失败 [%s]: %s\n\n", r.Kind, r.Error)
			continue
		}

		text := r.Resume.Text
		runes := []rune(text)
		if maxLen >= 0 && len(runes) > maxLen {
			text = string(runes[:maxLen]) + "\n... (已省略剩余内容)"
		}
		fmt.Fprintf(w, "类型: %s  大小: %d 字节  字符数: %d  截断: %t\n", r.Resume.MediaType, r.Resume.FileSize, len(runes), r.Resume.Truncated)
		fmt.Fprintln(w, text)

		if r.KeyInfo != nil {
			fmt.Fprintln(w, "--- 关键信息 ---")
			fmt.Fprintf(w, "技能: %s\n", strings.Join(r.KeyInfo.Skills, ", "))
			if r.KeyInfo.Experience != nil {
				fmt.Fprintf(w, "经历: %s\n", *r.KeyInfo.Experience)
			}
			if r.KeyInfo.Education != nil {
				fmt.Fprintf(w, "教育: %s\n", *r.KeyInfo.Education)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
