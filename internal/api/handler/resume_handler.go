package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"interview-prep-go/internal/logger"
	"interview-prep-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/gabriel-vasile/mimetype"
)

// ResumeParser 简历流水线对外提供的能力，由 processor.ResumeProcessor 实现
type ResumeParser interface {
	QuickCheck(fileName, mediaType string, size int64) error
	Parse(ctx context.Context, file *types.ResumeFile) (*types.ParsedResume, error)
	ParseWithKeyInfo(ctx context.Context, file *types.ResumeFile) (*types.ParsedResume, *types.ResumeKeyInfo, error)
}

// ResumeHandler 处理简历上传相关的请求
type ResumeHandler struct {
	parser ResumeParser
}

// NewResumeHandler 创建 ResumeHandler
func NewResumeHandler(parser ResumeParser) *ResumeHandler {
	return &ResumeHandler{parser: parser}
}

// ParseResponse 解析接口的响应
type ParseResponse struct {
	Resume  *types.ParsedResume  `json:"resume"`
	KeyInfo *types.ResumeKeyInfo `json:"key_info,omitempty"`
}

// HandleValidate 只根据文件名、大小和声明类型做快速校验，不读取文件内容。
// POST /api/v1/resumes/validate
func (h *ResumeHandler) HandleValidate(c context.Context, ctx *app.RequestContext) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		badRequest(ctx, "文件未找到")
		return
	}

	mediaType := declaredMediaType(fileHeader)
	if err := h.parser.QuickCheck(fileHeader.Filename, mediaType, fileHeader.Size); err != nil {
		writeError(c, ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, utils.H{
		"valid":      true,
		"file_name":  fileHeader.Filename,
		"file_size":  fileHeader.Size,
		"media_type": mediaType,
	})
}

// HandleParse 读取上传文件并执行完整的解析流水线。
// POST /api/v1/resumes/parse?key_info=true
func (h *ResumeHandler) HandleParse(c context.Context, ctx *app.RequestContext) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		badRequest(ctx, "文件未找到")
		return
	}

	file, err := readResumeFile(fileHeader)
	if err != nil {
		logger.Ctx(c).Error().Err(err).Str("file_name", fileHeader.Filename).Msg("读取上传文件失败")
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "读取文件失败", "kind": KindInternal})
		return
	}

	resp := ParseResponse{}
	if wantKeyInfo(ctx.Query("key_info")) {
		resp.Resume, resp.KeyInfo, err = h.parser.ParseWithKeyInfo(c, file)
	} else {
		resp.Resume, err = h.parser.Parse(c, file)
	}
	if err != nil {
		writeError(c, ctx, err)
		return
	}

	logger.Ctx(c).Info().
		Str("file_name", file.Name).
		Int64("file_size", file.Size).
		Bool("truncated", resp.Resume.Truncated).
		Msg("简历解析完成")
	ctx.JSON(consts.StatusOK, resp)
}

// readResumeFile 读取 multipart 文件。多读一个字节，让校验器能发现实际大小超过声明大小。
func readResumeFile(fileHeader *multipart.FileHeader) (*types.ResumeFile, error) {
	f, err := fileHeader.Open()
	if err != nil {
		return nil, fmt.Errorf("打开文件失败: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, fileHeader.Size+1))
	if err != nil {
		return nil, fmt.Errorf("读取文件内容失败: %w", err)
	}

	mediaType := declaredMediaType(fileHeader)
	if mediaType == "" {
		mediaType = mimetype.Detect(content).String()
	}

	return &types.ResumeFile{
		Name:      fileHeader.Filename,
		Size:      fileHeader.Size,
		MediaType: mediaType,
		Content:   content,
	}, nil
}

// declaredMediaType 返回表单中声明的类型，缺省或 octet-stream 视为未声明
func declaredMediaType(fileHeader *multipart.FileHeader) string {
	mediaType := strings.TrimSpace(fileHeader.Header.Get("Content-Type"))
	if mediaType == "" || strings.HasPrefix(mediaType, "application/octet-stream") {
		return sniffHeader(fileHeader)
	}
	return mediaType
}

// sniffHeader 只读取文件头部探测类型
func sniffHeader(fileHeader *multipart.FileHeader) string {
	f, err := fileHeader.Open()
	if err != nil {
		return ""
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		return ""
	}
	return mt.String()
}

func wantKeyInfo(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes":
		return true
	}
	return false
}
