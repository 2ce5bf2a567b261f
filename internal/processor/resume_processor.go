package processor

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"interview-prep-go/internal/config"
	"interview-prep-go/internal/constants"
	"interview-prep-go/internal/logger"
	"interview-prep-go/internal/parser"
	"interview-prep-go/internal/tracing"
	"interview-prep-go/internal/types"
	"interview-prep-go/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("interview-prep-go/processor")

// ResumeProcessor 简历解析流水线：校验 -> 提取 -> 归一化 -> 长度检查。
// 任一步失败都不返回部分结果。
type ResumeProcessor struct {
	validator        *ResumeValidator
	extractors       *parser.Extractors
	minTextLength    int
	maxTextLength    int
	truncationMarker string
	extractTimeout   time.Duration

	cache    ParseCache
	cacheTTL time.Duration
	archive  ResumeArchive
}

// NewResumeProcessor 创建简历处理器
func NewResumeProcessor(cfg config.ResumeConfig, opts ...ProcessorOption) *ResumeProcessor {
	p := &ResumeProcessor{
		validator:        NewResumeValidator(cfg),
		extractors:       parser.NewExtractors(),
		minTextLength:    cfg.MinTextLength,
		maxTextLength:    cfg.MaxTextLength,
		truncationMarker: cfg.TruncationMarker,
		extractTimeout:   config.GetDuration(cfg.ExtractTimeout, 30*time.Second),
		cacheTTL:         constants.DefaultParseCacheTTL,
	}
	if p.minTextLength <= 0 {
		p.minTextLength = config.DefaultMinTextLength
	}
	if p.maxTextLength <= 0 {
		p.maxTextLength = config.DefaultMaxTextLength
	}
	if p.truncationMarker == "" {
		p.truncationMarker = config.DefaultTruncationMarker
	}

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Validator 返回处理器使用的校验器
func (p *ResumeProcessor) Validator() *ResumeValidator {
	return p.validator
}

// QuickCheck 快速判断文件是否可作为简历上传，不做解析
func (p *ResumeProcessor) QuickCheck(fileName, mediaType string, size int64) error {
	return p.validator.QuickCheck(fileName, mediaType, size)
}

// Parse 将上传的文件解析为归一化文本
func (p *ResumeProcessor) Parse(ctx context.Context, file *types.ResumeFile) (result *types.ParsedResume, err error) {
	if file == nil {
		return nil, NewParseError("", "parse", errors.New("no file provided"))
	}

	ctx, span := tracer.Start(ctx, "resume.parse", trace.WithAttributes(
		attribute.String("resume.file_name", tracing.SafeAttributeValue("file_name", file.Name, tracing.DefaultMaxLength)),
		attribute.String("resume.media_type", file.MediaType),
		attribute.Int64("resume.size", file.Size),
	))
	defer span.End()

	log := logger.Ctx(ctx).With().Str("file", file.Name).Str("media_type", file.MediaType).Logger()

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = NewParseError(file.Name, "parse", fmt.Errorf("panic: %v", r))
			log.Error().Interface("panic", r).Msg("简历解析发生panic")
		}
		if err != nil {
			tracing.RecordError(span, err, errorTypeOf(err))
		}
	}()

	// 声明大小与实际内容取较大者，避免声明值偏小绕过上限
	size := file.Size
	if actual := int64(len(file.Content)); actual > size {
		size = actual
	}
	if err := p.validator.Validate(file.Name, file.MediaType, size); err != nil {
		log.Info().Err(err).Msg("简历文件校验未通过")
		return nil, err
	}

	contentMD5 := utils.CalculateMD5(file.Content)
	span.SetAttributes(attribute.String("resume.content_md5", contentMD5))

	// 只有能提取文本的格式才走缓存，Word 和未知格式无论内容如何都直接失败
	kind := parser.KindOf(file.MediaType)
	if cached := p.lookupCache(ctx, kind, contentMD5); cached != nil {
		span.AddEvent("parse cache hit")
		cached.FileName = file.Name
		cached.FileSize = file.Size
		cached.MediaType = file.MediaType
		return cached, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, NewParseError(file.Name, "parse", err)
	}

	raw, err := p.extract(ctx, file)
	if err != nil {
		return nil, err
	}
	span.AddEvent("text extracted", trace.WithAttributes(attribute.Int("resume.raw_length", utf8.RuneCountInString(raw))))

	text := parser.NormalizeText(raw)
	length := utf8.RuneCountInString(text)
	if length < p.minTextLength {
		log.Info().Int("length", length).Int("min_length", p.minTextLength).Msg("简历文本过短")
		return nil, NewContentTooShortError(file.Name, length, p.minTextLength)
	}

	text, truncated := parser.TruncateRunes(text, p.maxTextLength, p.truncationMarker)
	if truncated {
		log.Warn().
			Int("length", length).
			Int("max_length", p.maxTextLength).
			Msg("简历文本超过上限，已截断")
		span.AddEvent("text truncated")
	}

	result = &types.ParsedResume{
		Text:       text,
		FileName:   file.Name,
		FileSize:   file.Size,
		MediaType:  file.MediaType,
		Truncated:  truncated,
		ContentMD5: contentMD5,
	}

	p.storeCache(ctx, kind, contentMD5, result)
	p.archiveOriginal(ctx, contentMD5, file)

	log.Debug().Int("length", utf8.RuneCountInString(text)).Bool("truncated", truncated).Msg("简历解析完成")
	return result, nil
}

// ParseWithKeyInfo 解析简历并基于结果文本即时计算关键信息
func (p *ResumeProcessor) ParseWithKeyInfo(ctx context.Context, file *types.ResumeFile) (*types.ParsedResume, *types.ResumeKeyInfo, error) {
	parsed, err := p.Parse(ctx, file)
	if err != nil {
		return nil, nil, err
	}
	info := parser.ExtractKeyInfo(parsed.Text)
	return parsed, &info, nil
}

func (p *ResumeProcessor) extract(ctx context.Context, file *types.ResumeFile) (string, error) {
	ctx, span := tracer.Start(ctx, "resume.extract")
	defer span.End()

	kind := parser.KindOf(file.MediaType)
	span.SetAttributes(attribute.String("resume.kind", kind.String()))

	extractCtx, cancel := context.WithTimeout(ctx, p.extractTimeout)
	defer cancel()

	raw, err := p.extractors.Extract(extractCtx, kind, file.Content)
	if err == nil {
		return raw, nil
	}

	var extractErr *parser.ExtractError
	if errors.As(err, &extractErr) {
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		return "", NewExtractionError(file.Name, extractErr.Message, err)
	}

	errType := tracing.ErrorTypeInternal
	if errors.Is(err, context.DeadlineExceeded) {
		errType = tracing.ErrorTypeTimeout
	}
	tracing.RecordError(span, err, errType)
	return "", NewParseError(file.Name, "extract", err)
}

func (p *ResumeProcessor) lookupCache(ctx context.Context, kind parser.MediaKind, contentMD5 string) *types.ParsedResume {
	if p.cache == nil || !cacheable(kind) {
		return nil
	}
	cached, ok, err := p.cache.GetParsedResume(ctx, kind.String(), contentMD5)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("md5", contentMD5).Msg("读取解析缓存失败，继续解析")
		return nil
	}
	if !ok || cached == nil {
		return nil
	}
	return cached
}

func (p *ResumeProcessor) storeCache(ctx context.Context, kind parser.MediaKind, contentMD5 string, parsed *types.ParsedResume) {
	if p.cache == nil || !cacheable(kind) {
		return
	}
	if err := p.cache.SetParsedResume(ctx, kind.String(), contentMD5, parsed, p.cacheTTL); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("md5", contentMD5).Msg("写入解析缓存失败")
	}
}

func cacheable(kind parser.MediaKind) bool {
	return kind == parser.KindPDF || kind == parser.KindPlainText
}

func (p *ResumeProcessor) archiveOriginal(ctx context.Context, contentMD5 string, file *types.ResumeFile) {
	if p.archive == nil {
		return
	}
	objectName, err := p.archive.ArchiveOriginal(ctx, contentMD5, file)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("md5", contentMD5).Msg("归档原始简历失败")
		return
	}
	logger.Ctx(ctx).Debug().Str("object", objectName).Msg("原始简历已归档")
}

func errorTypeOf(err error) tracing.ErrorType {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrContentTooShort):
		return tracing.ErrorTypeValidation
	case errors.Is(err, ErrExtraction):
		return tracing.ErrorTypeExtraction
	default:
		return tracing.ErrorTypeInternal
	}
}
