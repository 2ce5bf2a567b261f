package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"interview-prep-go/internal/config"
	"interview-prep-go/internal/logger"
	"interview-prep-go/internal/tracing"
	"interview-prep-go/internal/types"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var minioTracer = otel.Tracer("interview-prep-go/storage/minio")

// MinIO 提供简历归档的对象存储功能
type MinIO struct {
	client         *minio.Client
	cfg            *config.MinIOConfig
	originalBucket string
	parsedBucket   string
	log            zerolog.Logger
}

// NewMinIO 创建MinIO客户端，确保存储桶存在并设置生命周期
func NewMinIO(ctx context.Context, cfg *config.MinIOConfig) (*MinIO, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MinIO配置不能为空")
	}
	log := logger.Component("minio")
	log.Debug().
		Str("endpoint", cfg.Endpoint).
		Str("original_bucket", cfg.OriginalsBucket).
		Str("parsed_bucket", cfg.ParsedTextBucket).
		Msg("初始化MinIO客户端")

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("创建MinIO客户端失败: %w", err)
	}

	m := &MinIO{
		client:         client,
		cfg:            cfg,
		originalBucket: cfg.OriginalsBucket,
		parsedBucket:   cfg.ParsedTextBucket,
		log:            log,
	}
	if m.originalBucket == "" {
		m.originalBucket = "resume-originals"
	}
	if m.parsedBucket == "" {
		m.parsedBucket = "resume-parsed-text"
	}

	for _, bucket := range []string{m.originalBucket, m.parsedBucket} {
		if err := m.ensureBucketExists(ctx, bucket, cfg.Location); err != nil {
			return nil, err
		}
	}

	if cfg.OriginalFileExpireDays > 0 || cfg.ParsedTextExpireDays > 0 {
		if err := m.setupLifecycleRules(ctx); err != nil {
			log.Warn().Err(err).Msg("设置生命周期规则失败")
		}
	}

	log.Info().Str("endpoint", cfg.Endpoint).Msg("MinIO客户端初始化成功")
	return m, nil
}

// ensureBucketExists 确保存储桶存在
func (m *MinIO) ensureBucketExists(ctx context.Context, bucketName, location string) error {
	exists, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return fmt.Errorf("检查存储桶 %s 是否存在时出错: %w", bucketName, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{Region: location}); err != nil {
		return fmt.Errorf("创建存储桶 %s 失败: %w", bucketName, err)
	}
	m.log.Info().Str("bucket", bucketName).Msg("存储桶已创建")
	return nil
}

// setupLifecycleRules 设置对象生命周期规则
func (m *MinIO) setupLifecycleRules(ctx context.Context) error {
	if m.cfg.OriginalFileExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.originalBucket, "expire-originals", m.cfg.OriginalFileExpireDays); err != nil {
			return fmt.Errorf("为原始文件存储桶 %s 设置生命周期失败: %w", m.originalBucket, err)
		}
	}
	if m.cfg.ParsedTextExpireDays > 0 {
		if err := m.setupBucketLifecycle(ctx, m.parsedBucket, "expire-parsed-text", m.cfg.ParsedTextExpireDays); err != nil {
			return fmt.Errorf("为解析文本存储桶 %s 设置生命周期失败: %w", m.parsedBucket, err)
		}
	}
	return nil
}

// setupBucketLifecycle 为指定存储桶设置生命周期规则
func (m *MinIO) setupBucketLifecycle(ctx context.Context, bucketName, ruleID string, expiryDays int) error {
	cfg := lifecycle.NewConfiguration()
	cfg.Rules = []lifecycle.Rule{
		{
			ID:     ruleID,
			Status: "Enabled",
			Expiration: lifecycle.Expiration{
				Days: lifecycle.ExpirationDays(expiryDays),
			},
		},
	}
	return m.client.SetBucketLifecycle(ctx, bucketName, cfg)
}

// ArchiveOriginal 按内容MD5归档原始上传文件，同一内容只上传一次
func (m *MinIO) ArchiveOriginal(ctx context.Context, contentMD5 string, file *types.ResumeFile) (string, error) {
	if file == nil {
		return "", fmt.Errorf("file cannot be nil")
	}
	objectName := OriginalObjectName(contentMD5, file.MediaType)

	ctx, span := minioTracer.Start(ctx, "MinIO.ArchiveOriginal", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("object_store.bucket", m.originalBucket),
			attribute.String("object_store.object", objectName),
			attribute.Int("object_store.size", len(file.Content)),
		))
	defer span.End()

	if _, err := m.client.StatObject(ctx, m.originalBucket, objectName, minio.StatObjectOptions{}); err == nil {
		span.AddEvent("object already archived")
		return objectName, nil
	} else if minio.ToErrorResponse(err).Code != "NoSuchKey" {
		m.log.Debug().Err(err).Str("object", objectName).Msg("检查对象是否存在失败，继续上传")
	}

	_, err := m.client.PutObject(ctx, m.originalBucket, objectName, bytes.NewReader(file.Content), int64(len(file.Content)),
		minio.PutObjectOptions{
			ContentType:  contentTypeOrDefault(file.MediaType),
			UserMetadata: map[string]string{"original-name": file.Name},
		})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return "", fmt.Errorf("上传对象 %s/%s 失败: %w", m.originalBucket, objectName, err)
	}
	return objectName, nil
}

// ArchiveParsedText 归档岗位关联的简历文本
func (m *MinIO) ArchiveParsedText(ctx context.Context, jobID string, text string) (string, error) {
	objectName := ParsedTextObjectName(jobID)

	ctx, span := minioTracer.Start(ctx, "MinIO.ArchiveParsedText", trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("object_store.bucket", m.parsedBucket),
			attribute.String("object_store.object", objectName),
		))
	defer span.End()

	_, err := m.client.PutObject(ctx, m.parsedBucket, objectName, strings.NewReader(text), int64(len(text)),
		minio.PutObjectOptions{ContentType: "text/plain; charset=utf-8"})
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return "", fmt.Errorf("上传解析文本 %s 到存储桶 %s 失败: %w", objectName, m.parsedBucket, err)
	}
	return objectName, nil
}

// OriginalObjectName 原始文件的对象名，例如 resume/{md5}/original.pdf
func OriginalObjectName(contentMD5, mediaType string) string {
	return fmt.Sprintf("resume/%s/original%s", contentMD5, extensionFor(mediaType))
}

// ParsedTextObjectName 岗位简历文本的对象名
func ParsedTextObjectName(jobID string) string {
	return fmt.Sprintf("job/%s/resume_text.txt", jobID)
}

func extensionFor(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case types.MediaTypePDF:
		return ".pdf"
	case types.MediaTypeText:
		return ".txt"
	case types.MediaTypeWordDoc:
		return ".doc"
	case types.MediaTypeWordDocx:
		return ".docx"
	default:
		return ".bin"
	}
}

func contentTypeOrDefault(mediaType string) string {
	if mediaType == "" {
		return "application/octet-stream"
	}
	return mediaType
}
