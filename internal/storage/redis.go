package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"interview-prep-go/internal/config"
	"interview-prep-go/internal/constants"
	"interview-prep-go/internal/tracing"
	"interview-prep-go/internal/types"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// 为Redis操作定义专用tracer
var redisTracer = otel.Tracer("interview-prep-go/storage/redis")

// Redis wraps the Redis client
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// ParsedResumeKey 解析结果缓存键，包含解析器版本和提取格式
func ParsedResumeKey(kind, contentMD5 string) string {
	return fmt.Sprintf(constants.KeyParsedResume, constants.ParserVersion, kind, contentMD5)
}

// NewRedisAdapter creates a new Redis client connection
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		// 连接池设置
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		// 超时设置
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries: cfg.MaxRetries,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// ParseCacheTTL 返回配置的解析缓存有效期
func (r *Redis) ParseCacheTTL() time.Duration {
	if r.config == nil || r.config.ParseCacheTTLHours <= 0 {
		return constants.DefaultParseCacheTTL
	}
	return time.Duration(r.config.ParseCacheTTLHours) * time.Hour
}

// Get 获取键的值，键不存在时返回 ErrNotFound
func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	if r.Client == nil {
		return "", fmt.Errorf("redis客户端未初始化")
	}

	ctx, span := redisTracer.Start(ctx, "Redis.Get", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", "GET"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
	)

	val, err := r.Client.Get(ctx, key).Result()
	if err != nil {
		// key 不存在不算错误
		if errors.Is(err, redis.Nil) {
			span.SetStatus(codes.Ok, "key not found")
			span.SetAttributes(attribute.Bool("db.redis.key_exists", false))
			return "", ErrNotFound
		}
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return "", err
	}

	span.SetAttributes(
		attribute.Bool("db.redis.key_exists", true),
		attribute.Int("db.redis.value_length", len(val)),
	)
	return val, nil
}

// Set 设置键的值
func (r *Redis) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	if r.Client == nil {
		return fmt.Errorf("redis客户端未初始化")
	}

	ctx, span := redisTracer.Start(ctx, "Redis.Set", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", "redis"),
		attribute.String("db.operation", "SET"),
		attribute.String("db.redis.key", tracing.SafeRedisKey(key)),
		attribute.Int("db.redis.value_length", len(value)),
	)
	if expiration > 0 {
		span.SetAttributes(attribute.Int64("db.redis.expiration_ms", expiration.Milliseconds()))
	}

	if err := r.Client.Set(ctx, key, value, expiration).Err(); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRedis)
		return err
	}
	return nil
}

// GetParsedResume 读取解析结果缓存，未命中返回 (nil, false, nil)
func (r *Redis) GetParsedResume(ctx context.Context, kind, contentMD5 string) (*types.ParsedResume, bool, error) {
	val, err := r.Get(ctx, ParsedResumeKey(kind, contentMD5))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("读取解析缓存失败: %w", err)
	}

	var parsed types.ParsedResume
	if err := json.Unmarshal([]byte(val), &parsed); err != nil {
		return nil, false, fmt.Errorf("解析缓存内容损坏: %w", err)
	}
	return &parsed, true, nil
}

// SetParsedResume 写入解析结果缓存
func (r *Redis) SetParsedResume(ctx context.Context, kind, contentMD5 string, parsed *types.ParsedResume, ttl time.Duration) error {
	if parsed == nil {
		return fmt.Errorf("parsed resume cannot be nil")
	}
	if ttl <= 0 {
		ttl = r.ParseCacheTTL()
	}
	data, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("序列化解析结果失败: %w", err)
	}
	return r.Set(ctx, ParsedResumeKey(kind, contentMD5), string(data), ttl)
}
