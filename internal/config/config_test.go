package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig 在临时目录写入配置文件并返回路径
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644), "无法写入临时配置文件")
	return configPath
}

// TestLoadConfigKeepsDefaultsForMissingFields 验证YAML中未出现的字段保留默认值
func TestLoadConfigKeepsDefaultsForMissingFields(t *testing.T) {
	configPath := writeConfig(t, `
server:
  address: ":9090"
resume:
  quick_check_max_bytes: 1048576
`)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, int64(1048576), cfg.Resume.QuickCheckMaxBytes)
	// 未配置的深度解析上限仍然是10MB
	assert.Equal(t, int64(DefaultMaxFileSizeBytes), cfg.Resume.MaxFileSizeBytes)
	assert.Equal(t, DefaultMinTextLength, cfg.Resume.MinTextLength)
	assert.Equal(t, DefaultMaxTextLength, cfg.Resume.MaxTextLength)
	assert.Equal(t, DefaultTruncationMarker, cfg.Resume.TruncationMarker)
	assert.Equal(t, DefaultQuestionCount, cfg.Interview.QuestionCount)
	assert.Equal(t, 2*time.Hour, GetDuration(cfg.Interview.SessionIdleTTL, 0))
	assert.Equal(t, 30*time.Minute, GetDuration(cfg.Interview.SessionCompletedTTL, 0))
}

// TestLoadConfigMapSyntax 验证 map 字段被正确解析
func TestLoadConfigMapSyntax(t *testing.T) {
	configPath := writeConfig(t, `
model_qpm_limits:
  qwen-plus: 100
  custom-model: 20
`)

	cfg, err := LoadConfig(configPath)
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.ModelQPMLimits["qwen-plus"])
	assert.Equal(t, 20, cfg.ModelQPMLimits["custom-model"])
	assert.Equal(t, 90, cfg.QPMForModel("qwen-plus"))
	assert.Equal(t, 18, cfg.QPMForModel("custom-model"))
	assert.Equal(t, cfg.LLM.QPM, cfg.QPMForModel("unknown"))
}

func TestLoadConfigRejectsInvalidTextBounds(t *testing.T) {
	configPath := writeConfig(t, `
resume:
  min_text_length: 100
  max_text_length: 50
`)

	_, err := LoadConfig(configPath)
	require.Error(t, err)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("API_KEYS", " a , ,b ")

	cfg, err := LoadConfig(writeConfig(t, "llm:\n  api_key: from-file\n"))
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, []string{"a", "b"}, cfg.Auth.APIKeys)
}

func TestCreateSampleConfigDoesNotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, CreateSampleConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)

	assert.Error(t, CreateSampleConfig(path), "已存在的文件不应被覆盖")
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 5*time.Second, GetDuration("", 5*time.Second))
	assert.Equal(t, 5*time.Second, GetDuration("bogus", 5*time.Second))
	assert.Equal(t, 250*time.Millisecond, GetDuration("250ms", time.Second))
}
