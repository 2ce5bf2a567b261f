package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"interview-prep-go/internal/config"
	"interview-prep-go/internal/processor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliResume = "John Smith\nSkills: Python, Kubernetes\nExperience: 7 years of platform engineering at scale"

func writeTemp(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func TestProcessFilesKeepsOrderAndIsolatesFailures(t *testing.T) {
	good := writeTemp(t, "good.txt", []byte(cliResume))
	short := writeTemp(t, "short.txt", []byte("hi"))
	missing := filepath.Join(t.TempDir(), "missing.txt")

	p := processor.NewResumeProcessor(config.ResumeConfig{})
	results := processFiles(context.Background(), p, []string{good, short, missing}, true, 2)
	require.Len(t, results, 3)

	assert.Equal(t, good, results[0].Path)
	require.NoError(t, results[0].Err)
	assert.Contains(t, results[0].KeyInfo.Skills, "Kubernetes")

	assert.ErrorIs(t, results[1].Err, processor.ErrContentTooShort)
	assert.Equal(t, string(processor.KindContentTooShort), results[1].Kind)

	assert.Error(t, results[2].Err)
	assert.Empty(t, results[2].Kind)
}

func TestRender(t *testing.T) {
	good := writeTemp(t, "good.txt", []byte(cliResume))
	p := processor.NewResumeProcessor(config.ResumeConfig{})
	results := processFiles(context.Background(), p, []string{good}, false, 1)

	var text bytes.Buffer
	require.NoError(t, render(&text, results, "text", 10))
	assert.Contains(t, text.String(), "good.txt")
	assert.Contains(t, text.String(), "已省略剩余内容")

	var js bytes.Buffer
	require.NoError(t, render(&js, results, "json", -1))
	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.NotNil(t, decoded[0]["resume"])
	assert.Nil(t, decoded[0]["error"])
}
