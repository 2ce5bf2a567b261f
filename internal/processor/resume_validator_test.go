package processor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"interview-prep-go/internal/config"
	"interview-prep-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatorTable(t *testing.T) {
	v := NewResumeValidator(config.ResumeConfig{})
	const mb = 1024 * 1024

	tests := []struct {
		name      string
		mediaType string
		size      int64
		reason    string
	}{
		{"pdf ok", types.MediaTypePDF, 5 * mb, ""},
		{"text ok", "text/plain; charset=utf-8", 100, ""},
		{"doc passes validation", types.MediaTypeWordDoc, 100, ""},
		{"docx passes validation", types.MediaTypeWordDocx, 100, ""},
		{"exactly at limit", types.MediaTypePDF, 10 * mb, ""},
		{"one byte over", types.MediaTypePDF, 10*mb + 1, ReasonFileTooLarge},
		{"png", "image/png", 10, ReasonUnsupportedType},
		{"empty type", "", 10, ReasonUnsupportedType},
		{"unsupported beats too large", "image/png", 50 * mb, ReasonUnsupportedType},
		{"negative size", types.MediaTypePDF, -1, ReasonInvalidSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate("f", tt.mediaType, tt.size)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			re, ok := AsResumeError(err)
			require.True(t, ok)
			assert.Equal(t, KindValidation, re.Kind)
			assert.Equal(t, tt.reason, re.Reason)
			assert.NotEmpty(t, re.UserMessage())
		})
	}
}

func TestValidatorConfiguredLimits(t *testing.T) {
	v := NewResumeValidator(config.ResumeConfig{QuickCheckMaxBytes: 100, MaxFileSizeBytes: 200})
	assert.Equal(t, int64(100), v.QuickCheckMaxBytes())
	assert.Equal(t, int64(200), v.MaxFileSizeBytes())

	assert.NoError(t, v.Validate("f", types.MediaTypeText, 150))
	assert.ErrorIs(t, v.QuickCheck("f", types.MediaTypeText, 150), ErrValidation)
}

func TestResumeErrorMatching(t *testing.T) {
	cause := errors.New("xref broken")
	err := fmt.Errorf("wrapped: %w", NewExtractionError("a.pdf", "unreadable", cause))

	assert.ErrorIs(t, err, ErrExtraction)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrParse)

	re, ok := AsResumeError(err)
	require.True(t, ok)
	assert.Equal(t, "unreadable", re.UserMessage())
	assert.Contains(t, re.Error(), "a.pdf")

	parseErr := NewParseError("a.pdf", "extract", context.Canceled)
	assert.ErrorIs(t, parseErr, ErrParse)
	assert.ErrorIs(t, parseErr, context.Canceled)

	re, _ = AsResumeError(parseErr)
	assert.NotEmpty(t, re.UserMessage())

	_, ok = AsResumeError(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorTypeOf(t *testing.T) {
	assert.Equal(t, "validation", string(errorTypeOf(NewValidationError("f", ReasonFileTooLarge, ""))))
	assert.Equal(t, "validation", string(errorTypeOf(NewContentTooShortError("f", 1, 50))))
	assert.Equal(t, "extraction", string(errorTypeOf(NewExtractionError("f", "", nil))))
	assert.Equal(t, "internal", string(errorTypeOf(NewParseError("f", "parse", nil))))
}
