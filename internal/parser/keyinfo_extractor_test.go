package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractKeyInfo(t *testing.T) {
	text := NormalizeText(`Jane Doe
Summary: backend engineer who enjoys docker and kubernetes.
Work Experience: Acme Corp 2019-2024, built Golang services on AWS.
Education: BSc Computer Science, 2019.
Skills: python, leadership`)

	info := ExtractKeyInfo(text)

	assert.Equal(t, []string{"Python", "Golang", "AWS", "Docker", "Kubernetes", "Leadership"}, info.Skills)
	require.NotNil(t, info.Experience)
	assert.Equal(t, "Acme Corp 2019-2024, built Golang services on AWS.", *info.Experience)
	require.NotNil(t, info.Education)
	assert.Equal(t, "BSc Computer Science, 2019.", *info.Education)
	assert.True(t, strings.HasPrefix(info.Summary, "Jane Doe Summary"))
}

func TestExtractKeyInfoFirstPatternWins(t *testing.T) {
	text := "Employment: Globex 2010. Experience: Initech 2015. Academic: MIT. Qualifications: PMP"
	info := ExtractKeyInfo(text)

	require.NotNil(t, info.Experience)
	assert.Equal(t, "Initech 2015.", *info.Experience)
	require.NotNil(t, info.Education)
	assert.Equal(t, "MIT.", *info.Education)
}

func TestExtractKeyInfoUsesLaterLabelWhenEarlierAbsent(t *testing.T) {
	info := ExtractKeyInfo("WORK HISTORY: Umbrella Corp lab assistant")
	require.NotNil(t, info.Experience)
	assert.Equal(t, "Umbrella Corp lab assistant", *info.Experience)
	assert.Nil(t, info.Education)
}

func TestExtractKeyInfoFirstMatchingLabelWins(t *testing.T) {
	// experience 标题下没有内容，不再回退到 work history
	info := ExtractKeyInfo("Experience: Skills: Golang Work History: Umbrella Corp lab assistant")
	assert.Nil(t, info.Experience)
	assert.Equal(t, []string{"Golang"}, info.Skills)

	info = ExtractKeyInfo("Education: Academic: MIT")
	assert.Nil(t, info.Education)

	info = ExtractKeyInfo("Employment: Acme Work History: Umbrella Corp")
	require.NotNil(t, info.Experience)
	assert.Equal(t, "Umbrella Corp", *info.Experience, "按标题列表顺序而不是文本位置")
}

func TestExtractKeyInfoNoMatches(t *testing.T) {
	info := ExtractKeyInfo("I like hiking and baking bread on weekends")

	assert.Empty(t, info.Skills)
	assert.Nil(t, info.Experience)
	assert.Nil(t, info.Education)
	assert.Equal(t, "I like hiking and baking bread on weekends", info.Summary)
}

func TestExtractKeyInfoCaps(t *testing.T) {
	long := strings.Repeat("x", 3000)
	info := ExtractKeyInfo("Experience: " + long + " Education: " + long)

	require.NotNil(t, info.Experience)
	assert.Len(t, []rune(*info.Experience), 1000)
	require.NotNil(t, info.Education)
	assert.Len(t, []rune(*info.Education), 500)
	assert.Len(t, []rune(info.Summary), 500)
}

func TestExtractKeyInfoEmptyInput(t *testing.T) {
	assert.NotPanics(t, func() {
		info := ExtractKeyInfo("")
		assert.Empty(t, info.Skills)
		assert.Empty(t, info.Summary)
	})
}
