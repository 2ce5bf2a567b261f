package parser

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse whitespace", "a  \t b\n\n c", "a b c"},
		{"strip disallowed", "C++ & C# / Go!", "C C Go"},
		{"keep safe punctuation", "mail: a@b.com (2020-2024) [lead]; x,y", "mail: a@b.com (2020-2024) [lead]; x,y"},
		{"trim", "   padded   ", "padded"},
		{"unicode letters", "张三  简历 Go", "张三 简历 Go"},
		{"removal never leaves double space", "a * b", "a b"},
		{"empty", "", ""},
		{"only junk", "*** ### !!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeText(tt.in))
		})
	}
}

func TestNormalizeTextIdempotent(t *testing.T) {
	alphabet := []rune("ab Z9 \t\n\r\v\f-.,;:()[]@*#&%$!?/\\_~\"'+=<>{}|张é  ́")
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		var sb strings.Builder
		n := rng.Intn(40)
		for j := 0; j < n; j++ {
			sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		in := sb.String()

		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once), "input %q", in)
		assert.NotContains(t, once, "  ")
		assert.Equal(t, strings.TrimSpace(once), once)
	}
}

func TestTruncateRunes(t *testing.T) {
	out, truncated := TruncateRunes("abcdef", 3, "...")
	assert.True(t, truncated)
	assert.Equal(t, "abc...", out)

	out, truncated = TruncateRunes("张三李四", 2, "")
	assert.True(t, truncated)
	assert.Equal(t, "张三", out)

	out, truncated = TruncateRunes("abc", 3, "...")
	assert.False(t, truncated)
	assert.Equal(t, "abc", out)
}
