package parser

import (
	"regexp"
	"strings"
)

var (
	// 允许的字符：字母、数字、组合记号、空白以及 - . , ; : ( ) [ ] @
	disallowedChars = regexp.MustCompile(`[^\p{L}\p{M}\p{N}\s\-.,;:()\[\]@]+`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
)

// NormalizeText 清洗提取出的简历文本：删除不允许的字符，空白折叠为单个空格，去掉首尾空格。
// 先删字符再折叠空白，结果再次清洗不会变化。
func NormalizeText(s string) string {
	s = disallowedChars.ReplaceAllString(s, "")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TruncateRunes 按字符数截断，超过 limit 时追加 marker。返回是否发生了截断。
func TruncateRunes(s string, limit int, marker string) (string, bool) {
	runes := []rune(s)
	if limit < 0 || len(runes) <= limit {
		return s, false
	}
	return string(runes[:limit]) + marker, true
}
