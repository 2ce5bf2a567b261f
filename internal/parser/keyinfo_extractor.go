package parser

import (
	"regexp"
	"strings"

	"interview-prep-go/internal/types"
)

const (
	maxExperienceRunes = 1000
	maxEducationRunes  = 500
	maxSummaryRunes    = 500
)

// knownSkills 技能关键字表，匹配结果按此顺序输出。
// 只使用清洗后仍能保留的字符，否则永远匹配不上。
var knownSkills = []string{
	"JavaScript", "TypeScript", "Python", "Java", "Golang", "Rust", "Ruby", "PHP", "Kotlin", "Swift",
	"SQL", "React", "Angular", "Vue", "Node.js", "Express", "Django", "Flask", "Spring", "GraphQL",
	"REST", "PostgreSQL", "MySQL", "MongoDB", "Redis", "Kafka", "RabbitMQ",
	"AWS", "Azure", "GCP", "Docker", "Kubernetes", "Terraform", "Linux", "Git",
	"Machine Learning", "TensorFlow", "PyTorch",
	"Agile", "Scrum", "Leadership", "Communication", "Problem Solving", "Teamwork", "Project Management",
}

var (
	// 按顺序尝试，第一个匹配到的生效
	experienceLabels = []*regexp.Regexp{
		regexp.MustCompile(`(?i)experience\s*:`),
		regexp.MustCompile(`(?i)work history\s*:`),
		regexp.MustCompile(`(?i)employment\s*:`),
	}
	educationLabels = []*regexp.Regexp{
		regexp.MustCompile(`(?i)education\s*:`),
		regexp.MustCompile(`(?i)academic\s*:`),
		regexp.MustCompile(`(?i)qualifications\s*:`),
	}

	// 任一已知段落标题，用来确定段落结尾
	sectionLabel = regexp.MustCompile(`(?i)(experience|work history|employment|education|academic|qualifications|skills|projects|certifications|summary|objective)\s*:`)
)

// ExtractKeyInfo 基于关键字和段落标题从简历文本中提取结构化信息。
// 不会失败，没有命中时返回空结果。
func ExtractKeyInfo(text string) types.ResumeKeyInfo {
	info := types.ResumeKeyInfo{
		Skills: matchSkills(text),
	}

	if exp, ok := firstSection(text, experienceLabels, maxExperienceRunes); ok {
		info.Experience = &exp
	}
	if edu, ok := firstSection(text, educationLabels, maxEducationRunes); ok {
		info.Education = &edu
	}

	summary, _ := TruncateRunes(text, maxSummaryRunes, "")
	info.Summary = strings.TrimSpace(summary)
	return info
}

func matchSkills(text string) []string {
	lower := strings.ToLower(text)
	skills := make([]string, 0)
	for _, skill := range knownSkills {
		if strings.Contains(lower, strings.ToLower(skill)) {
			skills = append(skills, skill)
		}
	}
	return skills
}

// firstSection 依次尝试 labels，截取标题之后到下一个段落标题（或文本末尾）之间的内容。
// 第一个出现的标题决定结果，之后的标题不再尝试；该标题下内容为空时结果为空。
func firstSection(text string, labels []*regexp.Regexp, limit int) (string, bool) {
	for _, label := range labels {
		loc := label.FindStringIndex(text)
		if loc == nil {
			continue
		}

		rest := text[loc[1]:]
		if next := sectionLabel.FindStringIndex(rest); next != nil {
			rest = rest[:next[0]]
		}

		section, _ := TruncateRunes(strings.TrimSpace(rest), limit, "")
		section = strings.TrimSpace(section)
		return section, section != ""
	}
	return "", false
}
