package services

import (
	"regexp"
	"strings"
)

// 匹配规则表：按顺序匹配，先命中者优先。修改顺序会改变结果。

// MajorPattern 专业匹配规则
type MajorPattern struct {
	Name string
	re   *regexp.Regexp
}

func newMajorPattern(name string) MajorPattern {
	return MajorPattern{Name: name, re: regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\b`)}
}

// Find 返回输入中命中的原文，未命中返回空串
func (m MajorPattern) Find(text string) string {
	return m.re.FindString(text)
}

// 专业按整词匹配，"Fine Arts" 不算 Art，"Economics" 不算 CS
var majorPatterns = []MajorPattern{
	newMajorPattern("Computer Science"),
	newMajorPattern("CS"),
	newMajorPattern("Engineering"),
	newMajorPattern("Mathematics"),
	newMajorPattern("Math"),
	newMajorPattern("Economics"),
	newMajorPattern("Business"),
	newMajorPattern("Finance"),
	newMajorPattern("Political Science"),
	newMajorPattern("Psychology"),
	newMajorPattern("History"),
	newMajorPattern("English"),
	newMajorPattern("Literature"),
	newMajorPattern("Biology"),
	newMajorPattern("Chemistry"),
	newMajorPattern("Physics"),
	newMajorPattern("Art"),
	newMajorPattern("Music"),
	newMajorPattern("Philosophy"),
	newMajorPattern("Sociology"),
}

// SkillKeyword 经历描述关键词 -> 技能标签
type SkillKeyword struct {
	Keyword string
	Label   string
}

var skillKeywords = []SkillKeyword{
	{"python", "Python"},
	{"java", "Java"},
	{"javascript", "JavaScript"},
	{"react", "React"},
	{"machine learning", "Machine Learning"},
	{"data analysis", "Data Analysis"},
	{"project management", "Project Management"},
	{"leadership", "Leadership"},
	{"financial modeling", "Financial Modeling"},
	{"strategy", "Strategy"},
	{"marketing", "Marketing"},
	{"sales", "Sales"},
	{"consulting", "Consulting"},
}

// 对话中识别的兴趣词表
var interestVocabulary = []string{
	"data science", "machine learning", "artificial intelligence", "programming", "coding",
	"writing", "journalism", "communication", "media", "publishing",
	"business", "finance", "consulting", "entrepreneurship", "startup",
	"research", "academia", "teaching", "education",
	"healthcare", "medicine", "public health", "policy",
	"law", "legal", "government", "politics", "public service",
	"art", "design", "creative", "music", "theater", "film",
	"environment", "sustainability", "climate", "energy",
	"international", "global", "foreign", "language", "culture",
	"engineering", "cars", "automotive", "mechanical", "electrical",
	"computer science", "software", "hardware", "robotics",
	"biology", "chemistry", "physics", "mathematics", "statistics",
	"psychology", "sociology", "economics", "political science",
	"history", "literature", "philosophy", "languages",
}

var interestPatterns = compileInterestPatterns(interestVocabulary)

type interestPattern struct {
	label string
	re    *regexp.Regexp
}

func compileInterestPatterns(words []string) []interestPattern {
	out := make([]interestPattern, 0, len(words))
	for _, w := range words {
		// 只限定词首，复数和词形变化仍可命中
		out = append(out, interestPattern{
			label: w,
			re:    regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToLower(w))),
		})
	}
	return out
}

// ExtractInterests 从学生消息中识别兴趣，按词表顺序返回
func ExtractInterests(message string) []string {
	lower := strings.ToLower(message)
	var found []string
	for _, p := range interestPatterns {
		if p.re.MatchString(lower) {
			found = append(found, p.label)
		}
	}
	return found
}

// 常见行业 -> 目标公司，写入查询扩展提示词
var industryCompanies = []struct {
	Aliases   string
	Companies []string
}{
	{`"IB" or "investment banking"`, []string{"Goldman Sachs", "Morgan Stanley", "J.P. Morgan", "Citigroup", "Bank of America"}},
	{`"tech" or "technology"`, []string{"Google", "Microsoft", "Apple", "Amazon", "Meta", "Netflix"}},
	{`"consulting"`, []string{"McKinsey", "Bain", "BCG", "Deloitte", "PwC"}},
	{`"finance"`, []string{"Goldman Sachs", "Morgan Stanley", "J.P. Morgan", "BlackRock", "Vanguard"}},
	{`"startups"`, []string{"Stripe", "Airbnb", "Uber", "Lyft", "Pinterest"}},
	{`"PE" or "private equity"`, []string{"KKR", "Blackstone", "Apollo", "Carlyle", "TPG"}},
	{`"VC" or "venture capital"`, []string{"Andreessen Horowitz", "Sequoia", "Kleiner Perkins", "Accel", "Benchmark"}},
}
