package services

import "strings"

// TextMatcher 两级模糊匹配：先按词重叠，失败再整串包含。大小写不敏感。
type TextMatcher struct {
	// 长度 <= MinTokenLen 的词被忽略
	MinTokenLen int
}

var (
	CompanyMatcher = TextMatcher{MinTokenLen: 2}
	RoleMatcher    = TextMatcher{MinTokenLen: 3}
	MajorMatcher   = TextMatcher{MinTokenLen: 2}
	// ContactMatcher 联系人排序时的职位词重叠，不过滤短词
	ContactMatcher = TextMatcher{MinTokenLen: 0}
)

const substringScore = 0.25

// Matches 等价于 Score > 0
func (m TextMatcher) Matches(needle, haystack string) bool {
	return m.Score(needle, haystack) > 0
}

// Score 词重叠命中时返回 0.5 + 0.5*命中比例，仅整串包含时返回 0.25，否则 0
func (m TextMatcher) Score(needle, haystack string) float64 {
	n := strings.ToLower(strings.TrimSpace(needle))
	h := strings.ToLower(strings.TrimSpace(haystack))
	if n == "" || h == "" {
		return 0
	}

	needleTokens := m.tokens(n)
	haystackTokens := m.tokens(h)
	if len(needleTokens) > 0 && len(haystackTokens) > 0 {
		hits := 0
		for _, nt := range needleTokens {
			for _, ht := range haystackTokens {
				if strings.Contains(ht, nt) || strings.Contains(nt, ht) {
					hits++
					break
				}
			}
		}
		if hits > 0 {
			return 0.5 + 0.5*float64(hits)/float64(len(needleTokens))
		}
	}

	if strings.Contains(h, n) || strings.Contains(n, h) {
		return substringScore
	}
	return 0
}

func (m TextMatcher) tokens(s string) []string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if len(f) > m.MinTokenLen {
			out = append(out, f)
		}
	}
	return out
}
