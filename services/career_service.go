package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"milo_career/logger"
	"milo_career/models"
)

const (
	queryTypeIndustry = "industry"
	queryTypeGeneral  = "general"

	defaultStudentName  = "there"
	defaultTarget       = "your target company"
	defaultIndustryName = "your target industry"
)

var (
	queryOptions  = CompletionOptions{Temperature: 0.1, MaxTokens: 400}
	intentOptions = CompletionOptions{Temperature: 0.1, MaxTokens: 300}
	planOptions   = CompletionOptions{Temperature: 0.3, MaxTokens: 1000}
)

// 按顺序尝试，首个命中者为学生名字
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)i'm (\w+)`),
	regexp.MustCompile(`(?i)im (\w+)`),
	regexp.MustCompile(`(?i)my name is (\w+)`),
	regexp.MustCompile(`(?i)hi, i'm (\w+)`),
	regexp.MustCompile(`(?i)hello, i'm (\w+)`),
	regexp.MustCompile(`(?i)hey, i'm (\w+)`),
}

// CareerService 单次职业分析：目标解析 → 校友检索 → 行动计划
type CareerService struct {
	alumni *AlumniService
	llm    TextGenerator
}

func NewCareerService(alumni *AlumniService, llm TextGenerator) *CareerService {
	return &CareerService{alumni: alumni, llm: llm}
}

// Analyze 解析失败使用默认值；计划生成失败时在 Error 中返回，检索结果保留
func (s *CareerService) Analyze(ctx context.Context, userInput string) models.CareerAnalysis {
	processed := s.ProcessQuery(ctx, userInput)
	intent := s.ExtractIntent(ctx, processed.ExpandedQuery)

	targetAlumni := s.alumni.FindAlumniAtCompanies(intent.TargetCompanies)
	paths := s.alumni.FindCareerPathsToRoles(intent.TargetRoles)
	contacts := s.alumni.FindPeopleToContact(intent, targetAlumni)

	result := models.CareerAnalysis{
		Analysis:            intent,
		ProcessedQuery:      processed,
		TargetCompanyAlumni: targetAlumni,
		CareerPaths:         paths,
		PeopleToContact:     contacts,
		SuccessOdds:         CalculateOdds(targetAlumni),
	}
	// 行业类查询附带行业趋势
	if processed.QueryType == queryTypeIndustry {
		trends := s.alumni.IndustryTrends(targetAlumni)
		result.IndustryTrends = &trends
	}

	plan, err := s.CreatePlan(ctx, userInput, processed, intent, targetAlumni, paths, contacts)
	if err != nil {
		logger.Error("action plan generation failed", "error", err)
		result.Error = fmt.Sprintf("Analysis failed: %v", err)
	}
	result.ActionPlan = plan

	logger.Info("career analysis completed",
		"query_type", processed.QueryType,
		"companies", len(intent.TargetCompanies),
		"alumni", len(targetAlumni),
		"paths", len(paths),
		"contacts", len(contacts))
	return result
}

// ProcessQuery 查询分类与扩展，失败时退化为 general
func (s *CareerService) ProcessQuery(ctx context.Context, userInput string) models.ProcessedQuery {
	fallback := models.ProcessedQuery{
		QueryType:         queryTypeGeneral,
		OriginalQuery:     userInput,
		ExpandedQuery:     userInput,
		DetectedIndustry:  "Technology",
		DetectedCompanies: []string{},
		DetectedRoles:     []string{},
		Confidence:        0.5,
	}

	raw, err := s.llm.Complete(ctx, buildQueryPrompt(userInput), queryOptions)
	if err != nil {
		logger.Warn("query processing failed, using fallback", "error", err)
		return fallback
	}

	var pq models.ProcessedQuery
	if err := json.Unmarshal([]byte(extractJSONFromText(raw)), &pq); err != nil {
		logger.Warn("query processing returned invalid JSON, using fallback", "error", err)
		return fallback
	}
	pq.OriginalQuery = models.FirstNonEmpty(pq.OriginalQuery, userInput)
	pq.ExpandedQuery = models.FirstNonEmpty(pq.ExpandedQuery, userInput)
	pq.QueryType = models.FirstNonEmpty(pq.QueryType, queryTypeGeneral)
	if pq.DetectedCompanies == nil {
		pq.DetectedCompanies = []string{}
	}
	if pq.DetectedRoles == nil {
		pq.DetectedRoles = []string{}
	}
	return pq
}

// ExtractIntent 目标公司、职位与动机，失败时使用默认意图
func (s *CareerService) ExtractIntent(ctx context.Context, query string) models.CareerIntent {
	fallback := models.CareerIntent{
		TargetCompanies: []string{"Technology Companies"},
		TargetRoles:     []string{"Software Engineer"},
		Industry:        "Technology",
		Motivation:      "Career growth",
		Timeline:        "1-2 years",
	}

	raw, err := s.llm.Complete(ctx, buildIntentPrompt(query), intentOptions)
	if err != nil {
		logger.Warn("intent extraction failed, using fallback", "error", err)
		return fallback
	}

	var intent models.CareerIntent
	if err := json.Unmarshal([]byte(extractJSONFromText(raw)), &intent); err != nil {
		logger.Warn("intent extraction returned invalid JSON, using fallback", "error", err)
		return fallback
	}
	if intent.TargetCompanies == nil {
		intent.TargetCompanies = []string{}
	}
	if intent.TargetRoles == nil {
		intent.TargetRoles = []string{}
	}
	return intent
}

// PlanGreeting 计划开头的固定问候语
func PlanGreeting(name string, pq models.ProcessedQuery, intent models.CareerIntent, alumni, paths, contacts int) (greeting, target string) {
	if pq.QueryType == queryTypeIndustry {
		target = models.FirstNonEmpty(pq.DetectedIndustry, defaultIndustryName)
		greeting = fmt.Sprintf("Hey %s, you want to work in %s? I found Yale alumni at top companies in this industry. "+
			"Here are the %d Yale alumni currently at relevant companies, the %d most common paths to get hired, "+
			"and the %d people you should talk to first based on your major and interests.",
			name, target, alumni, paths, contacts)
		return greeting, target
	}

	target = defaultTarget
	if len(intent.TargetCompanies) > 0 && strings.TrimSpace(intent.TargetCompanies[0]) != "" {
		target = intent.TargetCompanies[0]
	}
	greeting = fmt.Sprintf("Hey %s, you want to work at %s? Here are the %d Yale alumni currently there, "+
		"the %d most common paths to get hired, and the %d people you should talk to first based on your major and interests.",
		name, target, alumni, paths, contacts)
	return greeting, target
}

// CreatePlan 失败时仍返回问候语
func (s *CareerService) CreatePlan(ctx context.Context, userInput string, pq models.ProcessedQuery, intent models.CareerIntent,
	alumni []models.EnrichedProfile, paths []models.RankedPath, contacts []models.EnrichedProfile) (models.ActionPlan, error) {

	name := ExtractStudentName(userInput, intent)
	greeting, target := PlanGreeting(name, pq, intent, len(alumni), len(paths), len(contacts))

	var ctxText strings.Builder
	ctxText.WriteString(greeting + "\n\n")
	ctxText.WriteString("**QUERY ANALYSIS:**\n")
	fmt.Fprintf(&ctxText, "Original Query: %q\n", models.FirstNonEmpty(pq.OriginalQuery, userInput))
	fmt.Fprintf(&ctxText, "Query Type: %s\n", models.FirstNonEmpty(pq.QueryType, queryTypeGeneral))
	fmt.Fprintf(&ctxText, "Detected Industry: %s\n", models.FirstNonEmpty(pq.DetectedIndustry, "Not specified"))
	fmt.Fprintf(&ctxText, "Expanded Companies: %s\n\n", strings.Join(pq.DetectedCompanies, ", "))
	fmt.Fprintf(&ctxText, "**YALE ALUMNI AT %s** (%d total)\n%s\n\n", strings.ToUpper(target), len(alumni), FormatAlumni(alumni))
	fmt.Fprintf(&ctxText, "**PEOPLE TO CONTACT FIRST** (%d prioritized)\n%s\n\n", len(contacts), FormatPeopleToContact(contacts))
	fmt.Fprintf(&ctxText, "**COMMON CAREER PATHS** (%d paths)\n%s\n", len(paths), FormatCareerPaths(paths))

	plan, err := s.llm.Complete(ctx, buildPlanPrompt(greeting, ctxText.String()), planOptions)
	if err != nil {
		return models.ActionPlan{Greeting: greeting}, err
	}
	return models.ActionPlan{Greeting: greeting, Plan: plan}, nil
}

// ExtractStudentName 在动机与原始输入中查找自我介绍，默认 "there"
func ExtractStudentName(userInput string, intent models.CareerIntent) string {
	text := intent.Motivation + " " + userInput
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return titleCase(m[1])
		}
	}
	return defaultStudentName
}

func titleCase(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// CalculateOdds 无校友 45，否则 60 + min(5n, 25)，上限 85
func CalculateOdds(alumni []models.EnrichedProfile) int {
	if len(alumni) == 0 {
		return 45
	}
	return min(60+min(len(alumni)*5, 25), 85)
}

func previewText(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

// FormatAlumni 前 5 位校友的摘要
func FormatAlumni(alumni []models.EnrichedProfile) string {
	if len(alumni) == 0 {
		return "No Yale alumni found at this company."
	}

	entries := make([]string, 0, 5)
	for i, a := range alumni[:min(5, len(alumni))] {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. **%s** - %s at %s", i+1, a.Name, a.Position, a.Company)
		fmt.Fprintf(&b, "\n   %s '%s | %s | Networking Score: %d/100", a.Major, a.GraduationYear, a.Location, a.NetworkingScore)

		if cp := a.CareerProgression; cp.CareerStage != "" && cp.YearsExperience > 0 {
			fmt.Fprintf(&b, "\n   Career Stage: %s (%d years experience)", cp.CareerStage, cp.YearsExperience)
		}
		if len(a.KeySkills) > 0 {
			fmt.Fprintf(&b, "\n   Key Skills: %s", strings.Join(a.KeySkills[:min(3, len(a.KeySkills))], ", "))
		}
		if len(a.ExperienceHistory) > 1 {
			titles := []string{}
			for _, e := range a.ExperienceHistory[:2] {
				if e.Title != "" {
					titles = append(titles, e.Title)
				}
			}
			if len(titles) > 0 {
				fmt.Fprintf(&b, "\n   Recent Path: %s", strings.Join(titles, pathSeparator))
			}
		}
		if a.About != "" {
			fmt.Fprintf(&b, "\n   About: %s", previewText(a.About, 100))
		}
		entries = append(entries, b.String())
	}
	return strings.Join(entries, "\n\n")
}

// FormatCareerPaths 前 3 条路径及示例
func FormatCareerPaths(paths []models.RankedPath) string {
	if len(paths) == 0 {
		return "No common career paths found. Consider exploring different roles or industries."
	}

	entries := make([]string, 0, 3)
	for i, p := range paths[:min(3, len(paths))] {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. **%s**", i+1, p.Path)
		fmt.Fprintf(&b, "\n   %d people followed this path", p.Count)
		if len(p.Examples) > 0 {
			ex := p.Examples[0]
			fmt.Fprintf(&b, "\n   Example: %s (%s '%s)", ex.Name, ex.Major, ex.GraduationYear)
			fmt.Fprintf(&b, "\n   Current: %s at %s", ex.CurrentRole, ex.CurrentCompany)
			if ex.CareerPath != "" {
				fmt.Fprintf(&b, "\n   Path: %s", ex.CareerPath)
			}
		}
		entries = append(entries, b.String())
	}
	return strings.Join(entries, "\n\n")
}

// FormatPeopleToContact 前 3 位联系人及联系建议
func FormatPeopleToContact(people []models.EnrichedProfile) string {
	if len(people) == 0 {
		return "No specific people identified for contact."
	}

	entries := make([]string, 0, 3)
	for i, p := range people[:min(3, len(people))] {
		var b strings.Builder
		fmt.Fprintf(&b, "%d. **%s** - %s at %s", i+1, p.Name, p.Position, p.Company)
		fmt.Fprintf(&b, "\n   %s '%s | %s | Networking Score: %d/100", p.Major, p.GraduationYear, p.Location, p.NetworkingScore)
		if len(p.KeySkills) > 0 {
			fmt.Fprintf(&b, "\n   Key Skills: %s", strings.Join(p.KeySkills[:min(3, len(p.KeySkills))], ", "))
		}
		if stage := p.CareerProgression.CareerStage; stage != "" {
			fmt.Fprintf(&b, "\n   Career Stage: %s", stage)
		}
		if len(p.ExperienceHistory) > 1 {
			fmt.Fprintf(&b, "\n   Recent Move: %s → %s", p.ExperienceHistory[1].Title, p.ExperienceHistory[0].Title)
		}

		switch {
		case p.NetworkingScore >= 70:
			b.WriteString("\n   💡 Outreach: High networking score - likely responsive to Yale connections")
		case p.Major != "" && !strings.Contains(p.Major, fallbackMajor):
			fmt.Fprintf(&b, "\n   💡 Outreach: Mention shared %s background and career transition", p.Major)
		default:
			b.WriteString("\n   💡 Outreach: Connect via Yale alumni network, mention shared university experience")
		}
		entries = append(entries, b.String())
	}
	return strings.Join(entries, "\n\n")
}
