package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milo_career/models"
)

const (
	queryReply = "```json\n" + `{"query_type": "specific_company", "original_query": "Hi, I'm alex and I want to work at Goldman Sachs",
"expanded_query": "Alex wants an analyst role at Goldman Sachs", "detected_industry": "Finance",
"detected_companies": ["Goldman Sachs"], "detected_roles": ["Analyst"], "confidence": 0.9}` + "\n```"
	intentReply = `Here you go: {"target_companies": ["Goldman Sachs"], "target_roles": ["Analyst"],
"industry": "Finance", "motivation": "prestige", "timeline": "next summer"}`
)

// scriptedCareerLLM 按提示词类型返回固定结果，planErr 非空时计划生成失败
func scriptedCareerLLM(planErr error) *fakeLLM {
	return &fakeLLM{complete: func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "intelligent career query processor"):
			return queryReply, nil
		case strings.Contains(prompt, "Parse this Yale student's career goal"):
			return intentReply, nil
		case strings.Contains(prompt, "You are Milo"):
			if planErr != nil {
				return "", planErr
			}
			return "PLAN TEXT", nil
		}
		return "", errors.New("unexpected prompt")
	}}
}

func TestAnalyze(t *testing.T) {
	llm := scriptedCareerLLM(nil)
	svc := NewCareerService(newTestAlumniService(testProfiles()), llm)

	result := svc.Analyze(context.Background(), "Hi, I'm alex and I want to work at Goldman Sachs")
	assert.Empty(t, result.Error)
	assert.Equal(t, "specific_company", result.ProcessedQuery.QueryType)
	assert.Equal(t, []string{"Goldman Sachs"}, result.Analysis.TargetCompanies)

	require.Len(t, result.TargetCompanyAlumni, 3)
	require.Len(t, result.CareerPaths, 1)
	require.Len(t, result.PeopleToContact, 3)
	assert.Equal(t, 75, result.SuccessOdds)

	assert.Equal(t, "Hey Alex, you want to work at Goldman Sachs? Here are the 3 Yale alumni currently there, "+
		"the 1 most common paths to get hired, and the 3 people you should talk to first based on your major and interests.",
		result.ActionPlan.Greeting)
	assert.Equal(t, "PLAN TEXT", result.ActionPlan.Plan)

	prompt := llm.lastPrompt()
	assert.Contains(t, prompt, "**YALE ALUMNI AT GOLDMAN SACHS** (3 total)")
	assert.Contains(t, prompt, "**PEOPLE TO CONTACT FIRST** (3 prioritized)")
	assert.Contains(t, prompt, "**COMMON CAREER PATHS** (1 paths)")
	assert.Contains(t, prompt, "Expanded Companies: Goldman Sachs")
	assert.Contains(t, prompt, "1. **Alice Chen** - Investment Banking Analyst at Goldman Sachs Group")
	assert.Nil(t, result.IndustryTrends)
}

func TestAnalyzeIndustryQueryAddsTrends(t *testing.T) {
	llm := scriptedCareerLLM(nil)
	base := llm.complete
	llm.complete = func(prompt string) (string, error) {
		if strings.Contains(prompt, "intelligent career query processor") {
			return `{"query_type": "industry", "expanded_query": "finance at Goldman Sachs", "detected_industry": "Finance"}`, nil
		}
		return base(prompt)
	}
	svc := NewCareerService(newTestAlumniService(testProfiles()), llm)

	result := svc.Analyze(context.Background(), "I want to get into finance")
	require.NotNil(t, result.IndustryTrends)
	assert.Equal(t, 3, result.IndustryTrends.TotalAlumni)
	assert.True(t, strings.HasPrefix(result.ActionPlan.Greeting, "Hey there, you want to work in Finance?"))
}

func TestAnalyzeKeepsDataWhenPlanFails(t *testing.T) {
	svc := NewCareerService(newTestAlumniService(testProfiles()), scriptedCareerLLM(errors.New("quota exceeded")))

	result := svc.Analyze(context.Background(), "I want to work at Goldman Sachs")
	assert.Contains(t, result.Error, "quota exceeded")
	assert.Len(t, result.TargetCompanyAlumni, 3)
	assert.NotEmpty(t, result.ActionPlan.Greeting)
	assert.Empty(t, result.ActionPlan.Plan)
	assert.True(t, strings.HasPrefix(result.ActionPlan.Greeting, "Hey there,"))
}

func TestAnalyzeFallsBackOnMalformedOutput(t *testing.T) {
	llm := &fakeLLM{complete: func(prompt string) (string, error) {
		return "I cannot answer that", nil
	}}
	svc := NewCareerService(newTestAlumniService(testProfiles()), llm)

	pq := svc.ProcessQuery(context.Background(), "something vague")
	assert.Equal(t, models.ProcessedQuery{
		QueryType:         "general",
		OriginalQuery:     "something vague",
		ExpandedQuery:     "something vague",
		DetectedIndustry:  "Technology",
		DetectedCompanies: []string{},
		DetectedRoles:     []string{},
		Confidence:        0.5,
	}, pq)

	intent := svc.ExtractIntent(context.Background(), "something vague")
	assert.Equal(t, models.CareerIntent{
		TargetCompanies: []string{"Technology Companies"},
		TargetRoles:     []string{"Software Engineer"},
		Industry:        "Technology",
		Motivation:      "Career growth",
		Timeline:        "1-2 years",
	}, intent)

	// 上游错误同样使用默认值
	failing := NewCareerService(newTestAlumniService(nil), &fakeLLM{})
	assert.Equal(t, "general", failing.ProcessQuery(context.Background(), "x").QueryType)
	assert.Equal(t, "Technology", failing.ExtractIntent(context.Background(), "x").Industry)
}

func TestPlanGreetingIndustryVariant(t *testing.T) {
	greeting, target := PlanGreeting("Sam",
		models.ProcessedQuery{QueryType: "industry", DetectedIndustry: "Investment Banking"},
		models.CareerIntent{TargetCompanies: []string{"Goldman Sachs"}}, 4, 2, 1)
	assert.Equal(t, "Investment Banking", target)
	assert.Equal(t, "Hey Sam, you want to work in Investment Banking? I found Yale alumni at top companies in this industry. "+
		"Here are the 4 Yale alumni currently at relevant companies, the 2 most common paths to get hired, "+
		"and the 1 people you should talk to first based on your major and interests.", greeting)

	_, target = PlanGreeting("Sam", models.ProcessedQuery{QueryType: "industry"}, models.CareerIntent{}, 0, 0, 0)
	assert.Equal(t, "your target industry", target)

	_, target = PlanGreeting("Sam", models.ProcessedQuery{}, models.CareerIntent{}, 0, 0, 0)
	assert.Equal(t, "your target company", target)
}

func TestExtractStudentName(t *testing.T) {
	tests := []struct {
		input      string
		motivation string
		want       string
	}{
		{"Hi, I'm alex and I like finance", "", "Alex"},
		{"my name is JORDAN", "", "Jordan"},
		{"im priya, hoping to get into consulting", "", "Priya"},
		{"I want to work at Google", "", "there"},
		{"I want to work at Google", "I'm sam and I love tech", "Sam"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractStudentName(tt.input, models.CareerIntent{Motivation: tt.motivation}))
		})
	}
}

func TestCalculateOdds(t *testing.T) {
	alumni := func(n int) []models.EnrichedProfile { return make([]models.EnrichedProfile, n) }

	assert.Equal(t, 45, CalculateOdds(nil))
	assert.Equal(t, 65, CalculateOdds(alumni(1)))
	assert.Equal(t, 80, CalculateOdds(alumni(4)))
	assert.Equal(t, 85, CalculateOdds(alumni(5)))
	assert.Equal(t, 85, CalculateOdds(alumni(40)))
}

func TestFormatAlumni(t *testing.T) {
	assert.Equal(t, "No Yale alumni found at this company.", FormatAlumni(nil))

	out := FormatAlumni([]models.EnrichedProfile{{
		Name: "Alice Chen", Position: "Analyst", Company: "Goldman Sachs",
		Major: "Economics", GraduationYear: "19", Location: "New York", NetworkingScore: 42,
		CareerProgression: models.CareerProgression{CareerStage: "Early Career", YearsExperience: 3},
		KeySkills:         []string{"Finance", "Leadership", "Strategy", "Sales"},
		ExperienceHistory: []models.ExperienceEntry{{Title: "Analyst"}, {Title: "Intern"}},
		About:             strings.Repeat("x", 120),
	}})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "1. **Alice Chen** - Analyst at Goldman Sachs", lines[0])
	assert.Equal(t, "   Economics '19 | New York | Networking Score: 42/100", lines[1])
	assert.Equal(t, "   Career Stage: Early Career (3 years experience)", lines[2])
	assert.Equal(t, "   Key Skills: Finance, Leadership, Strategy", lines[3])
	assert.Equal(t, "   Recent Path: Analyst → Intern", lines[4])
	assert.Equal(t, "   About: "+strings.Repeat("x", 100)+"...", lines[5])

	// 最多 5 位，条目之间空行分隔
	many := FormatAlumni(make([]models.EnrichedProfile, 7))
	assert.Equal(t, 5, strings.Count(many, "Networking Score"))
	assert.Equal(t, 4, strings.Count(many, "\n\n"))
}

func TestFormatCareerPaths(t *testing.T) {
	assert.Equal(t, "No common career paths found. Consider exploring different roles or industries.", FormatCareerPaths(nil))

	out := FormatCareerPaths([]models.RankedPath{{
		Path:  "Economics → Yale Economics '19 → Analyst at GS",
		Count: 2,
		Examples: []models.PathExample{{
			Name: "Alice Chen", Major: "Economics", GraduationYear: "19",
			CurrentRole: "Analyst", CurrentCompany: "GS", CareerPath: "Yale Economics '19 → Analyst at GS",
		}},
	}})
	assert.Equal(t, "1. **Economics → Yale Economics '19 → Analyst at GS**\n"+
		"   2 people followed this path\n"+
		"   Example: Alice Chen (Economics '19)\n"+
		"   Current: Analyst at GS\n"+
		"   Path: Yale Economics '19 → Analyst at GS", out)
}

func TestFormatPeopleToContactOutreachTips(t *testing.T) {
	assert.Equal(t, "No specific people identified for contact.", FormatPeopleToContact(nil))

	out := FormatPeopleToContact([]models.EnrichedProfile{
		{Name: "High", Major: "History", NetworkingScore: 70,
			ExperienceHistory: []models.ExperienceEntry{{Title: "VP"}, {Title: "Associate"}}},
		{Name: "Econ", Major: "Economics", NetworkingScore: 10},
		{Name: "Generalist", Major: "Liberal Arts", NetworkingScore: 10},
		{Name: "Fourth", Major: "Physics"},
	})

	entries := strings.Split(out, "\n\n")
	require.Len(t, entries, 3)
	assert.Contains(t, entries[0], "Recent Move: Associate → VP")
	assert.Contains(t, entries[0], "High networking score - likely responsive to Yale connections")
	assert.Contains(t, entries[1], "Mention shared Economics background and career transition")
	assert.Contains(t, entries[2], "Connect via Yale alumni network, mention shared university experience")
	assert.NotContains(t, out, "Fourth")
}
