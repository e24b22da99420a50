package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"milo_career/models"
)

const (
	fallbackMajor = "Liberal Arts"
	unknownMajor  = "Unknown"
	unknownYear   = "XX"

	targetInstitution = "yale"
)

var yearPattern = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

// Enricher 从原始档案计算派生字段
type Enricher struct {
	now func() time.Time
}

func NewEnricher() *Enricher {
	return &Enricher{now: time.Now}
}

// ExtractMajor 原文为空返回 Unknown，无匹配返回 Liberal Arts
func (e *Enricher) ExtractMajor(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return unknownMajor
	}
	for _, p := range majorPatterns {
		if m := p.Find(raw); m != "" {
			return m
		}
	}
	return fallbackMajor
}

// ExtractGraduationYear 取最大年份的后两位
func (e *Enricher) ExtractGraduationYear(raw string) string {
	maxYear := 0
	for _, y := range yearPattern.FindAllString(raw, -1) {
		if n, err := strconv.Atoi(y); err == nil && n > maxYear {
			maxYear = n
		}
	}
	if maxYear == 0 {
		return unknownYear
	}
	return fmt.Sprintf("%02d", maxYear%100)
}

// ExtractDetailedEducation 优先耶鲁的记录，否则第一条
func (e *Enricher) ExtractDetailedEducation(entries []models.EducationEntry) models.EducationSummary {
	if len(entries) == 0 {
		return models.EducationSummary{Major: fallbackMajor, GraduationYear: unknownYear}
	}

	chosen := entries[0]
	for _, entry := range entries {
		if strings.Contains(strings.ToLower(entry.Institution), targetInstitution) {
			chosen = entry
			break
		}
	}

	return models.EducationSummary{
		Major:          models.FirstNonEmpty(chosen.Field, fallbackMajor),
		Degree:         chosen.Degree,
		GraduationYear: twoDigitYear(chosen.EndYear.String()),
	}
}

func twoDigitYear(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return unknownYear
	}
	if n, err := strconv.Atoi(s); err == nil {
		return fmt.Sprintf("%02d", n%100)
	}
	if len(s) >= 2 {
		return s[len(s)-2:]
	}
	return s
}

// ResolveEducation 结构化教育记录优先，缺失时解析原始文本
func (e *Enricher) ResolveEducation(p *models.Profile) models.EducationSummary {
	if len(p.EducationDetails) > 0 {
		return e.ExtractDetailedEducation(p.EducationDetails)
	}
	if strings.TrimSpace(p.EducationsDetails) == "" {
		return models.EducationSummary{Major: fallbackMajor, GraduationYear: unknownYear}
	}
	return models.EducationSummary{
		Major:          e.ExtractMajor(p.EducationsDetails),
		GraduationYear: e.ExtractGraduationYear(p.EducationsDetails),
	}
}

// AnalyzeCareerProgression 累计工作年限并判断阶段与路径类型
func (e *Enricher) AnalyzeCareerProgression(entries []models.ExperienceEntry) models.CareerProgression {
	currentYear := e.now().Year()

	years := 0
	companies := make(map[string]struct{})
	for _, entry := range entries {
		companies[strings.ToLower(strings.TrimSpace(entry.Company))] = struct{}{}

		start, ok := parseLeadingYear(entry.StartDate.String())
		if !ok {
			continue
		}
		end, ok := parseEndYear(entry.EndDate.String(), currentYear)
		if !ok {
			continue
		}
		if end > start {
			years += end - start
		}
	}

	stage := "Senior"
	switch {
	case years < 3:
		stage = "Early Career"
	case years < 7:
		stage = "Mid Career"
	}

	progression := "Linear"
	if len(entries) > 2 && float64(len(companies)) > 0.7*float64(len(entries)) {
		progression = "Diverse"
	}

	return models.CareerProgression{
		ProgressionType: progression,
		YearsExperience: years,
		CareerStage:     stage,
		TotalPositions:  len(entries),
	}
}

func parseLeadingYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if len(s) < 4 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:4])
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseEndYear 空值视为缺失；Present/Current/Now 或短值视为当前年份
func parseEndYear(s string, currentYear int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	switch strings.ToLower(s) {
	case "present", "current", "now":
		return currentYear, true
	}
	if len(s) < 4 {
		return currentYear, true
	}
	return parseLeadingYear(s)
}

// ExtractSkills 按关键词表顺序去重，最多 5 个
func (e *Enricher) ExtractSkills(entries []models.ExperienceEntry) []string {
	var text strings.Builder
	for _, entry := range entries {
		text.WriteString(strings.ToLower(entry.Description))
		text.WriteByte(' ')
		text.WriteString(strings.ToLower(entry.Title))
		text.WriteByte('\n')
	}
	all := text.String()

	skills := make([]string, 0, 5)
	for _, kw := range skillKeywords {
		if strings.Contains(all, kw.Keyword) {
			skills = append(skills, kw.Label)
			if len(skills) == 5 {
				break
			}
		}
	}
	return skills
}

// NetworkingScore 人脉分 0-100
func (e *Enricher) NetworkingScore(p *models.Profile) int {
	score := 0

	switch {
	case p.Connections > 500:
		score += 30
	case p.Connections > 200:
		score += 20
	case p.Connections > 50:
		score += 10
	}

	switch {
	case p.Followers > 1000:
		score += 20
	case p.Followers > 500:
		score += 15
	case p.Followers > 100:
		score += 10
	}

	switch {
	case p.RecommendationsCount > 10:
		score += 20
	case p.RecommendationsCount > 5:
		score += 15
	case p.RecommendationsCount > 0:
		score += 10
	}

	switch about := utf8.RuneCountInString(p.About); {
	case about > 200:
		score += 10
	case about > 100:
		score += 5
	}

	if score > 100 {
		score = 100
	}
	return score
}

// Enrich 生成完整的派生视图
func (e *Enricher) Enrich(p *models.Profile) models.EnrichedProfile {
	edu := e.ResolveEducation(p)
	skills := e.ExtractSkills(p.ExperienceHistory)
	history := p.ExperienceHistory
	if history == nil {
		history = []models.ExperienceEntry{}
	}

	return models.EnrichedProfile{
		PersonID:            p.PersonID,
		Name:                p.DisplayName(),
		Position:            p.CurrentRole(),
		Company:             p.CurrentCompany(),
		Location:            p.DisplayLocation(),
		Connections:         p.Connections,
		Followers:           p.Followers,
		Recommendations:     p.RecommendationsCount,
		Major:               edu.Major,
		Degree:              edu.Degree,
		GraduationYear:      edu.GraduationYear,
		About:               p.About,
		ExperienceHistory:   history,
		CompanyIndustry:     p.CompanyIndustry,
		CompanySize:         p.CompanySize,
		YaleAlumniAtCompany: p.YaleAlumniCount,
		CareerProgression:   e.AnalyzeCareerProgression(p.ExperienceHistory),
		KeySkills:           skills,
		NetworkingScore:     e.NetworkingScore(p),
	}
}
