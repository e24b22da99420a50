package services

import (
	"fmt"
	"sort"
	"strings"

	"milo_career/models"
	"milo_career/repository"
)

const (
	pathSeparator   = " → "
	maxPathSegments = 4
	maxPathHistory  = 3
	topPaths        = 5
	topContacts     = 3
	noInsightsData  = "No data available"
	noIndustryData  = "No industry data available"
	unknownValue    = "Unknown"
)

// AlumniService 校友检索与聚合，全部为只读操作
type AlumniService struct {
	store    *repository.ProfileStore
	enricher *Enricher
}

func NewAlumniService(store *repository.ProfileStore, enricher *Enricher) *AlumniService {
	if enricher == nil {
		enricher = NewEnricher()
	}
	return &AlumniService{store: store, enricher: enricher}
}

func (s *AlumniService) Enricher() *Enricher { return s.enricher }

func (s *AlumniService) DataLoaded() int { return s.store.Len() }

func (s *AlumniService) Source() string { return s.store.Source() }

// scan 按存储顺序线性扫描，收集到 limit 条即停止（limit <= 0 不限）。
// 结果是匹配项在存储顺序上的前缀，而非最佳匹配。
func (s *AlumniService) scan(limit int, match func(p *models.Profile) bool) []models.Profile {
	out := []models.Profile{}
	all := s.store.All()
	for i := range all {
		if !match(&all[i]) {
			continue
		}
		out = append(out, all[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// FindByCompany 匹配当前公司
func (s *AlumniService) FindByCompany(company string, limit int) []models.Profile {
	return s.scan(limit, func(p *models.Profile) bool {
		return CompanyMatcher.Matches(company, p.CurrentCompany())
	})
}

// FindByRole 匹配当前职位
func (s *AlumniService) FindByRole(role string, limit int) []models.Profile {
	return s.scan(limit, func(p *models.Profile) bool {
		return RoleMatcher.Matches(role, p.CurrentRole())
	})
}

// FindByMajor 匹配教育描述
func (s *AlumniService) FindByMajor(major string, limit int) []models.Profile {
	return s.scan(limit, func(p *models.Profile) bool {
		return MajorMatcher.Matches(major, p.EducationText())
	})
}

// FilterByMajor 按派生专业二次过滤
func (s *AlumniService) FilterByMajor(profiles []models.Profile, major string) []models.Profile {
	if strings.TrimSpace(major) == "" {
		return profiles
	}
	return filterProfiles(profiles, func(p *models.Profile) bool {
		return MajorMatcher.Matches(major, s.enricher.ResolveEducation(p).Major)
	})
}

// FilterByGraduationYear 毕业年份（两位）包含给定字符串，四位年份先取后两位
func (s *AlumniService) FilterByGraduationYear(profiles []models.Profile, year string) []models.Profile {
	year = strings.TrimSpace(year)
	if year == "" {
		return profiles
	}
	if len(year) == 4 {
		year = twoDigitYear(year)
	}
	return filterProfiles(profiles, func(p *models.Profile) bool {
		return strings.Contains(s.enricher.ResolveEducation(p).GraduationYear, year)
	})
}

// FilterByCompany 按当前公司二次过滤
func (s *AlumniService) FilterByCompany(profiles []models.Profile, company string) []models.Profile {
	if strings.TrimSpace(company) == "" {
		return profiles
	}
	return filterProfiles(profiles, func(p *models.Profile) bool {
		return CompanyMatcher.Matches(company, p.CurrentCompany())
	})
}

func filterProfiles(profiles []models.Profile, keep func(p *models.Profile) bool) []models.Profile {
	out := []models.Profile{}
	for i := range profiles {
		if keep(&profiles[i]) {
			out = append(out, profiles[i])
		}
	}
	return out
}

// SearchFilter 自由文本搜索的可选条件
type SearchFilter struct {
	Company  string
	Position string
	Major    string
}

// Search q 为姓名、公司或职位的子串（大小写不敏感），其余条件用模糊匹配过滤
func (s *AlumniService) Search(q string, filter SearchFilter, limit int) []models.Profile {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []models.Profile{}
	}
	return s.scan(limit, func(p *models.Profile) bool {
		company := p.CurrentCompany()
		role := p.CurrentRole()
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(company), q) &&
			!strings.Contains(strings.ToLower(role), q) {
			return false
		}
		if filter.Company != "" && !CompanyMatcher.Matches(filter.Company, company) {
			return false
		}
		if filter.Position != "" && !RoleMatcher.Matches(filter.Position, role) {
			return false
		}
		if filter.Major != "" && !MajorMatcher.Matches(filter.Major, s.enricher.ResolveEducation(p).Major) {
			return false
		}
		return true
	})
}

// EnrichAll 批量生成派生视图
func (s *AlumniService) EnrichAll(profiles []models.Profile) []models.EnrichedProfile {
	out := make([]models.EnrichedProfile, 0, len(profiles))
	for i := range profiles {
		out = append(out, s.enricher.Enrich(&profiles[i]))
	}
	return out
}

// FindAlumniAtCompanies 任一目标公司命中即收录，每人只计一次，不截断
func (s *AlumniService) FindAlumniAtCompanies(companies []string) []models.EnrichedProfile {
	out := []models.EnrichedProfile{}
	if len(companies) == 0 {
		return out
	}
	all := s.store.All()
	for i := range all {
		current := all[i].CurrentCompany()
		for _, target := range companies {
			if CompanyMatcher.Matches(target, current) {
				out = append(out, s.enricher.Enrich(&all[i]))
				break
			}
		}
	}
	return out
}

// BuildCareerPath Yale 专业 'yy → 最近三段经历（时间正序）→ 当前职位，保留最后 4 段
func (s *AlumniService) BuildCareerPath(p *models.Profile) string {
	edu := s.enricher.ResolveEducation(p)
	parts := []string{fmt.Sprintf("Yale %s '%s", edu.Major, edu.GraduationYear)}

	add := func(seg string) {
		for _, existing := range parts {
			if existing == seg {
				return
			}
		}
		parts = append(parts, seg)
	}

	// 经历按最近在前存储
	recent := p.ExperienceHistory
	if len(recent) > maxPathHistory {
		recent = recent[:maxPathHistory]
	}
	for i := len(recent) - 1; i >= 0; i-- {
		e := recent[i]
		if strings.TrimSpace(e.Company) == "" || strings.TrimSpace(e.Title) == "" {
			continue
		}
		add(e.Title + " at " + e.Company)
	}

	role, company := p.CurrentRole(), p.CurrentCompany()
	if role != "" && company != "" {
		add(role + " at " + company)
	}

	if len(parts) > maxPathSegments {
		parts = parts[len(parts)-maxPathSegments:]
	}
	return strings.Join(parts, pathSeparator)
}

// FindCareerPathsToRoles 按 (专业, 路径) 聚合，返回出现次数最多的 5 条。
// roles 为空时统计所有有经历且路径多于一段的校友。
func (s *AlumniService) FindCareerPathsToRoles(roles []string) []models.RankedPath {
	groups := map[string]*models.RankedPath{}
	order := []string{}

	all := s.store.All()
	for i := range all {
		p := &all[i]
		path := ""
		if len(roles) == 0 {
			if len(p.ExperienceHistory) == 0 {
				continue
			}
			path = s.BuildCareerPath(p)
			if !strings.Contains(path, pathSeparator) {
				continue
			}
		} else {
			if !matchesAnyRole(roles, p.CurrentRole()) {
				continue
			}
			path = s.BuildCareerPath(p)
		}

		edu := s.enricher.ResolveEducation(p)
		key := edu.Major + pathSeparator + path
		g, ok := groups[key]
		if !ok {
			g = &models.RankedPath{Path: key, Examples: []models.PathExample{}}
			groups[key] = g
			order = append(order, key)
		}
		g.Count++
		g.Examples = append(g.Examples, models.PathExample{
			Name:           p.DisplayName(),
			CurrentRole:    p.CurrentRole(),
			CurrentCompany: p.CurrentCompany(),
			CareerPath:     path,
			Major:          edu.Major,
			GraduationYear: edu.GraduationYear,
			Location:       p.DisplayLocation(),
		})
	}

	ranked := make([]models.RankedPath, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, *groups[key])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > topPaths {
		ranked = ranked[:topPaths]
	}
	return ranked
}

func matchesAnyRole(roles []string, current string) bool {
	for _, role := range roles {
		if RoleMatcher.Matches(role, current) {
			return true
		}
	}
	return false
}

// contactRelevance 专业加分 + 每个目标职位命中 +15 + min(connections/100, 20)
func contactRelevance(intent models.CareerIntent, person *models.EnrichedProfile) float64 {
	score := 0.0
	major := strings.ToLower(person.Major)
	switch {
	case strings.Contains(major, "computer") || strings.Contains(major, "engineering"):
		score += 10
	case strings.Contains(major, "business") || strings.Contains(major, "economics"):
		score += 8
	case strings.Contains(major, "liberal"):
		score += 5
	}

	for _, role := range intent.TargetRoles {
		if ContactMatcher.Matches(role, person.Position) {
			score += 15
		}
	}

	score += min(float64(person.Connections)/100, 20)
	return score
}

// FindPeopleToContact 按相关度排序取前 3，同分保持输入顺序
func (s *AlumniService) FindPeopleToContact(intent models.CareerIntent, candidates []models.EnrichedProfile) []models.EnrichedProfile {
	if len(candidates) == 0 {
		return []models.EnrichedProfile{}
	}

	type scored struct {
		person models.EnrichedProfile
		score  float64
	}
	list := make([]scored, len(candidates))
	for i := range candidates {
		list[i] = scored{person: candidates[i], score: contactRelevance(intent, &candidates[i])}
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	n := min(topContacts, len(list))
	out := make([]models.EnrichedProfile, 0, n)
	for _, item := range list[:n] {
		out = append(out, item.person)
	}
	return out
}

// tally 计数器，同票按首次出现顺序
type tally struct {
	counts map[string]int
	order  []string
}

func newTally() *tally {
	return &tally{counts: map[string]int{}}
}

func (t *tally) add(v string) {
	if _, ok := t.counts[v]; !ok {
		t.order = append(t.order, v)
	}
	t.counts[v]++
}

func (t *tally) top(n int) []models.Tally {
	out := make([]models.Tally, 0, len(t.order))
	for _, v := range t.order {
		out = append(out, models.Tally{Value: v, Count: t.counts[v]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// CompanyInsights 公司校友画像，统计全部匹配项
func (s *AlumniService) CompanyInsights(company string) models.CompanyInsights {
	alumni := s.FindByCompany(company, 0)
	if len(alumni) == 0 {
		return models.CompanyInsights{Company: company, TotalAlumni: 0, Insights: noInsightsData}
	}

	majors, positions, locations, years := newTally(), newTally(), newTally(), newTally()
	for i := range alumni {
		p := &alumni[i]
		edu := s.enricher.ResolveEducation(p)
		majors.add(edu.Major)
		positions.add(models.FirstNonEmpty(p.CurrentRole(), unknownValue))
		locations.add(models.FirstNonEmpty(p.DisplayLocation(), unknownValue))
		years.add(edu.GraduationYear)
	}

	return models.CompanyInsights{
		Company:     company,
		TotalAlumni: len(alumni),
		HiringTrends: &models.HiringTrends{
			MostCommonMajors:    majors.top(5),
			MostCommonPositions: positions.top(5),
			TopLocations:        locations.top(5),
			GraduationYears:     years.top(10),
		},
	}
}

// IndustryTrends 汇总一组校友的行业、地区、技能与职业阶段
func (s *AlumniService) IndustryTrends(alumni []models.EnrichedProfile) models.IndustryTrends {
	if len(alumni) == 0 {
		return models.IndustryTrends{
			Industries:   []models.Tally{},
			Locations:    []models.Tally{},
			Skills:       []models.Tally{},
			CareerStages: []models.Tally{},
			Summary:      noIndustryData,
		}
	}

	industries, locations, skills, stages := newTally(), newTally(), newTally(), newTally()
	connections := map[string]int{}
	networking := map[string]int{}
	for i := range alumni {
		a := &alumni[i]
		industry := models.FirstNonEmpty(a.CompanyIndustry, unknownValue)
		industries.add(industry)
		connections[industry] += a.Connections
		networking[industry] += a.NetworkingScore

		locations.add(models.FirstNonEmpty(a.Location, unknownValue))
		for _, skill := range a.KeySkills {
			skills.add(skill)
		}
		stages.add(models.FirstNonEmpty(a.CareerProgression.CareerStage, unknownValue))
	}

	trends := models.IndustryTrends{
		TotalAlumni:  len(alumni),
		Industries:   industries.top(3),
		Locations:    locations.top(3),
		Skills:       skills.top(5),
		CareerStages: stages.top(0),
	}

	var b strings.Builder
	b.WriteString("Top Industries:\n")
	for _, t := range trends.Industries {
		fmt.Fprintf(&b, "  • %s: %d alumni (avg %d connections, %d/100 networking score)\n",
			t.Value, t.Count, connections[t.Value]/t.Count, networking[t.Value]/t.Count)
	}
	b.WriteString("\nTop Locations:\n")
	for _, t := range trends.Locations {
		fmt.Fprintf(&b, "  • %s: %d alumni\n", t.Value, t.Count)
	}
	if len(trends.Skills) > 0 {
		b.WriteString("\nMost Common Skills:\n")
		for _, t := range trends.Skills {
			fmt.Fprintf(&b, "  • %s: %d alumni\n", t.Value, t.Count)
		}
	}
	b.WriteString("\nCareer Stage Distribution:\n")
	for _, t := range trends.CareerStages {
		pct := float64(t.Count) / float64(len(alumni)) * 100
		fmt.Fprintf(&b, "  • %s: %d alumni (%.1f%%)\n", t.Value, t.Count, pct)
	}
	trends.Summary = strings.TrimRight(b.String(), "\n")
	return trends
}
