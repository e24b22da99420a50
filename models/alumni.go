package models

// EducationSummary 解析后的教育信息
type EducationSummary struct {
	Major          string `json:"major"`
	Degree         string `json:"degree"`
	GraduationYear string `json:"graduation_year"`
}

// CareerProgression 职业发展概况
type CareerProgression struct {
	ProgressionType string `json:"progression_type"` // Linear | Diverse
	YearsExperience int    `json:"years_experience"`
	CareerStage     string `json:"career_stage"` // Early Career | Mid Career | Senior
	TotalPositions  int    `json:"total_positions"`
}

// EnrichedProfile 带派生字段的校友视图，按请求计算，不缓存
type EnrichedProfile struct {
	PersonID            string            `json:"person_id,omitempty"`
	Name                string            `json:"name"`
	Position            string            `json:"position"`
	Company             string            `json:"company"`
	Location            string            `json:"location"`
	Connections         int               `json:"connections"`
	Followers           int               `json:"followers"`
	Recommendations     int               `json:"recommendations"`
	Major               string            `json:"major"`
	Degree              string            `json:"degree"`
	GraduationYear      string            `json:"graduation_year"`
	About               string            `json:"about"`
	ExperienceHistory   []ExperienceEntry `json:"experience_history"`
	CompanyIndustry     string            `json:"company_industry"`
	CompanySize         string            `json:"company_size"`
	YaleAlumniAtCompany int               `json:"yale_alumni_at_company"`
	CareerProgression   CareerProgression `json:"career_progression"`
	KeySkills           []string          `json:"key_skills"`
	NetworkingScore     int               `json:"networking_score"`
}

// PathExample 某条职业路径的具体校友
type PathExample struct {
	Name           string `json:"name"`
	CurrentRole    string `json:"current_role"`
	CurrentCompany string `json:"current_company"`
	CareerPath     string `json:"career_path"`
	Major          string `json:"major"`
	GraduationYear string `json:"graduation_year"`
	Location       string `json:"location"`
}

// RankedPath 按 (专业, 路径) 聚合后的职业路径
type RankedPath struct {
	Path     string        `json:"path"`
	Count    int           `json:"count"`
	Examples []PathExample `json:"examples"`
}

// Tally 计数项
type Tally struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// HiringTrends 公司招聘画像
type HiringTrends struct {
	MostCommonMajors    []Tally `json:"most_common_majors"`
	MostCommonPositions []Tally `json:"most_common_positions"`
	TopLocations        []Tally `json:"top_locations"`
	GraduationYears     []Tally `json:"graduation_years"`
}

// CompanyInsights 无匹配时 Insights 为 "No data available"
type CompanyInsights struct {
	Company      string        `json:"company"`
	TotalAlumni  int           `json:"total_alumni"`
	HiringTrends *HiringTrends `json:"hiring_trends,omitempty"`
	Insights     string        `json:"insights,omitempty"`
}

// IndustryTrends 行业分布统计
type IndustryTrends struct {
	TotalAlumni  int     `json:"total_alumni"`
	Industries   []Tally `json:"industries"`
	Locations    []Tally `json:"locations"`
	Skills       []Tally `json:"skills"`
	CareerStages []Tally `json:"career_stages"`
	Summary      string  `json:"summary"`
}

// AlumniListResponse 公司/职位/专业校友列表
type AlumniListResponse struct {
	Company     string            `json:"company,omitempty"`
	Position    string            `json:"position,omitempty"`
	Major       string            `json:"major,omitempty"`
	TotalAlumni int               `json:"total_alumni"`
	Alumni      []EnrichedProfile `json:"alumni"`
}

// SearchResponse 自由文本搜索结果
type SearchResponse struct {
	Results []Profile `json:"results"`
	Total   int       `json:"total"`
}

// HealthResponse 健康检查
type HealthResponse struct {
	Status     string `json:"status"`
	Service    string `json:"service"`
	DataLoaded int    `json:"data_loaded"`
	Source     string `json:"source"`
}
