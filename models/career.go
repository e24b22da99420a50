package models

// ProcessedQuery 查询分类与扩展结果
type ProcessedQuery struct {
	QueryType         string   `json:"query_type"` // specific_company | industry | role | general
	OriginalQuery     string   `json:"original_query"`
	ExpandedQuery     string   `json:"expanded_query"`
	DetectedIndustry  string   `json:"detected_industry"`
	DetectedCompanies []string `json:"detected_companies"`
	DetectedRoles     []string `json:"detected_roles"`
	Confidence        float64  `json:"confidence"`
	StudentIntent     string   `json:"student_intent,omitempty"`
}

// CareerIntent 学生的职业目标
type CareerIntent struct {
	TargetCompanies []string `json:"target_companies"`
	TargetRoles     []string `json:"target_roles"`
	Industry        string   `json:"industry"`
	Motivation      string   `json:"motivation"`
	Timeline        string   `json:"timeline"`
}

// ActionPlan 生成的行动计划
type ActionPlan struct {
	Greeting string `json:"greeting"`
	Plan     string `json:"plan"`
}

// CareerAnalysis 完整分析结果；计划生成失败时 Error 非空，其余数据保留
type CareerAnalysis struct {
	Analysis            CareerIntent      `json:"analysis"`
	ProcessedQuery      ProcessedQuery    `json:"processed_query"`
	TargetCompanyAlumni []EnrichedProfile `json:"target_company_alumni"`
	CareerPaths         []RankedPath      `json:"career_paths"`
	PeopleToContact     []EnrichedProfile `json:"people_to_contact"`
	ActionPlan          ActionPlan        `json:"action_plan"`
	SuccessOdds         int               `json:"success_odds"`
	IndustryTrends      *IndustryTrends   `json:"industry_trends,omitempty"`
	Error               string            `json:"error,omitempty"`
}

// AnalyzeRequest 职业分析请求体
type AnalyzeRequest struct {
	UserInput string `json:"user_input" example:"Hi, I'm Alex and I want to work at Goldman Sachs"`
}
