package models

// APIResponse 通用API响应
type APIResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// AlumniListAPIResponse 校友列表响应（swagger 文档用）
type AlumniListAPIResponse struct {
	Code    int                `json:"code" example:"0"`
	Message string             `json:"message" example:"success"`
	Data    AlumniListResponse `json:"data"`
}

// InsightsAPIResponse 公司洞察响应（swagger 文档用）
type InsightsAPIResponse struct {
	Code    int             `json:"code" example:"0"`
	Message string          `json:"message" example:"success"`
	Data    CompanyInsights `json:"data"`
}

// SessionInfoAPIResponse 会话信息响应（swagger 文档用）
type SessionInfoAPIResponse struct {
	Code    int         `json:"code" example:"0"`
	Message string      `json:"message" example:"success"`
	Data    SessionInfo `json:"data"`
}

// AnalysisAPIResponse 职业分析响应（swagger 文档用）
type AnalysisAPIResponse struct {
	Code    int            `json:"code" example:"0"`
	Message string         `json:"message" example:"success"`
	Data    CareerAnalysis `json:"data"`
}
