package services

import (
	"context"
	"time"

	"milo_career/models"
)

// AlumniDirectory 校友检索服务接口
type AlumniDirectory interface {
	// 按当前公司/职位/专业查找，limit <= 0 表示不限
	FindByCompany(company string, limit int) []models.Profile
	FindByRole(role string, limit int) []models.Profile
	FindByMajor(major string, limit int) []models.Profile

	// 对已有结果做二次过滤
	FilterByMajor(profiles []models.Profile, major string) []models.Profile
	FilterByGraduationYear(profiles []models.Profile, year string) []models.Profile
	FilterByCompany(profiles []models.Profile, company string) []models.Profile

	Search(q string, filter SearchFilter, limit int) []models.Profile
	EnrichAll(profiles []models.Profile) []models.EnrichedProfile
	CompanyInsights(company string) models.CompanyInsights

	// 数据源状态
	DataLoaded() int
	Source() string
}

// CareerAnalyzer 单次职业分析接口
type CareerAnalyzer interface {
	Analyze(ctx context.Context, userInput string) models.CareerAnalysis
}

// ChatStreamer 流式对话接口
type ChatStreamer interface {
	StreamReply(ctx context.Context, sessionID, message string) <-chan models.ChatChunk
}

// SessionManager 会话管理接口
type SessionManager interface {
	Info(ctx context.Context, id string) (models.SessionInfo, error)
	History(ctx context.Context, id string) ([]models.ChatMessage, error)
	Clear(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.SessionInfo, error)
	SweepIdle(ctx context.Context, ttl time.Duration) (int, error)
}

var (
	_ AlumniDirectory = (*AlumniService)(nil)
	_ CareerAnalyzer  = (*CareerService)(nil)
	_ ChatStreamer    = (*ChatService)(nil)
	_ SessionManager  = (*SessionService)(nil)
	_ TextGenerator   = (*OpenAIClient)(nil)
	_ TextGenerator   = (*GeminiClient)(nil)
)
