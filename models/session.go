package models

import "time"

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultSessionID = "default"
)

// 对话步骤 1-6
const (
	StepDiscover = iota + 1
	StepExploreRoles
	StepNextMoves
	StepOpportunities
	StepConnect
	StepReflect
)

// ChatMessage 对话中的一条消息
type ChatMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ConversationSession 单个会话的可变状态
type ConversationSession struct {
	ID               string        `json:"session_id"`
	Messages         []ChatMessage `json:"messages"`
	CurrentStep      int           `json:"current_step"`
	StudentInterests []string      `json:"student_interests"`
	CareerPaths      []string      `json:"career_paths"`
	CreatedAt        time.Time     `json:"created_at"`
	LastUpdated      time.Time     `json:"last_updated"`
}

// NewConversationSession 新会话从第 1 步开始
func NewConversationSession(id string, now time.Time) *ConversationSession {
	return &ConversationSession{
		ID:               id,
		Messages:         []ChatMessage{},
		CurrentStep:      StepDiscover,
		StudentInterests: []string{},
		CareerPaths:      []string{},
		CreatedAt:        now,
		LastUpdated:      now,
	}
}

// Clone 深拷贝，存储层之间不共享切片
func (s *ConversationSession) Clone() *ConversationSession {
	if s == nil {
		return nil
	}
	c := *s
	c.Messages = append([]ChatMessage{}, s.Messages...)
	c.StudentInterests = append([]string{}, s.StudentInterests...)
	c.CareerPaths = append([]string{}, s.CareerPaths...)
	return &c
}

// SessionInfo 会话概要，不包含消息正文
type SessionInfo struct {
	SessionID        string    `json:"session_id"`
	CurrentStep      int       `json:"current_step"`
	StudentInterests []string  `json:"student_interests"`
	CareerPaths      []string  `json:"career_paths"`
	MessageCount     int       `json:"message_count"`
	CreatedAt        time.Time `json:"created_at"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Info 生成会话概要
func (s *ConversationSession) Info() SessionInfo {
	return SessionInfo{
		SessionID:        s.ID,
		CurrentStep:      s.CurrentStep,
		StudentInterests: append([]string{}, s.StudentInterests...),
		CareerPaths:      append([]string{}, s.CareerPaths...),
		MessageCount:     len(s.Messages),
		CreatedAt:        s.CreatedAt,
		LastUpdated:      s.LastUpdated,
	}
}

// ChatChunk 流式回复中的一个片段；Done 与 Error 为终止片段，二者只出现一个
type ChatChunk struct {
	Content string `json:"content,omitempty"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ChatRequest 流式对话请求体
type ChatRequest struct {
	Message   string `json:"message" example:"I love data science and writing"`
	SessionID string `json:"session_id" example:"default"`
}

// ChatHistoryResponse 会话历史
type ChatHistoryResponse struct {
	SessionID string        `json:"session_id"`
	Messages  []ChatMessage `json:"messages"`
}
