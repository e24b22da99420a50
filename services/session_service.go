package services

import (
	"context"
	"strings"
	"time"

	"milo_career/logger"
	"milo_career/models"
	"milo_career/repository"
	"milo_career/utils"
)

// stepGate 前进到下一步的条件
type stepGate struct {
	keywords     []string // 回复中须同时出现
	minMessages  int
	minInterests int
}

// 下标为当前步骤
var stepGates = map[int]stepGate{
	models.StepDiscover:      {minMessages: 6, minInterests: 3},
	models.StepExploreRoles:  {keywords: []string{"career", "path"}, minMessages: 8, minInterests: 3},
	models.StepNextMoves:     {keywords: []string{"semester", "course"}, minMessages: 10},
	models.StepOpportunities: {keywords: []string{"opportunity", "internship"}, minMessages: 12},
	models.StepConnect:       {keywords: []string{"network", "connect"}, minMessages: 14},
}

// 模型重新问起探索问题时回到第 1 步
var discoveryCues = []string{"what activities", "make you feel most alive"}

// NextStep 计算一次对话后的步骤，每次最多前进一步。
// messages 为追加本轮用户与助手消息后的总数。
func NextStep(current, interests, messages int, response string) int {
	if current < models.StepDiscover || current > models.StepReflect {
		current = models.StepDiscover
	}
	lower := strings.ToLower(response)

	next := current
	if gate, ok := stepGates[current]; ok && gate.open(interests, messages, lower) {
		next = current + 1
	}

	if current > models.StepDiscover && interests < 2 && messages < 8 {
		for _, cue := range discoveryCues {
			if strings.Contains(lower, cue) {
				return models.StepDiscover
			}
		}
	}
	return next
}

func (g stepGate) open(interests, messages int, lowerResponse string) bool {
	if messages < g.minMessages || interests < g.minInterests {
		return false
	}
	for _, kw := range g.keywords {
		if !strings.Contains(lowerResponse, kw) {
			return false
		}
	}
	return true
}

// mergeInterests 追加新兴趣并去重，保持首次出现顺序
func mergeInterests(existing, found []string) []string {
	return utils.DeduplicateSlice(append(append([]string{}, existing...), found...))
}

// SessionService 会话生命周期与步骤推进
type SessionService struct {
	store repository.SessionStore
	now   func() time.Time
}

func NewSessionService(store repository.SessionStore) *SessionService {
	return &SessionService{store: store, now: time.Now}
}

func normalizeSessionID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return models.DefaultSessionID
	}
	return id
}

// Get 不存在时按需创建
func (s *SessionService) Get(ctx context.Context, id string) (*models.ConversationSession, error) {
	return s.store.GetOrCreate(ctx, normalizeSessionID(id))
}

func (s *SessionService) Info(ctx context.Context, id string) (models.SessionInfo, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return models.SessionInfo{}, err
	}
	return sess.Info(), nil
}

func (s *SessionService) History(ctx context.Context, id string) ([]models.ChatMessage, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess.Messages, nil
}

// Clear 删除会话，再次访问同一 id 得到全新会话
func (s *SessionService) Clear(ctx context.Context, id string) error {
	id = normalizeSessionID(id)
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("session cleared", "session_id", id)
	return nil
}

func (s *SessionService) List(ctx context.Context) ([]models.SessionInfo, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sess.Info())
	}
	return out, nil
}

// AppendUserMessage 记录用户消息并保存，返回更新后的会话
func (s *SessionService) AppendUserMessage(ctx context.Context, id, content string) (*models.ConversationSession, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess.Messages = append(sess.Messages, models.ChatMessage{Role: models.RoleUser, Content: content, Timestamp: now})
	sess.LastUpdated = now
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// CompleteExchange 记录助手回复，提取兴趣并推进步骤
func (s *SessionService) CompleteExchange(ctx context.Context, id, userMessage, response string) (*models.ConversationSession, error) {
	sess, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sess.Messages = append(sess.Messages, models.ChatMessage{Role: models.RoleAssistant, Content: response, Timestamp: now})
	sess.StudentInterests = mergeInterests(sess.StudentInterests, ExtractInterests(userMessage))

	prev := sess.CurrentStep
	sess.CurrentStep = NextStep(prev, len(sess.StudentInterests), len(sess.Messages), response)
	sess.LastUpdated = now

	if err := s.store.Update(ctx, sess); err != nil {
		return nil, err
	}
	if sess.CurrentStep != prev {
		logger.Info("session step changed", "session_id", sess.ID, "from", prev, "to", sess.CurrentStep,
			"interests", len(sess.StudentInterests), "messages", len(sess.Messages))
	}
	return sess, nil
}

// SweepIdle 删除超过 ttl 未活动的会话，返回删除数量
func (s *SessionService) SweepIdle(ctx context.Context, ttl time.Duration) (int, error) {
	sessions, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}
	cutoff := s.now().Add(-ttl)
	removed := 0
	for _, sess := range sessions {
		if sess.LastUpdated.After(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, sess.ID); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
