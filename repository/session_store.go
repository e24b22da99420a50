package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"milo_career/models"
)

// SessionStore 会话存储。读取返回副本，修改后需调用 Update 写回。
type SessionStore interface {
	// GetOrCreate 不存在时创建并保存新会话
	GetOrCreate(ctx context.Context, id string) (*models.ConversationSession, error)
	Update(ctx context.Context, session *models.ConversationSession) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.ConversationSession, error)
}

// MemorySessionStore 进程内会话存储，重启即丢失
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.ConversationSession
	now      func() time.Time
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*models.ConversationSession),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) GetOrCreate(ctx context.Context, id string) (*models.ConversationSession, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return sess.Clone(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok = s.sessions[id]; !ok {
		sess = models.NewConversationSession(id, s.now())
		s.sessions[id] = sess
	}
	return sess.Clone(), nil
}

func (s *MemorySessionStore) Update(ctx context.Context, session *models.ConversationSession) error {
	s.mu.Lock()
	s.sessions[session.ID] = session.Clone()
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

// List 按创建时间排序
func (s *MemorySessionStore) List(ctx context.Context) ([]*models.ConversationSession, error) {
	s.mu.RLock()
	out := make([]*models.ConversationSession, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	s.mu.RUnlock()

	sortSessions(out)
	return out, nil
}

func sortSessions(list []*models.ConversationSession) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}
