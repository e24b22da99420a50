package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"milo_career/logger"
	"milo_career/models"
)

// RedisSessionStore 多实例部署时共享会话
type RedisSessionStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisClient 解析 URL 并 Ping
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	logger.Info("redis connected", "addr", opts.Addr, "db", opts.DB)
	return client, nil
}

// NewRedisSessionStore ttl 为 0 时键不过期
func NewRedisSessionStore(client *redis.Client, prefix string, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, prefix: prefix, ttl: ttl, now: time.Now}
}

func (s *RedisSessionStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisSessionStore) GetOrCreate(ctx context.Context, id string) (*models.ConversationSession, error) {
	sess, err := s.get(ctx, s.key(id))
	if err == nil {
		return sess, nil
	}
	if !errors.Is(err, redis.Nil) {
		return nil, err
	}

	sess = models.NewConversationSession(id, s.now())
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session %s: %w", id, err)
	}
	// SetNX 防止并发创建覆盖已有会话
	created, err := s.client.SetNX(ctx, s.key(id), data, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("create session %s: %w", id, err)
	}
	if !created {
		return s.get(ctx, s.key(id))
	}
	return sess, nil
}

func (s *RedisSessionStore) get(ctx context.Context, key string) (*models.ConversationSession, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	var sess models.ConversationSession
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &sess, nil
}

func (s *RedisSessionStore) Update(ctx context.Context, session *models.ConversationSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.ID, err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", session.ID, err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// List 使用 SCAN 遍历前缀，期间被删除的键跳过
func (s *RedisSessionStore) List(ctx context.Context) ([]*models.ConversationSession, error) {
	out := make([]*models.ConversationSession, 0)
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		sess, err := s.get(ctx, iter.Val())
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	sortSessions(out)
	return out, nil
}
