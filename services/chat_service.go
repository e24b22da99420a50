package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"milo_career/logger"
	"milo_career/models"
)

var chatOptions = CompletionOptions{Temperature: 0.7, MaxTokens: 2000}

// ChatService 六步对话的流式编排
type ChatService struct {
	sessions *SessionService
	llm      TextGenerator
}

func NewChatService(sessions *SessionService, llm TextGenerator) *ChatService {
	return &ChatService{sessions: sessions, llm: llm}
}

// StreamReply 返回回复片段通道：若干内容片段后紧跟一个 Done 或 Error 片段，然后关闭。
// 生成失败时会话只保留用户消息；ctx 取消时停止上游读取且不写入助手消息。
func (c *ChatService) StreamReply(ctx context.Context, sessionID, message string) <-chan models.ChatChunk {
	out := make(chan models.ChatChunk)
	go func() {
		defer close(out)
		c.streamReply(ctx, normalizeSessionID(sessionID), message, out)
	}()
	return out
}

func (c *ChatService) streamReply(ctx context.Context, sessionID, message string, out chan<- models.ChatChunk) {
	send := func(chunk models.ChatChunk) bool {
		select {
		case out <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}
	fail := func(err error) {
		logger.Error("chat stream failed", "session_id", sessionID, "error", err)
		send(models.ChatChunk{Error: fmt.Sprintf("Error in chat: %v", err)})
	}

	sess, err := c.sessions.AppendUserMessage(ctx, sessionID, message)
	if err != nil {
		fail(err)
		return
	}

	start := time.Now()
	tokens, err := c.llm.Stream(ctx, buildChatPrompt(sess), chatOptions)
	if err != nil {
		fail(err)
		return
	}

	var full strings.Builder
	for tok := range tokens {
		if tok.Err != nil {
			fail(tok.Err)
			return
		}
		full.WriteString(tok.Content)
		if !send(models.ChatChunk{Content: tok.Content}) {
			break
		}
	}

	if ctx.Err() != nil {
		logger.Warn("chat stream cancelled", "session_id", sessionID, "received_chars", full.Len())
		return
	}

	updated, err := c.sessions.CompleteExchange(ctx, sessionID, message, full.String())
	if err != nil {
		fail(err)
		return
	}
	logger.Info("chat stream completed", "session_id", sessionID, "step", updated.CurrentStep,
		"chars", full.Len(), "duration_ms", time.Since(start).Milliseconds())
	send(models.ChatChunk{Done: true})
}
