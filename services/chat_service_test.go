package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milo_career/models"
)

var testNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

// fakeLLM 可编排的 TextGenerator
type fakeLLM struct {
	mu       sync.Mutex
	prompts  []string
	complete func(prompt string) (string, error)

	tokens    []StreamToken
	streamErr error
	// block 为 true 时发送完 tokens 后阻塞到 ctx 取消
	block bool
}

func (f *fakeLLM) record(prompt string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
}

func (f *fakeLLM) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	f.record(prompt)
	if f.complete == nil {
		return "", errors.New("not configured")
	}
	return f.complete(prompt)
}

func (f *fakeLLM) Stream(ctx context.Context, prompt string, opts CompletionOptions) (<-chan StreamToken, error) {
	f.record(prompt)
	if f.streamErr != nil {
		return nil, f.streamErr
	}
	out := make(chan StreamToken)
	go func() {
		defer close(out)
		for _, tok := range f.tokens {
			select {
			case out <- tok:
			case <-ctx.Done():
				return
			}
			if tok.Err != nil {
				return
			}
		}
		if f.block {
			<-ctx.Done()
		}
	}()
	return out, nil
}

func drain(ch <-chan models.ChatChunk) []models.ChatChunk {
	var chunks []models.ChatChunk
	for c := range ch {
		chunks = append(chunks, c)
	}
	return chunks
}

func TestStreamReplySuccess(t *testing.T) {
	ctx := context.Background()
	sessions := newTestSessionService()
	llm := &fakeLLM{tokens: []StreamToken{{Content: "Hello "}, {Content: "there"}}}
	chat := NewChatService(sessions, llm)

	chunks := drain(chat.StreamReply(ctx, "s1", "I love writing"))
	assert.Equal(t, []models.ChatChunk{{Content: "Hello "}, {Content: "there"}, {Done: true}}, chunks)

	history, err := sessions.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "I love writing", history[0].Content)
	assert.Equal(t, models.RoleAssistant, history[1].Role)
	assert.Equal(t, "Hello there", history[1].Content)

	info, err := sessions.Info(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"writing"}, info.StudentInterests)

	// 提示词包含本轮用户消息
	prompt := llm.lastPrompt()
	assert.Contains(t, prompt, "THE 6-STEP PROCESS")
	assert.Contains(t, prompt, "Student: I love writing")
}

func TestStreamReplyMidStreamError(t *testing.T) {
	ctx := context.Background()
	sessions := newTestSessionService()
	llm := &fakeLLM{tokens: []StreamToken{{Content: "Hel"}, {Err: errors.New("connection reset")}, {Content: "never"}}}
	chat := NewChatService(sessions, llm)

	chunks := drain(chat.StreamReply(ctx, "s1", "hi"))
	require.Len(t, chunks, 2)
	assert.Equal(t, "Hel", chunks[0].Content)
	assert.Equal(t, "Error in chat: connection reset", chunks[1].Error)
	assert.False(t, chunks[1].Done)

	history, err := sessions.History(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.RoleUser, history[0].Role)
}

func TestStreamReplyOpenError(t *testing.T) {
	ctx := context.Background()
	sessions := newTestSessionService()
	chat := NewChatService(sessions, &fakeLLM{streamErr: errors.New("upstream unavailable")})

	chunks := drain(chat.StreamReply(ctx, "", "hi"))
	assert.Equal(t, []models.ChatChunk{{Error: "Error in chat: upstream unavailable"}}, chunks)

	info, err := sessions.Info(ctx, models.DefaultSessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, info.MessageCount)
	assert.Equal(t, models.StepDiscover, info.CurrentStep)
}

func TestStreamReplyCancelledKeepsOnlyUserMessage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sessions := newTestSessionService()
	chat := NewChatService(sessions, &fakeLLM{tokens: []StreamToken{{Content: "partial"}}, block: true})

	ch := chat.StreamReply(ctx, "s1", "hi")
	first := <-ch
	assert.Equal(t, "partial", first.Content)

	cancel()
	for c := range ch {
		assert.False(t, c.Done)
	}

	history, err := sessions.History(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, models.RoleUser, history[0].Role)
}

func TestBuildConversationContext(t *testing.T) {
	sess := models.NewConversationSession("s1", testNow)
	assert.Equal(t, newConversationContext, BuildConversationContext(sess))

	for i := 0; i < 10; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		sess.Messages = append(sess.Messages, models.ChatMessage{Role: role, Content: string(rune('a' + i))})
	}
	sess.CurrentStep = models.StepNextMoves
	sess.StudentInterests = []string{"writing", "policy"}

	got := BuildConversationContext(sess)
	// 只保留最近 8 条
	assert.NotContains(t, got, "Student: a\n")
	assert.NotContains(t, got, "Milo: b\n")
	assert.Contains(t, got, "Student: c\n")
	assert.Contains(t, got, "Milo: j\n")
	assert.Contains(t, got, "## CURRENT STEP: 3")
	assert.Contains(t, got, stepInstructions[models.StepNextMoves])
	assert.Contains(t, got, "## EXTRACTED INTERESTS: writing, policy")
	assert.NotContains(t, got, "SUGGESTED CAREER PATHS")
}
