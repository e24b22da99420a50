package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milo_career/models"
	"milo_career/repository"
)

func TestNextStep(t *testing.T) {
	const cue = "So, what activities make you feel most alive?"

	tests := []struct {
		name      string
		current   int
		interests int
		messages  int
		response  string
		want      int
	}{
		{"discover advances with enough interests", 1, 3, 6, "", 2},
		{"discover waits for interests", 1, 2, 6, "", 1},
		{"discover waits for messages", 1, 3, 5, "", 1},
		{"explore needs both keywords", 2, 3, 8, "Here is a career path for you", 3},
		{"explore missing keyword", 2, 3, 8, "Here is a career for you", 2},
		{"explore waits for messages", 2, 3, 7, "career path", 2},
		{"next moves", 3, 0, 10, "This SEMESTER take this course", 4},
		{"opportunities", 4, 0, 12, "an internship opportunity", 5},
		{"connect", 5, 0, 14, "network and connect", 6},
		{"reflect is terminal", 6, 5, 40, "career path semester course", 6},
		{"below range resets", 0, 0, 0, "", 1},
		{"above range resets", 9, 0, 0, "", 1},
		{"regression to discover", 3, 1, 4, cue, 1},
		{"no regression with interests", 3, 2, 4, cue, 3},
		{"no regression with long history", 3, 1, 8, cue, 3},
		{"discover ignores cue", 1, 0, 2, cue, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextStep(tt.current, tt.interests, tt.messages, tt.response))
		})
	}
}

func TestNextStepNeverSkips(t *testing.T) {
	response := "career path semester course opportunity internship network connect"
	for current := models.StepDiscover; current <= models.StepReflect; current++ {
		next := NextStep(current, 10, 100, response)
		assert.Contains(t, []int{current, current + 1}, next, "current=%d", current)
		assert.LessOrEqual(t, next, models.StepReflect)
	}
}

func newTestSessionService() *SessionService {
	return NewSessionService(repository.NewMemorySessionStore())
}

func exchange(t *testing.T, svc *SessionService, id, user, reply string) *models.ConversationSession {
	t.Helper()
	ctx := context.Background()
	_, err := svc.AppendUserMessage(ctx, id, user)
	require.NoError(t, err)
	sess, err := svc.CompleteExchange(ctx, id, user, reply)
	require.NoError(t, err)
	return sess
}

func TestCompleteExchangeExtractsInterestsAndAdvances(t *testing.T) {
	svc := newTestSessionService()

	sess := exchange(t, svc, "s1", "I love data science and writing", "Tell me more about that!")
	assert.Equal(t, []string{"data science", "writing"}, sess.StudentInterests)
	assert.Equal(t, models.StepDiscover, sess.CurrentStep)
	require.Len(t, sess.Messages, 2)
	assert.Equal(t, models.RoleUser, sess.Messages[0].Role)
	assert.Equal(t, models.RoleAssistant, sess.Messages[1].Role)

	sess = exchange(t, svc, "s1", "Tell me more", "Sure.")
	assert.Equal(t, models.StepDiscover, sess.CurrentStep)

	// 第 6 条消息且兴趣达到 3 个
	sess = exchange(t, svc, "s1", "I also enjoy research and writing", "Great.")
	assert.Equal(t, []string{"data science", "writing", "research"}, sess.StudentInterests)
	assert.Len(t, sess.Messages, 6)
	assert.Equal(t, models.StepExploreRoles, sess.CurrentStep)
}

func TestExtractInterestsMatchesInflections(t *testing.T) {
	assert.Equal(t, []string{"coding", "startup", "design", "film"},
		ExtractInterests("I'm into Coding, startups, films and designing robots"))
	assert.Equal(t, []string{"language", "languages"}, ExtractInterests("I speak three languages"))
	// 词首必须对齐
	assert.Empty(t, ExtractInterests("smart partners"))
}

func TestPluralInterestsOpenFirstGate(t *testing.T) {
	svc := newTestSessionService()

	exchange(t, svc, "s1", "hi", "Hello!")
	exchange(t, svc, "s1", "not sure yet", "Okay.")
	sess := exchange(t, svc, "s1", "I'm into coding, startups, films and designing robots", "Cool.")
	assert.Len(t, sess.StudentInterests, 4)
	assert.Equal(t, models.StepExploreRoles, sess.CurrentStep)
}

func TestClearResetsSession(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService()
	exchange(t, svc, "s1", "I love data science", "Nice")

	require.NoError(t, svc.Clear(ctx, "s1"))

	info, err := svc.Info(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StepDiscover, info.CurrentStep)
	assert.Zero(t, info.MessageCount)
	assert.Empty(t, info.StudentInterests)
}

func TestInfoIsIdempotentAndDefaultsID(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService()

	first, err := svc.Info(ctx, "  ")
	require.NoError(t, err)
	second, err := svc.Info(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, models.DefaultSessionID, first.SessionID)

	history, err := svc.History(ctx, "default")
	require.NoError(t, err)
	assert.Empty(t, history)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.DefaultSessionID, list[0].SessionID)
}

func TestSweepIdle(t *testing.T) {
	ctx := context.Background()
	svc := newTestSessionService()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	svc.now = func() time.Time { return base }
	_, err := svc.AppendUserMessage(ctx, "old", "hello")
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(90 * time.Minute) }
	_, err = svc.AppendUserMessage(ctx, "recent", "hello")
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(2 * time.Hour) }
	removed, err := svc.SweepIdle(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "recent", list[0].SessionID)
}
