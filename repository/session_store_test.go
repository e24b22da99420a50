package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milo_career/models"
)

func TestMemorySessionStoreGetOrCreate(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	fixed := time.Date(2024, 9, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	sess, err := store.GetOrCreate(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", sess.ID)
	assert.Equal(t, models.StepDiscover, sess.CurrentStep)
	assert.Empty(t, sess.Messages)
	assert.Equal(t, fixed, sess.CreatedAt)

	again, err := store.GetOrCreate(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, sess.CreatedAt, again.CreatedAt)
}

func TestMemorySessionStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	sess, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	sess.Messages = append(sess.Messages, models.ChatMessage{Role: models.RoleUser, Content: "hi"})
	sess.CurrentStep = 3

	// 未 Update 前存储内容不变
	stored, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, stored.Messages)
	assert.Equal(t, models.StepDiscover, stored.CurrentStep)

	require.NoError(t, store.Update(ctx, sess))
	stored, err = store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, stored.Messages, 1)
	assert.Equal(t, 3, stored.CurrentStep)
}

func TestMemorySessionStoreDeleteAndList(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"c", "a", "b"} {
		created := base.Add(time.Duration(i) * time.Minute)
		store.now = func() time.Time { return created }
		_, err := store.GetOrCreate(ctx, id)
		require.NoError(t, err)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "missing"))
	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestMemorySessionStoreConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i%5)
			sess, err := store.GetOrCreate(ctx, id)
			if !assert.NoError(t, err) {
				return
			}
			sess.Messages = append(sess.Messages, models.ChatMessage{Role: models.RoleUser, Content: "x"})
			assert.NoError(t, store.Update(ctx, sess))
		}(i)
	}
	wg.Wait()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}
