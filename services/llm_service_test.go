package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milo_career/config"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc, retries int) *OpenAIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{}
	cfg.LLM.BaseURL = srv.URL + "/"
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.Model = "single-model"
	cfg.LLM.ChatModel = "chat-model"
	cfg.LLM.TimeoutSec = 5
	cfg.LLM.MaxRetries = retries

	c := NewOpenAIClient(cfg)
	c.retry.InitialWait = time.Millisecond
	c.retry.MaxWait = 5 * time.Millisecond
	return c
}

func writeSSE(w http.ResponseWriter, lines ...string) {
	flusher := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	for _, line := range lines {
		fmt.Fprintf(w, "%s\n\n", line)
		flusher.Flush()
	}
}

func deltaLine(content string) string {
	data, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"delta": map[string]string{"content": content}}},
	})
	return "data: " + string(data)
}

func collect(t *testing.T, ch <-chan StreamToken) (string, error) {
	t.Helper()
	var b strings.Builder
	for tok := range ch {
		if tok.Err != nil {
			return b.String(), tok.Err
		}
		b.WriteString(tok.Content)
	}
	return b.String(), nil
}

func TestOpenAIClientComplete(t *testing.T) {
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "single-model", req.Model)
		assert.False(t, req.Stream)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "parse this", req.Messages[0].Content)
		}
		assert.InDelta(t, 0.1, req.Temperature, 1e-9)
		assert.Equal(t, 400, req.MaxTokens)

		fmt.Fprint(w, `{"choices":[{"message":{"content":"{\"ok\":true}"},"finish_reason":"stop"}],"usage":{"total_tokens":12}}`)
	}, 0)

	out, err := c.Complete(context.Background(), "parse this", queryOptions)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, out)
}

func TestOpenAIClientResolvesEnvAPIKey(t *testing.T) {
	t.Setenv("MILO_TEST_LLM_KEY", "from-env")
	cfg := &config.Config{}
	cfg.LLM.APIKey = "${MILO_TEST_LLM_KEY}"

	c := NewOpenAIClient(cfg)
	assert.Equal(t, "from-env", c.apiKey)
}

func TestOpenAIClientCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream busy", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"choices":[{"message":{"content":"done"}}]}`)
	}, 2)

	out, err := c.Complete(context.Background(), "hi", CompletionOptions{})
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.EqualValues(t, 2, calls.Load())
}

func TestOpenAIClientCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}, 3)

	_, err := c.Complete(context.Background(), "hi", CompletionOptions{})
	require.Error(t, err)

	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.EqualValues(t, 1, calls.Load())
}

func TestOpenAIClientCompleteGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}, 2)

	_, err := c.Complete(context.Background(), "hi", CompletionOptions{})
	require.Error(t, err)
	assert.EqualValues(t, 3, calls.Load())
}

func TestOpenAIClientStream(t *testing.T) {
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "chat-model", req.Model)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "system", req.Messages[0].Role)
		}

		writeSSE(w, ": keep-alive", deltaLine("Hel"), `data: {"choices":[{"delta":{}}]}`, deltaLine("lo"), "data: [DONE]")
	}, 0)

	ch, err := c.Stream(context.Background(), "prompt", chatOptions)
	require.NoError(t, err)

	text, err := collect(t, ch)
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)
}

func TestOpenAIClientStreamWithoutDoneIsAnError(t *testing.T) {
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, deltaLine("partial"))
	}, 0)

	ch, err := c.Stream(context.Background(), "prompt", chatOptions)
	require.NoError(t, err)

	text, err := collect(t, ch)
	assert.Equal(t, "partial", text)
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestOpenAIClientStreamMalformedChunk(t *testing.T) {
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeSSE(w, deltaLine("ok"), "data: {not json")
	}, 0)

	ch, err := c.Stream(context.Background(), "prompt", chatOptions)
	require.NoError(t, err)

	text, err := collect(t, ch)
	assert.Equal(t, "ok", text)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode stream chunk")
}

func TestOpenAIClientStreamOpenFailure(t *testing.T) {
	c := newTestOpenAIClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}, 2)

	ch, err := c.Stream(context.Background(), "prompt", chatOptions)
	assert.Nil(t, ch)
	var apiErr *apiError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestExtractJSONFromText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fenced block", "Sure!\n```json\n{\"a\": 1}\n```\nthanks", `{"a": 1}`},
		{"bare object with prose", `Here you go: {"a": {"b": 2}} done`, `{"a": {"b": 2}}`},
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"no json", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSONFromText(tt.in))
		})
	}
}

func TestNewTextGeneratorRejectsUnknownProvider(t *testing.T) {
	cfg := &config.Config{}
	cfg.LLM.Provider = "carrier-pigeon"

	_, err := NewTextGenerator(context.Background(), cfg)
	require.Error(t, err)

	cfg.LLM.Provider = "OpenAI"
	gen, err := NewTextGenerator(context.Background(), cfg)
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, gen)
}

func TestNewGeminiClientRequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), " ", "", "", nil)
	require.Error(t, err)
}
