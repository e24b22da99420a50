package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"milo_career/models"
)

func TestParseLimit(t *testing.T) {
	tests := map[string]int{
		"":           DefaultLimit,
		"?limit=":    DefaultLimit,
		"?limit=x":   DefaultLimit,
		"?limit=0":   1,
		"?limit=-5":  1,
		"?limit=20":  20,
		"?limit=501": MaxLimit,
	}
	for query, want := range tests {
		r := httptest.NewRequest(http.MethodGet, "/api/search"+query, nil)
		assert.Equal(t, want, ParseLimit(r), "query %q", query)
	}
}

func TestDeduplicateSlice(t *testing.T) {
	assert.Equal(t, []string{"writing", "policy"}, DeduplicateSlice([]string{"writing", " ", "policy", "writing ", ""}))
	assert.Empty(t, DeduplicateSlice(nil))
}

func TestTruncateForLog(t *testing.T) {
	assert.Equal(t, "short", TruncateForLog("short", 10))
	assert.Equal(t, "耶鲁...", TruncateForLog("耶鲁大学校友", 2))
	assert.Equal(t, "anything", TruncateForLog("anything", 0))
	assert.Equal(t, "a b c", CollapseWhitespace("  a \n b\t\tc "))
}

func TestRequireParam(t *testing.T) {
	rec := httptest.NewRecorder()
	assert.False(t, RequireParam(rec, "q", "   "))

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.CodeMissingParams, resp.Code)
	assert.Equal(t, map[string]interface{}{"param": "q"}, resp.Data)

	assert.True(t, RequireParam(httptest.NewRecorder(), "q", "goldman"))
}

func TestWriteSSEData(t *testing.T) {
	rec := httptest.NewRecorder()
	flusher, ok := PrepareSSE(rec)
	require.True(t, ok)

	require.NoError(t, WriteSSEData(rec, flusher, models.ChatChunk{Content: "hi"}))
	require.NoError(t, WriteSSEData(rec, flusher, models.ChatChunk{Error: "Error in chat: boom"}))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "data: {\"content\":\"hi\"}\n\ndata: {\"error\":\"Error in chat: boom\"}\n\n", rec.Body.String())
	assert.True(t, rec.Flushed)
}
