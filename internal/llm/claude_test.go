package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockClaudeServer(t *testing.T, text string, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			*calls++
		}

		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		resp := Response{
			ID:      "msg_test",
			Type:    "message",
			Role:    "assistant",
			Content: []ContentBlock{{Type: "text", Text: text}},
			Usage:   Usage{InputTokens: 10, OutputTokens: 20},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(t *testing.T, baseURL string) *ClaudeClient {
	t.Helper()
	client, err := NewClaudeClient(Config{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		RateLimitRPM: 60000,
		CacheTTL:     time.Hour,
	})
	require.NoError(t, err)
	return client
}

func TestNewClaudeClient_RequiresAPIKey(t *testing.T) {
	_, err := NewClaudeClient(Config{})
	require.Error(t, err)
}

func TestNewClaudeClient_Defaults(t *testing.T) {
	client, err := NewClaudeClient(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Model, client.GetModel())
}

func TestComplete(t *testing.T) {
	srv := mockClaudeServer(t, "The answer.", nil)
	defer srv.Close()

	client := testClient(t, srv.URL)
	text, usage, err := client.Complete(context.Background(), "system", "user")
	require.NoError(t, err)
	assert.Equal(t, "The answer.", text)
	require.NotNil(t, usage)
	assert.Equal(t, 10, usage.InputTokens)
	assert.Equal(t, 20, usage.OutputTokens)

	metrics := client.GetMetrics()
	assert.Equal(t, int64(1), metrics.SuccessRequests)
	assert.Equal(t, int64(1), metrics.CacheMisses)
}

func TestComplete_CacheHit(t *testing.T) {
	calls := 0
	srv := mockClaudeServer(t, "cached text", &calls)
	defer srv.Close()

	client := testClient(t, srv.URL)

	first, _, err := client.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)

	second, usage, err := client.Complete(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Nil(t, usage)
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(1), client.GetMetrics().CacheHits)

	// Different prompt misses the cache.
	_, _, err = client.Complete(context.Background(), "sys", "other user")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestComplete_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, _, err := client.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
	assert.Equal(t, int64(1), client.GetMetrics().FailedRequests)
}

func TestComplete_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Response{ID: "msg_test"})
	}))
	defer srv.Close()

	client := testClient(t, srv.URL)
	_, _, err := client.Complete(context.Background(), "sys", "user")
	require.Error(t, err)
}

func TestCompleteJSON(t *testing.T) {
	srv := mockClaudeServer(t, "```json\n{\"one_liner\": \"Billing for accountants\"}\n```", nil)
	defer srv.Close()

	client := testClient(t, srv.URL)
	var parsed struct {
		OneLiner string `json:"one_liner"`
	}
	usage, err := client.CompleteJSON(context.Background(), "sys", "user", &parsed)
	require.NoError(t, err)
	require.NotNil(t, usage)
	assert.Equal(t, "Billing for accountants", parsed.OneLiner)
}

func TestCompleteJSON_NoJSON(t *testing.T) {
	srv := mockClaudeServer(t, "I cannot answer that.", nil)
	defer srv.Close()

	client := testClient(t, srv.URL)
	var parsed map[string]any
	_, err := client.CompleteJSON(context.Background(), "sys", "user", &parsed)
	require.Error(t, err)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"fenced", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced no lang", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around object", `Here you go: {"a": 1} hope that helps`, `{"a": 1}`},
		{"array", `[1, 2, 3]`, `[1, 2, 3]`},
		{"nested braces", `{"a": {"b": 2}}`, `{"a": {"b": 2}}`},
		{"braces inside string", `{"a": "has } brace"}`, `{"a": "has } brace"}`},
		{"escaped quote in string", `{"a": "quote \" here"}`, `{"a": "quote \" here"}`},
		{"no json", "just some prose", ""},
		{"unbalanced", `{"a": 1`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractJSON(tt.input))
		})
	}
}
