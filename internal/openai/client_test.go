package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ailab-portal/internal/config"
)

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func newTestClient(endpoint string) *Client {
	return New(config.OpenAI{
		Endpoint:       endpoint,
		APIKey:         "test-key",
		DeploymentName: "gpt-test",
		TimeoutOpenAI:  5 * time.Second,
	}, slog.New(discardHandler{}))
}

func TestComplete_ReportedUsage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "test-key", r.Header.Get("api-key"))
		require.Contains(t, r.URL.Path, "/openai/deployments/gpt-test/chat/completions")

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, 512, req.MaxTokens)
		require.Equal(t, "system", req.Messages[0].Role)

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "summary text"}},
			},
			"usage": map[string]any{"prompt_tokens": 60, "completion_tokens": 40},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	result, err := client.Complete(context.Background(), []Message{
		{Role: "system", Content: "You are a helper."},
		{Role: "user", Content: "Summarize this."},
	}, 512)

	require.NoError(t, err)
	assert.Equal(t, "summary text", result.Reply)
	assert.Equal(t, 100, result.TokensUsed)
}

func TestComplete_FallbackEstimate(t *testing.T) {
	reply := strings.Repeat("a", 120)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": reply}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	result, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 256)

	require.NoError(t, err)
	// нет блока usage — оценка len(reply)/4
	assert.Equal(t, 30, result.TokensUsed)
}

func TestComplete_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(srv.URL)
	result, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 256)

	assert.Error(t, err)
	assert.Nil(t, result)
}

func TestComplete_NotConfigured(t *testing.T) {
	client := New(config.OpenAI{}, slog.New(discardHandler{}))

	result, err := client.Complete(context.Background(), []Message{{Role: "user", Content: "hi"}}, 256)

	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, result)
}
