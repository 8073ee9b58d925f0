package reply

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIGenerator(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  방문 감사합니다! 또 뵙겠습니다 😊  "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 210, "completion_tokens": 35, "total_tokens": 245}
		}`))
	}))
	t.Cleanup(srv.Close)

	gen := NewOpenAIGenerator("sk-test", srv.URL, "")
	c, err := gen.Generate(context.Background(), GenerateRequest{
		System: "sys", User: "user", Temperature: 0.5, MaxTokens: 250,
	})
	require.NoError(t, err)

	assert.Equal(t, "방문 감사합니다! 또 뵙겠습니다 😊", c.Text)
	assert.Equal(t, 210, c.PromptTokens)
	assert.Equal(t, 35, c.CompletionTokens)
	assert.Equal(t, 245, c.TotalTokens)
	assert.Equal(t, "gpt-4o-mini", c.Model)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 250, got["max_tokens"])
	assert.InDelta(t, 0.5, got["temperature"], 1e-6)
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["content"])
}

func TestOpenAIGeneratorErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "Rate limit reached", "type": "rate_limit_error"}}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewOpenAIGenerator("sk-test", srv.URL, "gpt-4o-mini").Generate(context.Background(), GenerateRequest{})
	assert.Error(t, err)
}

func TestOpenAIGeneratorEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "x", "model": "gpt-4o-mini", "choices": [], "usage": {}}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewOpenAIGenerator("sk-test", srv.URL, "").Generate(context.Background(), GenerateRequest{})
	assert.Error(t, err)
}

func TestAnthropicGenerator(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		assert.Equal(t, "ak-test", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "불편을 드려 죄송합니다. 바로 개선하겠습니다."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 180, "output_tokens": 30}
		}`))
	}))
	t.Cleanup(srv.Close)

	gen := NewAnthropicGenerator("ak-test", srv.URL+"/", "")
	c, err := gen.Generate(context.Background(), GenerateRequest{
		System: "sys", User: "user", Temperature: 0.5, MaxTokens: 250,
	})
	require.NoError(t, err)

	assert.Equal(t, "불편을 드려 죄송합니다. 바로 개선하겠습니다.", c.Text)
	assert.Equal(t, 180, c.PromptTokens)
	assert.Equal(t, 30, c.CompletionTokens)
	assert.Equal(t, 210, c.TotalTokens)
	assert.Equal(t, defaultAnthropicModel, c.Model)

	assert.Equal(t, defaultAnthropicModel, got["model"])
	assert.EqualValues(t, 250, got["max_tokens"])
}

func TestAnthropicGeneratorError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"type": "error", "error": {"type": "invalid_request_error", "message": "bad"}}`))
	}))
	t.Cleanup(srv.Close)

	_, err := NewAnthropicGenerator("ak-test", srv.URL+"/", "").Generate(context.Background(), GenerateRequest{MaxTokens: 10})
	assert.Error(t, err)
}
