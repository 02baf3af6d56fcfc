package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenRouterClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := DefaultOpenRouterConfig("test-key")
	cfg.BaseURL = srv.URL
	cfg.Timeout = 5 * time.Second
	return NewOpenRouterClient(cfg, zap.NewNop())
}

func TestOpenRouterGenerate(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "gen-persona", r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	})

	text, err := client.Generate(context.Background(), Request{
		SystemInstruction: "be brief",
		UserPrompt:        "say hello",
		Model:             "test/model",
		Temperature:       Temperature(0.9),
	})

	require.NoError(t, err)
	assert.Equal(t, "hello", text)
	assert.Equal(t, "test/model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "say hello", got.Messages[1].Content)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.9, *got.Temperature, 1e-9)
}

func TestOpenRouterOmitsEmptySystemAndTemperature(t *testing.T) {
	var raw map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	_, err := client.Generate(context.Background(), Request{UserPrompt: "x", Model: "m"})
	require.NoError(t, err)

	_, hasTemp := raw["temperature"]
	assert.False(t, hasTemp)
	assert.Len(t, raw["messages"], 1)
}

func TestOpenRouterErrors(t *testing.T) {
	t.Run("http status is a transport error with body", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte("slow down"))
		})

		_, err := client.Generate(context.Background(), Request{UserPrompt: "x"})

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusTooManyRequests, te.StatusCode)
		assert.Equal(t, "slow down", te.Body)
	})

	t.Run("garbage body is unexpected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		})

		_, err := client.Generate(context.Background(), Request{UserPrompt: "x"})

		var ue *UnexpectedError
		require.ErrorAs(t, err, &ue)
		assert.False(t, IsTransport(err))
	})

	t.Run("no choices is unexpected", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"choices":[]}`))
		})

		_, err := client.Generate(context.Background(), Request{UserPrompt: "x"})

		var ue *UnexpectedError
		require.ErrorAs(t, err, &ue)
	})

	t.Run("deadline expiry is a transport error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := client.Generate(ctx, Request{UserPrompt: "x"})

		require.True(t, IsTransport(err))
		assert.True(t, errors.Is(err, context.DeadlineExceeded))
	})

	t.Run("missing key", func(t *testing.T) {
		client := NewOpenRouterClient(OpenRouterConfig{}, zap.NewNop())

		_, err := client.Generate(context.Background(), Request{UserPrompt: "x"})

		var ue *UnexpectedError
		require.ErrorAs(t, err, &ue)
	})
}
