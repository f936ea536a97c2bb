package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaProvider_Complete_Success(t *testing.T) {
	var got ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		resp := ollamaResponse{
			Model:           "llama3.1",
			Response:        `{"action":"cycle","category":"transportation","quantity":5,"unit":"km"}`,
			Done:            true,
			PromptEvalCount: 10,
			EvalCount:       20,
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{
		BaseURL:   server.URL,
		Model:     "llama3.1",
		Timeout:   5,
		MaxTokens: 200,
	})
	require.NoError(t, err)

	resp, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "cycled 5km", JSON: true})
	require.NoError(t, err)

	assert.Contains(t, resp.Text, `"cycle"`)
	assert.Equal(t, 30, resp.TokensUsed)
	assert.False(t, got.Stream, "request should not stream")
	assert.Equal(t, "json", got.Format)
	assert.Equal(t, 200, got.Options.NumPredict)
}

func TestOllamaProvider_Complete_EstimatesTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaResponse{Model: "llama3.1", Response: "12345678", Done: true})
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	require.NoError(t, err)

	resp, err := provider.Complete(context.Background(), CompletionRequest{Prompt: "abcdefgh"})
	require.NoError(t, err)
	assert.Equal(t, 4, resp.TokensUsed, "tokens are estimated from text length")
}

func TestOllamaProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Internal Server Error"}`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Internal Server Error")
}

func TestOllamaProvider_Complete_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{malformed json`))
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL, Model: "llama3.1", Timeout: 5})
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	assert.Error(t, err)
}

func TestOllamaProvider_IsAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	provider, err := NewOllamaProvider(Config{BaseURL: server.URL})
	require.NoError(t, err)
	assert.True(t, provider.IsAvailable(context.Background()))

	down, err := NewOllamaProvider(Config{BaseURL: server.URL + "/missing"})
	require.NoError(t, err)
	assert.False(t, down.IsAvailable(context.Background()), "provider should be unavailable on 404")
}

func TestOllamaProvider_Complete_NoModel(t *testing.T) {
	provider, err := NewOllamaProvider(Config{BaseURL: "http://localhost:11434"})
	require.NoError(t, err)

	_, err = provider.Complete(context.Background(), CompletionRequest{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be specified")
}
