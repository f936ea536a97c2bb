package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/ppiankov/ecotrack/internal/util"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends one prompt and returns the model's raw text reply
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for a single completion
type CompletionRequest struct {
	// System is the system instruction (optional)
	System string

	// Prompt is the user message
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature overrides the configured sampling temperature when > 0
	Temperature float32

	// JSON asks the provider for a JSON-only reply where the API supports it
	JSON bool
}

// CompletionResponse contains the model output
type CompletionResponse struct {
	// Text is the raw reply, possibly wrapped in markdown fences
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "google", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for a single remote call
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling; extraction wants it low
	Temperature float32

	// RateLimit in requests per second (0 = unlimited) and its burst
	RateLimit float64
	Burst     int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     10,
		MaxTokens:   300,
		Temperature: 0.1,
	}
}

// timeout returns the configured call timeout, or def when unset
func (c Config) timeout(def time.Duration) time.Duration {
	if c.Timeout > 0 {
		return time.Duration(c.Timeout) * time.Second
	}
	return def
}

// resolve fills request fields left empty from the provider config
func (c Config) resolve(req CompletionRequest, defaultModel string) CompletionRequest {
	if req.Model == "" {
		req.Model = c.Model
	}
	if req.Model == "" {
		req.Model = defaultModel
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.MaxTokens
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 300
	}
	if req.Temperature == 0 {
		req.Temperature = c.Temperature
	}
	return req
}

// newHTTPClient builds the client shared by the net/http providers
func newHTTPClient(c Config, defaultTimeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: c.timeout(defaultTimeout),
		Transport: &http.Transport{
			Proxy: util.NewProxyFunc(c.HTTPProxy, c.HTTPSProxy, c.NoProxy),
		},
	}
}
