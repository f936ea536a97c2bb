package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/ecotrack/internal/model"
)

// Environment variables consulted for credentials
const (
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvAnthropicKey  = "ANTHROPIC_API_KEY"
	EnvGoogleKey     = "GOOGLE_API_KEY"
	EnvGeminiKey     = "GEMINI_API_KEY" // alias for GOOGLE_API_KEY
	EnvOllamaBaseURL = "OLLAMA_BASE_URL"
)

const ollamaDefaultModel = "llama3.1:8b"

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	switch canonicalProvider(config.Provider) {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic":
		return NewAnthropicProvider(config)

	case "google":
		return NewGeminiProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: google, openai, anthropic, ollama)", config.Provider)
	}
}

// canonicalProvider folds provider aliases
func canonicalProvider(name string) string {
	switch p := strings.ToLower(strings.TrimSpace(name)); p {
	case "claude":
		return "anthropic"
	case "gemini":
		return "google"
	case "auto":
		return ""
	default:
		return p
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(m model.LLMConfig) Config {
	return Config{
		Provider:    canonicalProvider(m.Provider),
		Model:       m.Model,
		APIKey:      m.APIKey,
		BaseURL:     m.BaseURL,
		Timeout:     m.Timeout,
		MaxTokens:   m.MaxTokens,
		Temperature: m.Temperature,
		RateLimit:   m.RateLimit,
		Burst:       m.Burst,
		HTTPProxy:   m.HTTPProxy,
		HTTPSProxy:  m.HTTPSProxy,
		NoProxy:     m.NoProxy,
	}
}

// ConfigFromEnv resolves a provider and its credential from the environment.
// With an empty provider the first credential found wins, in the order
// google, openai, anthropic, ollama. No credential leaves Provider empty.
func ConfigFromEnv(provider, modelName string) Config {
	c := DefaultConfig()
	c.Model = modelName

	googleKey := os.Getenv(EnvGoogleKey)
	if googleKey == "" {
		googleKey = os.Getenv(EnvGeminiKey)
	}
	candidates := []struct {
		name   string
		key    string
		remote bool
	}{
		{"google", googleKey, true},
		{"openai", os.Getenv(EnvOpenAIKey), true},
		{"anthropic", os.Getenv(EnvAnthropicKey), true},
		{"ollama", os.Getenv(EnvOllamaBaseURL), false},
	}

	want := canonicalProvider(provider)
	for _, cand := range candidates {
		if want != "" && cand.name != want {
			continue
		}
		if cand.key == "" {
			continue
		}
		c.Provider = cand.name
		if cand.remote {
			c.APIKey = cand.key
		} else {
			c.BaseURL = cand.key
			if c.Model == "" {
				c.Model = ollamaDefaultModel
			}
		}
		return c
	}

	return c
}

// Resolve merges the file/flag configuration with environment credentials.
// Explicit values in m win over the environment. A disabled config, or one
// with no usable credential, yields an empty Provider.
func Resolve(m model.LLMConfig) Config {
	if m.Disabled {
		return Config{}
	}

	c := ConfigFromModel(m)
	if c.Provider != "" && (c.APIKey != "" || (c.Provider == "ollama" && c.BaseURL != "")) {
		return c
	}

	env := ConfigFromEnv(c.Provider, c.Model)
	if env.Provider == "" {
		if c.Provider == "ollama" {
			// Ollama needs no credential; fall back to the local default URL
			if c.Model == "" {
				c.Model = ollamaDefaultModel
			}
			return c
		}
		return Config{}
	}

	c.Provider = env.Provider
	if c.APIKey == "" {
		c.APIKey = env.APIKey
	}
	if c.BaseURL == "" {
		c.BaseURL = env.BaseURL
	}
	if c.Model == "" {
		c.Model = env.Model
	}
	return c
}
