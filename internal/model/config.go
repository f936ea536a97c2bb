package model

import "time"

// Config holds the complete ecotrack configuration
type Config struct {
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Engine      EngineConfig      `yaml:"engine" mapstructure:"engine"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
}

// LLMConfig configures the remote-model extractor.
// The extractor is only enabled when a credential (or an Ollama base URL) is present.
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, gemini, ollama, "" = auto-detect
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"-" mapstructure:"api_key"` // Never written to disk
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second, 0 = unlimited
	Burst       int     `yaml:"burst" mapstructure:"burst"`
	HTTPProxy   string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy     string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	Disabled    bool    `yaml:"disabled" mapstructure:"disabled"` // Force rule-based extraction only
}

// CacheConfig configures memoization of remote extraction results
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Dir     string        `yaml:"dir,omitempty" mapstructure:"dir"` // Also persist to disk when set
}

// ConcurrencyConfig configures batch interpretation
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// EngineConfig tunes the interpretation engine
type EngineConfig struct {
	// MinConfidence rejects parses below this confidence as unparseable (0 disables)
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	// Equivalents attaches phone-charge/tree equivalents to results
	Equivalents bool `yaml:"equivalents" mapstructure:"equivalents"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Format  string `yaml:"format" mapstructure:"format"` // text or json
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LoggingConfig controls the zerolog logger
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // trace, debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "", // Auto-detect from environment
			Timeout:     10,
			MaxTokens:   300,
			Temperature: 0.1,
			RateLimit:   2,
			Burst:       4,
		},
		Cache: CacheConfig{
			Enabled: false,
			TTL:     time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Engine: EngineConfig{
			MinConfidence: 0,
			Equivalents:   true,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "console",
		},
	}
}
