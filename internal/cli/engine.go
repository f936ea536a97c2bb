package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/ecotrack/internal/cache"
	"github.com/ppiankov/ecotrack/internal/extract"
	"github.com/ppiankov/ecotrack/internal/llm"
	"github.com/ppiankov/ecotrack/internal/model"
	"github.com/ppiankov/ecotrack/internal/pipeline"
)

// buildInterpreter wires the remote extractor (when credentials resolve),
// the rule fallback and the optional cache
func buildInterpreter(cfg *model.Config, logger zerolog.Logger) (*pipeline.Interpreter, error) {
	var remote extract.Extractor

	llmCfg := llm.Resolve(cfg.LLM)
	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return nil, fmt.Errorf("configure remote extractor: %w", err)
	}
	if provider != nil {
		remote = llm.NewRemoteExtractor(provider,
			llm.WithLimiter(llm.NewLimiter(llmCfg.RateLimit, llmCfg.Burst)),
			llm.WithLogger(logger),
			llm.WithTimeout(time.Duration(llmCfg.Timeout)*time.Second),
		)
		logger.Debug().Str("provider", provider.Name()).Str("model", llmCfg.Model).Msg("remote extractor enabled")
	} else {
		logger.Debug().Msg("no remote credentials, using rule-based extraction only")
	}

	return pipeline.New(pipeline.Options{
		Remote:        remote,
		Rules:         extract.NewRuleExtractor(),
		Cache:         cache.New(cfg.Cache),
		Logger:        &logger,
		MinConfidence: cfg.Engine.MinConfidence,
		Equivalents:   cfg.Engine.Equivalents,
	}), nil
}
