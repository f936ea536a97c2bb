package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppiankov/ecotrack/internal/cache"
	"github.com/ppiankov/ecotrack/internal/equivalents"
	"github.com/ppiankov/ecotrack/internal/extract"
	"github.com/ppiankov/ecotrack/internal/factors"
	"github.com/ppiankov/ecotrack/internal/model"
	"github.com/ppiankov/ecotrack/internal/savings"
)

// ErrEmptyInput is returned by callers that reject blank entries up front
var ErrEmptyInput = errors.New("activity text is empty")

// Options configures an Interpreter. Only Rules is effectively required and
// defaults to the built-in rule extractor.
type Options struct {
	Remote extract.Extractor // Optional remote-model extractor (nil disables)
	Rules  extract.Extractor // Fallback extractor
	Table  *factors.Table    // nil uses factors.Default()
	Cache  cache.Cache       // Optional memo of remote parses
	Logger *zerolog.Logger   // nil discards logs

	// MinConfidence rejects candidates whose confidence is below it (0 disables)
	MinConfidence float64
	// Equivalents attaches everyday equivalents when something was saved
	Equivalents bool
}

// Interpreter orchestrates remote extraction, rule fallback and savings
type Interpreter struct {
	remote        extract.Extractor
	rules         extract.Extractor
	calc          *savings.Calculator
	cache         cache.Cache
	logger        zerolog.Logger
	minConfidence float64
	equivalents   bool
}

// New creates an interpreter
func New(opts Options) *Interpreter {
	rules := opts.Rules
	if rules == nil {
		rules = extract.NewRuleExtractor()
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Interpreter{
		remote:        opts.Remote,
		rules:         rules,
		calc:          savings.NewCalculator(opts.Table),
		cache:         opts.Cache,
		logger:        logger.With().Str("component", "interpreter").Logger(),
		minConfidence: opts.MinConfidence,
		equivalents:   opts.Equivalents,
	}
}

// Interpret turns one free-text entry into an interpretation.
// It never returns nil and never fails: an entry nothing understood has a nil
// Parsed activity, zero savings and empty metadata.
func (p *Interpreter) Interpret(ctx context.Context, text string) *model.Interpretation {
	result := &model.Interpretation{Text: text, Source: model.SourceNone}
	if strings.TrimSpace(text) == "" {
		return result
	}

	activity, source := p.extract(ctx, text)
	if activity == nil {
		p.logger.Debug().Str("text", text).Msg("entry not understood")
		return result
	}

	saved := p.calc.Compute(activity)
	result.Parsed = activity
	result.Source = source
	result.CO2SavedKg = saved.CO2SavedKg
	result.Meta = saved.Meta

	if p.equivalents && saved.CO2SavedKg > 0 {
		eq := equivalents.Compute(saved.CO2SavedKg)
		result.Equivalents = &eq
	}

	p.logger.Debug().
		Str("source", string(source)).
		Str("activity", activity.String()).
		Float64("co2_saved_kg", saved.CO2SavedKg).
		Str("factor_rule", saved.Meta.Rule).
		Msg("entry interpreted")

	return result
}

// extract runs the remote extractor (through the cache) and falls back to rules
func (p *Interpreter) extract(ctx context.Context, text string) (*model.ParsedActivity, model.Source) {
	if p.remote != nil {
		if a, source, ok := p.tryRemote(ctx, text); ok {
			return a, source
		}
	}

	out := p.rules.Extract(ctx, text)
	switch out.Kind {
	case extract.OutcomeSuccess:
		if !p.confident(out.Activity) {
			p.logger.Debug().Str("extractor", p.rules.Name()).Msg("rule parse below confidence threshold")
			return nil, model.SourceNone
		}
		return out.Activity, model.SourceRules
	case extract.OutcomeRecoverable:
		p.logger.Warn().Err(out.Err).Str("extractor", p.rules.Name()).Msg("rule extraction failed")
	}
	return nil, model.SourceNone
}

func (p *Interpreter) tryRemote(ctx context.Context, text string) (*model.ParsedActivity, model.Source, bool) {
	key := cache.CacheKey(text)
	if p.cache != nil {
		if a, found := p.cache.Get(key); found && p.confident(a) {
			return a, model.SourceCache, true
		}
	}

	out := p.remote.Extract(ctx, text)
	switch out.Kind {
	case extract.OutcomeSuccess:
		if !p.confident(out.Activity) {
			p.logger.Debug().Str("extractor", p.remote.Name()).Msg("remote parse below confidence threshold, falling back")
			return nil, "", false
		}
		if p.cache != nil {
			if err := p.cache.Set(key, out.Activity); err != nil {
				p.logger.Warn().Err(err).Msg("cache write failed")
			}
		}
		return out.Activity, model.SourceRemote, true
	case extract.OutcomeRecoverable:
		p.logger.Warn().Err(out.Err).Str("extractor", p.remote.Name()).Msg("remote extraction failed, falling back to rules")
	default:
		p.logger.Debug().Str("extractor", p.remote.Name()).Msg("remote extractor understood nothing, falling back to rules")
	}
	return nil, "", false
}

func (p *Interpreter) confident(a *model.ParsedActivity) bool {
	if p.minConfidence <= 0 || a == nil || a.Confidence == nil {
		return true
	}
	return *a.Confidence >= p.minConfidence
}
