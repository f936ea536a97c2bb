package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/ecotrack/internal/extract"
	"github.com/ppiankov/ecotrack/internal/model"
)

// constError is an error type usable in const declarations
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors; compare with errors.Is
const (
	ErrNoProvider     constError = "no LLM provider configured"
	ErrEmptyResponse  constError = "empty model response"
	ErrMalformedReply constError = "model reply is not a JSON object"
	ErrMissingField   constError = "model reply is missing a required field"
)

// DefaultConfidence is assumed when the model omits a confidence
const DefaultConfidence = 0.8

var requiredFields = []string{"action", "category", "quantity", "unit"}

// RemoteExtractor asks a hosted or local model to structure an activity.
// It makes a single attempt per call and reports every failure as a
// recoverable Outcome so the caller can fall back to the rule extractor.
type RemoteExtractor struct {
	provider Provider
	limiter  *Limiter
	logger   zerolog.Logger
	timeout  time.Duration
}

// ExtractorOption configures a RemoteExtractor
type ExtractorOption func(*RemoteExtractor)

// WithLimiter throttles calls through l
func WithLimiter(l *Limiter) ExtractorOption {
	return func(r *RemoteExtractor) { r.limiter = l }
}

// WithLogger sets the logger used for failure reporting
func WithLogger(logger zerolog.Logger) ExtractorOption {
	return func(r *RemoteExtractor) { r.logger = logger }
}

// WithTimeout bounds each call, including the rate-limit wait
func WithTimeout(d time.Duration) ExtractorOption {
	return func(r *RemoteExtractor) { r.timeout = d }
}

// NewRemoteExtractor wraps a provider
func NewRemoteExtractor(p Provider, opts ...ExtractorOption) *RemoteExtractor {
	r := &RemoteExtractor{
		provider: p,
		logger:   zerolog.Nop(),
		timeout:  10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the underlying provider name
func (r *RemoteExtractor) Name() string {
	if r == nil || r.provider == nil {
		return "remote"
	}
	return r.provider.Name()
}

// Extract implements extract.Extractor
func (r *RemoteExtractor) Extract(ctx context.Context, text string) (out extract.Outcome) {
	if r == nil || r.provider == nil {
		return extract.Recoverable(ErrNoProvider)
	}

	logger := r.logger.With().Str("provider", r.provider.Name()).Logger()

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("remote extraction panicked")
			out = extract.Recoverable(fmt.Errorf("remote extraction panicked: %v", p))
		}
	}()

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	if err := r.limiter.Wait(ctx, r.provider.Name()); err != nil {
		logger.Warn().Err(err).Msg("rate limit wait failed")
		return extract.Recoverable(fmt.Errorf("rate limit: %w", err))
	}

	start := time.Now()
	resp, err := r.provider.Complete(ctx, CompletionRequest{
		System: SystemPrompt,
		Prompt: BuildPrompt(text),
		JSON:   true,
	})
	if err != nil {
		logger.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("remote extraction failed")
		return extract.Recoverable(err)
	}

	activity, err := ParseActivityJSON(resp.Text)
	if err != nil {
		logger.Warn().Err(err).Str("reply", truncate(resp.Text, 200)).Msg("unusable model reply")
		return extract.Recoverable(err)
	}

	logger.Debug().
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Dur("elapsed", time.Since(start)).
		Stringer("activity", activity).
		Msg("remote extraction succeeded")

	return extract.Success(activity)
}

// ParseActivityJSON decodes a model reply into a ParsedActivity. Markdown
// fences are stripped, the four required fields must be present, quantity is
// coerced to a number (1.0 when impossible) and confidence defaults to 0.8 and
// is clamped to [0,1]. The result is not validated.
func ParseActivityJSON(raw string) (*model.ParsedActivity, error) {
	content := stripFences(raw)
	if content == "" {
		return nil, ErrEmptyResponse
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(content), &fields); err != nil {
		// Tolerate prose around the object
		start, end := strings.Index(content, "{"), strings.LastIndex(content, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
		if err := json.Unmarshal([]byte(content[start:end+1]), &fields); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
	}

	for _, name := range requiredFields {
		if v, ok := fields[name]; !ok || v == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingField, name)
		}
	}

	a := &model.ParsedActivity{
		Action:      strings.TrimSpace(stringField(fields["action"])),
		Category:    model.Category(strings.ToLower(strings.TrimSpace(stringField(fields["category"])))),
		Quantity:    numberField(fields["quantity"], 1.0),
		Unit:        strings.TrimSpace(stringField(fields["unit"])),
		Subcategory: strings.TrimSpace(stringField(fields["subcategory"])),
	}

	if alt := strings.TrimSpace(stringField(fields["instead_of"])); alt != "" {
		a.InsteadOf = model.StringPtr(alt)
	}

	confidence := numberField(fields["confidence"], DefaultConfidence)
	a.Confidence = model.FloatPtr(math.Max(0, math.Min(1, confidence)))

	return a, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func stringField(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// numberField accepts JSON numbers and numeric strings; anything else,
// including NaN and infinities, yields def
func numberField(v any, def float64) float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return def
		}
		f = parsed
	default:
		return def
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return def
	}
	return f
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
