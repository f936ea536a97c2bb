package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/ecotrack/internal/extract"
	"github.com/ppiankov/ecotrack/internal/model"
)

// mockProvider returns a canned reply or error
type mockProvider struct {
	text  string
	err   error
	delay time.Duration
	panic bool
	calls int
	last  CompletionRequest
}

func (m *mockProvider) Name() string { return "mock" }
func (m *mockProvider) IsAvailable(ctx context.Context) bool { return true }

func (m *mockProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	m.calls++
	m.last = req
	if m.panic {
		panic("boom")
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &CompletionResponse{Text: m.text, Model: "mock-1"}, nil
}

func TestParseActivityJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    *model.ParsedActivity
		wantErr error
	}{
		{
			name: "plain object",
			raw:  `{"action":"walk","category":"transportation","quantity":2,"unit":"km","instead_of":"car","subcategory":"commute","confidence":0.95}`,
			want: &model.ParsedActivity{Action: "walk", Category: model.CategoryTransportation, Quantity: 2, Unit: "km", InsteadOf: model.StringPtr("car"), Subcategory: "commute", Confidence: model.FloatPtr(0.95)},
		},
		{
			name: "json fence",
			raw:  "```json\n{\"action\":\"recycle\",\"category\":\"waste\",\"quantity\":3,\"unit\":\"items\"}\n```",
			want: &model.ParsedActivity{Action: "recycle", Category: model.CategoryWaste, Quantity: 3, Unit: "items", Confidence: model.FloatPtr(0.8)},
		},
		{
			name: "bare fence",
			raw:  "```\n{\"action\":\"compost\",\"category\":\"Waste\",\"quantity\":1,\"unit\":\"kg\"}\n```",
			want: &model.ParsedActivity{Action: "compost", Category: model.CategoryWaste, Quantity: 1, Unit: "kg", Confidence: model.FloatPtr(0.8)},
		},
		{
			name: "numeric string quantity",
			raw:  `{"action":"walk","category":"transportation","quantity":"2.5","unit":"km"}`,
			want: &model.ParsedActivity{Action: "walk", Category: model.CategoryTransportation, Quantity: 2.5, Unit: "km", Confidence: model.FloatPtr(0.8)},
		},
		{
			name: "uncoercible quantity becomes one",
			raw:  `{"action":"walk","category":"transportation","quantity":"a few","unit":"km"}`,
			want: &model.ParsedActivity{Action: "walk", Category: model.CategoryTransportation, Quantity: 1, Unit: "km", Confidence: model.FloatPtr(0.8)},
		},
		{
			name: "confidence clamped high",
			raw:  `{"action":"walk","category":"transportation","quantity":1,"unit":"km","confidence":7}`,
			want: &model.ParsedActivity{Action: "walk", Category: model.CategoryTransportation, Quantity: 1, Unit: "km", Confidence: model.FloatPtr(1)},
		},
		{
			name: "confidence clamped low",
			raw:  `{"action":"walk","category":"transportation","quantity":1,"unit":"km","confidence":-0.2}`,
			want: &model.ParsedActivity{Action: "walk", Category: model.CategoryTransportation, Quantity: 1, Unit: "km", Confidence: model.FloatPtr(0)},
		},
		{
			name: "null instead_of",
			raw:  `{"action":"plant_tree","category":"other","quantity":2,"unit":"trees","instead_of":null}`,
			want: &model.ParsedActivity{Action: "plant_tree", Category: model.CategoryOther, Quantity: 2, Unit: "trees", Confidence: model.FloatPtr(0.8)},
		},
		{
			name: "prose around object",
			raw:  `Here you go: {"action":"walk","category":"transportation","quantity":1,"unit":"km"} Hope that helps.`,
			want: &model.ParsedActivity{Action: "walk", Category: model.CategoryTransportation, Quantity: 1, Unit: "km", Confidence: model.FloatPtr(0.8)},
		},
		{
			name:    "missing unit",
			raw:     `{"action":"walk","category":"transportation","quantity":1}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "null quantity counts as missing",
			raw:     `{"action":"walk","category":"transportation","quantity":null,"unit":"km"}`,
			wantErr: ErrMissingField,
		},
		{
			name:    "not json",
			raw:     "I could not understand that.",
			wantErr: ErrMalformedReply,
		},
		{
			name:    "empty",
			raw:     "  ```  ",
			wantErr: ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseActivityJSON(tt.raw)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRemoteExtractor_Success(t *testing.T) {
	p := &mockProvider{text: `{"action":"bus","category":"transportation","quantity":10,"unit":"km","instead_of":"car"}`}
	r := NewRemoteExtractor(p)

	out := r.Extract(context.Background(), "took the bus 10km")
	require.Equal(t, extract.OutcomeSuccess, out.Kind)
	assert.Equal(t, "bus", out.Activity.Action)
	assert.Equal(t, "car", out.Activity.InsteadOfValue())

	assert.Equal(t, 1, p.calls)
	assert.True(t, p.last.JSON)
	assert.Equal(t, SystemPrompt, p.last.System)
	assert.Contains(t, p.last.Prompt, `"took the bus 10km"`)
	assert.Equal(t, "mock", r.Name())
}

func TestRemoteExtractor_FailuresAreRecoverable(t *testing.T) {
	tests := []struct {
		name string
		p    *mockProvider
	}{
		{"provider error", &mockProvider{err: errors.New("connection refused")}},
		{"garbage reply", &mockProvider{text: "sorry"}},
		{"missing field", &mockProvider{text: `{"action":"walk"}`}},
		{"invalid activity", &mockProvider{text: `{"action":"walk","category":"transportation","quantity":-3,"unit":"km"}`}},
		{"panic", &mockProvider{panic: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := NewRemoteExtractor(tt.p).Extract(context.Background(), "walked")
			assert.Equal(t, extract.OutcomeRecoverable, out.Kind)
			assert.Error(t, out.Err)
			assert.Nil(t, out.Activity)
		})
	}
}

func TestRemoteExtractor_Timeout(t *testing.T) {
	p := &mockProvider{delay: time.Second, text: `{}`}
	r := NewRemoteExtractor(p, WithTimeout(20*time.Millisecond))

	start := time.Now()
	out := r.Extract(context.Background(), "walked")
	assert.Equal(t, extract.OutcomeRecoverable, out.Kind)
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestRemoteExtractor_LimiterFailureIsRecoverable(t *testing.T) {
	p := &mockProvider{text: `{"action":"walk","category":"transportation","quantity":1,"unit":"km"}`}
	limiter := NewLimiter(0.001, 1)
	r := NewRemoteExtractor(p, WithLimiter(limiter), WithTimeout(20*time.Millisecond))

	// The first call spends the only token; the second cannot get one before its deadline
	require.True(t, r.Extract(context.Background(), "walked").OK())
	out := r.Extract(context.Background(), "walked")
	assert.Equal(t, extract.OutcomeRecoverable, out.Kind)
	assert.Equal(t, 1, p.calls)
}

func TestRemoteExtractor_NilProvider(t *testing.T) {
	out := NewRemoteExtractor(nil).Extract(context.Background(), "walked")
	assert.Equal(t, extract.OutcomeRecoverable, out.Kind)
	assert.ErrorIs(t, out.Err, ErrNoProvider)

	var r *RemoteExtractor
	assert.Equal(t, "remote", r.Name())
	assert.Equal(t, extract.OutcomeRecoverable, r.Extract(context.Background(), "x").Kind)
}

func TestRemoteExtractor_ImplementsExtractor(t *testing.T) {
	var _ extract.Extractor = (*RemoteExtractor)(nil)
}
