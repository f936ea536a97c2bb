package extract

import (
	"context"
	"fmt"

	"github.com/ppiankov/ecotrack/internal/model"
)

// Extractor turns free text into a structured activity
type Extractor interface {
	// Name identifies the extractor in logs and results
	Name() string

	// Extract never panics or returns an error; every failure is an Outcome
	Extract(ctx context.Context, text string) Outcome
}

// OutcomeKind classifies an extraction attempt
type OutcomeKind int

const (
	// OutcomeUnparseable means the extractor ran and understood nothing
	OutcomeUnparseable OutcomeKind = iota
	// OutcomeSuccess carries a validated activity
	OutcomeSuccess
	// OutcomeRecoverable means the extractor failed (network, timeout, bad
	// response) and the caller should try the next extractor
	OutcomeRecoverable
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeRecoverable:
		return "recoverable"
	case OutcomeUnparseable:
		return "unparseable"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome is the explicit result of one extraction attempt
type Outcome struct {
	Kind     OutcomeKind
	Activity *model.ParsedActivity // set only for OutcomeSuccess
	Err      error                 // set only for OutcomeRecoverable
}

// Success wraps a parsed activity. A nil or invalid activity is downgraded so
// the invariant "success implies a valid record" always holds.
func Success(a *model.ParsedActivity) Outcome {
	if a == nil {
		return Unparseable()
	}
	if err := a.Validate(); err != nil {
		return Recoverable(fmt.Errorf("invalid activity: %w", err))
	}
	return Outcome{Kind: OutcomeSuccess, Activity: a}
}

// Recoverable reports a failure the caller should fall back from
func Recoverable(err error) Outcome {
	return Outcome{Kind: OutcomeRecoverable, Err: err}
}

// Unparseable reports that nothing in the text was understood
func Unparseable() Outcome {
	return Outcome{Kind: OutcomeUnparseable}
}

// OK reports whether the outcome carries an activity
func (o Outcome) OK() bool {
	return o.Kind == OutcomeSuccess && o.Activity != nil
}
