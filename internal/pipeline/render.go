package pipeline

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ppiankov/ecotrack/internal/equivalents"
	"github.com/ppiankov/ecotrack/internal/model"
	"github.com/ppiankov/ecotrack/internal/savings"
)

// Summary aggregates a set of interpretations
type Summary struct {
	Entries     int                `json:"entries"`
	Understood  int                `json:"understood"`
	TotalKg     float64            `json:"total_co2_saved_kg"`
	BySource    map[string]int     `json:"by_source"`
	Equivalents *model.Equivalents `json:"equivalents,omitempty"`
}

// Summarize totals interpretations. Nil entries count as not understood.
func Summarize(items []*model.Interpretation) Summary {
	s := Summary{Entries: len(items), BySource: map[string]int{}}
	total := 0.0
	for _, it := range items {
		if it == nil {
			s.BySource[string(model.SourceNone)]++
			continue
		}
		s.BySource[string(it.Source)]++
		if it.Understood() {
			s.Understood++
			total += it.CO2SavedKg
		}
	}
	s.TotalKg = savings.Round(total)
	if s.TotalKg > 0 {
		eq := equivalents.Compute(s.TotalKg)
		s.Equivalents = &eq
	}
	return s
}

// Renderer writes interpretations as JSON or human-readable text
type Renderer struct {
	verbose bool
}

// NewRenderer creates a renderer; verbose adds the factor audit trail to text output
func NewRenderer(verbose bool) *Renderer {
	return &Renderer{verbose: verbose}
}

// JSON writes v as indented JSON
func (r *Renderer) JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// Text writes a short summary of one interpretation
func (r *Renderer) Text(w io.Writer, it *model.Interpretation) error {
	if !it.Understood() {
		_, err := fmt.Fprintf(w, "✗ %q: not recognized as a sustainable activity\n", it.Text)
		return err
	}

	if _, err := fmt.Fprintf(w, "✓ %s\n", it.Parsed.String()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "  CO2 saved: %.3f kg\n", it.CO2SavedKg); err != nil {
		return err
	}
	if it.Equivalents != nil && it.Equivalents.DisplayText != "" {
		if _, err := fmt.Fprintf(w, "  %s\n", it.Equivalents.DisplayText); err != nil {
			return err
		}
	}

	if r.verbose {
		conf := "n/a"
		if it.Meta.Confidence != nil {
			conf = fmt.Sprintf("%.2f", *it.Meta.Confidence)
		}
		if _, err := fmt.Fprintf(w, "  source=%s category=%s factor=%g (%s) confidence=%s\n",
			it.Source, it.Meta.Category, it.Meta.CO2Factor, it.Meta.Rule, conf); err != nil {
			return err
		}
	}
	return nil
}

// Totals writes the aggregate line for a batch
func (r *Renderer) Totals(w io.Writer, s Summary) error {
	if _, err := fmt.Fprintf(w, "\n%d/%d entries understood, %.3f kg CO2 saved in total\n",
		s.Understood, s.Entries, s.TotalKg); err != nil {
		return err
	}
	if s.Equivalents != nil && s.Equivalents.DisplayText != "" {
		if _, err := fmt.Fprintf(w, "%s\n", s.Equivalents.DisplayText); err != nil {
			return err
		}
	}
	return nil
}
