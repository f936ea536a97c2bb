package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Category is the broad bucket an activity belongs to
type Category string

const (
	CategoryTransportation Category = "transportation"
	CategoryEnergy         Category = "energy"
	CategoryFood           Category = "food"
	CategoryWaste          Category = "waste"
	CategoryWater          Category = "water"
	CategoryDigital        Category = "digital"
	CategoryOther          Category = "other"
)

// Categories lists every supported category in display order
func Categories() []Category {
	return []Category{
		CategoryTransportation,
		CategoryEnergy,
		CategoryFood,
		CategoryWaste,
		CategoryWater,
		CategoryDigital,
		CategoryOther,
	}
}

// Valid reports whether c is one of the supported categories
func (c Category) Valid() bool {
	for _, known := range Categories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParsedActivity is the structured form of a single free-text activity entry.
// A non-nil value always carries Action, Category, Quantity and Unit.
type ParsedActivity struct {
	Action      string   `json:"action"`                // e.g. "walk", "recycle", "digital_detox"
	Category    Category `json:"category"`              // transportation, energy, food, ...
	Quantity    float64  `json:"quantity"`              // Non-negative, defaults to 1.0
	Unit        string   `json:"unit"`                  // Advisory only (km, hours, meals, items)
	InsteadOf   *string  `json:"instead_of,omitempty"`  // Conventional alternative replaced (nil if unknown)
	Subcategory string   `json:"subcategory,omitempty"` // Display/reporting refinement
	Confidence  *float64 `json:"confidence,omitempty"`  // Extraction certainty in [0,1]
}

// Validation errors for ParsedActivity
var (
	ErrMissingAction   = errors.New("activity action is empty")
	ErrMissingCategory = errors.New("activity category is empty")
	ErrMissingUnit     = errors.New("activity unit is empty")
	ErrBadQuantity     = errors.New("activity quantity must be a finite non-negative number")
	ErrBadConfidence   = errors.New("activity confidence must be within [0,1]")
)

// Validate checks the invariant every non-nil ParsedActivity must satisfy
func (a *ParsedActivity) Validate() error {
	if a == nil {
		return errors.New("activity is nil")
	}
	if strings.TrimSpace(a.Action) == "" {
		return ErrMissingAction
	}
	if strings.TrimSpace(string(a.Category)) == "" {
		return ErrMissingCategory
	}
	if strings.TrimSpace(a.Unit) == "" {
		return ErrMissingUnit
	}
	if math.IsNaN(a.Quantity) || math.IsInf(a.Quantity, 0) || a.Quantity < 0 {
		return fmt.Errorf("%w: %v", ErrBadQuantity, a.Quantity)
	}
	if a.Confidence != nil && (*a.Confidence < 0 || *a.Confidence > 1) {
		return fmt.Errorf("%w: %v", ErrBadConfidence, *a.Confidence)
	}
	return nil
}

// InsteadOfValue returns the replaced alternative or "" when absent
func (a *ParsedActivity) InsteadOfValue() string {
	if a == nil || a.InsteadOf == nil {
		return ""
	}
	return *a.InsteadOf
}

// String renders a compact one-line description for logs and text output
func (a *ParsedActivity) String() string {
	if a == nil {
		return "<unparsed>"
	}
	s := fmt.Sprintf("%s/%s %g %s", a.Category, a.Action, a.Quantity, a.Unit)
	if alt := a.InsteadOfValue(); alt != "" {
		s += " instead of " + alt
	}
	return s
}

// StringPtr returns a pointer to s
func StringPtr(s string) *string {
	return &s
}

// FloatPtr returns a pointer to f
func FloatPtr(f float64) *float64 {
	return &f
}
