package model

// Metadata echoes the inputs of a savings calculation for auditability
type Metadata struct {
	Category   string   `json:"category"`             // Subcategory, or "<category>_<action>"
	Quantity   float64  `json:"quantity"`             // Quantity the factor was multiplied by
	Unit       string   `json:"unit"`                 // Unit of the quantity
	Action     string   `json:"action"`               // Parsed action
	InsteadOf  *string  `json:"instead_of"`           // Replaced alternative (null when absent)
	CO2Factor  float64  `json:"co2_factor"`           // kg CO2 per unit used
	Rule       string   `json:"factor_rule,omitempty"` // Which resolution step produced the factor
	Confidence *float64 `json:"confidence,omitempty"` // Present when the parse carried one
}

// IsEmpty reports whether m is the zero metadata of the "nothing to save" path
func (m Metadata) IsEmpty() bool {
	return m.Category == "" && m.Action == "" && m.Unit == "" && m.Quantity == 0 && m.CO2Factor == 0
}

// SavingsResult is the output of the savings calculator
type SavingsResult struct {
	CO2SavedKg float64  `json:"co2_saved_kg"` // Rounded to 3 decimal places
	Meta       Metadata `json:"meta"`
}

// Source identifies which path produced an interpretation
type Source string

const (
	SourceRemote Source = "remote" // Remote generative model
	SourceRules  Source = "rules"  // Rule-based extractor
	SourceCache  Source = "cache"  // Memoized remote result
	SourceNone   Source = "none"   // Nothing understood the input
)

// Interpretation is the complete outcome for one free-text entry
type Interpretation struct {
	Text        string          `json:"text"`
	CO2SavedKg  float64         `json:"co2_saved_kg"`
	Meta        Metadata        `json:"meta"`
	Parsed      *ParsedActivity `json:"parsed"`
	Source      Source          `json:"source"`
	Equivalents *Equivalents    `json:"equivalents,omitempty"`
}

// Understood reports whether the entry produced a structured activity
func (i *Interpretation) Understood() bool {
	return i != nil && i.Parsed != nil
}

// Equivalents expresses a CO2 mass in relatable everyday terms
type Equivalents struct {
	PhoneCharges   int     `json:"phone_charges"`
	LightbulbHours int     `json:"lightbulb_hours"`
	TreeYears      float64 `json:"trees_year"`
	MilesNotDriven float64 `json:"miles_not_driven"`
	DisplayText    string  `json:"display_text,omitempty"`
}
