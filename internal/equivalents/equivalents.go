// Package equivalents expresses a CO2 saving in everyday terms: phone
// charges, lightbulb hours, tree-years of absorption and car miles avoided.
package equivalents

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ppiankov/ecotrack/internal/model"
)

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

const (
	// ErrNegativeValue indicates a negative CO2 mass
	ErrNegativeValue = constError("negative CO2 value")

	// ErrCalculationOverflow indicates a NaN or infinite input or result
	ErrCalculationOverflow = constError("calculation overflow")
)

// Conversion factors. Multipliers are per kg CO2; divisors are kg CO2 per unit.
const (
	// PhoneChargesPerKg is smartphone full charges per kg CO2
	PhoneChargesPerKg = 50.0

	// LightbulbHoursPerKg is hours of a 60W incandescent bulb per kg CO2
	LightbulbHoursPerKg = 10.0

	// TreeKgPerYear is kg CO2 one mature tree absorbs in a year
	TreeKgPerYear = 21.0

	// MilesDrivenFactor is kg CO2e per mile for an average passenger vehicle (EPA, 2024)
	MilesDrivenFactor = 0.192
)

var printer = message.NewPrinter(language.English)

// Calculate converts kg of CO2 saved into equivalents. Zero yields zero
// equivalents and no display text.
func Calculate(kg float64) (model.Equivalents, error) {
	if math.IsNaN(kg) || math.IsInf(kg, 0) {
		return model.Equivalents{}, ErrCalculationOverflow
	}
	if kg < 0 {
		return model.Equivalents{}, ErrNegativeValue
	}
	if kg == 0 {
		return model.Equivalents{}, nil
	}

	phones := kg * PhoneChargesPerKg
	bulbs := kg * LightbulbHoursPerKg
	if phones > math.MaxInt32 || bulbs > math.MaxInt32 {
		return model.Equivalents{}, ErrCalculationOverflow
	}

	eq := model.Equivalents{
		PhoneCharges:   int(phones),
		LightbulbHours: int(bulbs),
		TreeYears:      round3(kg / TreeKgPerYear),
		MilesNotDriven: round3(kg / MilesDrivenFactor),
	}
	eq.DisplayText = DisplayText(eq)
	return eq, nil
}

// Compute is Calculate for callers that treat bad input as "nothing saved"
func Compute(kg float64) model.Equivalents {
	eq, err := Calculate(kg)
	if err != nil {
		return model.Equivalents{}
	}
	return eq
}

// DisplayText renders equivalents as one sentence, or "" when all are zero
func DisplayText(eq model.Equivalents) string {
	if eq.PhoneCharges == 0 && eq.LightbulbHours == 0 && eq.TreeYears == 0 && eq.MilesNotDriven == 0 {
		return ""
	}
	return printer.Sprintf("Equivalent to charging ~%d smartphones, lighting a bulb for ~%d hours, ~%.1f miles not driven, or %.3f tree-years of absorption",
		eq.PhoneCharges, eq.LightbulbHours, eq.MilesNotDriven, eq.TreeYears)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
