package savings

import (
	"math"

	"github.com/ppiankov/ecotrack/internal/factors"
	"github.com/ppiankov/ecotrack/internal/model"
)

// Precision is the number of decimal places savings are rounded to
const Precision = 3

// Calculator converts a parsed activity into kg of CO2 saved
type Calculator struct {
	table *factors.Table
}

// NewCalculator creates a calculator over table; nil uses the default table
func NewCalculator(table *factors.Table) *Calculator {
	if table == nil {
		table = factors.Default()
	}
	return &Calculator{table: table}
}

// Compute returns the rounded saving and the metadata that produced it.
// A nil activity yields zero with empty metadata.
func (c *Calculator) Compute(a *model.ParsedActivity) model.SavingsResult {
	if a == nil {
		return model.SavingsResult{}
	}

	res := c.table.Resolve(factors.KeyFor(a))

	meta := model.Metadata{
		Category:  a.Subcategory,
		Quantity:  a.Quantity,
		Unit:      a.Unit,
		Action:    a.Action,
		CO2Factor: res.Factor,
		Rule:      string(res.Rule),
	}
	if meta.Category == "" {
		meta.Category = string(a.Category) + "_" + a.Action
	}
	if a.InsteadOf != nil {
		meta.InsteadOf = model.StringPtr(*a.InsteadOf)
	}
	if a.Confidence != nil {
		meta.Confidence = model.FloatPtr(*a.Confidence)
	}

	return model.SavingsResult{
		CO2SavedKg: Round(res.Factor * a.Quantity),
		Meta:       meta,
	}
}

// Round rounds v half away from zero to Precision decimal places
func Round(v float64) float64 {
	scale := math.Pow(10, Precision)
	return math.Round(v*scale) / scale
}
