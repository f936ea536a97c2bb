package savings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/ecotrack/internal/factors"
	"github.com/ppiankov/ecotrack/internal/model"
)

func TestCompute_Nil(t *testing.T) {
	got := NewCalculator(nil).Compute(nil)
	assert.Equal(t, 0.0, got.CO2SavedKg)
	assert.True(t, got.Meta.IsEmpty())
	assert.Equal(t, model.SavingsResult{}, got)
}

func TestCompute(t *testing.T) {
	calc := NewCalculator(factors.NewTable())

	tests := []struct {
		name       string
		activity   *model.ParsedActivity
		wantKg     float64
		wantFactor float64
		wantCat    string
	}{
		{
			name:       "walk instead of car",
			activity:   &model.ParsedActivity{Action: "walk", Category: model.CategoryTransportation, Quantity: 2, Unit: "km", InsteadOf: model.StringPtr("car"), Confidence: model.FloatPtr(0.8)},
			wantKg:     0.24,
			wantFactor: 0.12,
			wantCat:    "transportation_walk",
		},
		{
			name:       "bus instead of car",
			activity:   &model.ParsedActivity{Action: "bus", Category: model.CategoryTransportation, Quantity: 10, Unit: "km", InsteadOf: model.StringPtr("car")},
			wantKg:     0.31,
			wantFactor: 0.12 - 0.089,
			wantCat:    "transportation_bus",
		},
		{
			name:       "digital detox rounds to three places",
			activity:   &model.ParsedActivity{Action: "digital_detox", Category: model.CategoryDigital, Quantity: 24, Unit: "hours", Subcategory: "digital_detox"},
			wantKg:     0.211,
			wantFactor: 0.0088,
			wantCat:    "digital_detox",
		},
		{
			name:       "recycling",
			activity:   &model.ParsedActivity{Action: "recycle", Category: model.CategoryWaste, Quantity: 3, Unit: "items", Subcategory: "waste_recycle"},
			wantKg:     3.3,
			wantFactor: 1.1,
			wantCat:    "waste_recycle",
		},
		{
			name:       "unknown category uses global default",
			activity:   &model.ParsedActivity{Action: "stargaze", Category: "astronomy", Quantity: 2.5, Unit: "hours"},
			wantKg:     2.5,
			wantFactor: factors.GlobalDefault,
			wantCat:    "astronomy_stargaze",
		},
		{
			name:       "zero quantity is a computed zero",
			activity:   &model.ParsedActivity{Action: "plant_tree", Category: model.CategoryOther, Quantity: 0, Unit: "trees"},
			wantKg:     0,
			wantFactor: 22,
			wantCat:    "other_plant_tree",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calc.Compute(tt.activity)
			assert.InDelta(t, tt.wantKg, got.CO2SavedKg, 1e-9)
			assert.InDelta(t, tt.wantFactor, got.Meta.CO2Factor, 1e-9)
			assert.Equal(t, tt.wantCat, got.Meta.Category)
			assert.Equal(t, tt.activity.Action, got.Meta.Action)
			assert.Equal(t, tt.activity.Quantity, got.Meta.Quantity)
			assert.Equal(t, tt.activity.Unit, got.Meta.Unit)
			assert.Equal(t, tt.activity.InsteadOf, got.Meta.InsteadOf)
			assert.Equal(t, tt.activity.Confidence, got.Meta.Confidence)
			assert.NotEmpty(t, got.Meta.Rule)
			assert.False(t, got.Meta.IsEmpty())
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	calc := NewCalculator(nil)
	a := &model.ParsedActivity{Action: "vegetarian_meal", Category: model.CategoryFood, Quantity: 3, Unit: "meals", InsteadOf: model.StringPtr("beef")}

	first := calc.Compute(a)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, calc.Compute(a))
	}
	assert.Equal(t, 21.0, first.CO2SavedKg)
}

func TestCompute_MetadataDoesNotAliasInput(t *testing.T) {
	a := &model.ParsedActivity{Action: "walk", Category: model.CategoryTransportation, Quantity: 1, Unit: "km", InsteadOf: model.StringPtr("car")}
	got := NewCalculator(nil).Compute(a)

	*a.InsteadOf = "bus"
	assert.Equal(t, "car", *got.Meta.InsteadOf)
}

func TestRound(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.2112, 0.211},
		{0.1236, 0.124},
		{-0.1236, -0.124},
		{1.0004, 1.0},
		{3.3000000000000003, 3.3},
		{0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round(tt.in), "Round(%v)", tt.in)
	}
}
