package factors

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/ecotrack/internal/model"
)

func TestResolve_Chain(t *testing.T) {
	table := NewTable()

	tests := []struct {
		name       string
		key        Key
		wantFactor float64
		wantRule   Rule
	}{
		{
			name:       "direct per-unit entry wins",
			key:        Key{Action: "plant_tree", Category: model.CategoryOther},
			wantFactor: 22.0,
			wantRule:   RuleDirect,
		},
		{
			name:       "composite versus entry",
			key:        Key{Action: "e_book", Category: model.CategoryOther, InsteadOf: "physical"},
			wantFactor: 7.5,
			wantRule:   RuleVersus,
		},
		{
			name:       "walk instead of car uses per-km difference",
			key:        Key{Action: "walk", Category: model.CategoryTransportation, InsteadOf: "car"},
			wantFactor: 0.12,
			wantRule:   RulePerKmDifference,
		},
		{
			name:       "bus instead of car",
			key:        Key{Action: "bus", Category: model.CategoryTransportation, InsteadOf: "car"},
			wantFactor: 0.12 - 0.089,
			wantRule:   RulePerKmDifference,
		},
		{
			name:       "cycle with no alternative falls back to car baseline",
			key:        Key{Action: "cycle", Category: model.CategoryTransportation},
			wantFactor: 0.12,
			wantRule:   RulePerKmCarBaseline,
		},
		{
			name:       "unknown alternative falls back to car baseline",
			key:        Key{Action: "train", Category: model.CategoryTransportation, InsteadOf: "horse"},
			wantFactor: 0.12,
			wantRule:   RulePerKmCarBaseline,
		},
		{
			name:       "alternative cleaner than action clamps to zero",
			key:        Key{Action: "taxi", Category: model.CategoryTransportation, InsteadOf: "train"},
			wantFactor: 0,
			wantRule:   RulePerKmDifference,
		},
		{
			name:       "zero-emission alternative clamps to zero",
			key:        Key{Action: "bus", Category: model.CategoryTransportation, InsteadOf: "walk"},
			wantFactor: 0,
			wantRule:   RulePerKmDifference,
		},
		{
			name:       "unknown transport mode falls to category default",
			key:        Key{Action: "subway", Category: model.CategoryTransportation, InsteadOf: "car"},
			wantFactor: 2.0,
			wantRule:   RuleCategoryDefault,
		},
		{
			name:       "vegetarian meal replacing beef",
			key:        Key{Action: "vegetarian_meal", Category: model.CategoryFood, InsteadOf: "beef"},
			wantFactor: 7.0,
			wantRule:   RuleMealSwap,
		},
		{
			name:       "meal swap without known protein defaults to chicken",
			key:        Key{Action: "vegan_meal", Category: model.CategoryFood, InsteadOf: "tofu"},
			wantFactor: 1.5,
			wantRule:   RuleMealSwap,
		},
		{
			name:       "organic food vs conventional",
			key:        Key{Action: "organic", Category: model.CategoryFood},
			wantFactor: 0.3,
			wantRule:   RuleFoodConventional,
		},
		{
			name:       "local food has no dedicated factor",
			key:        Key{Action: "local_food", Category: model.CategoryFood, InsteadOf: "imported"},
			wantFactor: 2.0,
			wantRule:   RuleCategoryDefault,
		},
		{
			name:       "reduced food waste uses food default",
			key:        Key{Action: "reduce_food_waste", Category: model.CategoryFood},
			wantFactor: 2.0,
			wantRule:   RuleCategoryDefault,
		},
		{
			name:       "recycle keyword",
			key:        Key{Action: "recycle", Category: model.CategoryWaste, InsteadOf: "throw_away"},
			wantFactor: 1.1,
			wantRule:   RuleKeyword,
		},
		{
			name:       "refill bottle keyword",
			key:        Key{Action: "refill_bottle", Category: model.CategoryWaste},
			wantFactor: 0.1,
			wantRule:   RuleKeyword,
		},
		{
			name:       "waste without keyword uses category default",
			key:        Key{Action: "compost", Category: model.CategoryWaste},
			wantFactor: 0.5,
			wantRule:   RuleCategoryDefault,
		},
		{
			name:       "led bulb keyword",
			key:        Key{Action: "led_bulb", Category: model.CategoryEnergy, InsteadOf: "incandescent"},
			wantFactor: 0.04,
			wantRule:   RuleKeyword,
		},
		{
			name:       "solar keyword",
			key:        Key{Action: "solar_panel", Category: model.CategoryEnergy},
			wantFactor: 0.82,
			wantRule:   RuleKeyword,
		},
		{
			name:       "air drying clothes uses energy default",
			key:        Key{Action: "air_dry_clothes", Category: model.CategoryEnergy},
			wantFactor: 1.0,
			wantRule:   RuleCategoryDefault,
		},
		{
			name:       "efficient appliance uses energy default",
			key:        Key{Action: "energy_efficient_appliance", Category: model.CategoryEnergy},
			wantFactor: 1.0,
			wantRule:   RuleCategoryDefault,
		},
		{
			name:       "shower keyword",
			key:        Key{Action: "shorter_shower", Category: model.CategoryWater},
			wantFactor: 0.17,
			wantRule:   RuleKeyword,
		},
		{
			name:       "generic water heating",
			key:        Key{Action: "fix_leak", Category: model.CategoryWater},
			wantFactor: 0.0036,
			wantRule:   RuleKeyword,
		},
		{
			name:       "digital detox",
			key:        Key{Action: "digital_detox", Category: model.CategoryDigital},
			wantFactor: 0.0088,
			wantRule:   RuleKeyword,
		},
		{
			name:       "digital without keyword defaults to detox factor",
			key:        Key{Action: "digital_minimalism", Category: model.CategoryDigital},
			wantFactor: 0.0088,
			wantRule:   RuleKeyword,
		},
		{
			name:       "other category default",
			key:        Key{Action: "eco_product", Category: model.CategoryOther},
			wantFactor: 1.0,
			wantRule:   RuleCategoryDefault,
		},
		{
			name:       "normalizes spacing and case",
			key:        Key{Action: " LED Bulb ", Category: "Energy"},
			wantFactor: 0.04,
			wantRule:   RuleKeyword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := table.Resolve(tt.key)
			assert.InDelta(t, tt.wantFactor, got.Factor, 1e-9)
			assert.Equal(t, tt.wantRule, got.Rule)
			assert.NotEmpty(t, got.Name)
		})
	}
}

func TestResolve_UnrecognizedCategoryUsesGlobalDefault(t *testing.T) {
	table := NewTable()

	for _, action := range []string{"walk", "plant_tree", "recycle", "anything"} {
		got := table.Resolve(Key{Action: action, Category: "spaceflight", InsteadOf: "car"})
		assert.Equal(t, GlobalDefault, got.Factor, "action %q", action)
		assert.Equal(t, RuleGlobalDefault, got.Rule)
	}
}

func TestResolve_NeverNegative(t *testing.T) {
	table := NewTable()
	modes := []string{"car", "taxi", "motorcycle", "bus", "train", "metro", "airplane", "walk", "cycle", "electric_vehicle", "scooter", "carpool"}

	for _, action := range modes {
		for _, alt := range modes {
			f := table.Factor(Key{Action: action, Category: model.CategoryTransportation, InsteadOf: alt})
			assert.GreaterOrEqual(t, f, 0.0, "%s instead of %s", action, alt)
		}
	}
}

func TestResolve_ConcurrentReads(t *testing.T) {
	table := Default()
	key := Key{Action: "walk", Category: model.CategoryTransportation, InsteadOf: "car"}
	want := table.Factor(key)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, table.Factor(key))
		}()
	}
	wg.Wait()
}

func TestKeyFor(t *testing.T) {
	assert.Equal(t, Key{}, KeyFor(nil))

	a := &model.ParsedActivity{Action: "walk", Category: model.CategoryTransportation, Quantity: 1, Unit: "km", InsteadOf: model.StringPtr("car")}
	assert.Equal(t, Key{Action: "walk", Category: model.CategoryTransportation, InsteadOf: "car"}, KeyFor(a))
}

func TestEntries(t *testing.T) {
	entries := NewTable().Entries()
	require.NotEmpty(t, entries)

	names := make(map[string]float64)
	for _, e := range entries {
		names[e.Name] = e.Factor
		assert.GreaterOrEqual(t, e.Factor, 0.0)
	}
	assert.Equal(t, 0.12, names["car_kg_per_km"])
	assert.Equal(t, 1.1, names["recycle_vs_trash_per_kg"])
	assert.Equal(t, GlobalDefault, names["global"])

	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		assert.True(t, prev.Group < cur.Group || (prev.Group == cur.Group && prev.Name <= cur.Name), "entries not sorted at %d", i)
	}
}
