package factors

import (
	"strings"

	"github.com/ppiankov/ecotrack/internal/model"
)

// Key identifies the activity whose factor is being resolved
type Key struct {
	Action    string
	Category  model.Category
	InsteadOf string // empty when no alternative is known
}

// KeyFor builds a Key from a parsed activity
func KeyFor(a *model.ParsedActivity) Key {
	if a == nil {
		return Key{}
	}
	return Key{
		Action:    a.Action,
		Category:  a.Category,
		InsteadOf: a.InsteadOfValue(),
	}
}

// Rule names the step of the fallback chain that produced a factor
type Rule string

const (
	RuleDirect           Rule = "direct"             // per-unit entry for the action
	RuleVersus           Rule = "versus"             // composite action vs instead_of entry
	RulePerKmDifference  Rule = "per_km_difference"  // instead_of per-km minus action per-km
	RulePerKmCarBaseline Rule = "per_km_car_default" // action has a per-km entry, no usable alternative
	RulePerTrip          Rule = "per_trip_vs_car"    // flat per-trip saving
	RuleMealSwap         Rule = "meal_to_veg"        // meal-type swap
	RuleFoodConventional Rule = "vs_conventional"    // food per kg vs conventional
	RuleKeyword          Rule = "keyword"            // substring route within a category
	RuleCategoryDefault  Rule = "category_default"
	RuleGlobalDefault    Rule = "global_default"
)

// Resolution is a resolved factor with its provenance
type Resolution struct {
	Factor float64 `json:"factor"`
	Rule   Rule    `json:"rule"`
	Name   string  `json:"name"`
}

// Factor is shorthand for Resolve(k).Factor
func (t *Table) Factor(k Key) float64 {
	return t.Resolve(k).Factor
}

// Resolve walks the fallback chain in priority order; the first match wins.
// It never fails: the worst case is the category default or GlobalDefault.
func (t *Table) Resolve(k Key) Resolution {
	action := normalize(k.Action)
	alt := normalize(k.InsteadOf)
	category := model.Category(strings.ToLower(strings.TrimSpace(string(k.Category))))

	if !category.Valid() {
		return Resolution{Factor: GlobalDefault, Rule: RuleGlobalDefault, Name: "global"}
	}

	// 1. Direct per-unit entry
	if f, ok := t.perUnit[action]; ok {
		return Resolution{Factor: f, Rule: RuleDirect, Name: action + "_kg_per_unit"}
	}

	// 2. Composite action vs instead_of
	if alt != "" {
		if f, ok := t.versus[Pair{Action: action, InsteadOf: alt}]; ok {
			return Resolution{Factor: f, Rule: RuleVersus, Name: action + "_vs_" + alt}
		}
	}

	switch category {
	case model.CategoryTransportation:
		if r, ok := t.resolveTransport(action, alt); ok {
			return r
		}

	case model.CategoryFood:
		if r, ok := t.resolveFood(action, alt); ok {
			return r
		}

	case model.CategoryWaste, model.CategoryEnergy, model.CategoryWater, model.CategoryDigital:
		phrase := strings.ReplaceAll(action, "_", " ")
		for _, route := range t.routes[category] {
			if containsAny(phrase, route.keywords) {
				return Resolution{Factor: route.factor, Rule: RuleKeyword, Name: route.name}
			}
		}
		if fb, ok := t.fallback[category]; ok {
			return Resolution{Factor: fb.factor, Rule: RuleKeyword, Name: fb.name}
		}
	}

	return Resolution{Factor: t.CategoryDefault(category), Rule: RuleCategoryDefault, Name: string(category)}
}

// resolveTransport handles steps 3 and 4 of the chain.
// A negative difference (the action emits more per km than the alternative,
// including zero-emission alternatives) is clamped to zero.
func (t *Table) resolveTransport(action, alt string) (Resolution, bool) {
	if own, ok := t.perKm[action]; ok {
		if alt != "" {
			if other, ok := t.perKm[alt]; ok {
				diff := other - own
				if diff < 0 {
					diff = 0
				}
				return Resolution{Factor: diff, Rule: RulePerKmDifference, Name: alt + "_kg_per_km-" + action + "_kg_per_km"}, true
			}
		}
		return Resolution{Factor: t.carPerKm.factor, Rule: RulePerKmCarBaseline, Name: t.carPerKm.name}, true
	}

	if f, ok := t.perTrip[action]; ok {
		return Resolution{Factor: f, Rule: RulePerTrip, Name: action + "_trip_vs_car"}, true
	}

	return Resolution{}, false
}

// resolveFood handles step 5 of the chain
func (t *Table) resolveFood(action, alt string) (Resolution, bool) {
	if containsAny(action, []string{"meal", "vegetarian", "vegan"}) {
		if f, ok := t.mealToVeg[alt]; ok {
			return Resolution{Factor: f, Rule: RuleMealSwap, Name: "meal_" + alt + "_to_veg_kg"}, true
		}
		return Resolution{Factor: t.mealDefault.factor, Rule: RuleMealSwap, Name: t.mealDefault.name}, true
	}

	if f, ok := t.vsConventional[action]; ok {
		return Resolution{Factor: f, Rule: RuleFoodConventional, Name: action + "_vs_conventional_kg"}, true
	}

	return Resolution{}, false
}

// normalize lower-cases and snake-cases an identifier ("LED bulb" -> "led_bulb")
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "_")
	return strings.ReplaceAll(s, "-", "_")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
