// Package factors holds the CO2 conversion factors and resolves an activity
// (action, category, instead_of) to a kg-CO2-per-unit factor.
//
// All factors are in kg CO2 saved per unit of the activity. The table is built
// once and never mutated, so a single *Table can be shared by any number of
// goroutines without locking.
package factors

import (
	"sort"

	"github.com/ppiankov/ecotrack/internal/model"
)

// GlobalDefault is returned when the category itself is not recognized
const GlobalDefault = 1.0

// Pair keys a composite "action vs instead_of" factor
type Pair struct {
	Action    string
	InsteadOf string
}

// keywordRoute maps substrings of an action to a named factor
type keywordRoute struct {
	keywords []string
	name     string
	factor   float64
}

// named is a factor with its display name
type named struct {
	name   string
	factor float64
}

// Table is the immutable factor table
type Table struct {
	perUnit        map[string]float64        // action -> kg per unit
	versus         map[Pair]float64          // (action, instead_of) -> kg per unit
	perKm          map[string]float64        // transport mode -> kg emitted per km
	perTrip        map[string]float64        // transport mode -> kg saved per trip vs car
	mealToVeg      map[string]float64        // replaced protein -> kg saved per meal
	vsConventional map[string]float64        // food action -> kg saved per kg vs conventional
	routes         map[model.Category][]keywordRoute
	fallback       map[model.Category]named // used when no keyword route matches
	categories     map[model.Category]float64

	carPerKm    named
	mealDefault named
}

// Entry is one row of the factor table
type Entry struct {
	Name   string  `json:"name" yaml:"name"`
	Group  string  `json:"group" yaml:"group"`
	Factor float64 `json:"factor" yaml:"factor"`
}

var defaultTable = NewTable()

// Default returns the process-wide factor table
func Default() *Table {
	return defaultTable
}

// NewTable builds the factor table
func NewTable() *Table {
	t := &Table{
		perUnit: map[string]float64{
			"plant_tree":     22.0, // CO2 absorbed over a tree's lifetime
			"work_from_home": 4.6,  // commute avoided per day
		},
		versus: map[Pair]float64{
			{Action: "reuse_item", InsteadOf: "new"}:                   2.0,
			{Action: "vegan_meal", InsteadOf: "omnivore"}:              2.5,
			{Action: "cloth_bag", InsteadOf: "plastic"}:                0.006,
			{Action: "green_product", InsteadOf: "conventional"}:       1.5,
			{Action: "sustainable_fashion", InsteadOf: "fast"}:         15.0,
			{Action: "sustainable_fashion", InsteadOf: "fast_fashion"}: 15.0,
			{Action: "digital_receipt", InsteadOf: "paper"}:            0.003,
			{Action: "e_book", InsteadOf: "physical"}:                  7.5,
		},
		perKm: map[string]float64{
			"car":              0.12,
			"taxi":             0.15,
			"motorcycle":       0.08,
			"bus":              0.089,
			"train":            0.041,
			"metro":            0.028,
			"airplane":         0.255, // domestic flights
			"walk":             0.0,
			"cycle":            0.0,
			"electric_vehicle": 0.045,
			"scooter":          0.015,
			"carpool":          0.06, // car emissions divided by average passengers
		},
		perTrip: map[string]float64{
			"walk":  2.4, // average 2 km car trip
			"cycle": 3.6, // average 3 km car trip
			"bus":   1.8,
			"train": 6.0,
		},
		mealToVeg: map[string]float64{
			"beef":    7.0,
			"chicken": 1.5,
			"pork":    3.5,
		},
		vsConventional: map[string]float64{
			"organic":      0.3,
			"organic_food": 0.3,
		},
		routes: map[model.Category][]keywordRoute{
			model.CategoryWaste: {
				{keywords: []string{"recycle"}, name: "recycle_vs_trash_per_kg", factor: 1.1},
				{keywords: []string{"reuse"}, name: "reuse_item_vs_new", factor: 2.0},
				{keywords: []string{"bottle"}, name: "plastic_bottle_kg", factor: 0.1},
			},
			model.CategoryEnergy: {
				{keywords: []string{"led", "bulb"}, name: "led_bulb_vs_incandescent_per_hour", factor: 0.04},
				{keywords: []string{"unplug"}, name: "unplug_device_per_hour", factor: 0.02},
				{keywords: []string{"solar"}, name: "solar_panel_per_kwh", factor: 0.82},
			},
			model.CategoryWater: {
				{keywords: []string{"shower"}, name: "shorter_shower_per_minute_saved", factor: 0.17},
			},
			model.CategoryDigital: {
				{keywords: []string{"detox", "did not use", "avoid"}, name: "digital_detox_per_hour", factor: 0.0088},
				{keywords: []string{"reduce", "less"}, name: "reduce_screen_time_per_hour", factor: 0.0088},
				{keywords: []string{"smartphone", "phone"}, name: "smartphone_usage_per_hour", factor: 0.0088},
			},
		},
		fallback: map[model.Category]named{
			model.CategoryWater:   {name: "water_heating_per_liter", factor: 0.0036},
			model.CategoryDigital: {name: "digital_detox_per_hour", factor: 0.0088},
		},
		categories: map[model.Category]float64{
			model.CategoryTransportation: 2.0, // default trip savings
			model.CategoryEnergy:         1.0,
			model.CategoryFood:           2.0, // default meal savings
			model.CategoryWaste:          0.5,
			model.CategoryWater:          0.2,
			model.CategoryDigital:        0.2,
			model.CategoryOther:          1.0,
		},
		carPerKm:    named{name: "car_kg_per_km", factor: 0.12},
		mealDefault: named{name: "meal_chicken_to_veg_kg", factor: 1.5},
	}
	return t
}

// Entries lists every factor in the table, sorted by group then name
func (t *Table) Entries() []Entry {
	var entries []Entry
	add := func(group, name string, factor float64) {
		entries = append(entries, Entry{Name: name, Group: group, Factor: factor})
	}

	for action, f := range t.perUnit {
		add("per_unit", action+"_kg_per_unit", f)
	}
	for p, f := range t.versus {
		add("versus", p.Action+"_vs_"+p.InsteadOf, f)
	}
	for mode, f := range t.perKm {
		add("transportation", mode+"_kg_per_km", f)
	}
	for mode, f := range t.perTrip {
		add("transportation", mode+"_trip_vs_car", f)
	}
	for protein, f := range t.mealToVeg {
		add("food", "meal_"+protein+"_to_veg_kg", f)
	}
	for action, f := range t.vsConventional {
		add("food", action+"_vs_conventional_kg", f)
	}
	seen := make(map[string]bool)
	for category, routes := range t.routes {
		for _, r := range routes {
			if !seen[r.name] {
				seen[r.name] = true
				add(string(category), r.name, r.factor)
			}
		}
	}
	for category, fb := range t.fallback {
		if !seen[fb.name] {
			seen[fb.name] = true
			add(string(category), fb.name, fb.factor)
		}
	}
	for category, f := range t.categories {
		add("category_default", string(category), f)
	}
	add("global_default", "global", GlobalDefault)

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Group != entries[j].Group {
			return entries[i].Group < entries[j].Group
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// CategoryDefault returns the default factor for a category, or GlobalDefault
func (t *Table) CategoryDefault(c model.Category) float64 {
	if f, ok := t.categories[c]; ok {
		return f
	}
	return GlobalDefault
}
