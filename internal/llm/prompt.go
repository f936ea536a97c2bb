package llm

import (
	"fmt"
	"strings"
)

// SystemPrompt is sent as the system instruction on providers that support one
const SystemPrompt = "You convert short descriptions of eco-friendly activities into structured JSON. Reply with JSON only."

// Vocabulary lists the actions, units and replaced alternatives the model may
// use for one category
type Vocabulary struct {
	Category  string
	Actions   []string
	Units     []string
	InsteadOf []string
}

// Vocabularies is the category list embedded in every extraction prompt
var Vocabularies = []Vocabulary{
	{
		Category:  "transportation",
		Actions:   []string{"walk", "cycle", "bus", "train", "carpool", "electric_vehicle", "scooter", "metro", "subway"},
		Units:     []string{"km", "miles", "trips"},
		InsteadOf: []string{"car", "taxi", "airplane", "motorcycle"},
	},
	{
		Category:  "energy",
		Actions:   []string{"led_bulb", "solar_panel", "energy_efficient_appliance", "unplug_devices", "air_dry_clothes"},
		Units:     []string{"hours", "watts", "kwh", "devices", "loads"},
		InsteadOf: []string{"incandescent", "fossil_fuel", "regular_appliance"},
	},
	{
		Category:  "food",
		Actions:   []string{"vegetarian_meal", "vegan_meal", "local_food", "organic_food", "reduce_food_waste", "plant_based"},
		Units:     []string{"meals", "kg", "portions", "days"},
		InsteadOf: []string{"beef", "chicken", "pork", "processed_food", "imported_food"},
	},
	{
		Category:  "waste",
		Actions:   []string{"recycle", "compost", "reuse", "avoid_plastic", "refill_bottle", "cloth_bag", "repair"},
		Units:     []string{"items", "kg", "bottles", "bags"},
		InsteadOf: []string{"throw_away", "single_use", "new_purchase"},
	},
	{
		Category:  "water",
		Actions:   []string{"shorter_shower", "fix_leak", "rain_water", "low_flow", "efficient_dishwasher"},
		Units:     []string{"minutes", "liters", "gallons", "loads"},
		InsteadOf: []string{"long_shower", "running_tap", "inefficient_appliance"},
	},
	{
		Category:  "other",
		Actions:   []string{"plant_tree", "green_space", "eco_product", "sustainable_fashion", "work_from_home"},
		Units:     []string{"trees", "hours", "items", "days"},
		InsteadOf: []string{"conventional_product", "commute", "fast_fashion"},
	},
}

const promptHeader = `You are an expert environmental activity parser. Analyze the activity description and return a JSON object with exactly this structure:
{
    "action": "specific_action_type",
    "category": "broad_category",
    "quantity": number,
    "unit": "measurement_unit",
    "instead_of": "alternative_activity_replaced",
    "subcategory": "specific_subcategory",
    "confidence": 0.0-1.0
}

Supported action types and their categories:
`

const promptGuidelines = `
Guidelines:
- Extract numerical quantities when mentioned (default to 1 if not specified)
- Infer reasonable units based on activity type
- Identify what conventional activity was replaced
- Set confidence based on clarity of the input
- Use descriptive subcategories for specific variants
`

// BuildPrompt renders the extraction prompt for one activity description
func BuildPrompt(text string) string {
	var b strings.Builder
	b.WriteString(promptHeader)

	for i, v := range Vocabularies {
		fmt.Fprintf(&b, "%d. %s:\n", i+1, strings.ToUpper(v.Category))
		fmt.Fprintf(&b, "   - %s\n", strings.Join(v.Actions, ", "))
		fmt.Fprintf(&b, "   - Units: %s\n", strings.Join(v.Units, ", "))
		fmt.Fprintf(&b, "   - instead_of: %s\n\n", strings.Join(v.InsteadOf, ", "))
	}

	b.WriteString(promptGuidelines)
	fmt.Fprintf(&b, "\nActivity to analyze: %q\n\n", strings.TrimSpace(text))
	b.WriteString("Return only valid JSON, no explanation:\n")

	return b.String()
}
