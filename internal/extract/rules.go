package extract

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/ecotrack/internal/model"
)

// Confidence values assigned by the rule-based extractor
const (
	ConfidencePriority = 0.9 // explicit "did not use my phone" phrasing
	ConfidenceRule     = 0.8 // any other matched rule
)

// DefaultDetoxHours is assumed when a detox entry carries no duration
const DefaultDetoxHours = 24.0

// ActionRule describes the trigger phrases and defaults for one action
type ActionRule struct {
	Action           string   `yaml:"action"`
	Patterns         []string `yaml:"patterns"`
	DefaultUnit      string   `yaml:"default_unit"`
	DefaultInsteadOf string   `yaml:"default_instead_of"`
}

// RuleGroup is an ordered set of action rules sharing a category
type RuleGroup struct {
	Category model.Category `yaml:"category"`
	Actions  []ActionRule   `yaml:"actions"`
}

// DefaultRuleGroups returns the built-in rules in matching order
func DefaultRuleGroups() []RuleGroup {
	return []RuleGroup{
		{Category: model.CategoryTransportation, Actions: []ActionRule{
			{Action: "walk", Patterns: []string{"walk", "walked", "walking", "on foot"}, DefaultUnit: "km", DefaultInsteadOf: "car"},
			{Action: "cycle", Patterns: []string{"cycle", "cycled", "bike", "bicycle", "cycling"}, DefaultUnit: "km", DefaultInsteadOf: "car"},
			{Action: "bus", Patterns: []string{"bus", "public transport", "transit"}, DefaultUnit: "km", DefaultInsteadOf: "car"},
			{Action: "train", Patterns: []string{"train", "railway", "rail"}, DefaultUnit: "km", DefaultInsteadOf: "car"},
			{Action: "carpool", Patterns: []string{"carpool", "rideshare", "shared ride"}, DefaultUnit: "trips", DefaultInsteadOf: "car"},
		}},
		{Category: model.CategoryEnergy, Actions: []ActionRule{
			{Action: "led_bulb", Patterns: []string{"led", "led bulb", "energy efficient bulb"}, DefaultUnit: "bulbs", DefaultInsteadOf: "incandescent"},
			{Action: "unplug_devices", Patterns: []string{"unplug", "unplugged", "turn off", "turned off", "switched off"}, DefaultUnit: "devices", DefaultInsteadOf: "standby"},
		}},
		{Category: model.CategoryFood, Actions: []ActionRule{
			{Action: "vegetarian_meal", Patterns: []string{"vegetarian", "veggie", "plant-based", "plant based", "vegan", "meatless"}, DefaultUnit: "meals", DefaultInsteadOf: "beef"},
			{Action: "local_food", Patterns: []string{"local food", "locally grown", "farmers market"}, DefaultUnit: "meals", DefaultInsteadOf: "imported"},
		}},
		{Category: model.CategoryWaste, Actions: []ActionRule{
			{Action: "recycle", Patterns: []string{"recycle", "recycled", "recycling"}, DefaultUnit: "items", DefaultInsteadOf: "throw_away"},
			{Action: "reuse", Patterns: []string{"reuse", "reused", "repurpose"}, DefaultUnit: "items", DefaultInsteadOf: "new_purchase"},
			{Action: "avoid_plastic", Patterns: []string{"avoid plastic", "no plastic", "reusable bag", "cloth bag"}, DefaultUnit: "items", DefaultInsteadOf: "plastic_bag"},
		}},
		{Category: model.CategoryDigital, Actions: []ActionRule{
			{Action: "digital_detox", Patterns: []string{"did not use", "avoided using", "digital detox", "phone free", "screen free", "no phone", "no smartphone", "smartphone free", "did not used"}, DefaultUnit: "hours", DefaultInsteadOf: "normal_usage"},
			{Action: "reduce_screen_time", Patterns: []string{"reduced screen time", "less screen time", "limit screen time", "screen time reduction"}, DefaultUnit: "hours", DefaultInsteadOf: "normal_usage"},
			{Action: "digital_minimalism", Patterns: []string{"digital minimalism", "minimalist tech", "simple phone", "basic phone"}, DefaultUnit: "days", DefaultInsteadOf: "smartphone"},
		}},
	}
}

var (
	numberPattern  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	hoursPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:hours?|hrs?)\b`)
	minutesPattern = regexp.MustCompile(`\b(?:minutes?|mins?)\b|\d\s*(?:minutes?|mins?)\b`)
	daysPattern    = regexp.MustCompile(`\bdays?\b|\d\s*days?\b`)
	tripsPattern   = regexp.MustCompile(`\btrips?\b|\d+\s*times?\b`)
	insteadPattern = regexp.MustCompile(`instead of\s+((?:[a-z']+\s+){0,2}[a-z']+)`)
)

// Phrasing that gets special treatment before the rule groups run
var (
	detoxVerbs   = []string{"did not use", "didnt use", "didn't use", "avoided using"}
	detoxDevices = []string{"phone", "smartphone"}
	wellness     = []string{"digital detox", "screen free", "screen-free", "phone free", "phone-free"}
	recycling    = []string{"recycle", "recycling"}
)

// alternatives maps words used after "instead of" (or mentioned bare) to the
// canonical alternative names the factor table understands
var alternatives = map[string]string{
	"car": "car", "cars": "car", "drive": "car", "driving": "car", "drove": "car", "driven": "car",
	"bus": "bus", "buses": "bus",
	"taxi": "taxi", "cab": "taxi", "uber": "taxi",
	"train": "train",
	"plane": "airplane", "flight": "airplane", "flying": "airplane", "airplane": "airplane",
	"motorcycle": "motorcycle", "motorbike": "motorcycle",
	"beef": "beef", "chicken": "chicken", "pork": "pork",
}

// bareMentions are checked in order when no "instead of" phrase resolves
var bareMentions = []struct {
	re  *regexp.Regexp
	alt string
}{
	{regexp.MustCompile(`\b(?:car|drive|driving|drove)\b`), "car"},
	{regexp.MustCompile(`\bbus\b`), "bus"},
	{regexp.MustCompile(`\bbeef\b`), "beef"},
	{regexp.MustCompile(`\bchicken\b`), "chicken"},
}

type compiledAction struct {
	ActionRule
	category model.Category
	regex    *regexp.Regexp
}

// RuleExtractor maps normalized text to a ParsedActivity using ordered
// keyword rules. It is immutable after construction and safe for concurrent use.
type RuleExtractor struct {
	actions []compiledAction
}

// NewRuleExtractor creates a rule extractor with the default rule groups
func NewRuleExtractor() *RuleExtractor {
	e, err := NewRuleExtractorWithGroups(DefaultRuleGroups())
	if err != nil {
		// Built-in patterns are constant; failing here is a programming error
		panic(err)
	}
	return e
}

// NewRuleExtractorWithGroups compiles custom rule groups, preserving their order
func NewRuleExtractorWithGroups(groups []RuleGroup) (*RuleExtractor, error) {
	e := &RuleExtractor{}
	for _, g := range groups {
		for _, a := range g.Actions {
			if a.Action == "" || len(a.Patterns) == 0 {
				return nil, fmt.Errorf("rule in category %q needs an action and at least one pattern", g.Category)
			}
			if a.DefaultUnit == "" {
				return nil, fmt.Errorf("rule %q needs a default unit", a.Action)
			}
			quoted := make([]string, len(a.Patterns))
			for i, p := range a.Patterns {
				quoted[i] = regexp.QuoteMeta(strings.ToLower(p))
			}
			re, err := regexp.Compile(`\b(?:` + strings.Join(quoted, "|") + `)`)
			if err != nil {
				return nil, fmt.Errorf("compile patterns for %q: %w", a.Action, err)
			}
			e.actions = append(e.actions, compiledAction{ActionRule: a, category: g.Category, regex: re})
		}
	}
	return e, nil
}

// Name returns the extractor name
func (e *RuleExtractor) Name() string {
	return "rules"
}

// Extract implements Extractor
func (e *RuleExtractor) Extract(_ context.Context, text string) Outcome {
	a := e.Parse(text)
	if a == nil {
		return Unparseable()
	}
	return Success(a)
}

// Parse returns the structured activity for text, or nil if no rule matched
func (e *RuleExtractor) Parse(text string) *model.ParsedActivity {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return nil
	}

	// "did not use my phone for 6 hours" beats every other rule
	if containsAny(t, detoxVerbs) && containsAny(t, detoxDevices) {
		hours := DefaultDetoxHours
		if m := hoursPattern.FindStringSubmatch(t); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				hours = v
			}
		}
		return detox(hours, ConfidencePriority)
	}

	if containsAny(t, wellness) {
		hours := DefaultDetoxHours
		if n, ok := parseFirstNumber(t); ok {
			hours = n
			switch {
			case minutesPattern.MatchString(t):
				hours /= 60.0
			case daysPattern.MatchString(t):
				hours *= 24.0
			}
		}
		return detox(hours, ConfidenceRule)
	}

	if containsAny(t, recycling) {
		return &model.ParsedActivity{
			Action:      "recycle",
			Category:    model.CategoryWaste,
			Quantity:    firstNumber(t, 1.0),
			Unit:        "items",
			InsteadOf:   model.StringPtr("throw_away"),
			Subcategory: "waste_recycle",
			Confidence:  model.FloatPtr(ConfidenceRule),
		}
	}

	for _, a := range e.actions {
		if !a.regex.MatchString(t) {
			continue
		}
		insteadOf := alternativeFor(t, a.Action)
		if insteadOf == "" {
			insteadOf = a.DefaultInsteadOf
		}
		activity := &model.ParsedActivity{
			Action:      a.Action,
			Category:    a.category,
			Quantity:    firstNumber(t, 1.0),
			Unit:        unitFor(t, a.DefaultUnit),
			Subcategory: string(a.category) + "_" + a.Action,
			Confidence:  model.FloatPtr(ConfidenceRule),
		}
		if insteadOf != "" {
			activity.InsteadOf = model.StringPtr(insteadOf)
		}
		return activity
	}

	return nil
}

func detox(hours, confidence float64) *model.ParsedActivity {
	return &model.ParsedActivity{
		Action:      "digital_detox",
		Category:    model.CategoryDigital,
		Quantity:    hours,
		Unit:        "hours",
		InsteadOf:   model.StringPtr("normal_usage"),
		Subcategory: "digital_detox",
		Confidence:  model.FloatPtr(confidence),
	}
}

func firstNumber(t string, def float64) float64 {
	if v, ok := parseFirstNumber(t); ok {
		return v
	}
	return def
}

func parseFirstNumber(t string) (float64, bool) {
	m := numberPattern.FindString(t)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// unitFor applies explicit unit keywords, else the rule default
func unitFor(t, def string) string {
	switch {
	case strings.Contains(t, "km") || strings.Contains(t, "kilometer") || strings.Contains(t, "kilometre"):
		return "km"
	case strings.Contains(t, "mile"):
		return "miles"
	case strings.Contains(t, "hour"):
		return "hours"
	case tripsPattern.MatchString(t):
		return "trips"
	}
	return def
}

// alternativeFor finds the replaced alternative: an explicit "instead of X"
// first, then bare mentions. The action itself is never its own alternative.
func alternativeFor(t, action string) string {
	for _, m := range insteadPattern.FindAllStringSubmatch(t, -1) {
		for _, word := range strings.Fields(m[1]) {
			if alt, ok := alternatives[word]; ok && alt != action {
				return alt
			}
		}
	}
	for _, b := range bareMentions {
		if b.alt != action && b.re.MatchString(t) {
			return b.alt
		}
	}
	return ""
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
