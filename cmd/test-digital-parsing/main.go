// Test program to demonstrate digital-wellness parsing end to end.
// Entries run through the rule extractor only so results are reproducible
// without credentials.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ppiankov/ecotrack/internal/logging"
	"github.com/ppiankov/ecotrack/internal/model"
	"github.com/ppiankov/ecotrack/internal/pipeline"
)

func main() {
	logger := logging.New(model.LoggingConfig{Level: zerolog.LevelDebugValue, Format: "console"}, os.Stderr)
	interp := pipeline.New(pipeline.Options{Logger: &logger, Equivalents: true})

	entries := []string{
		"did not used smartphone for 24 hours",
		"didnt use phone for 8 hours",
		"digital detox 12 hours",
		"avoided using smartphone for 6 hours",
		"phone free for 3 hours",
		"screen free for 2 hours",
		"did not use phone for 1 hour",
		"digital detox for 2 days",
		"screen free for 90 minutes",
	}

	fmt.Println("=== Digital Activity Parsing Test ===")
	fmt.Println(strings.Repeat("=", 50))

	failed := 0
	for _, entry := range entries {
		result := interp.Interpret(context.Background(), entry)
		if !result.Understood() {
			failed++
			fmt.Printf("✗ %q -> failed to parse\n\n", entry)
			continue
		}
		fmt.Printf("✓ %q\n", entry)
		fmt.Printf("  -> %.3f kg CO2 saved\n", result.CO2SavedKg)
		fmt.Printf("  -> %s %g %s (confidence %.1f)\n", result.Meta.Category, result.Parsed.Quantity, result.Parsed.Unit, *result.Parsed.Confidence)
		fmt.Println()
	}

	if failed > 0 {
		fmt.Printf("%d of %d entries failed to parse\n", failed, len(entries))
		os.Exit(1)
	}
}
