package cli

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ppiankov/ecotrack/internal/model"
	"github.com/ppiankov/ecotrack/internal/pipeline"
	"github.com/ppiankov/ecotrack/internal/worker"
)

var workers int

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Interpret every activity in a file in parallel",
	Long: `Batch interprets a log of activities concurrently:
- Read activities from the input file (one per line, # comments and blank lines skipped)
- Keep repeated lines: the same activity on two days counts twice
- Interpret entries in parallel with a configurable worker count
- Print each result in input order followed by the total CO2 saved

Example:
  ecotrack batch week.txt
  ecotrack batch week.txt --workers 8 --json > week.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)
	addEngineFlags(batchCmd)

	batchCmd.Flags().IntVar(&workers, "workers", runtime.NumCPU(), "number of concurrent workers")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyEngineFlags(cmd, cfg)
	logger := newLogger(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	interp, err := buildInterpreter(cfg, logger)
	if err != nil {
		return err
	}

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
		fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
		fmt.Fprintf(os.Stderr, "  Timeout:      %v\n\n", commandTimeout)
	}

	processor := worker.NewBatchProcessor(interp, cfg.Concurrency.Workers, logger)
	records, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	return writeRecords(cmd, cfg, logger, records)
}

// writeRecords renders batch records with their summary. It fails when any
// entry was not processed.
func writeRecords(cmd *cobra.Command, cfg *model.Config, logger zerolog.Logger, records []*worker.Record) error {
	interpretations := make([]*model.Interpretation, 0, len(records))
	failures := 0
	var firstErr error
	for _, r := range records {
		if r.Error != nil {
			failures++
			if firstErr == nil {
				firstErr = r.Error
			}
			logger.Warn().Err(r.Error).Str("id", r.ID).Str("text", r.Text).Msg("entry not processed")
			continue
		}
		interpretations = append(interpretations, r.Interpretation)
	}
	summary := pipeline.Summarize(interpretations)

	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	out := cmd.OutOrStdout()

	if cfg.Output.Format == "json" {
		if err := renderer.JSON(out, struct {
			Records []*worker.Record `json:"records"`
			Summary pipeline.Summary `json:"summary"`
		}{records, summary}); err != nil {
			return err
		}
	} else {
		for _, r := range records {
			if r.Error != nil {
				fmt.Fprintf(out, "✗ %q: %v\n", r.Text, r.Error)
				continue
			}
			if err := renderer.Text(out, r.Interpretation); err != nil {
				return err
			}
		}
		if err := renderer.Totals(out, summary); err != nil {
			return err
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d entries were not processed: %w", failures, len(records), firstErr)
	}
	return nil
}
