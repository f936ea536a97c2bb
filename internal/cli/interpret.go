package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/ecotrack/internal/model"
	"github.com/ppiankov/ecotrack/internal/pipeline"
	"github.com/ppiankov/ecotrack/internal/worker"
)

var (
	outputJSON     bool
	readStdin      bool
	noLLM          bool
	llmProvider    string
	llmModel       string
	minConfidence  float64
	noEquivalents  bool
	useCache       bool
	commandTimeout time.Duration
)

// interpretCmd represents the interpret command
var interpretCmd = &cobra.Command{
	Use:   "interpret <activity...>",
	Short: "Estimate the CO2 saved by one activity",
	Long: `Interpret parses a free-text activity and estimates the kg of CO2 it saved:
- Structure the text with a language model when credentials are configured
- Fall back to the built-in rules when the model is unavailable or unsure
- Resolve a conversion factor and report the saving with an audit trail

Remote credentials are read from OPENAI_API_KEY, ANTHROPIC_API_KEY,
GOOGLE_API_KEY (or GEMINI_API_KEY) and OLLAMA_BASE_URL.

Example:
  ecotrack interpret "walked 2km instead of driving"
  ecotrack interpret took the bus 10km --json
  ecotrack interpret --no-llm "didn't use my phone for 3 hours"
  cat diary.txt | ecotrack interpret --stdin`,
	RunE: runInterpret,
}

func init() {
	rootCmd.AddCommand(interpretCmd)
	addEngineFlags(interpretCmd)

	interpretCmd.Flags().BoolVar(&readStdin, "stdin", false, "read one activity per line from stdin")
}

// addEngineFlags registers the flags shared by interpret and batch
func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&outputJSON, "json", false, "write JSON instead of text")
	cmd.Flags().BoolVar(&noLLM, "no-llm", false, "use rule-based extraction only")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "remote provider (openai, anthropic, google, ollama; default: auto-detect)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "remote model name (default: provider's default)")
	cmd.Flags().Float64Var(&minConfidence, "min-confidence", 0, "treat parses below this confidence as not understood (0 disables)")
	cmd.Flags().BoolVar(&noEquivalents, "no-equivalents", false, "omit everyday equivalents")
	cmd.Flags().BoolVar(&useCache, "cache", false, "memoize remote parses for the cache TTL")
	cmd.Flags().DurationVar(&commandTimeout, "timeout", 5*time.Minute, "overall timeout")
}

// applyEngineFlags overrides config values with flags the user actually set
func applyEngineFlags(cmd *cobra.Command, cfg *model.Config) {
	flags := cmd.Flags()
	if flags.Changed("json") && outputJSON {
		cfg.Output.Format = "json"
	}
	if flags.Changed("no-llm") {
		cfg.LLM.Disabled = noLLM
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}
	if flags.Changed("min-confidence") {
		cfg.Engine.MinConfidence = minConfidence
	}
	if flags.Changed("no-equivalents") {
		cfg.Engine.Equivalents = !noEquivalents
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled = useCache
	}
	if flags.Changed("workers") {
		cfg.Concurrency.Workers = workers
	}
}

func runInterpret(cmd *cobra.Command, args []string) error {
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

	renderer := pipeline.NewRenderer(cfg.Output.Verbose)
	out := cmd.OutOrStdout()

	if readStdin {
		texts, err := worker.ReadEntries(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		if len(texts) == 0 {
			return pipeline.ErrEmptyInput
		}
		records := worker.NewBatchProcessor(interp, cfg.Concurrency.Workers, logger).Process(ctx, texts)
		return writeRecords(cmd, cfg, logger, records)
	}

	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return pipeline.ErrEmptyInput
	}

	result := interp.Interpret(ctx, text)
	if cfg.Output.Format == "json" {
		return renderer.JSON(out, result)
	}
	if err := renderer.Text(out, result); err != nil {
		return err
	}
	if !result.Understood() && cfg.Output.Verbose {
		fmt.Fprintln(os.Stderr, "Try phrasing like \"walked 2km instead of driving\" or \"recycled 3 bottles\".")
	}
	return nil
}
