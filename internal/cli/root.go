package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/ecotrack/internal/logging"
	"github.com/ppiankov/ecotrack/internal/model"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=..."
var Version = "v0.1.0"

var (
	cfgFile   string
	verbose   bool
	logLevel  string
	logFormat string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ecotrack",
	Short: "ecotrack - turn everyday sustainable actions into kg of CO2 saved",
	Long: `ecotrack reads free-text descriptions of sustainable actions
("walked 2km instead of driving", "had a vegetarian lunch", "recycled 3 bottles")
and estimates the CO2 they saved.

Entries are structured by a hosted or local language model when credentials
are available, with a deterministic rule-based extractor as the fallback.
Estimates are best-effort heuristics, not certified measurements.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of ecotrack.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ecotrack %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ecotrack/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (implies --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: console or json")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		viper.AddConfigPath(filepath.Join(home, ".ecotrack"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// ECOTRACK_LLM_PROVIDER, ECOTRACK_CACHE_ENABLED, ...
	viper.SetEnvPrefix("ECOTRACK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(model.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so environment variables reach Unmarshal
func setDefaults(cfg *model.Config) {
	viper.SetDefault("llm.provider", cfg.LLM.Provider)
	viper.SetDefault("llm.model", cfg.LLM.Model)
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.base_url", cfg.LLM.BaseURL)
	viper.SetDefault("llm.timeout", cfg.LLM.Timeout)
	viper.SetDefault("llm.max_tokens", cfg.LLM.MaxTokens)
	viper.SetDefault("llm.temperature", cfg.LLM.Temperature)
	viper.SetDefault("llm.rate_limit", cfg.LLM.RateLimit)
	viper.SetDefault("llm.burst", cfg.LLM.Burst)
	viper.SetDefault("llm.http_proxy", cfg.LLM.HTTPProxy)
	viper.SetDefault("llm.https_proxy", cfg.LLM.HTTPSProxy)
	viper.SetDefault("llm.no_proxy", cfg.LLM.NoProxy)
	viper.SetDefault("llm.disabled", cfg.LLM.Disabled)
	viper.SetDefault("cache.enabled", cfg.Cache.Enabled)
	viper.SetDefault("cache.ttl", cfg.Cache.TTL)
	viper.SetDefault("cache.dir", cfg.Cache.Dir)
	viper.SetDefault("concurrency.workers", cfg.Concurrency.Workers)
	viper.SetDefault("engine.min_confidence", cfg.Engine.MinConfidence)
	viper.SetDefault("engine.equivalents", cfg.Engine.Equivalents)
	viper.SetDefault("output.format", cfg.Output.Format)
	viper.SetDefault("output.verbose", cfg.Output.Verbose)
	viper.SetDefault("logging.level", cfg.Logging.Level)
	viper.SetDefault("logging.format", cfg.Logging.Format)
}

// loadConfig merges defaults, config file, environment and flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = model.DefaultConfig().Logging.Level
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = model.DefaultConfig().Logging.Format
	}
	return cfg, nil
}

// newLogger builds the stderr logger for a command run
func newLogger(cfg *model.Config) zerolog.Logger {
	return logging.New(model.LoggingConfig{
		Level:  logging.Level(cfg.Logging.Level, cfg.Output.Verbose),
		Format: cfg.Logging.Format,
	}, os.Stderr)
}
