package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"intent-engine/internal/config"
	"intent-engine/internal/logger"
	"intent-engine/internal/resource"
	"intent-engine/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	fuzzyAlgorithm string
	logLevel       string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "intentctl",
	Short: "Classify messages and manage intent classifier resources",
	Long: `intentctl runs the intent classifier outside the HTTP server.

Configuration is read from the environment (and an optional .env file), the same
way the server reads it. Flags override the corresponding variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&fuzzyAlgorithm, "fuzzy", "", "Fuzzy search algorithm: edit_distance, subsequence (default: FUZZY_ALGORITHM)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (default: LOG_LEVEL)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the environment and applies the persistent flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if fuzzyAlgorithm != "" {
		cfg.Classifier.FuzzyAlgorithm = fuzzyAlgorithm
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	// logs go to stderr so stdout stays machine readable
	cfg.Logging.Format = "console"
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newClassifier loads the resources and builds the classifier they feed
func newClassifier(ctx context.Context) (*service.IntentClassifier, *resource.Store, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	zlog, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	store, err := resource.Open(ctx, cfg, zlog)
	if err != nil {
		return nil, nil, nil, err
	}

	classifier, err := service.NewIntentClassifierFromConfig(store, cfg.Classifier, zlog)
	if err != nil {
		return nil, nil, nil, err
	}
	return classifier, store, zlog, nil
}

// newLogger builds the command logger and reports the ignored environment values
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zlog, err := logger.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	for _, w := range cfg.Warnings {
		zlog.Warn(w)
	}
	return zlog, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
