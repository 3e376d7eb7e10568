// Package main provides the recommender CLI and its keyword and embedding HTTP services.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-recommender/internal/config"
	"github.com/jonathan/job-recommender/internal/logger"
)

var (
	v          = config.New()
	configFile string
	appConfig  *config.Config
	appLogger  = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "recommender",
	Short: "Job title recommendations from resume text",
	Long: "Recommends job titles for a resume using either a weighted keyword heuristic or " +
		"sentence-embedding similarity, from the command line or over HTTP.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		_ = appLogger.Sync()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Path to a config file (YAML, JSON or TOML)")
	flags.Bool("debug", false, "Enable debug logging")
	flags.Bool("log-json", false, "Write logs as JSON")

	mustBindFlag("log.debug", flags.Lookup("debug"))
	mustBindFlag("log.json", flags.Lookup("log-json"))
}

// setup loads configuration and builds the logger before any command runs.
func setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}

	l, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	appConfig = cfg
	appLogger = l
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
