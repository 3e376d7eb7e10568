package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-recommender/internal/db"
	"github.com/jonathan/job-recommender/internal/embedding"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the Postgres category embedding cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many category vectors are cached for the configured model",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete cached category vectors for the configured model",
	Args:  cobra.NoArgs,
	RunE:  runCachePurge,
}

var cacheAllModels bool

func init() {
	cachePurgeCmd.Flags().BoolVar(&cacheAllModels, "all", false, "Delete vectors for every model")
	cacheCmd.AddCommand(cacheStatsCmd, cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

// cacheModel is the model name vectors are stored under for the current config.
func cacheModel() (string, error) {
	provider, err := embedding.ParseProvider(appConfig.Embedding.Provider)
	if err != nil {
		return "", err
	}
	opts := embedding.Options{Provider: provider, Model: appConfig.Embedding.Model, Dimension: appConfig.Embedding.Dimension}
	return opts.ModelName(), nil
}

func openCache(cmd *cobra.Command) (*db.DB, *db.EmbeddingStore, error) {
	if appConfig.Database.URL == "" {
		return nil, nil, fmt.Errorf("database.url (DATABASE_URL) is not set")
	}
	database, err := db.Connect(cmd.Context(), appConfig.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	store := db.NewEmbeddingStore(database)
	if err := store.EnsureSchema(cmd.Context()); err != nil {
		database.Close()
		return nil, nil, err
	}
	return database, store, nil
}

func runCacheStats(cmd *cobra.Command, _ []string) error {
	model, err := cacheModel()
	if err != nil {
		return err
	}
	database, store, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := store.Count(cmd.Context(), model)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d cached category vectors\n", model, n)
	return nil
}

func runCachePurge(cmd *cobra.Command, _ []string) error {
	model := ""
	if !cacheAllModels {
		m, err := cacheModel()
		if err != nil {
			return err
		}
		model = m
	}
	database, store, err := openCache(cmd)
	if err != nil {
		return err
	}
	defer database.Close()

	n, err := store.Purge(cmd.Context(), model)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d cached vectors\n", n)
	return nil
}
