package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-recommender/internal/catalog"
	"github.com/jonathan/job-recommender/internal/server"
	"github.com/jonathan/job-recommender/internal/server/ratelimit"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a recommendation HTTP service",
	Long:  `Start the keyword (default port 5000) or embedding (default port 5001) HTTP service.`,
}

var serveKeywordCmd = &cobra.Command{
	Use:   "keyword",
	Short: "Serve keyword heuristic recommendations",
	Args:  cobra.NoArgs,
	RunE:  runServeKeyword,
}

var serveEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Serve embedding similarity recommendations",
	Long: `Serve embedding similarity recommendations. The model is loaded at startup unless
embedding.lazy-init is set, in which case the first request loads it.`,
	Args: cobra.NoArgs,
	RunE: runServeEmbedding,
}

func init() {
	serveCmd.PersistentFlags().IntVar(&servePort, "port", 0, "Port to listen on (default: $PORT, then the engine's configured port)")
	serveCmd.AddCommand(serveKeywordCmd, serveEmbeddingCmd)
	rootCmd.AddCommand(serveCmd)
}

// resolvePort prefers the flag, then the PORT environment value, then the configured port.
func resolvePort(flag int, env string, configured int) (int, error) {
	port := configured
	if env != "" {
		p, err := strconv.Atoi(env)
		if err != nil {
			return 0, fmt.Errorf("invalid PORT %q: %w", env, err)
		}
		port = p
	}
	if flag != 0 {
		port = flag
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return port, nil
}

func runServeKeyword(cmd *cobra.Command, _ []string) error {
	port, err := resolvePort(servePort, os.Getenv("PORT"), appConfig.Keyword.Port)
	if err != nil {
		return err
	}
	return serve(cmd.Context(), server.NewKeywordEngine(nil), port, appConfig.Keyword.MaxChars)
}

func runServeEmbedding(cmd *cobra.Command, _ []string) error {
	port, err := resolvePort(servePort, os.Getenv("PORT"), appConfig.Embedding.Port)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	stack, err := openEmbedding(ctx, appConfig, appLogger)
	if err != nil {
		return fmt.Errorf("failed to set up embedding engine: %w", err)
	}
	defer func() {
		if err := stack.Close(); err != nil {
			appLogger.Warn("Error closing embedding engine", zap.Error(err))
		}
	}()

	if !appConfig.Embedding.LazyInit {
		appLogger.Info("Loading embedding model", zap.String("model", stack.model))
		if _, err := stack.holder.Get(ctx); err != nil {
			return fmt.Errorf("failed to load embedding model: %w", err)
		}
	}

	engine := server.NewEmbeddingEngine(stack.holder, catalog.Default(), stack.model)
	return serve(ctx, engine, port, appConfig.Embedding.MaxChars)
}

// serve runs engine on port until SIGINT or SIGTERM.
func serve(ctx context.Context, engine server.Engine, port, maxChars int) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(server.Config{
		Port:            port,
		Engine:          engine,
		MaxChars:        maxChars,
		MaxBodyBytes:    appConfig.Server.MaxBodyBytes,
		MaxUploadBytes:  appConfig.Server.MaxUploadBytes,
		ReadTimeout:     appConfig.Server.ReadTimeout,
		WriteTimeout:    appConfig.Server.WriteTimeout,
		IdleTimeout:     appConfig.Server.IdleTimeout,
		ShutdownTimeout: appConfig.Server.ShutdownTimeout,
		RateLimit:       ratelimit.FromSettings(appConfig.RateLimit),
		Logger:          appLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
