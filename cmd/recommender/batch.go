package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/job-recommender/internal/export"
	"github.com/jonathan/job-recommender/internal/ingestion"
	"github.com/jonathan/job-recommender/internal/observability"
	"github.com/jonathan/job-recommender/internal/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Score every resume in a directory and write an Excel report",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

var (
	batchOutput    string
	batchEngine    string
	batchN         int
	batchWorkers   int
	batchRecursive bool
)

func init() {
	batchCmd.Flags().StringVarP(&batchOutput, "out", "o", "recommendations.xlsx", "Path to the output workbook")
	batchCmd.Flags().StringVarP(&batchEngine, "engine", "e", engineKeyword, "Scoring engine: keyword or embedding")
	batchCmd.Flags().IntVarP(&batchN, "n", "n", types.DefaultN, "Maximum number of recommendations per resume")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 4, "Number of resumes scored concurrently")
	batchCmd.Flags().BoolVarP(&batchRecursive, "recursive", "r", false, "Include subdirectories")
	rootCmd.AddCommand(batchCmd)
}

// collectResumes lists files under dir with a supported extension, sorted by path.
func collectResumes(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if _, err := ingestion.DetectFormat(path); err == nil {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dir, err)
	}

	sort.Strings(files)
	return files, nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	if batchN < 1 {
		return fmt.Errorf("--n must be positive")
	}
	if batchWorkers < 1 {
		return fmt.Errorf("--workers must be positive")
	}

	files, err := collectResumes(dir, batchRecursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no resumes found in %s", dir)
	}

	ctx := cmd.Context()
	engine, err := newCLIEngine(ctx, batchEngine, appConfig, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			appLogger.Warn("Error closing engine", zap.Error(err))
		}
	}()

	docs := make([]export.Document, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchWorkers)
	for i, path := range files {
		g.Go(func() error {
			doc := export.Document{Source: relativeTo(dir, path)}
			defer func() { docs[i] = doc }()

			text, meta, err := ingestion.ReadFile(path)
			if err != nil {
				appLogger.Warn("Skipping unreadable resume", zap.String("file", path), zap.Error(err))
				doc.Err = err
				return nil
			}
			doc.Format = string(meta.Format)
			doc.Characters = meta.Characters

			result, err := engine.score(gctx, text, batchN)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				doc.Err = err
				return nil
			}
			doc.Recommendations = result.recommendations()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	report := &export.Report{
		Engine:    engine.name,
		Model:     engine.Model(),
		Generated: time.Now(),
		Documents: docs,
	}
	path, err := export.WriteWorkbook(report, batchOutput)
	if err != nil {
		return err
	}
	appLogger.Info("Batch complete",
		zap.Int("documents", len(docs)),
		zap.Int("failed", report.Failed()),
		zap.String("workbook", path),
	)

	observability.NewPrinter(cmd.OutOrStdout()).PrintBatchSummary(batchEntries(report), path)
	return nil
}

func batchEntries(report *export.Report) []observability.BatchEntry {
	entries := make([]observability.BatchEntry, len(report.Documents))
	for i, d := range report.Documents {
		entries[i] = observability.BatchEntry{Source: d.Source, Err: d.Err}
		if len(d.Recommendations) > 0 {
			entries[i].TopTitle = d.Recommendations[0].Title
			entries[i].TopScore = d.Recommendations[0].Score
		}
	}
	return entries
}

func relativeTo(dir, path string) string {
	if rel, err := filepath.Rel(dir, path); err == nil {
		return rel
	}
	return path
}
