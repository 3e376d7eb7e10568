package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/job-recommender/internal/ingestion"
	"github.com/jonathan/job-recommender/internal/observability"
	"github.com/jonathan/job-recommender/internal/types"
)

var recommendCmd = &cobra.Command{
	Use:   "recommend [text]",
	Short: "Recommend job titles for resume text or a resume file",
	Long: `Recommend job titles for resume text given as an argument, read from a file with
--file (.pdf, .docx, .html, .txt, .md), or read from stdin when neither is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRecommend,
}

var (
	recommendFile   string
	recommendEngine string
	recommendN      int
	recommendHTML   bool
	recommendJSON   bool
)

func init() {
	recommendCmd.Flags().StringVarP(&recommendFile, "file", "f", "", "Path to a resume file")
	recommendCmd.Flags().StringVarP(&recommendEngine, "engine", "e", engineKeyword, "Scoring engine: keyword or embedding")
	recommendCmd.Flags().IntVarP(&recommendN, "n", "n", types.DefaultN, "Maximum number of recommendations")
	recommendCmd.Flags().BoolVar(&recommendHTML, "html", false, "Treat the text argument as HTML")
	recommendCmd.Flags().BoolVar(&recommendJSON, "json", false, "Print the JSON response instead of a summary")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	if recommendN < 1 {
		return fmt.Errorf("--n must be positive")
	}
	if recommendFile != "" && len(args) > 0 {
		return fmt.Errorf("give either a text argument or --file, not both")
	}

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)

	text, meta, err := recommendInput(cmd.InOrStdin(), args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	engine, err := newCLIEngine(ctx, recommendEngine, appConfig, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := engine.Close(); err != nil {
			appLogger.Warn("Error closing engine", zap.Error(err))
		}
	}()

	result, err := engine.score(ctx, text, recommendN)
	if err != nil {
		return fmt.Errorf("failed to score resume: %w", err)
	}

	if recommendJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result.response())
	}

	printer.PrintDocument(meta)
	result.print(printer)
	return nil
}

// recommendInput returns the resume text from --file, the argument or stdin.
// Metadata is only available for files.
func recommendInput(stdin io.Reader, args []string) (string, *ingestion.Metadata, error) {
	if recommendFile != "" {
		text, meta, err := ingestion.ReadFile(recommendFile)
		if err != nil {
			return "", nil, err
		}
		return text, meta, nil
	}

	var text string
	if len(args) == 1 {
		text = args[0]
	} else {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		text = strings.TrimSpace(string(data))
	}

	if recommendHTML {
		return htmlText(text)
	}
	return text, nil, nil
}

func htmlText(content string) (string, *ingestion.Metadata, error) {
	text, err := ingestion.HTMLToText(content)
	if err != nil {
		return "", nil, err
	}
	return text, nil, nil
}
