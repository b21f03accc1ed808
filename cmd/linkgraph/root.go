package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/agenthands/linkgraph/internal/app"
	"github.com/agenthands/linkgraph/internal/config"
	"github.com/agenthands/linkgraph/internal/core/ingest"
	"github.com/agenthands/linkgraph/internal/logger"
)

var (
	configPath string
	verbose    bool
	threshold  float64
	noFuzzy    bool
)

var rootCmd = &cobra.Command{
	Use:   "linkgraph",
	Short: "Infer and analyze a contact network from a CSV export",
	Long: `linkgraph reads a contact export, infers connections between people who
share a company, school, location or position, and reports network metrics,
paths and filtered views of the result.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.toml", "Path to the TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log to stderr")
	rootCmd.PersistentFlags().Float64Var(&threshold, "threshold", 0, "Override the edge score threshold")
	rootCmd.PersistentFlags().BoolVar(&noFuzzy, "no-fuzzy", false, "Disable fuzzy matching of categorical values")
}

// session is a loaded app with one graph ingested from a CSV file.
type session struct {
	app     *app.App
	graphID string
}

func open(ctx context.Context, csvPath string) (*session, error) {
	_ = godotenv.Load()

	cfg, _, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if threshold > 0 {
		cfg.Inference.Threshold = threshold
	}
	if noFuzzy {
		cfg.Inference.FuzzyMatching = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var lg *logger.Logger
	if verbose {
		if lg, err = logger.New(cfg.Log.Mode); err != nil {
			return nil, err
		}
	}

	a, err := app.New(ctx, cfg, lg)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(csvPath)
	if err != nil {
		a.Close(ctx)
		return nil, fmt.Errorf("failed to open %s: %w", csvPath, err)
	}
	defer f.Close()

	contacts, err := ingest.ParseCSV(f, nil)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	res, err := a.Engine.Ingest(ctx, contacts, cfg.Inference.InferenceSettings)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}
	return &session{app: a, graphID: res.GraphID}, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
