package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandonbuckley/uber-top100-POIs/internal/batch"
	"github.com/brandonbuckley/uber-top100-POIs/internal/checkpoint"
	"github.com/brandonbuckley/uber-top100-POIs/internal/classify"
	"github.com/brandonbuckley/uber-top100-POIs/internal/model"
	"github.com/brandonbuckley/uber-top100-POIs/internal/poiset"
	"github.com/brandonbuckley/uber-top100-POIs/internal/report"
	"github.com/brandonbuckley/uber-top100-POIs/internal/resilience"
	"github.com/brandonbuckley/uber-top100-POIs/internal/store"
	"github.com/brandonbuckley/uber-top100-POIs/pkg/nominatim"
)

var (
	runInput          string
	runGeography      string
	runLimit          int
	runCheckpointFile string
	runOutputDir      string
	runFormat         string
	runRulesFile      string
	runNoProgress     bool
	runKeepCheckpoint bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the classification batch over a POI file",
	Long: `Reads a POI feature collection, reverse-geocodes each POI against Nominatim
with rate limiting, classifies parking facilities, and writes per-geography
CSV exports and text reports.

Progress is checkpointed every few POIs; re-running with the same checkpoint
file resumes from the first unprocessed POI.

Examples:
  # Full batch over a GeoJSON export
  parking-cli run --input Top_100_POIs.geojson

  # South Bay only, top 50, XLSX output
  parking-cli run --input Top_100_POIs.geojson --geography South_Bay --limit 50 --format xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		formatStr := runFormat
		if formatStr == "" {
			formatStr = cfg.Output.Format
		}
		format, err := report.ParseFormat(formatStr)
		if err != nil {
			return err
		}

		outputDir := runOutputDir
		if outputDir == "" {
			outputDir = cfg.Output.Dir
		}

		pois, err := loadPOIs()
		if err != nil {
			return err
		}
		if len(pois) == 0 {
			return eris.New("run: no POIs matched the input filters")
		}

		engine, runsStore, err := initEngine()
		if err != nil {
			return err
		}
		if runsStore != nil {
			defer runsStore.Close() //nolint:errcheck
		}

		records, runErr := engine.Run(ctx, runInput, pois)
		if runErr != nil {
			if errors.Is(runErr, context.Canceled) {
				fmt.Fprintf(os.Stderr, "Interrupted after %d POIs; re-run to resume from the checkpoint.\n", len(records))
				return nil
			}
			return runErr
		}

		paths, err := report.WriteAll(records, report.Options{
			Dir:    outputDir,
			Format: format,
		})
		if err != nil {
			return err
		}

		if !runKeepCheckpoint {
			if err := checkpoint.NewFile(checkpointPath()).Remove(); err != nil {
				zap.L().Warn("failed to remove checkpoint", zap.Error(err))
			}
		}

		summary := report.Summarize(records)
		fmt.Printf("Processed %d POIs: %d high, %d medium, %d assumed, %d none (%d unresolved)\n",
			summary.Total,
			summary.Counts.High, summary.Counts.Medium,
			summary.Counts.Assumed, summary.Counts.None,
			summary.Counts.Unresolved,
		)
		for _, p := range paths {
			fmt.Println("  " + p)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "POI input file (.geojson or .shp)")
	runCmd.Flags().StringVar(&runGeography, "geography", "", "process only POIs in this geography")
	runCmd.Flags().IntVar(&runLimit, "limit", 0, "process only the first N POIs (0 = all)")
	runCmd.Flags().StringVar(&runCheckpointFile, "checkpoint", "", "checkpoint file (default from config)")
	runCmd.Flags().StringVar(&runOutputDir, "output-dir", "", "output directory (default from config)")
	runCmd.Flags().StringVar(&runFormat, "format", "", "tabular export format: csv or xlsx (default from config)")
	runCmd.Flags().StringVar(&runRulesFile, "rules", "", "YAML rule-set override file")
	runCmd.Flags().BoolVar(&runNoProgress, "no-progress", false, "disable the progress bar")
	runCmd.Flags().BoolVar(&runKeepCheckpoint, "keep-checkpoint", false, "keep the checkpoint file after completion")
	_ = runCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(runCmd)
}

func loadPOIs() ([]model.POI, error) {
	pois, err := poiset.Load(runInput)
	if err != nil {
		return nil, err
	}
	pois = poiset.Filter(pois, runGeography)
	if runLimit > 0 && runLimit < len(pois) {
		pois = pois[:runLimit]
	}
	return pois, nil
}

func initEngine() (*batch.Engine, store.Store, error) {
	ruleSet, err := loadRuleSet()
	if err != nil {
		return nil, nil, err
	}

	geocoder := nominatim.NewClient(
		nominatim.WithBaseURL(cfg.Nominatim.BaseURL),
		nominatim.WithUserAgent(cfg.Nominatim.UserAgent),
		nominatim.WithZoom(cfg.Nominatim.Zoom),
		nominatim.WithInterval(time.Duration(cfg.Nominatim.RequestIntervalMS)*time.Millisecond),
		nominatim.WithRetry(resilience.RetryConfig{
			MaxAttempts: cfg.Nominatim.MaxRetries,
			Backoff:     time.Duration(cfg.Nominatim.RetryBackoffSecs) * time.Second,
		}),
	)

	runsStore, err := initStore(context.Background())
	if err != nil {
		// The run store is bookkeeping, not a prerequisite for the batch.
		zap.L().Warn("run store unavailable, continuing without it", zap.Error(err))
		runsStore = nil
	}

	engine := batch.NewEngine(batch.Config{
		Geocoder:        geocoder,
		Classifier:      classify.New(ruleSet),
		Checkpoint:      checkpoint.NewFile(checkpointPath()),
		Runs:            runsStore,
		CheckpointEvery: cfg.Batch.CheckpointEvery,
		Progress:        !runNoProgress,
	})
	return engine, runsStore, nil
}

func loadRuleSet() (classify.RuleSet, error) {
	path := runRulesFile
	if path == "" {
		path = cfg.Rules.File
	}
	if path == "" {
		return classify.DefaultRuleSet(), nil
	}
	return classify.LoadRuleSet(path)
}

func checkpointPath() string {
	if runCheckpointFile != "" {
		return runCheckpointFile
	}
	return cfg.Batch.CheckpointFile
}

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, err
	}
	return st, nil
}
