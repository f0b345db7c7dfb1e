package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/brandonbuckley/uber-top100-POIs/internal/checkpoint"
	"github.com/brandonbuckley/uber-top100-POIs/internal/report"
)

var (
	reportResults   string
	reportOutputDir string
	reportFormat    string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Regenerate exports and summaries from a results CSV",
	Long: `Re-renders the per-geography tabular exports and text reports from an
existing results or checkpoint CSV, without re-geocoding anything.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		records, err := checkpoint.NewFile(reportResults).Load()
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return eris.Errorf("report: no records in %s", reportResults)
		}

		formatStr := reportFormat
		if formatStr == "" {
			formatStr = cfg.Output.Format
		}
		format, err := report.ParseFormat(formatStr)
		if err != nil {
			return err
		}

		outputDir := reportOutputDir
		if outputDir == "" {
			outputDir = cfg.Output.Dir
		}

		paths, err := report.WriteAll(records, report.Options{
			Dir:    outputDir,
			Format: format,
		})
		if err != nil {
			return err
		}

		summary := report.Summarize(records)
		fmt.Printf("Regenerated reports for %d POIs across %d geographies\n",
			summary.Total, len(summary.ByGeography))
		for _, p := range paths {
			fmt.Println("  " + p)
		}
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportResults, "results", "", "results or checkpoint CSV to render")
	reportCmd.Flags().StringVar(&reportOutputDir, "output-dir", "", "output directory (default from config)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "", "tabular export format: csv or xlsx (default from config)")
	_ = reportCmd.MarkFlagRequired("results")
	rootCmd.AddCommand(reportCmd)
}
