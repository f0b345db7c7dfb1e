package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brandonbuckley/uber-top100-POIs/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "parking-cli",
	Short: "Classify POI parking facilities via reverse geocoding",
	Long: "Enriches a POI dataset with parking-facility classification by reverse-geocoding " +
		"each point against OpenStreetMap Nominatim and applying heuristic confidence rules.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
