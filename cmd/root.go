package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-labor/occwalk/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "occwalk",
	Short: "Build OCC to SOC occupation crosswalks",
	Long:  "Downloads the Census 2018 occupation workbook, detects the OCC/SOC columns by content, normalizes the codes, and writes a canonical occ,soc crosswalk CSV.",
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
