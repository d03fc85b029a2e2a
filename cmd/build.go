package main

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-labor/occwalk/internal/crosswalk"
	"github.com/ai-labor/occwalk/internal/fetcher"
	"github.com/ai-labor/occwalk/internal/runlog"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the OCC to SOC crosswalk CSV from a workbook",
	Long: `Build a canonical occ,soc crosswalk from a Census occupation workbook.

The sheet and columns holding OCC and SOC codes are detected by cell
content, not header text. Use --sheet / --occ-col / --soc-col to override
detection when a workbook edition defeats it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		xlsxPath, _ := cmd.Flags().GetString("xlsx")
		outPath, _ := cmd.Flags().GetString("out")

		opts, err := buildOptions(cmd)
		if err != nil {
			return err
		}
		skipRows, _ := cmd.Flags().GetInt("skip-rows")

		log, err := openRunlog(ctx)
		if err != nil {
			return err
		}
		defer log.Close() //nolint:errcheck

		runID, err := log.Start(ctx, "build")
		if err != nil {
			return err
		}

		result, err := runBuild(xlsxPath, skipRows, opts)
		if err != nil {
			_ = log.Fail(ctx, runID, err.Error())
			return err
		}

		if err := crosswalk.WriteCSVFile(outPath, result.Rows); err != nil {
			_ = log.Fail(ctx, runID, err.Error())
			return err
		}

		diag := result.Diagnostics
		if err := log.Complete(ctx, runID, int64(diag.RowsFinal), map[string]any{
			"sheet":             diag.Sheet,
			"occ_column":        diag.OccColumn,
			"soc_column":        diag.SocColumn,
			"rows_read":         diag.RowsRead,
			"ambiguous_dropped": diag.AmbiguousDropped,
		}); err != nil {
			return err
		}

		for _, w := range diag.Warnings {
			zap.L().Warn(w)
		}
		fmt.Printf("Wrote %s (rows=%d, sheet=%q, occ=%q, soc=%q)\n",
			outPath, diag.RowsFinal, diag.Sheet, diag.OccColumn, diag.SocColumn)
		return nil
	},
}

func init() {
	buildCmd.Flags().String("xlsx", "", "path to the crosswalk .xlsx workbook")
	buildCmd.Flags().String("out", "", "output CSV path (occ,soc)")
	buildCmd.Flags().String("sheet", "", "exact sheet name (default: auto-detect best)")
	buildCmd.Flags().String("occ-col", "", "exact OCC column header (default: auto-detect)")
	buildCmd.Flags().String("soc-col", "", "exact SOC column header (default: auto-detect)")
	buildCmd.Flags().String("soc-policy", "", "multi-SOC cell policy: strict or expand")
	buildCmd.Flags().String("resolve", "", "conflict policy: strict, expand, or prefer-specific")
	buildCmd.Flags().Int("skip-rows", -1, "header rows to skip before the real header")
	_ = buildCmd.MarkFlagRequired("xlsx")
	_ = buildCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(buildCmd)
}

// buildOptions assembles crosswalk.Options from flags, falling back to
// configuration defaults.
func buildOptions(cmd *cobra.Command) (crosswalk.Options, error) {
	sheet, _ := cmd.Flags().GetString("sheet")
	occCol, _ := cmd.Flags().GetString("occ-col")
	socCol, _ := cmd.Flags().GetString("soc-col")
	socPolicy, _ := cmd.Flags().GetString("soc-policy")
	resolve, _ := cmd.Flags().GetString("resolve")

	if socPolicy == "" {
		socPolicy = cfg.Crosswalk.SocPolicy
	}
	if resolve == "" {
		resolve = cfg.Crosswalk.ResolvePolicy
	}

	switch crosswalk.SocPolicy(socPolicy) {
	case crosswalk.SocStrict, crosswalk.SocExpand:
	default:
		return crosswalk.Options{}, eris.Errorf("unknown soc policy %q (want strict or expand)", socPolicy)
	}
	switch crosswalk.ResolvePolicy(resolve) {
	case crosswalk.ResolveStrict, crosswalk.ResolveExpand, crosswalk.ResolvePreferSpecific:
	default:
		return crosswalk.Options{}, eris.Errorf("unknown resolve policy %q (want strict, expand, or prefer-specific)", resolve)
	}

	return crosswalk.Options{
		Sheet:         sheet,
		OccColumn:     occCol,
		SocColumn:     socCol,
		SocPolicy:     crosswalk.SocPolicy(socPolicy),
		ResolvePolicy: crosswalk.ResolvePolicy(resolve),
		SampleCap:     cfg.Crosswalk.SampleCap,
		MinScore:      cfg.Crosswalk.MinScore,
	}, nil
}

// runBuild loads the workbook and runs the crosswalk pipeline.
func runBuild(xlsxPath string, skipRows int, opts crosswalk.Options) (*crosswalk.Result, error) {
	if skipRows < 0 {
		skipRows = cfg.Crosswalk.SkipRows
	}

	wb, err := fetcher.LoadWorkbook(xlsxPath, fetcher.XLSXOptions{SkipRows: skipRows})
	if err != nil {
		return nil, err
	}
	return crosswalk.Build(wb, opts)
}

// openRunlog opens and migrates the local run log.
func openRunlog(ctx context.Context) (*runlog.Log, error) {
	log, err := runlog.Open(cfg.Runlog.Path)
	if err != nil {
		return nil, err
	}
	if err := log.Migrate(ctx); err != nil {
		log.Close() //nolint:errcheck
		return nil, err
	}
	return log, nil
}
