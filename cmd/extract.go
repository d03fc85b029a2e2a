package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-labor/occwalk/internal/runlog"
	"github.com/ai-labor/occwalk/pkg/ipums"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Manage IPUMS CPS extracts",
	Long:  "Submit, poll, and download IPUMS CPS microdata extracts via the IPUMS API (v2).",
}

var extractSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new CPS extract",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		samples, _ := cmd.Flags().GetStringSlice("samples")
		variables, _ := cmd.Flags().GetStringSlice("vars")
		desc, _ := cmd.Flags().GetString("desc")
		format, _ := cmd.Flags().GetString("format")

		client, err := ipumsClient()
		if err != nil {
			return err
		}

		number, err := client.SubmitExtract(ctx, ipums.ExtractRequest{
			Description: desc,
			Samples:     samples,
			Variables:   variables,
			DataFormat:  format,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Extract %d submitted\n", number)
		return nil
	},
}

var extractStatusCmd = &cobra.Command{
	Use:   "status <number>",
	Short: "Show the status of an extract",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		number, err := strconv.Atoi(args[0])
		if err != nil {
			return eris.Errorf("invalid extract number %q", args[0])
		}

		client, err := ipumsClient()
		if err != nil {
			return err
		}

		ext, err := client.ExtractStatus(ctx, number)
		if err != nil {
			return err
		}

		fmt.Printf("Extract %d: %s\n", ext.Number, ext.Status)
		return nil
	},
}

var extractDownloadCmd = &cobra.Command{
	Use:   "download <number>",
	Short: "Wait for an extract to complete and download its data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		number, err := strconv.Atoi(args[0])
		if err != nil {
			return eris.Errorf("invalid extract number %q", args[0])
		}
		out, _ := cmd.Flags().GetString("out")
		pollSecs, _ := cmd.Flags().GetInt("poll-every")

		client, err := ipumsClient()
		if err != nil {
			return err
		}

		log, err := openRunlog(ctx)
		if err != nil {
			return err
		}
		defer log.Close() //nolint:errcheck

		runID, err := log.Start(ctx, "extract")
		if err != nil {
			return err
		}

		if err := downloadExtract(cmd, client, log, runID, number, out, pollSecs); err != nil {
			_ = log.Fail(ctx, runID, err.Error())
			return err
		}

		fmt.Printf("Wrote %s\n", out)
		return nil
	},
}

// downloadExtract polls the extract to completion and streams its data
// file to the output path.
func downloadExtract(cmd *cobra.Command, client ipums.Client, log *runlog.Log, runID string, number int, out string, pollSecs int) error {
	ctx := cmd.Context()

	ext, err := client.WaitForCompletion(ctx, number, time.Duration(pollSecs)*time.Second)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return eris.Wrapf(err, "create %s", out)
	}
	defer f.Close() //nolint:errcheck

	if err := client.DownloadData(ctx, ext, f); err != nil {
		return err
	}

	zap.L().Info("extract downloaded", zap.Int("number", number), zap.String("out", out))
	return log.Complete(ctx, runID, 0, map[string]any{
		"extract_number": number,
		"out":            out,
	})
}

// ipumsClient builds an IPUMS API client from configuration.
func ipumsClient() (ipums.Client, error) {
	if cfg.IPUMS.APIKey == "" {
		return nil, eris.New("missing IPUMS API key (set ipums.api_key or OCCWALK_IPUMS_API_KEY)")
	}
	opts := []ipums.Option{ipums.WithCollection(cfg.IPUMS.Collection)}
	if cfg.IPUMS.BaseURL != "" {
		opts = append(opts, ipums.WithBaseURL(cfg.IPUMS.BaseURL))
	}
	return ipums.NewClient(cfg.IPUMS.APIKey, opts...), nil
}

func init() {
	extractSubmitCmd.Flags().StringSlice("samples", nil, "CPS sample ids, e.g. cps2024_03s")
	extractSubmitCmd.Flags().StringSlice("vars", nil, "variables, e.g. OCC,ASECWT,STATEFIP")
	extractSubmitCmd.Flags().String("desc", "CPS extract (API v2)", "extract description")
	extractSubmitCmd.Flags().String("format", "csv", "data format: csv or fixed_width")
	_ = extractSubmitCmd.MarkFlagRequired("samples")
	_ = extractSubmitCmd.MarkFlagRequired("vars")

	extractDownloadCmd.Flags().String("out", "", "output data path")
	extractDownloadCmd.Flags().Int("poll-every", 8, "seconds between status polls")
	_ = extractDownloadCmd.MarkFlagRequired("out")

	extractCmd.AddCommand(extractSubmitCmd)
	extractCmd.AddCommand(extractStatusCmd)
	extractCmd.AddCommand(extractDownloadCmd)
	rootCmd.AddCommand(extractCmd)
}
