package main

import (
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ai-labor/occwalk/internal/fetcher"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the Census crosswalk workbook",
	Long: `Downloads the occupation workbook to a local path.

With --etag, the download is conditional: when the server reports the
content unchanged (304), the local file is left alone.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		url, _ := cmd.Flags().GetString("url")
		out, _ := cmd.Flags().GetString("out")
		etag, _ := cmd.Flags().GetString("etag")
		if url == "" {
			url = cfg.Crosswalk.SourceURL
		}

		f := fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			MaxRetries: cfg.Fetch.MaxRetries,
		})

		zap.L().Info("downloading workbook", zap.String("url", url), zap.String("out", out))

		if etag != "" {
			body, newTag, changed, err := f.DownloadIfChanged(ctx, url, etag)
			if err != nil {
				return err
			}
			if !changed {
				fmt.Printf("Not modified (etag %s); kept %s\n", etag, out)
				return nil
			}
			defer body.Close() //nolint:errcheck

			n, err := writeFile(out, body)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s (%d bytes, etag %s)\n", out, n, newTag)
			return nil
		}

		n, err := f.DownloadToFile(ctx, url, out)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d bytes)\n", out, n)
		return nil
	},
}

func writeFile(path string, r io.Reader) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, eris.Wrapf(err, "create %s", path)
	}
	defer file.Close() //nolint:errcheck

	n, err := io.Copy(file, r)
	if err != nil {
		return n, eris.Wrapf(err, "write %s", path)
	}
	return n, nil
}

func init() {
	fetchCmd.Flags().String("url", "", "workbook URL (default: Census 2018 crosswalk)")
	fetchCmd.Flags().String("out", "", "destination path for the .xlsx file")
	fetchCmd.Flags().String("etag", "", "ETag from a previous fetch; skip download when unchanged")
	_ = fetchCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(fetchCmd)
}
