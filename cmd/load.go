package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/ai-labor/occwalk/internal/crosswalk"
	"github.com/ai-labor/occwalk/internal/store"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load a crosswalk CSV into Postgres",
	Long:  "Loads an occ,soc CSV into the crosswalk.occ_soc table for downstream joins.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		csvPath, _ := cmd.Flags().GetString("csv")
		replace, _ := cmd.Flags().GetBool("replace")

		if cfg.Store.DatabaseURL == "" {
			return eris.New("no database_url configured (set store.database_url or OCCWALK_STORE_DATABASE_URL)")
		}

		rows, err := readCrosswalkCSV(csvPath)
		if err != nil {
			return err
		}

		st, err := store.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return err
		}

		n, err := st.Load(ctx, rows, replace)
		if err != nil {
			return err
		}

		fmt.Printf("Loaded %d rows into crosswalk.occ_soc\n", n)
		return nil
	},
}

func init() {
	loadCmd.Flags().String("csv", "", "path to the occ,soc CSV")
	loadCmd.Flags().Bool("replace", false, "truncate the table before loading")
	_ = loadCmd.MarkFlagRequired("csv")
	rootCmd.AddCommand(loadCmd)
}

// readCrosswalkCSV parses an occ,soc CSV produced by the build command.
func readCrosswalkCSV(path string) ([]crosswalk.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "read header of %s", path)
	}
	if len(header) < 2 || header[0] != "occ" || header[1] != "soc" {
		return nil, eris.Errorf("%s: expected header occ,soc; got %v", path, header)
	}

	var rows []crosswalk.Row
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", path)
		}
		if len(rec) < 2 {
			continue
		}
		rows = append(rows, crosswalk.Row{Occ: rec[0], Soc: rec[1]})
	}
	return rows, nil
}
