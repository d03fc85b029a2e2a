package crosswalk

import (
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
)

// WriteCSV serializes rows as two-column CSV with header "occ,soc".
func WriteCSV(w io.Writer, rows []Row) error {
	b, err := csvutil.Marshal(rows)
	if err != nil {
		return eris.Wrap(err, "export: marshal csv")
	}
	if _, err := w.Write(b); err != nil {
		return eris.Wrap(err, "export: write csv")
	}
	return nil
}

// WriteCSVFile writes the crosswalk CSV to a file path.
func WriteCSVFile(path string, rows []Row) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	if err := WriteCSV(f, rows); err != nil {
		return err
	}
	return eris.Wrapf(f.Sync(), "export: sync %s", path)
}
