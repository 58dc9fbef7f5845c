package converter

import (
	"encoding/csv"
	"os"

	"github.com/nconklindev/habatan/internal/types"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// WriteCSV writes the table to path as comma separated UTF-8 with a
// leading byte order mark, overwriting any existing file.
func WriteCSV(path string, t types.Table) (err error) {
	outFile, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := outFile.Close(); err == nil {
			err = cerr
		}
	}()

	bom := transform.NewWriter(outFile, unicode.UTF8BOM.NewEncoder())
	writer := csv.NewWriter(bom)

	if len(t.Columns) > 0 {
		if err := writer.Write(t.Columns); err != nil {
			return err
		}
		if err := writer.WriteAll(t.Rows); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return bom.Close()
}
