package converter

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/nconklindev/habatan/internal/sheet"
	"github.com/nconklindev/habatan/internal/types"

	"github.com/xuri/excelize/v2"
)

const (
	DefaultInputFile  = "H29_Habatanforstudents.xls"
	DefaultOutputFile = "habatan.csv"
	// DefaultKeyColumn doubles as the header marker text.
	DefaultKeyColumn   = "番号"
	DefaultPreviewRows = 5
)

// Options controls a single conversion run.
type Options struct {
	InputPath  string
	OutputPath string
	// Marker is the substring searched for to locate the header row.
	Marker string
	// KeyColumn names the column used for row filtering and integer
	// normalization. It need not equal Marker.
	KeyColumn   string
	PreviewRows int
	Reader      sheet.Reader
}

// DefaultOptions returns options for the stock habatan workbook.
func DefaultOptions() Options {
	return Options{
		InputPath:   DefaultInputFile,
		OutputPath:  DefaultOutputFile,
		Marker:      DefaultKeyColumn,
		KeyColumn:   DefaultKeyColumn,
		PreviewRows: DefaultPreviewRows,
		Reader:      sheet.NewXLSReader(sheet.DefaultCharset),
	}
}

// Convert reads the first sheet of opts.InputPath, locates the header row,
// cleans the key column and writes the table to opts.OutputPath as CSV.
// Progress lines are written to w.
//
// A missing input file is reported as ErrFileNotFound before the reader is
// used. Every other failure is a *ConversionError.
func Convert(opts Options, w io.Writer) (*types.ConversionResult, error) {
	if w == nil {
		w = io.Discard
	}
	if opts.Reader == nil {
		opts.Reader = sheet.NewXLSReader(sheet.DefaultCharset)
	}

	info, err := os.Stat(opts.InputPath)
	switch {
	case errors.Is(err, fs.ErrNotExist), err == nil && info.IsDir():
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, opts.InputPath)
	case err != nil:
		return nil, newConversionError(StageRead, err)
	}

	fmt.Fprintln(w, "Reading Excel file...")
	raw, err := opts.Reader.ReadFirstSheet(opts.InputPath)
	if err != nil {
		return nil, newConversionError(StageRead, err)
	}

	headerRow, headerCol := FindHeaderRow(raw, opts.Marker)
	headerCell := ""
	if headerRow < 0 {
		fmt.Fprintf(w, "Could not find header row containing '%s'. Using default header.\n", opts.Marker)
	} else {
		headerCell = cellRef(headerCol, headerRow)
		fmt.Fprintf(w, "Found header at row %d (%s).\n", headerRow, headerCell)
	}

	table := BuildTable(raw, headerRow)

	dropped, keyFound := DropMissing(&table, opts.KeyColumn)
	normalized := false
	if keyFound {
		normalized = NormalizeInteger(&table, opts.KeyColumn)
	}

	if err := WriteCSV(opts.OutputPath, table); err != nil {
		return nil, newConversionError(StageExport, err)
	}

	return &types.ConversionResult{
		InputFile:     opts.InputPath,
		OutputFile:    opts.OutputPath,
		HeaderRow:     headerRow,
		HeaderCell:    headerCell,
		Columns:       table.Columns,
		RowsWritten:   len(table.Rows),
		RowsDropped:   dropped,
		KeyColumn:     opts.KeyColumn,
		KeyFound:      keyFound,
		KeyNormalized: normalized,
		Preview:       table.Head(opts.PreviewRows),
	}, nil
}

// FindHeaderRow returns the first row, and the first column within it, whose
// cell text contains marker. Both are -1 when no cell matches.
func FindHeaderRow(raw types.RawTable, marker string) (row, col int) {
	for i, cells := range raw {
		for j, cell := range cells {
			if strings.Contains(cell, marker) {
				return i, j
			}
		}
	}
	return -1, -1
}

// cellRef converts zero-based coordinates to an A1 reference.
func cellRef(col, row int) string {
	ref, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Sprintf("R%dC%d", row+1, col+1)
	}
	return ref
}
