// Package sheet loads the first worksheet of a legacy (BIFF) .xls workbook
// into a header-less table of cell text.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nconklindev/habatan/internal/types"

	"github.com/extrame/xls"
)

// DefaultCharset is used to decode byte strings in BIFF5 workbooks. BIFF8
// workbooks store text as UTF-16 and ignore it.
const DefaultCharset = "utf-8"

var ErrNoSheets = errors.New("workbook has no sheets")

// Reader loads the first sheet of a workbook with no header interpretation.
type Reader interface {
	ReadFirstSheet(path string) (types.RawTable, error)
}

// XLSReader reads legacy .xls workbooks.
type XLSReader struct {
	Charset string
}

func NewXLSReader(charset string) *XLSReader {
	if strings.TrimSpace(charset) == "" {
		charset = DefaultCharset
	}
	return &XLSReader{Charset: charset}
}

// ReadFirstSheet returns every physical row of the first sheet, padded to a
// common width. Rows missing from the file come back empty so that row
// indexes match the sheet. Trailing empty rows are dropped.
//
// Text cells come from extrame/xls. Numbers, booleans and cached formula
// results are decoded by scanFirstSheet and take precedence.
func (r *XLSReader) ReadFirstSheet(path string) (raw types.RawTable, err error) {
	// The BIFF parser panics on some truncated or corrupt streams.
	defer func() {
		if p := recover(); p != nil {
			raw = nil
			err = fmt.Errorf("malformed workbook %s: %v", path, p)
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	charset := r.Charset
	if charset == "" {
		charset = DefaultCharset
	}

	values, err := scanFirstSheet(f, charset)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	wb, err := xls.OpenReader(f, charset)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, ErrNoSheets
	}

	ws := wb.GetSheet(0)
	if ws == nil {
		return nil, ErrNoSheets
	}

	last := max(int(ws.MaxRow), values.maxRow())
	rows := make([][]string, 0, last+1)
	for i := 0; i <= last; i++ {
		rows = append(rows, mergeRow(ws.Row(i), values[i]))
	}

	return Rectangular(rows), nil
}

// mergeRow renders one sheet row. row is nil when the sheet has no record
// for it. Trailing empty cells are trimmed so that the ROW record's column
// bound does not widen the table.
func mergeRow(row *xls.Row, values map[int]string) []string {
	width := 0
	if row != nil {
		width = row.LastCol() + 1
	}
	for col := range values {
		width = max(width, col+1)
	}

	cells := make([]string, width)
	for j := range cells {
		if v, ok := values[j]; ok {
			cells[j] = v
			continue
		}
		if row != nil {
			cells[j] = row.Col(j)
		}
	}

	end := len(cells)
	for end > 0 && cells[end-1] == "" {
		end--
	}
	return cells[:end]
}

// Rectangular pads rows to the width of the widest row and drops trailing
// rows with no content.
func Rectangular(rows [][]string) types.RawTable {
	end := len(rows)
	for end > 0 && IsBlank(rows[end-1]) {
		end--
	}
	rows = rows[:end]

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}

	raw := make(types.RawTable, len(rows))
	for i, row := range rows {
		padded := make([]string, width)
		copy(padded, row)
		raw[i] = padded
	}
	return raw
}

// IsBlank reports whether every cell of row is empty.
func IsBlank(row []string) bool {
	for _, cell := range row {
		if cell != "" {
			return false
		}
	}
	return true
}
