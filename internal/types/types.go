package types

// ConversionResult summarizes a finished spreadsheet to CSV conversion.
type ConversionResult struct {
	InputFile  string
	OutputFile string
	// HeaderRow is the zero-based physical row used for column names, or -1
	// when no row contained the marker text.
	HeaderRow     int
	HeaderCell    string
	Columns       []string
	RowsWritten   int
	RowsDropped   int
	KeyColumn     string
	KeyFound      bool
	KeyNormalized bool
	Preview       Table
}

// HeaderFound reports whether the marker text located the header row.
func (r *ConversionResult) HeaderFound() bool {
	return r.HeaderRow >= 0
}

// RawTable is a sheet loaded without header semantics. Every row has the
// same width and row i is physical row i of the sheet.
type RawTable [][]string

// Width returns the number of columns in the table.
func (t RawTable) Width() int {
	if len(t) == 0 {
		return 0
	}
	return len(t[0])
}

// Table is a sheet after its header row has been applied.
type Table struct {
	Columns []string
	Rows    [][]string
}

// ColumnIndex returns the position of the column with exactly the given
// name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Head returns a copy of the table limited to its first n rows.
func (t *Table) Head(n int) Table {
	if n < 0 {
		n = 0
	}
	if n > len(t.Rows) {
		n = len(t.Rows)
	}
	head := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([][]string, n),
	}
	for i := 0; i < n; i++ {
		head.Rows[i] = append([]string(nil), t.Rows[i]...)
	}
	return head
}

// Card is one vocabulary entry of a converted word list.
type Card struct {
	ID         string
	Word       string
	Pos        string
	Meaning    string
	Example    string
	Bookmarked bool
}
