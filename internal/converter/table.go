package converter

import (
	"fmt"

	"github.com/nconklindev/habatan/internal/sheet"
	"github.com/nconklindev/habatan/internal/types"
)

// BuildTable applies the header at physical row headerRow to raw. Rows
// above the header are discarded and blank rows below it are skipped.
// A negative headerRow selects the first non-blank row.
func BuildTable(raw types.RawTable, headerRow int) types.Table {
	if headerRow < 0 {
		headerRow = firstNonBlankRow(raw)
	}
	if headerRow < 0 || headerRow >= len(raw) {
		return types.Table{Columns: []string{}, Rows: [][]string{}}
	}

	table := types.Table{
		Columns: ColumnNames(raw[headerRow]),
		Rows:    make([][]string, 0, len(raw)-headerRow-1),
	}
	for _, row := range raw[headerRow+1:] {
		if sheet.IsBlank(row) {
			continue
		}
		table.Rows = append(table.Rows, append([]string(nil), row...))
	}
	return table
}

// ColumnNames turns header cells into unique column names. Blank cells
// become "Unnamed: <index>" and repeated names get ".1", ".2", ...
// appended in order of appearance.
func ColumnNames(cells []string) []string {
	names := make([]string, len(cells))
	used := make(map[string]bool, len(cells))
	counts := make(map[string]int, len(cells))

	for i, cell := range cells {
		name := cell
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		base := name
		for used[name] {
			counts[base]++
			name = fmt.Sprintf("%s.%d", base, counts[base])
		}
		used[name] = true
		names[i] = name
	}
	return names
}

func firstNonBlankRow(raw types.RawTable) int {
	for i, row := range raw {
		if !sheet.IsBlank(row) {
			return i
		}
	}
	return -1
}
