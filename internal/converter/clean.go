package converter

import (
	"math"
	"strconv"
	"strings"

	"github.com/nconklindev/habatan/internal/types"
)

// DropMissing removes rows whose value in column key is empty or one of the
// NA markers (naValues). It returns
// the number of rows removed and whether the column exists; a missing
// column leaves the table untouched.
func DropMissing(t *types.Table, key string) (dropped int, found bool) {
	idx := t.ColumnIndex(key)
	if idx < 0 {
		return 0, false
	}

	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if isMissing(row[idx]) {
			dropped++
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept
	return dropped, true
}

// NormalizeInteger rewrites every value of column key in integer form, but
// only if all of them convert. Otherwise the column is left as it was and
// false is returned.
func NormalizeInteger(t *types.Table, key string) bool {
	idx := t.ColumnIndex(key)
	if idx < 0 {
		return false
	}

	values := make([]int64, len(t.Rows))
	for i, row := range t.Rows {
		n, ok := parseInteger(row[idx])
		if !ok {
			return false
		}
		values[i] = n
	}

	for i, row := range t.Rows {
		row[idx] = strconv.FormatInt(values[i], 10)
	}
	return true
}

// naValues are the cell texts read as missing in addition to the empty
// string. Whitespace-only values are not missing.
var naValues = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {},
	"N/A": {}, "NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {},
	"nan": {}, "null": {},
}

func isMissing(s string) bool {
	if s == "" {
		return true
	}
	_, ok := naValues[s]
	return ok
}

// parseInteger accepts base-10 integers and whole-valued decimals ("3.0").
func parseInteger(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, true
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
