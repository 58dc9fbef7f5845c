package converter

import (
	"testing"

	"github.com/nconklindev/habatan/internal/types"

	"github.com/stretchr/testify/assert"
)

func keyTable(keys ...string) types.Table {
	t := types.Table{Columns: []string{"番号", "単語"}}
	for i, k := range keys {
		t.Rows = append(t.Rows, []string{k, string(rune('a' + i))})
	}
	return t
}

func TestDropMissing(t *testing.T) {
	table := keyTable("1", "", "3", "   ", "N/A", "NA", "null", "n.a.")

	dropped, found := DropMissing(&table, "番号")
	assert.True(t, found)
	assert.Equal(t, 4, dropped)
	assert.Equal(t, [][]string{{"1", "a"}, {"3", "c"}, {"   ", "d"}, {"n.a.", "h"}}, table.Rows)
}

func TestIsMissing(t *testing.T) {
	for _, s := range []string{"", "NA", "N/A", "#N/A", "NaN", "nan", "NULL", "None", "<NA>"} {
		assert.True(t, isMissing(s), "%q", s)
	}
	for _, s := range []string{" ", "0", "na", "Null", "none", "番号"} {
		assert.False(t, isMissing(s), "%q", s)
	}
}

func TestDropMissing_NoKeyColumn(t *testing.T) {
	table := keyTable("1", "")

	dropped, found := DropMissing(&table, "No.")
	assert.False(t, found)
	assert.Zero(t, dropped)
	assert.Len(t, table.Rows, 2)
}

func TestNormalizeInteger(t *testing.T) {
	tests := []struct {
		name     string
		keys     []string
		expected []string
		ok       bool
	}{
		{"Integers", []string{"1", "2", "3"}, []string{"1", "2", "3"}, true},
		{"Padded integers", []string{" 1", "02", "+3"}, []string{"1", "2", "3"}, true},
		{"Whole decimals", []string{"1.0", "2.00"}, []string{"1", "2"}, true},
		{"Negative", []string{"-4"}, []string{"-4"}, true},
		{"Text value", []string{"1", "2", "x"}, []string{"1", "2", "x"}, false},
		{"Fraction", []string{"1.0", "1.5"}, []string{"1.0", "1.5"}, false},
		{"No rows", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := keyTable(tt.keys...)
			got := NormalizeInteger(&table, "番号")
			assert.Equal(t, tt.ok, got)

			var keys []string
			for _, row := range table.Rows {
				keys = append(keys, row[0])
			}
			assert.Equal(t, tt.expected, keys)
		})
	}
}

func TestNormalizeInteger_NoKeyColumn(t *testing.T) {
	table := keyTable("1")
	assert.False(t, NormalizeInteger(&table, "No."))
}

func TestParseInteger(t *testing.T) {
	tests := []struct {
		input string
		want  int64
		ok    bool
	}{
		{"1", 1, true},
		{"  42 ", 42, true},
		{"3.0", 3, true},
		{"1e3", 1000, true},
		{"1.5", 0, false},
		{"", 0, false},
		{"x", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"1e30", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseInteger(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
