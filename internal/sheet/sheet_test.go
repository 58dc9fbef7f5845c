package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nconklindev/habatan/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectangular(t *testing.T) {
	tests := []struct {
		name     string
		rows     [][]string
		expected types.RawTable
	}{
		{
			name:     "Empty sheet",
			rows:     nil,
			expected: types.RawTable{},
		},
		{
			name: "Pads short rows",
			rows: [][]string{
				{"Title"},
				{"番号", "単語", "意味"},
				{"1", "apple"},
			},
			expected: types.RawTable{
				{"Title", "", ""},
				{"番号", "単語", "意味"},
				{"1", "apple", ""},
			},
		},
		{
			name: "Keeps missing rows as blank",
			rows: [][]string{
				nil,
				{"番号", "単語"},
			},
			expected: types.RawTable{
				{"", ""},
				{"番号", "単語"},
			},
		},
		{
			name: "Drops trailing blank rows",
			rows: [][]string{
				{"番号"},
				{"1"},
				{""},
				nil,
			},
			expected: types.RawTable{
				{"番号"},
				{"1"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rectangular(tt.rows)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(nil))
	assert.True(t, IsBlank([]string{"", ""}))
	assert.False(t, IsBlank([]string{"", " "}))
	assert.False(t, IsBlank([]string{"1"}))
}

func TestNewXLSReaderDefaultsCharset(t *testing.T) {
	assert.Equal(t, DefaultCharset, NewXLSReader("").Charset)
	assert.Equal(t, "shift_jis", NewXLSReader("shift_jis").Charset)
}

func TestXLSReader_MissingFile(t *testing.T) {
	r := NewXLSReader("")
	_, err := r.ReadFirstSheet(filepath.Join(t.TempDir(), "missing.xls"))
	require.Error(t, err)
	assert.True(t, os.IsNotExist(err))
}

func TestXLSReader_NotAWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.xls")
	require.NoError(t, os.WriteFile(path, []byte("this is not a workbook"), 0o644))

	raw, err := NewXLSReader("").ReadFirstSheet(path)
	require.Error(t, err)
	assert.Nil(t, raw)
}

func TestXLSReader_Workbook(t *testing.T) {
	raw, err := NewXLSReader("").ReadFirstSheet(filepath.Join("testdata", "habatan.xls"))
	require.NoError(t, err)

	blank := []string{"", "", "", "", "", ""}
	expected := types.RawTable{
		{"H29 はばたん 単語リスト", "", "", "", "", ""},
		blank, // row with no record in the file
		{"番号", "単語", "品詞", "意味", "例文", "登録日"},
		{"1", "apple", "名詞", "りんご", "I ate an apple.", "2017-04-01"},
		blank, // formatted blank cells only
		{"2", "run", "動詞", "走る", "He runs fast.", "2017-04-02"},
		{"", "bright", "形容詞", "明るい", "", ""},
		{"4", "quickly", "副詞", "速く", "She ran quickly.", "2017-04-03"},
	}
	assert.Equal(t, expected, raw)
}

func TestMergeRow(t *testing.T) {
	tests := []struct {
		name     string
		values   map[int]string
		expected []string
	}{
		{
			name:     "No record and no values",
			values:   nil,
			expected: []string{},
		},
		{
			name:     "Values only",
			values:   map[int]string{0: "1", 2: "2017-04-01"},
			expected: []string{"1", "", "2017-04-01"},
		},
		{
			name:     "Trailing empty values are trimmed",
			values:   map[int]string{0: "1", 3: ""},
			expected: []string{"1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, mergeRow(nil, tt.values))
		})
	}
}
