package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nconklindev/habatan/internal/cards"
	"github.com/nconklindev/habatan/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRoot_MissingInputIsReported(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "H29.xls")
	output := filepath.Join(dir, "habatan.csv")

	out, err := execute(t, input, output)
	require.NoError(t, err)
	assert.Contains(t, out, "Error: "+input+" not found.")
	assert.NotContains(t, out, "Reading Excel file")

	_, statErr := os.Stat(output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRoot_MalformedWorkbookIsReported(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.xls")
	require.NoError(t, os.WriteFile(input, []byte("not a workbook"), 0o644))

	out, err := execute(t, input, filepath.Join(dir, "out.csv"))
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "Reading Excel file...")
	assert.Contains(t, out, "An error occurred: open workbook")
	assert.NotContains(t, out, "read:")
}

func TestRoot_TooManyArgs(t *testing.T) {
	_, err := execute(t, "a.xls", "b.csv", "c")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "habatan dev\ncommit: none\nbuilt: unknown\n", out)

	out, err = execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "habatan dev")
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		env      map[string]string
		expected settings
	}{
		{
			name: "Defaults",
			expected: settings{
				Input:   "H29_Habatanforstudents.xls",
				Output:  "habatan.csv",
				Marker:  "番号",
				Key:     "番号",
				Charset: "utf-8",
				Preview: 5,
			},
		},
		{
			name: "Positional arguments",
			args: []string{"in.xls", "out.csv"},
			expected: settings{
				Input:   "in.xls",
				Output:  "out.csv",
				Marker:  "番号",
				Key:     "番号",
				Charset: "utf-8",
				Preview: 5,
			},
		},
		{
			name: "Environment",
			args: []string{"in.xls"},
			env: map[string]string{
				"HABATAN_MARKER":  "No.",
				"HABATAN_KEY":     "ID",
				"HABATAN_PREVIEW": "10",
				"HABATAN_OUTPUT":  "env.csv",
			},
			expected: settings{
				Input:   "in.xls",
				Output:  "env.csv",
				Marker:  "No.",
				Key:     "ID",
				Charset: "utf-8",
				Preview: 10,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, val := range tt.env {
				t.Setenv(k, val)
			}
			v := newViper()
			require.NoError(t, initConfig(v, filepath.Join(writeConfig(t, ""), "habatan.yaml"), &bytes.Buffer{}))
			assert.Equal(t, tt.expected, resolve(v, tt.args))
		})
	}
}

func TestInitConfig_File(t *testing.T) {
	dir := writeConfig(t, "marker: 単語\nkey: ID\ncharset: shift_jis\npreview: 3\n")

	v := newViper()
	var stderr bytes.Buffer
	require.NoError(t, initConfig(v, filepath.Join(dir, "habatan.yaml"), &stderr))
	assert.Contains(t, stderr.String(), "Using config file:")

	s := resolve(v, nil)
	assert.Equal(t, "単語", s.Marker)
	assert.Equal(t, "ID", s.Key)
	assert.Equal(t, "shift_jis", s.Charset)
	assert.Equal(t, 3, s.Preview)
	assert.Equal(t, "habatan.csv", s.Output)
}

func TestInitConfig_MissingExplicitFile(t *testing.T) {
	v := newViper()
	err := initConfig(v, filepath.Join(t.TempDir(), "nope.yaml"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestSettingsOptions(t *testing.T) {
	s := settings{Input: "in.xls", Output: "out.csv", Marker: "m", Key: "k", Charset: "", Preview: 2}
	opts := s.options()
	assert.Equal(t, "in.xls", opts.InputPath)
	assert.Equal(t, "out.csv", opts.OutputPath)
	assert.Equal(t, "m", opts.Marker)
	assert.Equal(t, "k", opts.KeyColumn)
	assert.Equal(t, 2, opts.PreviewRows)
	assert.NotNil(t, opts.Reader)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "habatan.yaml"), []byte(content), 0o644))
	return dir
}

func TestLoadDeck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habatan.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeff番号,単語,品詞,意味,例文\n1,apple,名詞,りんご,I ate an apple.\n2,run,動詞,走る,He runs fast.\n"), 0o644))

	var out bytes.Buffer
	deck, err := loadDeck(&out, path, false)
	require.NoError(t, err)
	require.NotNil(t, deck)
	assert.Equal(t, 2, deck.Len())
	assert.Empty(t, out.String())

	deck, err = loadDeck(&out, path, true)
	require.NoError(t, err)
	assert.True(t, deck.Shuffled())
}

func TestLoadDeck_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habatan.csv")

	var out bytes.Buffer
	deck, err := loadDeck(&out, path, false)
	require.NoError(t, err)
	assert.Nil(t, deck)
	assert.Contains(t, out.String(), "Error: "+path+" not found.")
}

func TestLoadDeck_NoCards(t *testing.T) {
	path := filepath.Join(t.TempDir(), "habatan.csv")
	require.NoError(t, os.WriteFile(path, []byte("番号,単語,品詞,意味,例文\n"), 0o644))

	var out bytes.Buffer
	deck, err := loadDeck(&out, path, false)
	assert.ErrorIs(t, err, errReported)
	assert.Nil(t, deck)
	assert.Contains(t, out.String(), "An error occurred: no cards in "+path)
}

func TestCards_MissingFileIsReported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.csv")

	out, err := execute(t, "cards", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Error: "+path+" not found.")
}

func TestPrintBookmarks(t *testing.T) {
	deck := cards.NewDeck([]types.Card{
		{ID: "1", Word: "apple", Meaning: "りんご"},
		{ID: "2", Word: "run", Meaning: "走る"},
	})

	var out bytes.Buffer
	printBookmarks(&out, deck)
	assert.Empty(t, out.String())

	deck.Next()
	deck.ToggleBookmark()
	printBookmarks(&out, deck)
	assert.Equal(t, "Bookmarked words (1):\n  2  run  走る\n", out.String())
}
