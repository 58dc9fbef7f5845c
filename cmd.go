package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nconklindev/habatan/internal/cards"
	"github.com/nconklindev/habatan/internal/converter"
	"github.com/nconklindev/habatan/internal/sheet"
	"github.com/nconklindev/habatan/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("conversion failed")

func newRootCmd() *cobra.Command {
	v := newViper()
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "habatan [input.xls] [output.csv]",
		Short: "Convert a legacy .xls workbook to CSV",
		Long: `habatan converts the first sheet of a legacy Excel (.xls) workbook to a
UTF-8 CSV file with a byte order mark.

The header row is the first row containing the marker text. Rows with an
empty key column are dropped, and the key column is written as integers
when every value is a whole number.`,
		Args:          cobra.MaximumNArgs(2),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initConfig(v, cfgFile, cmd.ErrOrStderr()); err != nil {
				return err
			}
			return bindFlags(v, cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd.OutOrStdout(), resolve(v, args))
		},
	}
	rootCmd.SetVersionTemplate(versionLine())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./habatan.yaml or ~/.config/habatan/habatan.yaml)")
	addConversionFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newPickCmd(v), newCardsCmd(v), newVersionCmd())
	return rootCmd
}

func addConversionFlags(fs *pflag.FlagSet) {
	fs.StringP(keyOutput, "o", converter.DefaultOutputFile, "output CSV path")
	fs.String(keyMarker, converter.DefaultKeyColumn, "text that identifies the header row")
	fs.String(keyKey, converter.DefaultKeyColumn, "column whose empty rows are dropped and whose values become integers")
	fs.String(keyCharset, sheet.DefaultCharset, "charset for byte strings in older (BIFF5) workbooks")
	fs.Int(keyPreview, converter.DefaultPreviewRows, "number of rows to preview after conversion")
}

// runConvert performs one conversion and reports the outcome. A missing
// input file is a normal outcome; any other failure yields errReported.
func runConvert(out io.Writer, s settings) error {
	rep := ui.NewReporter(out)

	result, err := converter.Convert(s.options(), out)
	if err != nil {
		rep.Failure(s.Input, err)
		if errors.Is(err, converter.ErrFileNotFound) {
			return nil
		}
		return errReported
	}

	rep.Result(result)
	return nil
}

func newPickCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Choose a workbook interactively and convert it",
		Long: `pick opens a file browser rooted at the working directory. The selected
workbook is converted next to itself (book.xls -> book.csv) unless --output
is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := resolve(v, nil)
			fixedOutput := cmd.Flags().Changed(keyOutput)

			p := tea.NewProgram(ui.InitialModel(s.options(), fixedOutput), tea.WithAltScreen())
			final, err := p.Run()
			if err != nil {
				return fmt.Errorf("running picker: %w", err)
			}

			m, ok := final.(ui.Model)
			if !ok || m.SelectedFile() == "" {
				return nil
			}

			rep := ui.NewReporter(cmd.OutOrStdout())
			result, convErr := m.Outcome()
			switch {
			case convErr != nil:
				rep.Failure(m.SelectedFile(), convErr)
				if !errors.Is(convErr, converter.ErrFileNotFound) {
					return errReported
				}
			case result != nil:
				rep.Result(result)
			}
			return nil
		},
	}
}

func newCardsCmd(v *viper.Viper) *cobra.Command {
	var shuffle bool

	cmd := &cobra.Command{
		Use:   "cards [file.csv]",
		Short: "Study a converted word list as flashcards",
		Long: `cards shows each row of a converted CSV as a flashcard: the word first,
then its part of speech, meaning and example. Bookmarked words are listed
on exit. The file defaults to the configured output path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := resolve(v, nil).Output
			if len(args) > 0 {
				path = args[0]
			}

			deck, err := loadDeck(cmd.OutOrStdout(), path, shuffle)
			if err != nil || deck == nil {
				return err
			}

			p := tea.NewProgram(ui.NewCardsModel(deck, path), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running flashcards: %w", err)
			}

			printBookmarks(cmd.OutOrStdout(), deck)
			return nil
		},
	}
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "start with the cards in random order")
	return cmd
}

// loadDeck reads the cards at path. Like a missing workbook, a missing
// CSV is reported and yields a nil deck without an error.
func loadDeck(out io.Writer, path string, shuffle bool) (*cards.Deck, error) {
	rep := ui.NewReporter(out)

	loaded, err := cards.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			rep.Failure(path, fmt.Errorf("%w: %s", converter.ErrFileNotFound, path))
			return nil, nil
		}
		rep.Failure(path, err)
		return nil, errReported
	}

	deck := cards.NewDeck(loaded)
	if shuffle {
		deck.SetShuffle(true)
	}
	return deck, nil
}

func printBookmarks(out io.Writer, deck *cards.Deck) {
	marked := deck.Bookmarked()
	if len(marked) == 0 {
		return
	}
	fmt.Fprintf(out, "Bookmarked words (%d):\n", len(marked))
	for _, c := range marked {
		fmt.Fprintf(out, "  %s  %s  %s\n", c.ID, c.Word, c.Meaning)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of habatan",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), versionLine())
		},
	}
}

func versionLine() string {
	return fmt.Sprintf("habatan %s\ncommit: %s\nbuilt: %s\n", version, commit, date)
}
