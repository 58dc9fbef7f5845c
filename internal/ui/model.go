package ui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/habatan/internal/converter"
	"github.com/nconklindev/habatan/internal/types"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type state int

const (
	stateFilePicker state = iota
	stateProcessing
	stateComplete
	stateError
)

// Model is the interactive picker: choose a workbook, convert it, show the
// outcome.
type Model struct {
	state        state
	filepicker   filepicker.Model
	spinner      spinner.Model
	opts         converter.Options
	fixedOutput  bool
	selectedFile string
	status       string
	result       *types.ConversionResult
	err          error
	width        int
	height       int
}

type conversionCompleteMsg struct {
	result *types.ConversionResult
	status string
	err    error
}

// InitialModel prepares a picker rooted at the working directory. Unless
// fixedOutput is set, each selected workbook is written next to itself
// with a .csv extension instead of opts.OutputPath.
func InitialModel(opts converter.Options, fixedOutput bool) Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".xls"}
	fp.CurrentDirectory, _ = os.Getwd()

	fp.Styles.Cursor = lipgloss.NewStyle().Foreground(accent)
	fp.Styles.Symlink = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.Directory = lipgloss.NewStyle().Foreground(highlight)
	fp.Styles.File = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	fp.Styles.Permission = lipgloss.NewStyle().Foreground(muted)
	fp.Styles.Selected = lipgloss.NewStyle().Foreground(accent).Bold(true)
	fp.Styles.FileSize = lipgloss.NewStyle().Foreground(muted)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accent)

	return Model{
		state:       stateFilePicker,
		filepicker:  fp,
		spinner:     sp,
		opts:        opts,
		fixedOutput: fixedOutput,
	}
}

// Outcome returns the finished conversion, if any.
func (m Model) Outcome() (*types.ConversionResult, error) {
	return m.result, m.err
}

// SelectedFile returns the workbook chosen in the picker.
func (m Model) SelectedFile() string {
	return m.selectedFile
}

func (m Model) Init() tea.Cmd {
	return m.filepicker.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		height := msg.Height - 12
		if height < 5 {
			height = 5
		}
		m.filepicker.SetHeight(height)

		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case stateFilePicker:
			switch msg.String() {
			case "ctrl+c", "q":
				return m, tea.Quit
			}

		case stateProcessing:
			if msg.String() == "ctrl+c" {
				return m, tea.Quit
			}
			return m, nil

		case stateComplete, stateError:
			switch msg.String() {
			case "ctrl+c", "q", "enter", "esc":
				return m, tea.Quit
			}
			return m, nil
		}

	case conversionCompleteMsg:
		m.status = msg.status
		if msg.err != nil {
			m.err = msg.err
			m.state = stateError
			return m, nil
		}
		m.result = msg.result
		m.state = stateComplete
		return m, nil

	case spinner.TickMsg:
		if m.state != stateProcessing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.state == stateFilePicker {
		var cmd tea.Cmd
		m.filepicker, cmd = m.filepicker.Update(msg)

		if didSelect, path := m.filepicker.DidSelectFile(msg); didSelect {
			m.selectedFile = path
			m.state = stateProcessing
			return m, tea.Batch(m.spinner.Tick, m.convertFile())
		}

		return m, cmd
	}

	return m, nil
}

func (m Model) convertFile() tea.Cmd {
	opts := m.opts
	opts.InputPath = m.selectedFile
	if !m.fixedOutput {
		opts.OutputPath = OutputPathFor(m.selectedFile)
	}

	return func() tea.Msg {
		var status bytes.Buffer
		result, err := converter.Convert(opts, &status)
		return conversionCompleteMsg{result: result, status: status.String(), err: err}
	}
}

// OutputPathFor derives the CSV path written next to a workbook.
func OutputPathFor(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".csv"
}

// FailureMessage formats a conversion error the way it is shown to the
// operator: a missing workbook is called out on its own.
func FailureMessage(input string, err error) string {
	if errors.Is(err, converter.ErrFileNotFound) {
		return fmt.Sprintf("Error: %s not found.", input)
	}
	return fmt.Sprintf("An error occurred: %v", err)
}

func (m Model) View() string {
	switch m.state {
	case stateFilePicker:
		return m.viewFilePicker()
	case stateProcessing:
		return m.viewProcessing()
	case stateComplete:
		return m.viewComplete()
	case stateError:
		return m.viewError()
	}
	return ""
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Habatan - Spreadsheet to CSV"))
	s.WriteString("\n")
	s.WriteString(SubtitleStyle.Render("Select a legacy .xls workbook to convert"))
	s.WriteString("\n\n")
	s.WriteString(m.filepicker.View())
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press q to quit"))

	return s.String()
}

func (m Model) viewProcessing() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("Converting..."))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Reading %s", m.spinner.View(), filepath.Base(m.selectedFile)))

	return BoxStyle.Render(s.String())
}

func (m Model) viewComplete() string {
	var s strings.Builder

	s.WriteString(TitleStyle.Render("✓ Conversion Complete!"))
	s.WriteString("\n\n")
	if status := strings.TrimSpace(m.status); status != "" {
		s.WriteString(InfoStyle.Render(status))
		s.WriteString("\n\n")
	}

	maxPathLen := m.width - 20
	if maxPathLen < 30 {
		maxPathLen = 30
	}

	s.WriteString(fmt.Sprintf("Input:  %s\n", truncatePath(m.result.InputFile, maxPathLen)))
	s.WriteString(SuccessStyle.Render(fmt.Sprintf("Output: %s", truncatePath(m.result.OutputFile, maxPathLen))))
	s.WriteString("\n\n")

	if m.result.HeaderFound() {
		s.WriteString(fmt.Sprintf("Header row: %d (%s)\n", m.result.HeaderRow, m.result.HeaderCell))
	} else {
		s.WriteString("Header row: default (marker not found)\n")
	}
	s.WriteString(fmt.Sprintf("Rows written: %d\n", m.result.RowsWritten))
	if m.result.KeyFound {
		s.WriteString(fmt.Sprintf("Rows dropped (empty %s): %d\n", m.result.KeyColumn, m.result.RowsDropped))
		if m.result.KeyNormalized {
			s.WriteString(fmt.Sprintf("%s stored as integers\n", m.result.KeyColumn))
		}
	}
	s.WriteString("\n")
	s.WriteString(RenderPreview(m.result.Preview, len(m.result.Preview.Rows)))
	s.WriteString("\n")
	s.WriteString(HelpStyle.Render("Press enter to exit"))

	return BoxStyle.Render(s.String())
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(ErrorStyle.Render("✗ Error"))
	s.WriteString("\n\n")
	s.WriteString(FailureMessage(m.selectedFile, m.err))
	s.WriteString("\n\n")
	s.WriteString(HelpStyle.Render("Press enter to exit"))

	return BoxStyle.Render(s.String())
}

// truncatePath keeps the last max-3 runes of path behind an ellipsis.
func truncatePath(path string, max int) string {
	runes := []rune(path)
	if len(runes) <= max {
		return path
	}
	return "..." + string(runes[len(runes)-max+3:])
}
