package ui

import "github.com/charmbracelet/lipgloss"

var (
	accent    = lipgloss.Color("#FF8C42")
	highlight = lipgloss.Color("#FFB84D")
	muted     = lipgloss.Color("#6B7280")
	danger    = lipgloss.Color("#FF4757")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginTop(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginBottom(1)

	InfoStyle = lipgloss.NewStyle().
			Foreground(muted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(danger).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(highlight).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 2)

	PreviewHeaderStyle = lipgloss.NewStyle().
				Foreground(accent).
				Bold(true).
				Padding(0, 1)

	PreviewCellStyle = lipgloss.NewStyle().
				Padding(0, 1)

	PreviewBorderStyle = lipgloss.NewStyle().
				Foreground(muted)
)

var (
	CardWordStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlight).
			MarginTop(1).
			MarginBottom(1)

	CardPosStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(muted)

	CardExampleStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(muted).
				PaddingLeft(1)
)
