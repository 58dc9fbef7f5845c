package ui

import (
	"strings"

	"github.com/nconklindev/habatan/internal/types"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// RenderPreview draws the first n rows of t as a bordered table. Newlines
// inside cells are flattened so each record stays on one line.
func RenderPreview(t types.Table, n int) string {
	if len(t.Columns) == 0 {
		return InfoStyle.Render("(empty)")
	}

	head := t.Head(n)
	rows := make([][]string, len(head.Rows))
	for i, row := range head.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = flatten(cell)
		}
		rows[i] = cells
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(PreviewBorderStyle).
		Headers(head.Columns...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return PreviewHeaderStyle
			}
			return PreviewCellStyle
		}).
		String()
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func flatten(s string) string {
	return lineBreaks.Replace(s)
}
