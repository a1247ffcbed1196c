package cli

import (
	"encoding/json"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	borderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	footerStyle  = lipgloss.NewStyle().Faint(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	fieldStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
