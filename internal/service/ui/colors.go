package ui

import "github.com/charmbracelet/lipgloss"

// ANSI palette colors so the output follows the terminal theme.
var (
	// TitleStyle is used for section headers.
	TitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true).MarginBottom(1)

	UsageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))

	// DescStyle dims descriptions and labels.
	DescStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	FlagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))

	OKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	WarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
)
