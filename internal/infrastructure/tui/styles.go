package tui

import "github.com/charmbracelet/lipgloss"

var (
	baseStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#FB542B")).
			PaddingLeft(1).
			PaddingRight(1)

	subtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	statusOn      = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	statusOff     = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
	dryRunStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
	activeProfile = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)
