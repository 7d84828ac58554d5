// Package ui renders the progress lines and the end-of-run summary block.
package ui

import "github.com/charmbracelet/lipgloss"

// Lipgloss styles used across the CLI output.
var (
	ruleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // Dim gray

	commandStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86")) // Cyan

	summaryTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FFF")).
				Background(lipgloss.Color("63")). // Purple
				Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")) // Light gray

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("46")) // Green

	failureStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")) // Red
)
