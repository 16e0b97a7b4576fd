package output

import "github.com/charmbracelet/lipgloss"

// Styles are the lipgloss styles used in text mode.
type Styles struct {
	Header  lipgloss.Style
	Bold    lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Label   lipgloss.Style
}

// NewStyles returns colored styles for a terminal and plain styles
// otherwise.
func NewStyles(isTTY bool) Styles {
	if !isTTY {
		plain := lipgloss.NewStyle()
		return Styles{
			Header:  plain,
			Bold:    plain,
			Success: plain,
			Warning: plain,
			Error:   plain,
			Muted:   plain,
			Label:   plain,
		}
	}
	return Styles{
		Header:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
	}
}
