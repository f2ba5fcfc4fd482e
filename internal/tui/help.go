package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard Shortcuts")
	sections = append(sections, title)

	// Navigation section
	navSection := m.renderSection("Navigation", []keyHelp{
		{"1", "Dashboard"},
		{"2", "Duration curves"},
		{"3", "Peak records"},
		{"4", "Forecast"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	})
	sections = append(sections, navSection)

	// Curves keys
	curvesSection := m.renderSection("Duration Curves", []keyHelp{
		{"s", "Cycle sport (Ride / Run / Swim)"},
		{"m", "Cycle metric (power / speed / heart rate)"},
		{"w", "Cycle lookback window (42 / 90 / 365 days)"},
		{"r", "Refresh"},
	})
	sections = append(sections, curvesSection)

	// Forecast keys
	forecastSection := m.renderSection("Forecast", []keyHelp{
		{"+ / -", "Move the simulated race a week later / earlier"},
		{"r", "Refresh"},
	})
	sections = append(sections, forecastSection)

	// Metrics explanation
	metricsSection := m.renderMetricsHelp()
	sections = append(sections, metricsSection)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Metrics Explained"))
	lines = append(lines, "")

	metrics := []struct {
		name string
		desc string
	}{
		{"Stress Score", "One number per activity combining duration and intensity. 100 = one hour at threshold."},
		{"CTL (Fitness)", "Chronic training load - exponentially weighted 42 day stress average."},
		{"ATL (Fatigue)", "Acute training load - exponentially weighted 7 day stress average."},
		{"TSB (Form)", "Training stress balance = CTL - ATL. Positive = fresh, negative = fatigued."},
		{"Ramp Rate", "CTL gained over the trailing week. Above 8/week risks overtraining."},
		{"Duration Curve", "Best average power/speed/HR held for each window, over a lookback period."},
	}


	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+mutedStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
