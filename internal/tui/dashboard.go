package tui

import (
	"fmt"

	"trainload/internal/analysis"
	"trainload/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	athleteID    int64
	units        Units
	data         *service.DashboardData
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService, athleteID int64, units Units) DashboardModel {
	return DashboardModel{
		queryService: qs,
		athleteID:    athleteID,
		units:        units,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queryService.GetDashboardData(m.athleteID)
	if err != nil {
		return dashboardDataMsg{err: err}
	}
	return dashboardDataMsg{data: data}
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.data == nil || m.data.AsOf == "" {
		return "\n  No training data yet. Ingest some activities to get started."
	}

	// Build the dashboard layout
	var sections []string

	// Top row: Training Load and This Week side by side
	loadCard := m.renderLoadCard()
	weekCard := m.renderWeekCard()
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, loadCard, "  ", weekCard)
	sections = append(sections, topRow)

	// Chart
	if len(m.data.CTLHistory) > 2 {
		chart := m.renderChart()
		sections = append(sections, chart)
	}

	// Recent activities
	activities := m.renderRecentActivities()
	sections = append(sections, activities)

	// Help
	help := statusStyle.Render("Press 'r' to refresh, '2' for duration curves, '4' for forecasts")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderLoadCard() string {
	title := cardTitleStyle.Render("Training Load")

	ramp := fmt.Sprintf("%+.1f/wk", m.data.RampRate)

	lines := []string{
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.1f", m.data.Fitness), ramp),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.1f", m.data.Fatigue), ""),
		RenderMetric("Form (TSB)", fmt.Sprintf("%.1f", m.data.Form), ""),
		"",
		FormStyle(m.data.Form).Render(m.data.FormDescription),
		mutedStyle.Render("as of " + m.data.AsOf),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderWeekCard() string {
	title := cardTitleStyle.Render("This Week")

	lines := []string{
		RenderMetric("Activities", fmt.Sprintf("%d", m.data.WeekActivityCount), ""),
		RenderMetric("Distance", m.units.FormatDistance(m.data.WeekDistance*service.MetersPerKilometer), ""),
		RenderMetric("Time", formatDuration(m.data.WeekTime), ""),
		RenderMetric("Stress", fmt.Sprintf("%.0f", m.data.WeekStress), ""),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(30).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderChart() string {
	title := cardTitleStyle.Render("Fitness vs Fatigue - Recent Trend")

	graph := asciigraph.PlotMany(
		[][]float64{m.data.CTLHistory, m.data.ATLHistory},
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Red),
		asciigraph.SeriesLegends("CTL", "ATL"),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderRecentActivities() string {
	title := cardTitleStyle.Render("Recent Activities")

	if len(m.data.RecentActivities) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No activities yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-20s  %-6s  %8s  %7s  %6s  %-9s",
		"Date", "Name", "Sport", "Distance", "Time", "Stress", "Effort"))

	var rows []string
	rows = append(rows, header)

	for i, a := range m.data.RecentActivities {
		if i >= 5 {
			break
		}

		stress := "-"
		zone := ""
		if a.StressScore != nil {
			stress = fmt.Sprintf("%.0f", *a.StressScore)
			zone = analysis.LoadZone(*a.StressScore)
		}

		row := tableRowStyle.Render(fmt.Sprintf("%-10s  %-20s  %-6s  %8s  %7s  %6s  %-9s",
			a.StartDateLocal.Format("Jan 02"),
			truncateName(a.Name, 20),
			a.Sport,
			m.units.FormatDistance(a.Distance),
			formatDuration(a.MovingTime),
			stress,
			zone,
		))
		rows = append(rows, row)
	}

	parts := []string{title, lipgloss.JoinVertical(lipgloss.Left, rows...)}

	// Most recent aerobic decoupling read, when the activity carried one.
	if latest := m.data.RecentActivities[0]; latest.DecouplingPct != nil {
		note := fmt.Sprintf("Latest decoupling: %.1f%% - %s",
			*latest.DecouplingPct, analysis.EfficiencyAssessment(*latest.DecouplingPct))
		parts = append(parts, "", mutedStyle.Render(note))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
