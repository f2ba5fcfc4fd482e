package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"trainload/internal/forecast"
	"trainload/internal/service"
	"trainload/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

const (
	defaultDaysToRace = 21
	minRaceDays       = 8
	maxRaceDays       = 56
)

// ForecastModel is the projection screen model
type ForecastModel struct {
	queryService *service.QueryService
	athleteID    int64

	daysToRace int

	state   forecast.State
	decay   []forecast.Point
	taper   *forecast.TaperPlan
	loading bool
	err     error
}

// NewForecastModel creates a new forecast model
func NewForecastModel(qs *service.QueryService, athleteID int64) ForecastModel {
	return ForecastModel{
		queryService: qs,
		athleteID:    athleteID,
		daysToRace:   defaultDaysToRace,
		loading:      true,
	}
}

// Init initializes the forecast screen
func (m ForecastModel) Init() tea.Cmd {
	return m.loadForecast
}

type forecastLoadedMsg struct {
	state forecast.State
	decay []forecast.Point
	taper *forecast.TaperPlan
	err   error
}

func (m ForecastModel) loadForecast() tea.Msg {
	state, err := m.queryService.ForecastState(m.athleteID)
	if errors.Is(err, store.ErrNoLedger) {
		return forecastLoadedMsg{}
	}
	if err != nil {
		return forecastLoadedMsg{err: err}
	}

	msg := forecastLoadedMsg{state: state}
	msg.decay = forecast.ProjectDecay(state, service.DecayPreviewDays)

	raceDate, err := raceDayFrom(state.Date, m.daysToRace)
	if err != nil {
		return forecastLoadedMsg{err: err}
	}
	taper, err := forecast.SimulateTaper(state, raceDate, m.daysToRace)
	if err != nil && !errors.Is(err, forecast.ErrTaperTooClose) {
		return forecastLoadedMsg{err: err}
	}
	msg.taper = taper

	return msg
}

// Update handles messages
func (m ForecastModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case forecastLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.state = msg.state
		m.decay = msg.decay
		m.taper = msg.taper

	case tea.KeyMsg:
		switch msg.String() {
		case "+", "=":
			if m.daysToRace < maxRaceDays {
				m.daysToRace += 7
				m.loading = true
				return m, m.loadForecast
			}
		case "-", "_":
			if m.daysToRace > minRaceDays {
				m.daysToRace -= 7
				m.loading = true
				return m, m.loadForecast
			}
		case "r":
			m.loading = true
			return m, m.loadForecast
		}
	}
	return m, nil
}

// View renders the forecast screen
func (m ForecastModel) View() string {
	if m.loading {
		return "\n  Projecting..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.state.Date == "" {
		return "\n  No ledger yet. Ingest some activities first."
	}

	var sections []string

	sections = append(sections, m.renderDecayCard())
	if m.taper != nil {
		sections = append(sections, m.renderTaperCard())
	}

	help := statusStyle.Render("Press '+'/'-' to move the race a week, 'r' to refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ForecastModel) renderDecayCard() string {
	title := cardTitleStyle.Render(fmt.Sprintf("If You Stop Training - next %d days", service.DecayPreviewDays))

	ctl := make([]float64, 0, len(m.decay))
	tsb := make([]float64, 0, len(m.decay))
	for _, p := range m.decay {
		ctl = append(ctl, p.CTL)
		tsb = append(tsb, p.TSB)
	}

	graph := asciigraph.PlotMany(
		[][]float64{ctl, tsb},
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(asciigraph.Blue, asciigraph.Green),
		asciigraph.SeriesLegends("CTL", "TSB"),
	)

	last := m.decay[len(m.decay)-1]
	summary := mutedStyle.Render(
		fmt.Sprintf("CTL %.1f now, %.1f by %s", m.state.CTL, last.CTL, last.Date))

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph, "", summary))
}

func (m ForecastModel) renderTaperCard() string {
	title := cardTitleStyle.Render(fmt.Sprintf("Taper Plan - race %s (%d days out)", m.taper.RaceDate, m.daysToRace))

	var lines []string

	header := fmt.Sprintf("  %-12s  %8s  %s", "Date", "Load", "Of usual")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	for _, d := range m.taper.Days {
		lines = append(lines, fmt.Sprintf("  %-12s  %8.0f  %s %3.0f%%",
			d.Date,
			d.SuggestedLoad,
			RenderProgressBar(d.PercentOfUsual/100, 16),
			d.PercentOfUsual,
		))
	}

	lines = append(lines, "")
	raceDay := fmt.Sprintf("Race day: CTL %.1f  ATL %.1f  TSB %+.1f",
		m.taper.ProjectedCTL, m.taper.ProjectedATL, m.taper.ProjectedTSB)
	if m.taper.ProjectedTSB > 0 {
		lines = append(lines, successStyle.Render(raceDay))
	} else {
		lines = append(lines, warningStyle.Render(raceDay))
	}

	table := strings.Join(lines, "\n")
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func raceDayFrom(day string, daysOut int) (string, error) {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return "", fmt.Errorf("parsing ledger date %q: %w", day, err)
	}
	return t.AddDate(0, 0, daysOut).Format("2006-01-02"), nil
}
