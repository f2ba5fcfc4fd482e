package tui

import (
	"fmt"
	"strings"

	"trainload/internal/curve"
	"trainload/internal/service"
	"trainload/internal/store"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var curveLookbacks = []int{42, 90, 365}

// CurvesModel is the duration curve screen model
type CurvesModel struct {
	queryService *service.QueryService
	athleteID    int64

	sport       string
	metric      string
	lookbackIdx int

	data      *curve.Curve
	phenotype *curve.PhenotypeAnalysis
	viewport  viewport.Model
	loading   bool
	err       error
	width     int
	height    int
	ready     bool
}

// NewCurvesModel creates a new duration curve model
func NewCurvesModel(qs *service.QueryService, athleteID int64, width, height int) CurvesModel {
	m := CurvesModel{
		queryService: qs,
		athleteID:    athleteID,
		sport:        store.SportRide,
		metric:       store.MetricPower,
		lookbackIdx:  1,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6)
		m.ready = true
	}

	return m
}

// Init initializes the curves screen
func (m CurvesModel) Init() tea.Cmd {
	return m.loadCurve
}

type curveLoadedMsg struct {
	data      *curve.Curve
	phenotype *curve.PhenotypeAnalysis
	err       error
}

func (m CurvesModel) loadCurve() tea.Msg {
	lookback := curveLookbacks[m.lookbackIdx]

	data, err := m.queryService.DurationCurve(m.athleteID, m.sport, m.metric, lookback)
	if err != nil {
		return curveLoadedMsg{err: err}
	}

	msg := curveLoadedMsg{data: data}
	if m.sport == store.SportRide && m.metric == store.MetricPower {
		if ph, err := m.queryService.Phenotype(m.athleteID, m.sport, lookback); err == nil {
			msg.phenotype = &ph
		}
	}
	return msg
}

// Update handles messages
func (m CurvesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case curveLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
		m.phenotype = msg.phenotype
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.data != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "s":
			m.sport = nextSport(m.sport)
			m.metric = curve.MetricsFor(m.sport)[0]
			m.loading = true
			return m, m.loadCurve
		case "m":
			m.metric = nextMetric(m.sport, m.metric)
			m.loading = true
			return m, m.loadCurve
		case "w":
			m.lookbackIdx = (m.lookbackIdx + 1) % len(curveLookbacks)
			m.loading = true
			return m, m.loadCurve
		case "r":
			m.loading = true
			return m, m.loadCurve
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the curves screen
func (m CurvesModel) View() string {
	if m.loading {
		return "\n  Loading duration curve..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  s: sport  m: metric  w: window  r: refresh  j/k: scroll")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m CurvesModel) renderContent() string {
	if m.data == nil {
		return "No curve data yet."
	}

	var sections []string

	lookback := curveLookbacks[m.lookbackIdx]
	title := fmt.Sprintf("%s %s Curve - last %d days", m.data.Sport, metricLabel(m.metric), lookback)
	sections = append(sections, "")
	sections = append(sections, cardTitleStyle.Render(title))
	sections = append(sections, "")

	if len(m.data.Points) == 0 {
		sections = append(sections, mutedStyle.Render("  No efforts recorded in this window."))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, m.renderTable())

	if m.phenotype != nil {
		sections = append(sections, m.renderPhenotype())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m CurvesModel) renderTable() string {
	var lines []string

	header := fmt.Sprintf("  %-10s  %10s  %-12s  %s", "Duration", metricLabel(m.metric), "Date", "Bar")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	best := m.data.Points[0].Value
	for _, p := range m.data.Points {
		if p.Value > best {
			best = p.Value
		}
	}

	for _, p := range m.data.Points {
		bar := ""
		if best > 0 {
			bar = RenderProgressBar(p.Value/best, 24)
		}
		lines = append(lines, fmt.Sprintf("  %-10s  %10s  %-12s  %s",
			formatWindow(p.DurationSeconds),
			formatMetricValue(m.metric, p.Value),
			p.AchievedAt,
			bar,
		))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m CurvesModel) renderPhenotype() string {
	var lines []string

	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Rider Profile"))
	lines = append(lines, "")
	lines = append(lines, "  "+RenderMetric("Phenotype", m.phenotype.Phenotype, ""))
	if m.phenotype.Phenotype != curve.PhenotypeIncomplete {
		lines = append(lines, "  "+RenderMetric("30s / 5min ratio", fmt.Sprintf("%.2f", m.phenotype.ShortMidRatio), ""))
		lines = append(lines, "  "+RenderMetric("20min / 5min ratio", fmt.Sprintf("%.2f", m.phenotype.MidLongRatio), ""))
	}
	lines = append(lines, "")

	return strings.Join(lines, "\n")
}

func nextSport(sport string) string {
	switch sport {
	case store.SportRide:
		return store.SportRun
	case store.SportRun:
		return store.SportSwim
	default:
		return store.SportRide
	}
}

func nextMetric(sport, metric string) string {
	metrics := curve.MetricsFor(sport)
	for i, met := range metrics {
		if met == metric {
			return metrics[(i+1)%len(metrics)]
		}
	}
	return metrics[0]
}

func metricLabel(metric string) string {
	switch metric {
	case store.MetricPower:
		return "Power"
	case store.MetricPace:
		return "Speed"
	case store.MetricHR:
		return "Heart Rate"
	default:
		return metric
	}
}

func formatMetricValue(metric string, v float64) string {
	switch metric {
	case store.MetricPower:
		return fmt.Sprintf("%.0f W", v)
	case store.MetricPace:
		return fmt.Sprintf("%.2f m/s", v)
	case store.MetricHR:
		return fmt.Sprintf("%.0f bpm", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

func formatWindow(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	if seconds%60 == 0 {
		return fmt.Sprintf("%dm", seconds/60)
	}
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}
