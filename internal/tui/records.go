package tui

import (
	"fmt"
	"strings"

	"trainload/internal/records"
	"trainload/internal/service"
	"trainload/internal/store"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// RecordsModel is the peak records screen model
type RecordsModel struct {
	queryService *service.QueryService
	athleteID    int64
	units        Units

	bests    map[string][]store.PeakRecord
	recent   []store.PeakRecord
	viewport viewport.Model
	loading  bool
	err      error
	width    int
	height   int
	ready    bool
}

// NewRecordsModel creates a new records model
func NewRecordsModel(qs *service.QueryService, athleteID int64, units Units, width, height int) RecordsModel {
	m := RecordsModel{
		queryService: qs,
		athleteID:    athleteID,
		units:        units,
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

// Init initializes the records screen
func (m RecordsModel) Init() tea.Cmd {
	return m.loadRecords
}

type recordsLoadedMsg struct {
	bests  map[string][]store.PeakRecord
	recent []store.PeakRecord
	err    error
}

func (m RecordsModel) loadRecords() tea.Msg {
	bests := make(map[string][]store.PeakRecord)
	for _, sport := range []string{store.SportRide, store.SportRun, store.SportSwim} {
		rs, err := m.queryService.CurrentBests(m.athleteID, sport)
		if err != nil {
			return recordsLoadedMsg{err: err}
		}
		if len(rs) > 0 {
			bests[sport] = rs
		}
	}

	recent, err := m.queryService.RecentRecords(m.athleteID)
	if err != nil {
		return recordsLoadedMsg{err: err}
	}

	return recordsLoadedMsg{bests: bests, recent: recent}
}

// Update handles messages
func (m RecordsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recordsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.bests = msg.bests
		m.recent = msg.recent
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
		if m.bests != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadRecords
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the records screen
func (m RecordsModel) View() string {
	if m.loading {
		return "\n  Loading peak records..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  j/k or arrows: scroll  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m RecordsModel) renderContent() string {
	var sections []string

	sections = append(sections, "")
	sections = append(sections, cardTitleStyle.Render("Peak Records"))
	sections = append(sections, "")

	if len(m.recent) > 0 {
		sections = append(sections, m.renderRecent())
	}

	for _, sport := range []string{store.SportRide, store.SportRun, store.SportSwim} {
		if rs := m.bests[sport]; len(rs) > 0 {
			sections = append(sections, m.renderSportBests(sport, rs))
		}
	}

	if len(m.bests) == 0 && len(m.recent) == 0 {
		sections = append(sections, mutedStyle.Render("  No records yet. Ingest some activities first."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m RecordsModel) renderRecent() string {
	var lines []string

	lines = append(lines, m.sectionHeader("Recently Broken"))
	header := fmt.Sprintf("  %-20s  %-6s  %12s  %10s  %s", "Record", "Sport", "Value", "Gain", "Date")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	for _, r := range m.recent {
		gain := "-"
		if r.ImprovementPct != nil {
			gain = fmt.Sprintf("+%.1f%%", *r.ImprovementPct)
		}
		lines = append(lines, fmt.Sprintf("  %-20s  %-6s  %12s  %10s  %s",
			bucketLabel(r.Bucket),
			r.Sport,
			m.formatRecordValue(r),
			gain,
			r.AchievedAt.Format("2006-01-02"),
		))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m RecordsModel) renderSportBests(sport string, rs []store.PeakRecord) string {
	var lines []string

	lines = append(lines, m.sectionHeader(sport+" Bests"))
	header := fmt.Sprintf("  %-20s  %12s  %s", "Record", "Value", "Date")
	lines = append(lines, lipgloss.NewStyle().Foreground(primaryColor).Render(header))

	for _, r := range rs {
		lines = append(lines, fmt.Sprintf("  %-20s  %12s  %s",
			bucketLabel(r.Bucket),
			m.formatRecordValue(r),
			r.AchievedAt.Format("2006-01-02"),
		))
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func (m RecordsModel) sectionHeader(title string) string {
	titleLen := len([]rune(title))
	dividerLen := 60 - titleLen - 4
	if dividerLen < 0 {
		dividerLen = 0
	}
	divider := strings.Repeat("─", dividerLen)
	return lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(fmt.Sprintf("── %s %s", title, divider))
}

func (m RecordsModel) formatRecordValue(r store.PeakRecord) string {
	switch r.Bucket {
	case records.BucketMaxHR:
		return fmt.Sprintf("%.0f bpm", r.Value)
	case records.BucketLongestDistance:
		return m.units.FormatDistance(r.Value)
	case records.BucketHighestStress:
		return fmt.Sprintf("%.0f", r.Value)
	case records.BucketBestEfficiency:
		return fmt.Sprintf("%.2f", r.Value)
	}

	if strings.HasPrefix(r.Bucket, store.MetricPower) {
		return fmt.Sprintf("%.0f W", r.Value)
	}
	if strings.HasPrefix(r.Bucket, store.MetricPace) {
		return fmt.Sprintf("%.2f m/s", r.Value)
	}
	if strings.HasPrefix(r.Bucket, store.MetricHR) {
		return fmt.Sprintf("%.0f bpm", r.Value)
	}
	return fmt.Sprintf("%.1f", r.Value)
}

func bucketLabel(bucket string) string {
	switch bucket {
	case records.BucketMaxHR:
		return "Max heart rate"
	case records.BucketLongestDistance:
		return "Longest activity"
	case records.BucketHighestStress:
		return "Highest stress"
	case records.BucketBestEfficiency:
		return "Best efficiency"
	}

	var metric string
	var seconds int
	if _, err := fmt.Sscanf(bucket, "power_%ds", &seconds); err == nil {
		metric = "power"
	} else if _, err := fmt.Sscanf(bucket, "pace_%ds", &seconds); err == nil {
		metric = "speed"
	} else if _, err := fmt.Sscanf(bucket, "hr_%ds", &seconds); err == nil {
		metric = "HR"
	} else {
		return bucket
	}
	return fmt.Sprintf("Best %s %s", formatWindow(seconds), metric)
}
