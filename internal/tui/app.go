package tui

import (
	"trainload/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenCurves
	ScreenRecords
	ScreenForecast
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	dashboard DashboardModel
	curves    CurvesModel
	records   RecordsModel
	forecast  ForecastModel
	help      HelpModel

	// Services
	queryService *service.QueryService
	athleteID    int64
	units        Units

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App with all dependencies
func NewApp(queryService *service.QueryService, athleteID int64, units Units) *App {
	return &App{
		screen:       ScreenDashboard,
		queryService: queryService,
		athleteID:    athleteID,
		units:        units,
		dashboard:    NewDashboardModel(queryService, athleteID, units),
		curves:       NewCurvesModel(queryService, athleteID, 0, 0),
		records:      NewRecordsModel(queryService, athleteID, units, 0, 0),
		forecast:     NewForecastModel(queryService, athleteID),
		help:         NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			a.screen = ScreenDashboard
			a.dashboard = NewDashboardModel(a.queryService, a.athleteID, a.units)
			return a, a.dashboard.Init()
		case "2":
			a.screen = ScreenCurves
			return a, a.curves.Init()
		case "3":
			a.screen = ScreenRecords
			return a, a.records.Init()
		case "4":
			a.screen = ScreenForecast
			return a, a.forecast.Init()
		case "?":
			a.prevScreen = a.screen
			a.screen = ScreenHelp
			return a, nil
		case "esc":
			if a.screen == ScreenHelp {
				a.screen = a.prevScreen
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenCurves:
		var m tea.Model
		m, cmd = a.curves.Update(msg)
		a.curves = m.(CurvesModel)
	case ScreenRecords:
		var m tea.Model
		m, cmd = a.records.Update(msg)
		a.records = m.(RecordsModel)
	case ScreenForecast:
		var m tea.Model
		m, cmd = a.forecast.Update(msg)
		a.forecast = m.(ForecastModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenCurves:
		content = a.curves.View()
	case ScreenRecords:
		content = a.records.View()
	case ScreenForecast:
		content = a.forecast.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Training Load Engine")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Curves", ScreenCurves},
		{"3", "Records", ScreenRecords},
		{"4", "Forecast", ScreenForecast},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}
