package service

import (
	"errors"
	"fmt"
	"time"

	"trainload/internal/curve"
	"trainload/internal/forecast"
	"trainload/internal/ledger"
	"trainload/internal/records"
	"trainload/internal/store"
)

// QueryService provides read-only queries for the TUI and other callers
type QueryService struct {
	store   *store.Store
	ledger  *ledger.Engine
	curves  *curve.Builder
	records *records.Tracker
	now     func() time.Time
}

// NewQueryService creates a query service using the wall clock.
func NewQueryService(s *store.Store, l *ledger.Engine, c *curve.Builder, r *records.Tracker) *QueryService {
	return NewQueryServiceWithClock(s, l, c, r, time.Now)
}

// NewQueryServiceWithClock creates a query service with an injected clock.
func NewQueryServiceWithClock(s *store.Store, l *ledger.Engine, c *curve.Builder, r *records.Tracker, now func() time.Time) *QueryService {
	return &QueryService{store: s, ledger: l, curves: c, records: r, now: now}
}

// DashboardData contains all data needed for the dashboard
type DashboardData struct {
	// Current fitness
	Fitness         float64 // CTL
	Fatigue         float64 // ATL
	Form            float64 // TSB
	FormDescription string
	RampRate        float64 // CTL points over the trailing week
	AsOf            string

	// This week
	WeekActivityCount int
	WeekDistance      float64 // km
	WeekTime          int     // seconds
	WeekStress        float64

	// Recent activities
	RecentActivities []store.Activity

	// For charts
	CTLHistory    []float64
	ATLHistory    []float64
	TSBHistory    []float64
	HistoryLabels []string
}

// GetDashboardData fetches all data needed for the dashboard
func (q *QueryService) GetDashboardData(athleteID int64) (*DashboardData, error) {
	data := &DashboardData{}

	latest, err := q.ledger.CurrentMetrics(athleteID)
	if errors.Is(err, store.ErrNoLedger) {
		// No activities yet; the dashboard renders an empty state.
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading current metrics: %w", err)
	}

	data.Fitness = latest.CTL
	data.Fatigue = latest.ATL
	data.Form = latest.TSB
	data.FormDescription = ledger.FormDescription(latest.TSB)
	data.AsOf = latest.Date

	if ramp, err := q.ledger.RampRate(athleteID); err == nil {
		data.RampRate = ramp
	}

	if err := q.fillWeekStats(athleteID, data); err != nil {
		return nil, err
	}

	recent, err := q.store.ActivitiesSince(athleteID, q.daysAgo(DefaultLookback))
	if err != nil {
		return nil, fmt.Errorf("loading recent activities: %w", err)
	}
	// Newest first, bounded for display.
	for i := len(recent) - 1; i >= 0 && len(data.RecentActivities) < RecentActivitiesLimit; i-- {
		data.RecentActivities = append(data.RecentActivities, recent[i])
	}

	if err := q.fillHistory(athleteID, latest.Date, data); err != nil {
		return nil, err
	}

	return data, nil
}

// fillWeekStats aggregates the current calendar week from the ledger's
// per-sport breakdowns.
func (q *QueryService) fillWeekStats(athleteID int64, data *DashboardData) error {
	weekStart := getMonday(q.now()).Format("2006-01-02")

	activities, err := q.store.ActivitiesSince(athleteID, weekStart)
	if err != nil {
		return fmt.Errorf("loading week activities: %w", err)
	}
	for _, a := range activities {
		data.WeekActivityCount++
		data.WeekDistance += a.Distance / MetersPerKilometer
		data.WeekTime += a.MovingTime
		if a.StressScore != nil {
			data.WeekStress += *a.StressScore
		}
	}
	return nil
}

// fillHistory builds the CTL/ATL/TSB chart arrays for the trailing window.
func (q *QueryService) fillHistory(athleteID int64, latestDate string, data *DashboardData) error {
	from := q.daysAgo(ChartDays)
	entries, err := q.store.GetLedgerRange(athleteID, from, latestDate)
	if err != nil {
		return fmt.Errorf("loading ledger history: %w", err)
	}

	data.CTLHistory = make([]float64, len(entries))
	data.ATLHistory = make([]float64, len(entries))
	data.TSBHistory = make([]float64, len(entries))
	data.HistoryLabels = make([]string, len(entries))
	for i, e := range entries {
		data.CTLHistory[i] = e.CTL
		data.ATLHistory[i] = e.ATL
		data.TSBHistory[i] = e.TSB
		data.HistoryLabels[i] = e.Date
	}
	return nil
}

// LedgerRange returns stored ledger rows for a date range.
func (q *QueryService) LedgerRange(athleteID int64, from, to string) ([]store.DailyLedgerEntry, error) {
	return q.ledger.LedgerRange(athleteID, from, to)
}

// SportLoads returns the per-sport breakdown for one ledger day.
func (q *QueryService) SportLoads(athleteID int64, date string) ([]store.SportLoad, error) {
	return q.store.GetSportLoads(athleteID, date)
}

// DurationCurve builds the best-average curve for a sport and metric.
func (q *QueryService) DurationCurve(athleteID int64, sport, metric string, lookbackDays int) (*curve.Curve, error) {
	return q.curves.Build(athleteID, sport, metric, lookbackDays)
}

// CurveDelta compares the recent curve against a longer baseline window,
// per duration. Positive change means the recent window is stronger.
func (q *QueryService) CurveDelta(athleteID int64, sport, metric string, baselineDays, currentDays int) ([]curve.Delta, error) {
	baseline, err := q.curves.Build(athleteID, sport, metric, baselineDays)
	if err != nil {
		return nil, err
	}
	current, err := q.curves.Build(athleteID, sport, metric, currentDays)
	if err != nil {
		return nil, err
	}
	return curve.Compare(baseline, current), nil
}

// Phenotype classifies the athlete's power curve shape over the lookback.
func (q *QueryService) Phenotype(athleteID int64, sport string, lookbackDays int) (curve.PhenotypeAnalysis, error) {
	c, err := q.curves.Build(athleteID, sport, store.MetricPower, lookbackDays)
	if err != nil {
		return curve.PhenotypeAnalysis{}, err
	}
	return curve.ClassifyPhenotype(c), nil
}

// CurrentBests returns the best stored record per bucket for a sport.
func (q *QueryService) CurrentBests(athleteID int64, sport string) ([]store.PeakRecord, error) {
	return q.records.CurrentBests(athleteID, sport)
}

// RecentRecords returns the latest record rows across all buckets.
func (q *QueryService) RecentRecords(athleteID int64) ([]store.PeakRecord, error) {
	return q.records.RecentRecords(athleteID, RecentRecordsLimit)
}

// ForecastState returns the ledger tail as a projection starting point.
func (q *QueryService) ForecastState(athleteID int64) (forecast.State, error) {
	latest, err := q.ledger.CurrentMetrics(athleteID)
	if err != nil {
		return forecast.State{}, err
	}
	return forecast.State{Date: latest.Date, CTL: latest.CTL, ATL: latest.ATL}, nil
}

// WeeklyStats holds aggregated training totals for one week
type WeeklyStats struct {
	WeekStart     string
	ActivityCount int
	Distance      float64 // km
	Time          int     // seconds
	Stress        float64
}

// GetWeeklyStats returns per-week training totals for the trailing weeks,
// oldest first.
func (q *QueryService) GetWeeklyStats(athleteID int64, numWeeks int) ([]WeeklyStats, error) {
	currentMonday := getMonday(q.now())
	firstMonday := currentMonday.AddDate(0, 0, -7*(numWeeks-1))

	stats := make([]WeeklyStats, numWeeks)
	for i := range stats {
		stats[i].WeekStart = firstMonday.AddDate(0, 0, 7*i).Format("2006-01-02")
	}

	activities, err := q.store.ActivitiesSince(athleteID, stats[0].WeekStart)
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	for _, a := range activities {
		idx := weekIndex(a.StartDateLocal, firstMonday, numWeeks)
		if idx < 0 {
			continue
		}
		stats[idx].ActivityCount++
		stats[idx].Distance += a.Distance / MetersPerKilometer
		stats[idx].Time += a.MovingTime
		if a.StressScore != nil {
			stats[idx].Stress += *a.StressScore
		}
	}

	return stats, nil
}

// weekIndex returns which week bucket a date falls into, or -1.
func weekIndex(date time.Time, firstMonday time.Time, numWeeks int) int {
	for i := 0; i < numWeeks; i++ {
		weekStart := firstMonday.AddDate(0, 0, 7*i)
		weekEnd := weekStart.AddDate(0, 0, 7)
		if !date.Before(weekStart) && date.Before(weekEnd) {
			return i
		}
	}
	return -1
}

// getMonday returns the Monday 00:00 of the week containing t.
func getMonday(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := t.AddDate(0, 0, -(weekday - 1))
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}

func (q *QueryService) daysAgo(days int) string {
	return q.now().AddDate(0, 0, -days).Format("2006-01-02")
}
