package curve

import "trainload/internal/store"

// Standard duration lists, in seconds. Power gets the full sprint-to-two-
// hours ladder; pace and heart rate use a shorter list since sub-minute
// pace peaks are mostly GPS noise.
var (
	PowerDurations = []int{5, 10, 30, 60, 120, 300, 600, 1200, 1800, 3600, 5400, 7200}
	PaceDurations  = []int{60, 300, 600, 1200, 1800, 3600, 7200}
	HRDurations    = []int{60, 300, 600, 1200, 1800, 3600}
)

// DurationsFor returns the standard duration list for a metric.
func DurationsFor(metric string) []int {
	switch metric {
	case store.MetricPower:
		return PowerDurations
	case store.MetricPace:
		return PaceDurations
	case store.MetricHR:
		return HRDurations
	default:
		return nil
	}
}

// MetricsFor returns the metrics worth curving for a sport.
func MetricsFor(sport string) []string {
	switch sport {
	case store.SportRide:
		return []string{store.MetricPower, store.MetricHR}
	case store.SportRun:
		return []string{store.MetricPace, store.MetricPower, store.MetricHR}
	case store.SportSwim:
		return []string{store.MetricPace}
	default:
		return []string{store.MetricHR}
	}
}
