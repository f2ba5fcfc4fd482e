package analysis

import "trainload/internal/store"

// EfficiencyFactor calculates output per heartbeat. For rides the output is
// power in watts; for runs and swims it is speed converted to meters per
// minute, which lands in the familiar 1.0-2.0 range.
// Higher is better - more output for the same HR. Returns 0 without HR.
func EfficiencyFactor(sport string, output, avgHR float64) float64 {
	if avgHR == 0 {
		return 0
	}
	if sport == store.SportRide {
		return output / avgHR
	}
	return output * 60 / avgHR
}

// EfficiencyAssessment returns a human-readable read on aerobic decoupling
func EfficiencyAssessment(decoupling float64) string {
	switch {
	case decoupling < 3:
		return "Excellent aerobic base"
	case decoupling < 5:
		return "Good aerobic fitness"
	case decoupling < 8:
		return "Developing aerobic base"
	case decoupling < 12:
		return "Needs more easy volume"
	default:
		return "Aerobic system needs work"
	}
}
