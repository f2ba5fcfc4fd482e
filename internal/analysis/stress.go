package analysis

import "math"

// TRIMP-style exponential weighting constants and the normalization that
// puts an hour at lactate threshold near 100 points.
const (
	hrStressK     = 1.67
	hrStressB     = 1.92
	hrStressScale = 8.78

	// Hard cap on heart-rate stress to bound pathological inputs
	maxHRStressPerHour = 150
)

// BikeStressScore computes the training stress of a ride from its
// normalized effort and the athlete's FTP. An hour at FTP scores 100.
// Returns 0 when FTP is unset.
func BikeStressScore(durationSec int, normalizedEffort, ftp float64) float64 {
	if ftp == 0 {
		return 0
	}
	intensity := normalizedEffort / ftp
	return float64(durationSec) * normalizedEffort * intensity / (ftp * 3600) * 100
}

// RunStressScore computes the training stress of a run from its intensity
// factor. An hour at threshold intensity (IF=1.0) scores 100.
func RunStressScore(durationSec int, intensityFactor float64) float64 {
	return float64(durationSec) / 3600 * intensityFactor * intensityFactor * 100
}

// SwimStressScore uses the same duration-times-intensity-squared form as
// running, with the intensity factor taken against critical swim speed.
func SwimStressScore(durationSec int, intensityFactor float64) float64 {
	return RunStressScore(durationSec, intensityFactor)
}

// HeartRateStressScore estimates training stress from average heart rate
// when no power or pace data exists, using an exponential TRIMP-style
// model. Capped at 150 points per hour to bound HR spikes and bad straps.
// Returns 0 when the threshold HR is unset.
func HeartRateStressScore(durationSec int, avgHR, thresholdHR float64) float64 {
	if thresholdHR == 0 {
		return 0
	}
	hours := float64(durationSec) / 3600
	ratio := avgHR / thresholdHR
	stress := hours * hrStressK * math.Exp(hrStressB*ratio) * hrStressScale

	if cap := maxHRStressPerHour * hours; stress > cap {
		stress = cap
	}
	return stress
}

// LoadZone returns a human-readable effort band for a single activity's
// stress score.
func LoadZone(stress float64) string {
	switch {
	case stress < 50:
		return "Recovery"
	case stress < 100:
		return "Easy"
	case stress < 150:
		return "Moderate"
	case stress < 250:
		return "Hard"
	default:
		return "Very Hard"
	}
}
