package analysis

import "math"

// rollingWindow is the smoothing window for normalized effort, in samples
// (1 sample/second assumed).
const rollingWindow = 30

// NormalizedEffort computes the variability-weighted average of an output
// series: 30-sample rolling mean, each raised to the 4th power, averaged,
// 4th root. Surges are penalized, so a variable workout scores above a
// steady one with the same plain average. Series shorter than the window
// fall back to the plain mean.
func NormalizedEffort(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(values) < rollingWindow {
		return mean(values)
	}

	// Running sum over the window, then the quartic mean of window means.
	var windowSum float64
	for _, v := range values[:rollingWindow] {
		windowSum += v
	}

	var quartSum float64
	count := 0
	for i := rollingWindow - 1; ; i++ {
		m := windowSum / rollingWindow
		quartSum += m * m * m * m
		count++
		if i+1 >= len(values) {
			break
		}
		windowSum += values[i+1] - values[i+1-rollingWindow]
	}

	return math.Pow(quartSum/float64(count), 0.25)
}

// IntensityFactor is the ratio of an effort to the athlete's threshold
// capability. Returns 0 when the threshold is unset.
func IntensityFactor(effort, threshold float64) float64 {
	if threshold == 0 {
		return 0
	}
	return effort / threshold
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
