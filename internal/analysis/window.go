package analysis

import "trainload/internal/store"

// PeakForDuration returns the maximum sliding-window average across all
// windows of the given width, assuming 1 sample/second. A running sum keeps
// this O(n) per duration, which matters when scanning thousands of samples
// across a whole duration list. Returns 0 if the series is shorter than
// the window.
func PeakForDuration(values []float64, durationSamples int) float64 {
	if durationSamples <= 0 || len(values) < durationSamples {
		return 0
	}

	var sum float64
	for _, v := range values[:durationSamples] {
		sum += v
	}
	best := sum

	for i := durationSamples; i < len(values); i++ {
		sum += values[i] - values[i-durationSamples]
		if sum > best {
			best = sum
		}
	}

	return best / float64(durationSamples)
}

// PeaksForDurations computes the peak average for each requested duration.
// Durations longer than the series are omitted.
func PeaksForDurations(values []float64, durations []int) map[int]float64 {
	peaks := make(map[int]float64, len(durations))
	for _, d := range durations {
		if v := PeakForDuration(values, d); v > 0 {
			peaks[d] = v
		}
	}
	return peaks
}

// PowerSeries extracts the power channel from a sample stream.
// Missing samples count as zero output.
func PowerSeries(samples []store.SamplePoint) []float64 {
	values := make([]float64, len(samples))
	for i, p := range samples {
		if p.Power != nil {
			values[i] = *p.Power
		}
	}
	return values
}

// SpeedSeries extracts the speed channel from a sample stream.
func SpeedSeries(samples []store.SamplePoint) []float64 {
	values := make([]float64, len(samples))
	for i, p := range samples {
		if p.Speed != nil {
			values[i] = *p.Speed
		}
	}
	return values
}

// HRSeries extracts the heart rate channel from a sample stream.
func HRSeries(samples []store.SamplePoint) []float64 {
	values := make([]float64, len(samples))
	for i, p := range samples {
		if p.HeartRate != nil {
			values[i] = float64(*p.HeartRate)
		}
	}
	return values
}

// AverageHR returns the mean of positive heart rate samples, or 0.
func AverageHR(samples []store.SamplePoint) float64 {
	var total float64
	count := 0
	for _, p := range samples {
		if p.HeartRate != nil && *p.HeartRate > 0 {
			total += float64(*p.HeartRate)
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}

// MaxHR returns the highest heart rate sample, or 0.
func MaxHR(samples []store.SamplePoint) float64 {
	var max float64
	for _, p := range samples {
		if p.HeartRate != nil && float64(*p.HeartRate) > max {
			max = float64(*p.HeartRate)
		}
	}
	return max
}
