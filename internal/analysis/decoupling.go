package analysis

import "trainload/internal/store"

// minDecouplingSamples is the minimum usable samples across the whole
// stream for a decoupling number to mean anything.
const minDecouplingSamples = 20

// Decoupling calculates the efficiency-factor drift between the first and
// second half of an activity. Positive means the second half was less
// efficient - the aerobic system fading under the same output.
// One output channel serves the whole stream: power when any sample
// carries it, speed otherwise, so the two halves never average mixed
// units. Returns nil when fewer than 20 samples carry both heart rate
// and the chosen output, or when either half's EF is undefined.
func Decoupling(sport string, samples []store.SamplePoint) *float64 {
	usePower := false
	for _, p := range samples {
		if p.Power != nil && *p.Power > 0 {
			usePower = true
			break
		}
	}

	usable := 0
	for _, p := range samples {
		if usableSample(p, usePower) {
			usable++
		}
	}
	if usable < minDecouplingSamples {
		return nil
	}

	mid := len(samples) / 2
	firstEF := halfEF(sport, samples[:mid], usePower)
	secondEF := halfEF(sport, samples[mid:], usePower)

	if firstEF == 0 || secondEF == 0 {
		return nil
	}

	d := 100 * (firstEF - secondEF) / firstEF
	return &d
}

// halfEF computes the efficiency factor over one half of the stream,
// considering only samples with both HR and the chosen output channel.
func halfEF(sport string, samples []store.SamplePoint, usePower bool) float64 {
	var outputSum, hrSum float64
	count := 0

	for _, p := range samples {
		if !usableSample(p, usePower) {
			continue
		}
		outputSum += sampleOutput(p, usePower)
		hrSum += float64(*p.HeartRate)
		count++
	}

	if count == 0 {
		return 0
	}
	return EfficiencyFactor(sport, outputSum/float64(count), hrSum/float64(count))
}

func usableSample(p store.SamplePoint, usePower bool) bool {
	if p.HeartRate == nil || *p.HeartRate <= 0 {
		return false
	}
	if usePower {
		return p.Power != nil && *p.Power > 0
	}
	return p.Speed != nil && *p.Speed > 0
}

func sampleOutput(p store.SamplePoint, usePower bool) float64 {
	if usePower {
		return *p.Power
	}
	return *p.Speed
}
