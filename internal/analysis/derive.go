package analysis

import "trainload/internal/store"

// Derive fills an activity's derived metric fields from its samples (when
// present) or summary averages, using the athlete's thresholds. Nothing is
// set for metrics the inputs can't support; no formula here ever errors.
func Derive(a *store.Activity, samples []store.SamplePoint, th Thresholds) {
	a.NormalizedPower = nil
	a.IntensityFactor = nil
	a.StressScore = nil
	a.EfficiencyFactor = nil
	a.DecouplingPct = nil

	effort, threshold := activityEffort(a, samples, th)

	if effort > 0 && threshold > 0 {
		intensity := IntensityFactor(effort, threshold)
		a.IntensityFactor = &intensity

		var stress float64
		switch a.Sport {
		case store.SportRide:
			np := effort
			a.NormalizedPower = &np
			stress = BikeStressScore(a.MovingTime, effort, th.FTPWatts)
		case store.SportSwim:
			stress = SwimStressScore(a.MovingTime, intensity)
		default:
			stress = RunStressScore(a.MovingTime, intensity)
		}
		if stress > 0 {
			a.StressScore = &stress
		}
	}

	avgHR := AverageHR(samples)
	if avgHR == 0 && a.AvgHeartRate != nil {
		avgHR = *a.AvgHeartRate
	}
	if maxHR := MaxHR(samples); maxHR > 0 {
		if a.MaxHeartRate == nil || maxHR > *a.MaxHeartRate {
			a.MaxHeartRate = &maxHR
		}
	}

	// Heart-rate fallback when neither power nor pace could score the day
	if a.StressScore == nil && avgHR > 0 {
		if stress := HeartRateStressScore(a.MovingTime, avgHR, th.LactateHR); stress > 0 {
			a.StressScore = &stress
		}
	}

	if avgHR > 0 {
		if output := efOutput(a, samples); output > 0 {
			ef := EfficiencyFactor(a.Sport, output, avgHR)
			if ef > 0 {
				a.EfficiencyFactor = &ef
			}
		}
	}

	a.DecouplingPct = Decoupling(a.Sport, samples)
}

// activityEffort picks the effort figure and matching threshold for the
// activity's sport: normalized power against FTP for rides, normalized (or
// average) speed against threshold speed for runs, critical swim speed for
// swims.
func activityEffort(a *store.Activity, samples []store.SamplePoint, th Thresholds) (effort, threshold float64) {
	switch a.Sport {
	case store.SportRide:
		if hasChannel(samples, func(p store.SamplePoint) bool { return p.Power != nil }) {
			effort = NormalizedEffort(PowerSeries(samples))
		} else if a.AvgPower != nil {
			effort = *a.AvgPower
		}
		return effort, th.FTPWatts

	case store.SportSwim:
		if a.AvgSpeed != nil {
			effort = *a.AvgSpeed
		}
		return effort, th.CriticalSwimSpeed

	case store.SportRun:
		if hasChannel(samples, func(p store.SamplePoint) bool { return p.Speed != nil }) {
			effort = NormalizedEffort(SpeedSeries(samples))
		} else if a.AvgSpeed != nil {
			effort = *a.AvgSpeed
		}
		return effort, th.ThresholdSpeed
	}

	return 0, 0
}

// efOutput is the output half of the efficiency factor: watts for rides,
// speed for everything else.
func efOutput(a *store.Activity, samples []store.SamplePoint) float64 {
	if a.Sport == store.SportRide {
		if a.AvgPower != nil {
			return *a.AvgPower
		}
		if hasChannel(samples, func(p store.SamplePoint) bool { return p.Power != nil }) {
			return mean(PowerSeries(samples))
		}
		return 0
	}

	if a.AvgSpeed != nil {
		return *a.AvgSpeed
	}
	if a.MovingTime > 0 && a.Distance > 0 {
		return a.Distance / float64(a.MovingTime)
	}
	return 0
}

func hasChannel(samples []store.SamplePoint, present func(store.SamplePoint) bool) bool {
	for _, p := range samples {
		if present(p) {
			return true
		}
	}
	return false
}
