package curve

// Delta is the change at one duration between two curves.
type Delta struct {
	DurationSeconds int
	Baseline        float64
	Current         float64
	ChangePct       float64
}

// Compare reports the percent change per duration from baseline to
// current. Durations present in only one curve are skipped; a zero
// baseline value cannot express a percentage and is skipped too.
func Compare(baseline, current *Curve) []Delta {
	base := make(map[int]float64, len(baseline.Points))
	for _, p := range baseline.Points {
		base[p.DurationSeconds] = p.Value
	}

	var deltas []Delta
	for _, p := range current.Points {
		b, ok := base[p.DurationSeconds]
		if !ok || b == 0 {
			continue
		}
		deltas = append(deltas, Delta{
			DurationSeconds: p.DurationSeconds,
			Baseline:        b,
			Current:         p.Value,
			ChangePct:       100 * (p.Value - b) / b,
		})
	}
	return deltas
}
