package analysis

import (
	"math"
	"testing"

	"trainload/internal/store"
)

func TestDerive(t *testing.T) {
	th := Thresholds{
		FTPWatts:          250,
		LactateHR:         165,
		ThresholdSpeed:    3.33,
		CriticalSwimSpeed: 1.25,
	}

	tests := []struct {
		name     string
		activity store.Activity
		samples  []store.SamplePoint
		checkFn  func(t *testing.T, a *store.Activity)
	}{
		{
			name: "ride with power samples at FTP",
			activity: store.Activity{
				Sport:      store.SportRide,
				MovingTime: 3600,
			},
			samples: func() []store.SamplePoint {
				samples := make([]store.SamplePoint, 3600)
				for i := range samples {
					samples[i] = store.SamplePoint{TimeOffset: i, Power: floatPtr(250), HeartRate: intPtr(160)}
				}
				return samples
			}(),
			checkFn: func(t *testing.T, a *store.Activity) {
				if a.NormalizedPower == nil || math.Abs(*a.NormalizedPower-250) > 0.01 {
					t.Errorf("NormalizedPower = %v, want ~250", a.NormalizedPower)
				}
				if a.IntensityFactor == nil || math.Abs(*a.IntensityFactor-1.0) > 0.001 {
					t.Errorf("IntensityFactor = %v, want 1.0", a.IntensityFactor)
				}
				if a.StressScore == nil || math.Abs(*a.StressScore-100) > 0.1 {
					t.Errorf("StressScore = %v, want ~100", a.StressScore)
				}
				if a.EfficiencyFactor == nil {
					t.Error("EfficiencyFactor should be set when HR is present")
				}
			},
		},
		{
			name: "run from summary averages only",
			activity: store.Activity{
				Sport:      store.SportRun,
				MovingTime: 3600,
				AvgSpeed:   floatPtr(3.33),
			},
			checkFn: func(t *testing.T, a *store.Activity) {
				if a.StressScore == nil || math.Abs(*a.StressScore-100) > 0.5 {
					t.Errorf("StressScore = %v, want ~100 for an hour at threshold pace", a.StressScore)
				}
				if a.NormalizedPower != nil {
					t.Error("a run must not carry normalized power")
				}
			},
		},
		{
			name: "HR-only activity falls back to heart rate stress",
			activity: store.Activity{
				Sport:        store.SportOther,
				MovingTime:   3600,
				AvgHeartRate: floatPtr(165),
			},
			checkFn: func(t *testing.T, a *store.Activity) {
				if a.StressScore == nil || math.Abs(*a.StressScore-100) > 1.5 {
					t.Errorf("StressScore = %v, want ~100 from HR fallback", a.StressScore)
				}
			},
		},
		{
			name: "nothing usable degrades to no metrics",
			activity: store.Activity{
				Sport:      store.SportRide,
				MovingTime: 3600,
			},
			checkFn: func(t *testing.T, a *store.Activity) {
				if a.StressScore != nil || a.IntensityFactor != nil || a.EfficiencyFactor != nil {
					t.Errorf("expected no derived metrics, got stress=%v if=%v ef=%v",
						a.StressScore, a.IntensityFactor, a.EfficiencyFactor)
				}
			},
		},
		{
			name: "re-derivation clears stale fields",
			activity: store.Activity{
				Sport:       store.SportRide,
				MovingTime:  3600,
				StressScore: floatPtr(999),
			},
			checkFn: func(t *testing.T, a *store.Activity) {
				if a.StressScore != nil {
					t.Errorf("StressScore = %v, want cleared on re-derivation", *a.StressScore)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.activity
			Derive(&a, tt.samples, th)
			tt.checkFn(t, &a)
		})
	}
}
