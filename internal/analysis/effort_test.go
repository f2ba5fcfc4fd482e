package analysis

import (
	"math"
	"testing"
)

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func TestNormalizedEffort(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
		delta    float64
	}{
		{
			name:     "empty series",
			values:   nil,
			expected: 0,
			delta:    0,
		},
		{
			name:     "short series falls back to plain mean",
			values:   []float64{100, 200, 300},
			expected: 200,
			delta:    0.001,
		},
		{
			name: "constant series equals the constant",
			values: func() []float64 {
				v := make([]float64, 60)
				for i := range v {
					v[i] = 200
				}
				return v
			}(),
			expected: 200,
			delta:    0.001,
		},
		{
			name: "exactly one window",
			values: func() []float64 {
				v := make([]float64, 30)
				for i := range v {
					v[i] = 250
				}
				return v
			}(),
			expected: 250,
			delta:    0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NormalizedEffort(tt.values)
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("NormalizedEffort() = %v, want %v (±%v)", result, tt.expected, tt.delta)
			}
		})
	}
}

// A surging workout must score above its plain average: the 4th-power mean
// penalizes variance that survives the 30-sample smoothing.
func TestNormalizedEffortPenalizesVariance(t *testing.T) {
	surging := make([]float64, 60)
	for i := range surging {
		if i < 30 {
			surging[i] = 200
		} else {
			surging[i] = 300
		}
	}

	ne := NormalizedEffort(surging)
	simpleMean := mean(surging) // 250

	if ne <= simpleMean {
		t.Errorf("NormalizedEffort() = %v, want > simple mean %v", ne, simpleMean)
	}

	steady := make([]float64, 60)
	for i := range steady {
		steady[i] = 250
	}
	if steadyNE := NormalizedEffort(steady); ne <= steadyNE {
		t.Errorf("surging NE %v should exceed steady NE %v at equal average output", ne, steadyNE)
	}
}

func TestIntensityFactor(t *testing.T) {
	tests := []struct {
		name      string
		effort    float64
		threshold float64
		expected  float64
	}{
		{"at threshold", 250, 250, 1.0},
		{"below threshold", 187.5, 250, 0.75},
		{"above threshold", 300, 250, 1.2},
		{"zero threshold returns 0, never divides", 250, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IntensityFactor(tt.effort, tt.threshold)
			if math.Abs(result-tt.expected) > 0.0001 {
				t.Errorf("IntensityFactor(%v, %v) = %v, want %v", tt.effort, tt.threshold, result, tt.expected)
			}
		})
	}
}
