package analysis

import (
	"math"
	"testing"

	"trainload/internal/store"
)

func TestPeakForDuration(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		duration int
		expected float64
		delta    float64
	}{
		{
			name:     "constant series",
			values:   []float64{200, 200, 200, 200, 200},
			duration: 3,
			expected: 200,
			delta:    0.001,
		},
		{
			name:     "finds the surge",
			values:   []float64{100, 100, 300, 300, 300, 100, 100},
			duration: 3,
			expected: 300,
			delta:    0.001,
		},
		{
			name:     "window spanning the surge averages it",
			values:   []float64{100, 100, 300, 300, 300, 100, 100},
			duration: 5,
			expected: 220, // 100+300+300+300+100 over 5
			delta:    0.001,
		},
		{
			name:     "series shorter than window",
			values:   []float64{250, 250},
			duration: 5,
			expected: 0,
			delta:    0,
		},
		{
			name:     "zero duration",
			values:   []float64{250, 250},
			duration: 0,
			expected: 0,
			delta:    0,
		},
		{
			name:     "window equals series length",
			values:   []float64{100, 200, 300},
			duration: 3,
			expected: 200,
			delta:    0.001,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := PeakForDuration(tt.values, tt.duration)
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("PeakForDuration(%v, %d) = %v, want %v",
					tt.values, tt.duration, result, tt.expected)
			}
		})
	}
}

// For any fixed series, a shorter maximal-average window bounds every
// longer one drawn from the same data.
func TestPeakForDurationMonotonicity(t *testing.T) {
	// A noisy interval session
	values := make([]float64, 1800)
	for i := range values {
		base := 180.0
		if (i/120)%2 == 0 {
			base = 320.0
		}
		values[i] = base + float64(i%17)
	}

	durations := []int{5, 10, 30, 60, 300, 600, 1200, 1800}
	prev := math.Inf(1)
	for _, d := range durations {
		peak := PeakForDuration(values, d)
		if peak > prev {
			t.Errorf("PeakForDuration(%d) = %v exceeds shorter-window peak %v", d, peak, prev)
		}
		prev = peak
	}
}

func TestPeaksForDurations(t *testing.T) {
	values := []float64{100, 100, 300, 300, 300, 100, 100}
	peaks := PeaksForDurations(values, []int{3, 5, 100})

	if len(peaks) != 2 {
		t.Fatalf("expected 2 peaks (longest duration dropped), got %d", len(peaks))
	}
	if math.Abs(peaks[3]-300) > 0.001 {
		t.Errorf("peaks[3] = %v, want 300", peaks[3])
	}
	if _, ok := peaks[100]; ok {
		t.Error("duration longer than the series must be omitted")
	}
}

func TestSeriesExtraction(t *testing.T) {
	samples := []store.SamplePoint{
		{TimeOffset: 0, Power: floatPtr(200), Speed: floatPtr(3.0), HeartRate: intPtr(140)},
		{TimeOffset: 1},
		{TimeOffset: 2, Power: floatPtr(220), Speed: floatPtr(3.2), HeartRate: intPtr(150)},
	}

	power := PowerSeries(samples)
	if len(power) != 3 || power[1] != 0 {
		t.Errorf("PowerSeries gaps must read as zero output: %v", power)
	}

	if hr := AverageHR(samples); math.Abs(hr-145) > 0.001 {
		t.Errorf("AverageHR = %v, want 145", hr)
	}
	if max := MaxHR(samples); max != 150 {
		t.Errorf("MaxHR = %v, want 150", max)
	}
}
