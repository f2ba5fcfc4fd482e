package analysis

import (
	"math"
	"testing"
)

func TestBikeStressScore(t *testing.T) {
	tests := []struct {
		name     string
		duration int
		effort   float64
		ftp      float64
		expected float64
		delta    float64
	}{
		{"hour at FTP scores 100", 3600, 250, 250, 100, 0.01},
		{"half hour at FTP scores 50", 1800, 250, 250, 50, 0.01},
		{"zero FTP returns 0", 3600, 250, 0, 0, 0},
		{"zero duration returns 0", 0, 250, 250, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BikeStressScore(tt.duration, tt.effort, tt.ftp)
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("BikeStressScore(%d, %v, %v) = %v, want %v",
					tt.duration, tt.effort, tt.ftp, result, tt.expected)
			}
		})
	}
}

// An hour at 75% of FTP must land strictly between 0 and 100: intensity
// scales the score quadratically.
func TestBikeStressScoreSubThreshold(t *testing.T) {
	result := BikeStressScore(3600, 187.5, 250)
	if result <= 0 || result >= 100 {
		t.Errorf("BikeStressScore(3600, 187.5, 250) = %v, want strictly between 0 and 100", result)
	}
	// 0.75^2 * 100
	if math.Abs(result-56.25) > 0.01 {
		t.Errorf("BikeStressScore(3600, 187.5, 250) = %v, want 56.25", result)
	}
}

func TestRunStressScore(t *testing.T) {
	tests := []struct {
		name      string
		duration  int
		intensity float64
		expected  float64
		delta     float64
	}{
		{"hour at threshold scores 100", 3600, 1.0, 100, 0.01},
		{"easy hour", 3600, 0.7, 49, 0.01},
		{"two hard hours", 7200, 1.1, 242, 0.01},
		{"zero duration", 0, 1.0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RunStressScore(tt.duration, tt.intensity)
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("RunStressScore(%d, %v) = %v, want %v",
					tt.duration, tt.intensity, result, tt.expected)
			}
		})
	}
}

func TestSwimStressScoreMatchesRunForm(t *testing.T) {
	if swim, run := SwimStressScore(2700, 0.95), RunStressScore(2700, 0.95); swim != run {
		t.Errorf("SwimStressScore = %v, want same form as RunStressScore %v", swim, run)
	}
}

func TestHeartRateStressScore(t *testing.T) {
	tests := []struct {
		name        string
		duration    int
		avgHR       float64
		thresholdHR float64
		expected    float64
		delta       float64
	}{
		{"hour at threshold HR is near 100", 3600, 165, 165, 100, 1},
		{"easy hour well below 100", 3600, 130, 165, 66.6, 1},
		{"zero threshold returns 0", 3600, 150, 0, 0, 0},
		{"zero HR is harmless", 3600, 0, 165, 14.7, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := HeartRateStressScore(tt.duration, tt.avgHR, tt.thresholdHR)
			if math.Abs(result-tt.expected) > tt.delta {
				t.Errorf("HeartRateStressScore(%d, %v, %v) = %v, want %v (±%v)",
					tt.duration, tt.avgHR, tt.thresholdHR, result, tt.expected, tt.delta)
			}
		})
	}
}

// Pathological HR inputs must be bounded by the 150 points/hour cap.
func TestHeartRateStressScoreCap(t *testing.T) {
	result := HeartRateStressScore(3600, 330, 165) // double threshold
	if math.Abs(result-150) > 0.001 {
		t.Errorf("HeartRateStressScore with HR spike = %v, want capped at 150", result)
	}

	halfHour := HeartRateStressScore(1800, 330, 165)
	if math.Abs(halfHour-75) > 0.001 {
		t.Errorf("cap must scale with duration: got %v, want 75", halfHour)
	}
}

func TestLoadZone(t *testing.T) {
	tests := []struct {
		stress   float64
		expected string
	}{
		{0, "Recovery"},
		{49.9, "Recovery"},
		{50, "Easy"},
		{100, "Moderate"},
		{150, "Hard"},
		{249.9, "Hard"},
		{250, "Very Hard"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := LoadZone(tt.stress); result != tt.expected {
				t.Errorf("LoadZone(%v) = %q, want %q", tt.stress, result, tt.expected)
			}
		})
	}
}
