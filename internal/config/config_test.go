package config

import (
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Test athlete defaults
	if cfg.Athlete.AthleteID != 1 {
		t.Errorf("Athlete.AthleteID = %v, want 1", cfg.Athlete.AthleteID)
	}
	if cfg.Athlete.FTPWatts != 200 {
		t.Errorf("Athlete.FTPWatts = %v, want 200", cfg.Athlete.FTPWatts)
	}
	if cfg.Athlete.RestingHR != 50 {
		t.Errorf("Athlete.RestingHR = %v, want 50", cfg.Athlete.RestingHR)
	}
	if cfg.Athlete.MaxHR != 185 {
		t.Errorf("Athlete.MaxHR = %v, want 185", cfg.Athlete.MaxHR)
	}
	if cfg.Athlete.ThresholdHR != 165 {
		t.Errorf("Athlete.ThresholdHR = %v, want 165", cfg.Athlete.ThresholdHR)
	}

	// Test display defaults
	if cfg.Display.DistanceUnit != "km" {
		t.Errorf("Display.DistanceUnit = %q, want %q", cfg.Display.DistanceUnit, "km")
	}
	if cfg.Display.PaceUnit != "min/km" {
		t.Errorf("Display.PaceUnit = %q, want %q", cfg.Display.PaceUnit, "min/km")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Athlete: AthleteConfig{
				AthleteID:   1,
				FTPWatts:    250,
				ThresholdHR: 165,
				MaxHR:       190,
			},
		}
	}

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
		errContains string
	}{
		{
			name:        "valid config",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "missing athlete id",
			mutate:      func(c *Config) { c.Athlete.AthleteID = 0 },
			expectError: true,
			errContains: "athlete_id",
		},
		{
			name:        "negative threshold",
			mutate:      func(c *Config) { c.Athlete.FTPWatts = -10 },
			expectError: true,
			errContains: "negative",
		},
		{
			name:        "threshold HR above max",
			mutate:      func(c *Config) { c.Athlete.ThresholdHR = 195 },
			expectError: true,
			errContains: "threshold_hr",
		},
		{
			name:        "bad distance unit",
			mutate:      func(c *Config) { c.Display.DistanceUnit = "furlongs" },
			expectError: true,
			errContains: "distance_unit",
		},
		{
			name:        "bad pace unit",
			mutate:      func(c *Config) { c.Display.PaceUnit = "min/furlong" },
			expectError: true,
			errContains: "pace_unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.expectError {
				if err == nil {
					t.Error("expected error, got nil")
				} else if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}
