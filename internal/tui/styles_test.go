package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name       string
		percent    float64
		width      int
		wantFilled int
	}{
		{"empty", 0, 10, 0},
		{"half", 0.5, 10, 5},
		{"full", 1.0, 10, 10},
		{"over full clamps to width", 1.7, 10, 10},
		{"negative clamps to empty", -0.3, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := RenderProgressBar(tt.percent, tt.width)

			filled := strings.Count(bar, "█")
			empty := strings.Count(bar, "░")
			if filled != tt.wantFilled {
				t.Errorf("filled cells = %d, want %d", filled, tt.wantFilled)
			}
			if filled+empty != tt.width {
				t.Errorf("total cells = %d, want %d", filled+empty, tt.width)
			}
		})
	}
}

func TestRenderMetric(t *testing.T) {
	out := RenderMetric("Fitness (CTL)", "42.0", "+1.5/wk")
	for _, want := range []string{"Fitness (CTL)", "42.0", "+1.5/wk"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderMetric() = %q, missing %q", out, want)
		}
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp("q", "Quit")
	if !strings.Contains(out, "q") || !strings.Contains(out, "Quit") {
		t.Errorf("RenderKeyHelp() = %q, missing key or description", out)
	}
}

func TestFormStyle(t *testing.T) {
	tests := []struct {
		name string
		tsb  float64
		want lipgloss.Color
	}{
		{"fresh is green", 15, secondaryColor},
		{"working range is muted", 0, mutedColor},
		{"slightly fatigued is muted", -20, mutedColor},
		{"deep fatigue is red", -30, errorColor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormStyle(tt.tsb).GetForeground(); got != tt.want {
				t.Errorf("FormStyle(%v) foreground = %v, want %v", tt.tsb, got, tt.want)
			}
		})
	}
}
