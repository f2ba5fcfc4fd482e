package forecast

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func TestProjectDecay(t *testing.T) {
	state := State{Date: "2025-06-01", CTL: 50, ATL: 60}
	points := ProjectDecay(state, 30)

	if len(points) != 30 {
		t.Fatalf("got %d points, want 30", len(points))
	}
	if points[0].Date != "2025-06-02" {
		t.Errorf("first point date = %s, want 2025-06-02", points[0].Date)
	}

	prevCTL, prevATL := state.CTL, state.ATL
	for _, p := range points {
		if p.Source != SourceDecay {
			t.Fatalf("%s: source = %s, want decay", p.Date, p.Source)
		}
		if p.CTL >= prevCTL || p.ATL >= prevATL {
			t.Fatalf("%s: loads %.2f/%.2f did not strictly decrease", p.Date, p.CTL, p.ATL)
		}
		if p.CTL < 0 || p.ATL < 0 {
			t.Fatalf("%s: loads went negative", p.Date)
		}
		if math.Abs(p.TSB-(p.CTL-p.ATL)) > 1e-9 {
			t.Fatalf("%s: TSB != CTL-ATL", p.Date)
		}
		prevCTL, prevATL = p.CTL, p.ATL
	}

	// ATL decays faster, so form recovers
	last := points[len(points)-1]
	if last.TSB <= state.CTL-state.ATL {
		t.Errorf("TSB after 30 days rest = %.2f, want above starting %.2f",
			last.TSB, state.CTL-state.ATL)
	}
}

func TestProjectPlanned(t *testing.T) {
	state := State{Date: "2025-06-01", CTL: 40, ATL: 40}
	weeks := []PlannedWeek{{TargetStress: 420}, {TargetStress: 490}}

	points := ProjectPlanned(state, weeks)
	if len(points) != 14 {
		t.Fatalf("got %d points, want 14", len(points))
	}
	for _, p := range points {
		if p.Source != SourcePlanned {
			t.Fatalf("%s: source = %s, want planned", p.Date, p.Source)
		}
	}

	// Week 1 at 60/day holds a 40-CTL athlete above 40; week 2 at 70/day
	// keeps building.
	if points[6].CTL <= 40 {
		t.Errorf("CTL after week 1 = %.2f, want above 40", points[6].CTL)
	}
	if points[13].CTL <= points[6].CTL {
		t.Errorf("CTL did not rise across week 2: %.2f -> %.2f", points[6].CTL, points[13].CTL)
	}
}

func TestProjectPlannedMatchesRecurrence(t *testing.T) {
	state := State{Date: "2025-06-01", CTL: 0, ATL: 0}
	points := ProjectPlanned(state, []PlannedWeek{{TargetStress: 700}})

	// Day 1 at stress 100 from zero state.
	if math.Abs(points[0].CTL-2.3810) > 0.01 {
		t.Errorf("day 1 CTL = %.4f, want 2.3810", points[0].CTL)
	}
	if math.Abs(points[0].ATL-14.2857) > 0.01 {
		t.Errorf("day 1 ATL = %.4f, want 14.2857", points[0].ATL)
	}
}

func TestProjectWithOverrides(t *testing.T) {
	state := State{Date: "2025-06-01", CTL: 50, ATL: 50}
	overrides := map[string]float64{
		"2025-06-02": 0,
		"2025-06-04": 120,
	}

	points := ProjectWithOverrides(state, overrides, 4)
	if len(points) != 4 {
		t.Fatalf("got %d points, want 4", len(points))
	}

	wantSources := []string{SourcePlanned, SourceEstimated, SourcePlanned, SourceEstimated}
	for i, p := range points {
		if p.Source != wantSources[i] {
			t.Errorf("day %d (%s): source = %s, want %s", i+1, p.Date, p.Source, wantSources[i])
		}
	}

	// A rest-day override pulls ATL down; an estimated day at CTL holds it.
	if points[0].ATL >= state.ATL {
		t.Errorf("ATL after rest override = %.2f, want below %.2f", points[0].ATL, state.ATL)
	}
	// Maintenance stress equals starting CTL, so CTL barely moves.
	if math.Abs(points[1].CTL-points[0].CTL) > 1.5 {
		t.Errorf("estimated day moved CTL from %.2f to %.2f", points[0].CTL, points[1].CTL)
	}
}

func TestRequiredWeeklyLoad(t *testing.T) {
	tests := []struct {
		name           string
		current        float64
		target         float64
		weeks          int
		wantAchievable bool
		wantWarning    bool
	}{
		{"gentle build", 40, 52, 8, true, false},
		{"past danger threshold", 40, 75, 4, false, true},
		{"above safe below danger", 40, 61, 3, true, true},
		{"maintenance", 50, 50, 4, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := RequiredWeeklyLoad(tt.current, tt.target, tt.weeks)
			if err != nil {
				t.Fatalf("RequiredWeeklyLoad: %v", err)
			}
			if plan.Achievable != tt.wantAchievable {
				t.Errorf("achievable = %v, want %v (ramp %.2f)", plan.Achievable, tt.wantAchievable, plan.RampPerWeek)
			}
			if (len(plan.Warnings) > 0) != tt.wantWarning {
				t.Errorf("warnings = %v, want warning: %v", plan.Warnings, tt.wantWarning)
			}
			if len(plan.WeeklyLoads) != tt.weeks {
				t.Fatalf("got %d weekly loads, want %d", len(plan.WeeklyLoads), tt.weeks)
			}
		})
	}
}

func TestRequiredWeeklyLoadRecoveryWeeks(t *testing.T) {
	plan, err := RequiredWeeklyLoad(40, 48, 8)
	if err != nil {
		t.Fatalf("RequiredWeeklyLoad: %v", err)
	}

	for w, load := range plan.WeeklyLoads {
		if load <= 0 {
			t.Fatalf("week %d load = %.1f, want positive", w+1, load)
		}
	}
	// Weeks 4 and 8 are recovery weeks, lighter than their neighbors.
	if plan.WeeklyLoads[3] >= plan.WeeklyLoads[2] {
		t.Errorf("week 4 (%.1f) not reduced below week 3 (%.1f)", plan.WeeklyLoads[3], plan.WeeklyLoads[2])
	}
	if plan.WeeklyLoads[7] >= plan.WeeklyLoads[6] {
		t.Errorf("week 8 (%.1f) not reduced below week 7 (%.1f)", plan.WeeklyLoads[7], plan.WeeklyLoads[6])
	}
}

func TestRequiredWeeklyLoadInvalidWeeks(t *testing.T) {
	if _, err := RequiredWeeklyLoad(40, 50, 0); err == nil {
		t.Fatal("expected error for zero weeks")
	}
}

func TestSimulateTaperGuard(t *testing.T) {
	state := State{Date: "2025-06-01", CTL: 60, ATL: 65}
	_, err := SimulateTaper(state, "2025-06-05", 4)
	if !errors.Is(err, ErrTaperTooClose) {
		t.Fatalf("error = %v, want ErrTaperTooClose", err)
	}
	if err != nil && !strings.Contains(err.Error(), "4 days") {
		t.Errorf("error %q does not name the runway", err)
	}
}

func TestSimulateTaper(t *testing.T) {
	state := State{Date: "2025-06-01", CTL: 60, ATL: 70}
	plan, err := SimulateTaper(state, "2025-06-22", 21)
	if err != nil {
		t.Fatalf("SimulateTaper: %v", err)
	}

	if len(plan.Days) != 21 {
		t.Fatalf("got %d taper days, want 21", len(plan.Days))
	}

	// Bands: days 21..15 out full load, 14..8 at 70%, 7..4 at 50%, 3..1 at 30%.
	wantPct := func(daysOut int) float64 {
		switch {
		case daysOut <= 3:
			return 30
		case daysOut <= 7:
			return 50
		case daysOut <= 14:
			return 70
		default:
			return 100
		}
	}
	for i, d := range plan.Days {
		daysOut := 21 - i
		if d.PercentOfUsual != wantPct(daysOut) {
			t.Errorf("%s (%d days out): %.0f%%, want %.0f%%", d.Date, daysOut, d.PercentOfUsual, wantPct(daysOut))
		}
		if math.Abs(d.SuggestedLoad-state.CTL*d.PercentOfUsual/100) > 1e-9 {
			t.Errorf("%s: load %.1f inconsistent with band", d.Date, d.SuggestedLoad)
		}
	}

	// Fatigue sheds faster than fitness, so race-day form beats today's.
	if plan.ProjectedTSB <= state.CTL-state.ATL {
		t.Errorf("race-day TSB = %.2f, want above starting %.2f", plan.ProjectedTSB, state.CTL-state.ATL)
	}
	if plan.RaceDate != "2025-06-22" {
		t.Errorf("race date = %s", plan.RaceDate)
	}
}
