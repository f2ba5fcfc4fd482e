// Package forecast projects the fitness/fatigue ledger into the future
// under different training regimes and solves the inverse problems
// (required weekly load, taper shape). Everything here is a pure
// computation over a starting state; nothing writes to the ledger.
package forecast

import (
	"errors"
	"fmt"
	"time"
)

// Recurrence time constants, matching the stored ledger.
const (
	longRunDays  = 42
	shortRunDays = 7
)

// Ramp-rate thresholds in CTL points per week. Sustained ramps past the
// safe threshold correlate with overuse injury; past the danger threshold
// the plan is flagged unachievable.
const (
	SafeRampPerWeek   = 6.0
	DangerRampPerWeek = 8.0
)

// recoveryWeekFactor scales every 4th week down to a recovery week.
const recoveryWeekFactor = 0.65

// minTaperDays is the shortest runway SimulateTaper will plan for.
const minTaperDays = 7

// ErrTaperTooClose is returned when the race is under minTaperDays away.
var ErrTaperTooClose = errors.New("race too close to taper")

// Point sources
const (
	SourcePlanned   = "planned"
	SourceEstimated = "estimated"
	SourceDecay     = "decay"
)

// State is the ledger tail a projection starts from.
type State struct {
	Date string // YYYY-MM-DD of the last stored ledger row
	CTL  float64
	ATL  float64
}

// Point is one projected day.
type Point struct {
	Date   string
	CTL    float64
	ATL    float64
	TSB    float64
	Source string
}

// PlannedWeek is one week of a training plan's stress targets.
type PlannedWeek struct {
	TargetStress float64 // total for the week
}

func advance(prevCTL, prevATL, stress float64) (ctl, atl float64) {
	ctl = prevCTL + (stress-prevCTL)/longRunDays
	atl = prevATL + (stress-prevATL)/shortRunDays
	return ctl, atl
}

// ProjectPlanned walks the recurrence through a weekly plan, spreading
// each week's target stress evenly across its 7 days. One point per day.
func ProjectPlanned(state State, weeks []PlannedWeek) []Point {
	points := make([]Point, 0, len(weeks)*7)
	ctl, atl := state.CTL, state.ATL
	date := state.Date

	for _, week := range weeks {
		daily := week.TargetStress / 7
		for d := 0; d < 7; d++ {
			date = nextDay(date)
			ctl, atl = advance(ctl, atl, daily)
			points = append(points, Point{
				Date:   date,
				CTL:    ctl,
				ATL:    atl,
				TSB:    ctl - atl,
				Source: SourcePlanned,
			})
		}
	}
	return points
}

// ProjectDecay projects the no-training case: daily stress zero, both
// loads decaying toward zero.
func ProjectDecay(state State, days int) []Point {
	points := make([]Point, 0, days)
	ctl, atl := state.CTL, state.ATL
	date := state.Date

	for d := 0; d < days; d++ {
		date = nextDay(date)
		ctl, atl = advance(ctl, atl, 0)
		points = append(points, Point{
			Date:   date,
			CTL:    ctl,
			ATL:    atl,
			TSB:    ctl - atl,
			Source: SourceDecay,
		})
	}
	return points
}

// ProjectWithOverrides projects daysAhead days, taking each day's stress
// from the override map when present. Days without an override assume
// stress equal to the current CTL, which treats "no plan" as "maintain
// current fitness" rather than as rest.
func ProjectWithOverrides(state State, overridesByDate map[string]float64, daysAhead int) []Point {
	points := make([]Point, 0, daysAhead)
	ctl, atl := state.CTL, state.ATL
	date := state.Date
	maintain := state.CTL

	for d := 0; d < daysAhead; d++ {
		date = nextDay(date)
		stress, planned := overridesByDate[date]
		source := SourceEstimated
		if planned {
			source = SourcePlanned
		} else {
			stress = maintain
		}

		ctl, atl = advance(ctl, atl, stress)
		points = append(points, Point{
			Date:   date,
			CTL:    ctl,
			ATL:    atl,
			TSB:    ctl - atl,
			Source: source,
		})
	}
	return points
}

// LoadPlan is the answer to "what weekly load reaches the target CTL".
type LoadPlan struct {
	WeeklyLoads []float64 // prescribed total stress per week
	RampPerWeek float64   // implied CTL gain per week
	Achievable  bool
	Warnings    []string
}

// RequiredWeeklyLoad solves for the weekly training load that carries CTL
// from current to target across the given number of weeks. Every 4th week
// is prescribed as a recovery week at a reduced share of the otherwise-
// prescribed load.
func RequiredWeeklyLoad(currentCTL, targetCTL float64, weeks int) (*LoadPlan, error) {
	if weeks <= 0 {
		return nil, fmt.Errorf("plan length %d weeks: must be positive", weeks)
	}

	ramp := (targetCTL - currentCTL) / float64(weeks)
	plan := &LoadPlan{
		RampPerWeek: ramp,
		Achievable:  true,
	}

	switch {
	case ramp > DangerRampPerWeek:
		plan.Achievable = false
		plan.Warnings = append(plan.Warnings, fmt.Sprintf(
			"required ramp of %.1f CTL/week exceeds the danger threshold (%.0f); extend the timeline or lower the target",
			ramp, DangerRampPerWeek))
	case ramp > SafeRampPerWeek:
		plan.Warnings = append(plan.Warnings, fmt.Sprintf(
			"required ramp of %.1f CTL/week exceeds the safe threshold (%.0f); monitor fatigue closely",
			ramp, SafeRampPerWeek))
	}

	// A steady-state week at CTL c needs 7c of stress; each point of
	// weekly CTL gain needs roughly an extra 7 points on top.
	plan.WeeklyLoads = make([]float64, weeks)
	ctl := currentCTL
	for w := 0; w < weeks; w++ {
		base := 7 * (ctl + ramp)
		if (w+1)%4 == 0 {
			plan.WeeklyLoads[w] = base * recoveryWeekFactor
		} else {
			plan.WeeklyLoads[w] = base
		}
		ctl += ramp
	}

	return plan, nil
}

// TaperDay is one day of a taper plan.
type TaperDay struct {
	Date           string
	SuggestedLoad  float64
	PercentOfUsual float64
}

// TaperPlan is a day-by-day step-down to race day.
type TaperPlan struct {
	Days         []TaperDay
	RaceDate     string
	ProjectedTSB float64
	ProjectedCTL float64
	ProjectedATL float64
}

// SimulateTaper plans the run-in to a race: full training until two weeks
// out, then stepped reductions at 70%, 50% and 30% of current CTL-level
// load as race day approaches, and reports the projected race-day form.
// Requires at least minTaperDays of runway.
func SimulateTaper(state State, raceDate string, daysToRace int) (*TaperPlan, error) {
	if daysToRace < minTaperDays {
		return nil, fmt.Errorf("%d days to race: %w", daysToRace, ErrTaperTooClose)
	}

	plan := &TaperPlan{
		Days:     make([]TaperDay, 0, daysToRace),
		RaceDate: raceDate,
	}

	ctl, atl := state.CTL, state.ATL
	date := state.Date
	usual := state.CTL

	for d := daysToRace; d >= 1; d-- {
		var pct float64
		switch {
		case d <= 3:
			pct = 0.30
		case d <= 7:
			pct = 0.50
		case d <= 14:
			pct = 0.70
		default:
			pct = 1.00
		}

		load := usual * pct
		date = nextDay(date)
		ctl, atl = advance(ctl, atl, load)
		plan.Days = append(plan.Days, TaperDay{
			Date:           date,
			SuggestedLoad:  load,
			PercentOfUsual: 100 * pct,
		})
	}

	plan.ProjectedCTL = ctl
	plan.ProjectedATL = atl
	plan.ProjectedTSB = ctl - atl
	return plan, nil
}

func nextDay(day string) string {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return day
	}
	return t.AddDate(0, 0, 1).Format("2006-01-02")
}
