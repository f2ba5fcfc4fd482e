// Package curve builds best-average duration curves per sport and
// lookback window, classifies rider phenotype from curve shape, and
// compares curves across periods.
package curve

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"trainload/internal/analysis"
	"trainload/internal/store"
)

// maxRescanActivities caps how many recent activities get a raw-sample
// rescan when cached peaks do not cover a duration. The curve is a best-
// effort view over the window, not an exhaustive scan; the cap trades
// completeness for bounded latency on large histories.
const maxRescanActivities = 20

// Point is one point on a duration curve, attributed to the activity
// that produced it.
type Point struct {
	DurationSeconds  int
	Value            float64
	SourceActivityID int64
	AchievedAt       string // local day YYYY-MM-DD
}

// Curve is a full duration curve for one (sport, metric, window).
type Curve struct {
	Sport        string
	Metric       string
	LookbackDays int
	Points       []Point
}

// Builder assembles curves from cached activity peaks, falling back to
// raw sample streams for durations the cache does not cover.
type Builder struct {
	store *store.Store
	log   zerolog.Logger
	now   func() time.Time
}

// New creates a curve builder using the wall clock.
func New(s *store.Store, logger zerolog.Logger) *Builder {
	return NewWithClock(s, logger, time.Now)
}

// NewWithClock creates a curve builder with an injected clock.
func NewWithClock(s *store.Store, logger zerolog.Logger, now func() time.Time) *Builder {
	return &Builder{store: s, log: logger, now: now}
}

// Build returns the duration curve for a sport and metric over the given
// lookback window. Durations for which no activity produced a value are
// omitted from the result.
func (b *Builder) Build(athleteID int64, sport, metric string, lookbackDays int) (*Curve, error) {
	durations := DurationsFor(metric)
	if len(durations) == 0 {
		return nil, fmt.Errorf("no duration list for metric %q", metric)
	}

	sinceDay := b.now().AddDate(0, 0, -lookbackDays).Format("2006-01-02")

	cached, err := b.store.PeaksInWindow(athleteID, sport, metric, sinceDay)
	if err != nil {
		return nil, fmt.Errorf("loading cached peaks: %w", err)
	}

	// Cached rows arrive ordered by duration then value descending, so
	// the first row seen per duration is the window best.
	best := make(map[int]Point, len(durations))
	for _, p := range cached {
		if _, ok := best[p.DurationSeconds]; ok {
			continue
		}
		best[p.DurationSeconds] = Point{
			DurationSeconds:  p.DurationSeconds,
			Value:            p.Value,
			SourceActivityID: p.ActivityID,
			AchievedAt:       p.AchievedAt,
		}
	}

	var missing []int
	for _, d := range durations {
		if _, ok := best[d]; !ok {
			missing = append(missing, d)
		}
	}

	if len(missing) > 0 {
		if err := b.rescan(athleteID, sport, metric, sinceDay, missing, best); err != nil {
			return nil, err
		}
	}

	points := make([]Point, 0, len(best))
	for _, d := range durations {
		if p, ok := best[d]; ok {
			points = append(points, p)
		}
	}

	enforceMonotonic(points)

	b.log.Debug().
		Int64("athlete", athleteID).
		Str("sport", sport).
		Str("metric", metric).
		Int("points", len(points)).
		Int("rescanned", len(missing)).
		Msg("duration curve built")

	return &Curve{
		Sport:        sport,
		Metric:       metric,
		LookbackDays: lookbackDays,
		Points:       points,
	}, nil
}

// rescan computes missing durations from raw sample streams, bounded to
// the most recent maxRescanActivities activities in the window.
func (b *Builder) rescan(athleteID int64, sport, metric, sinceDay string, durations []int, best map[int]Point) error {
	activities, err := b.store.ActivitiesInWindow(athleteID, sport, sinceDay, maxRescanActivities)
	if err != nil {
		return fmt.Errorf("loading activities for rescan: %w", err)
	}

	for _, a := range activities {
		if !a.HasSamples {
			continue
		}
		samples, err := b.store.GetSamples(a.ID)
		if err != nil {
			return fmt.Errorf("loading samples for activity %d: %w", a.ID, err)
		}

		series := seriesFor(metric, samples)
		for d, v := range analysis.PeaksForDurations(series, durations) {
			if cur, ok := best[d]; !ok || v > cur.Value {
				best[d] = Point{
					DurationSeconds:  d,
					Value:            v,
					SourceActivityID: a.ID,
					AchievedAt:       a.Day(),
				}
			}
		}
	}
	return nil
}

func seriesFor(metric string, samples []store.SamplePoint) []float64 {
	switch metric {
	case store.MetricPower:
		return analysis.PowerSeries(samples)
	case store.MetricPace:
		return analysis.SpeedSeries(samples)
	case store.MetricHR:
		return analysis.HRSeries(samples)
	default:
		return nil
	}
}

// enforceMonotonic clamps each point to be no greater than any shorter
// duration's value. With complete data the property holds by construction
// (a maximal D-window average bounds any longer window's), but the capped
// rescan can leave a longer duration sourced from an activity whose short
// windows were never scanned.
func enforceMonotonic(points []Point) {
	sort.Slice(points, func(i, j int) bool {
		return points[i].DurationSeconds < points[j].DurationSeconds
	})
	for i := 1; i < len(points); i++ {
		if points[i].Value > points[i-1].Value {
			points[i].Value = points[i-1].Value
		}
	}
}
