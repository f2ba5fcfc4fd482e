// Package records maintains all-time bests per athlete, sport and metric
// bucket. History is append-only: a new record row captures the value it
// beat, and the current best is always the maximum stored value, so a
// re-run over old data can never demote a best.
package records

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"trainload/internal/store"
)

// Scalar record buckets. Duration-based power and pace buckets are
// derived from the activity's cached peaks as "power_30s", "pace_600s"
// and so on.
const (
	BucketMaxHR           = "max_hr"
	BucketLongestDistance = "longest_distance"
	BucketHighestStress   = "highest_stress"
	BucketBestEfficiency  = "best_ef"
)

// NewRecord describes one record broken by an activity.
type NewRecord struct {
	Bucket         string
	Value          float64
	PreviousBest   *float64
	ImprovementPct *float64
}

// Tracker checks a processed activity's metrics and peaks against the
// stored bests and appends a record row for each strict improvement.
// A per-athlete lock makes the check-then-insert race-free, which is
// what keeps reprocessing the same activity idempotent.
type Tracker struct {
	store *store.Store
	log   zerolog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a record tracker.
func New(s *store.Store, logger zerolog.Logger) *Tracker {
	return &Tracker{
		store: s,
		log:   logger,
		locks: make(map[int64]*sync.Mutex),
	}
}

func (t *Tracker) athleteLock(athleteID int64) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[athleteID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[athleteID] = l
	}
	return l
}

// ProcessActivity evaluates every applicable bucket for the activity and
// records strict improvements. Ties and lower values leave the stored
// best untouched. The current best is re-read under the athlete lock
// right before each insert, so re-running on the same activity inserts
// nothing new.
func (t *Tracker) ProcessActivity(a *store.Activity) ([]NewRecord, error) {
	lock := t.athleteLock(a.AthleteID)
	lock.Lock()
	defer lock.Unlock()

	var broken []NewRecord

	check := func(bucket string, value float64, durationSeconds *int, distanceMeters *float64) error {
		if value <= 0 {
			return nil
		}
		rec, err := t.record(a, bucket, value, durationSeconds, distanceMeters)
		if err != nil {
			return err
		}
		if rec != nil {
			broken = append(broken, *rec)
		}
		return nil
	}

	if a.MaxHeartRate != nil {
		if err := check(BucketMaxHR, *a.MaxHeartRate, nil, nil); err != nil {
			return nil, err
		}
	}
	if err := check(BucketLongestDistance, a.Distance, nil, &a.Distance); err != nil {
		return nil, err
	}
	if a.StressScore != nil {
		if err := check(BucketHighestStress, *a.StressScore, nil, nil); err != nil {
			return nil, err
		}
	}
	if a.EfficiencyFactor != nil {
		if err := check(BucketBestEfficiency, *a.EfficiencyFactor, nil, nil); err != nil {
			return nil, err
		}
	}

	peaks, err := t.store.GetActivityPeaks(a.ID)
	if err != nil {
		return nil, fmt.Errorf("loading activity peaks: %w", err)
	}
	for _, p := range peaks {
		d := p.DurationSeconds
		if err := check(DurationBucket(p.Metric, d), p.Value, &d, nil); err != nil {
			return nil, err
		}
	}

	for _, r := range broken {
		t.log.Info().
			Int64("athlete", a.AthleteID).
			Int64("activity", a.ID).
			Str("bucket", r.Bucket).
			Float64("value", r.Value).
			Msg("new peak record")
	}

	return broken, nil
}

// record applies the strict-improvement rule for one bucket and, when it
// holds, appends the record row.
func (t *Tracker) record(a *store.Activity, bucket string, value float64, durationSeconds *int, distanceMeters *float64) (*NewRecord, error) {
	best, err := t.store.CurrentBest(a.AthleteID, a.Sport, bucket)
	if err != nil && !errors.Is(err, store.ErrPeakRecordNotFound) {
		return nil, fmt.Errorf("loading current best for %s: %w", bucket, err)
	}

	var previousBest, improvementPct *float64
	if best != nil {
		if value <= best.Value {
			return nil, nil
		}
		prev := best.Value
		previousBest = &prev
		if prev > 0 {
			pct := 100 * (value - prev) / prev
			improvementPct = &pct
		}
	}

	pr := &store.PeakRecord{
		AthleteID:       a.AthleteID,
		Sport:           a.Sport,
		Bucket:          bucket,
		Value:           value,
		DurationSeconds: durationSeconds,
		DistanceMeters:  distanceMeters,
		ActivityID:      a.ID,
		AchievedAt:      a.StartDateLocal,
		PreviousBest:    previousBest,
		ImprovementPct:  improvementPct,
	}
	if err := t.store.InsertPeakRecord(pr); err != nil {
		return nil, fmt.Errorf("inserting record for %s: %w", bucket, err)
	}

	return &NewRecord{
		Bucket:         bucket,
		Value:          value,
		PreviousBest:   previousBest,
		ImprovementPct: improvementPct,
	}, nil
}

// CurrentBests returns the best stored record per bucket for a sport.
func (t *Tracker) CurrentBests(athleteID int64, sport string) ([]store.PeakRecord, error) {
	return t.store.CurrentBests(athleteID, sport)
}

// RecentRecords returns the latest record rows across all buckets.
func (t *Tracker) RecentRecords(athleteID int64, limit int) ([]store.PeakRecord, error) {
	return t.store.RecentRecords(athleteID, limit)
}

// History returns the append-only record history for one bucket.
func (t *Tracker) History(athleteID int64, sport, bucket string) ([]store.PeakRecord, error) {
	return t.store.RecordHistory(athleteID, sport, bucket)
}

// DurationBucket names the record bucket for a metric peak at a duration.
func DurationBucket(metric string, durationSeconds int) string {
	return fmt.Sprintf("%s_%ds", metric, durationSeconds)
}
