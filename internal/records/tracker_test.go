package records

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"trainload/internal/store"
)

const testAthlete = int64(9)

func testTracker(t *testing.T) (*Tracker, *store.Store) {
	t.Helper()
	s := store.NewTestStore(t)
	return New(s, zerolog.Nop()), s
}

func floatPtr(v float64) *float64 { return &v }

func addRide(t *testing.T, s *store.Store, id int64, day string, distance float64, stress, maxHR *float64) *store.Activity {
	t.Helper()
	start, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatalf("bad day %q: %v", day, err)
	}
	start = start.Add(10 * time.Hour)
	a := &store.Activity{
		ID:             id,
		AthleteID:      testAthlete,
		Name:           "ride",
		Sport:          store.SportRide,
		StartDate:      start,
		StartDateLocal: start,
		Distance:       distance,
		MovingTime:     3600,
		ElapsedTime:    3700,
		MaxHeartRate:   maxHR,
	}
	if err := s.UpsertActivity(a); err != nil {
		t.Fatalf("upserting activity: %v", err)
	}
	a.StressScore = stress
	if err := s.UpdateDerivedMetrics(a); err != nil {
		t.Fatalf("updating metrics: %v", err)
	}
	return a
}

func brokenBuckets(records []NewRecord) map[string]NewRecord {
	m := make(map[string]NewRecord, len(records))
	for _, r := range records {
		m[r.Bucket] = r
	}
	return m
}

func TestFirstActivitySetsRecords(t *testing.T) {
	tr, s := testTracker(t)

	a := addRide(t, s, 1, "2025-06-01", 42000, floatPtr(95), floatPtr(178))

	broken, err := tr.ProcessActivity(a)
	if err != nil {
		t.Fatalf("ProcessActivity: %v", err)
	}

	m := brokenBuckets(broken)
	for _, bucket := range []string{BucketLongestDistance, BucketHighestStress, BucketMaxHR} {
		r, ok := m[bucket]
		if !ok {
			t.Errorf("bucket %s not recorded", bucket)
			continue
		}
		if r.PreviousBest != nil {
			t.Errorf("bucket %s: first record has previous best %v", bucket, *r.PreviousBest)
		}
	}
}

func TestStrictImprovementOnly(t *testing.T) {
	tr, s := testTracker(t)

	first := addRide(t, s, 1, "2025-06-01", 42000, floatPtr(100), nil)
	if _, err := tr.ProcessActivity(first); err != nil {
		t.Fatalf("ProcessActivity: %v", err)
	}

	tests := []struct {
		name     string
		stress   float64
		distance float64
		breaks   []string
	}{
		{"lower values", 80, 30000, nil},
		{"exact tie", 100, 42000, nil},
		{"stress improves", 120, 30000, []string{BucketHighestStress}},
		{"both improve", 140, 50000, []string{BucketHighestStress, BucketLongestDistance}},
	}

	id := int64(2)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := addRide(t, s, id, "2025-06-10", tt.distance, floatPtr(tt.stress), nil)
			id++

			broken, err := tr.ProcessActivity(a)
			if err != nil {
				t.Fatalf("ProcessActivity: %v", err)
			}
			m := brokenBuckets(broken)
			if len(m) != len(tt.breaks) {
				t.Fatalf("broke %d buckets %v, want %d", len(m), broken, len(tt.breaks))
			}
			for _, b := range tt.breaks {
				if _, ok := m[b]; !ok {
					t.Errorf("bucket %s not broken", b)
				}
			}
		})
	}
}

func TestLowerValueKeepsStoredBest(t *testing.T) {
	tr, s := testTracker(t)

	// Cached 60s power peak of 300W, then a later activity managing 250W.
	a1 := addRide(t, s, 1, "2025-06-01", 30000, nil, nil)
	err := s.SaveActivityPeaks(1, []store.ActivityPeak{
		{ActivityID: 1, Metric: store.MetricPower, DurationSeconds: 60, Value: 300},
	})
	if err != nil {
		t.Fatalf("saving peaks: %v", err)
	}
	if _, err := tr.ProcessActivity(a1); err != nil {
		t.Fatalf("ProcessActivity: %v", err)
	}

	a2 := addRide(t, s, 2, "2025-06-05", 30000, nil, nil)
	err = s.SaveActivityPeaks(2, []store.ActivityPeak{
		{ActivityID: 2, Metric: store.MetricPower, DurationSeconds: 60, Value: 250},
	})
	if err != nil {
		t.Fatalf("saving peaks: %v", err)
	}
	if _, err := tr.ProcessActivity(a2); err != nil {
		t.Fatalf("ProcessActivity: %v", err)
	}

	bucket := DurationBucket(store.MetricPower, 60)
	best, err := s.CurrentBest(testAthlete, store.SportRide, bucket)
	if err != nil {
		t.Fatalf("CurrentBest: %v", err)
	}
	if best.Value != 300 || best.ActivityID != 1 {
		t.Errorf("current best = %.0f from activity %d, want 300 from activity 1",
			best.Value, best.ActivityID)
	}
}

func TestImprovementCapturesPrevious(t *testing.T) {
	tr, s := testTracker(t)

	a1 := addRide(t, s, 1, "2025-06-01", 30000, floatPtr(100), nil)
	if _, err := tr.ProcessActivity(a1); err != nil {
		t.Fatalf("ProcessActivity: %v", err)
	}

	a2 := addRide(t, s, 2, "2025-06-08", 30000, floatPtr(125), nil)
	broken, err := tr.ProcessActivity(a2)
	if err != nil {
		t.Fatalf("ProcessActivity: %v", err)
	}

	r, ok := brokenBuckets(broken)[BucketHighestStress]
	if !ok {
		t.Fatal("highest stress record not broken")
	}
	if r.PreviousBest == nil || *r.PreviousBest != 100 {
		t.Fatalf("previous best = %v, want 100", r.PreviousBest)
	}
	if r.ImprovementPct == nil || math.Abs(*r.ImprovementPct-25) > 0.01 {
		t.Fatalf("improvement = %v, want 25%%", r.ImprovementPct)
	}

	history, err := tr.History(testAthlete, store.SportRide, BucketHighestStress)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("history has %d rows, want 2", len(history))
	}
	if history[0].Value != 100 || history[1].Value != 125 {
		t.Errorf("history values = %.0f, %.0f, want 100, 125", history[0].Value, history[1].Value)
	}
}

func TestReprocessIsIdempotent(t *testing.T) {
	tr, s := testTracker(t)

	a := addRide(t, s, 1, "2025-06-01", 42000, floatPtr(95), floatPtr(178))
	if _, err := tr.ProcessActivity(a); err != nil {
		t.Fatalf("ProcessActivity: %v", err)
	}

	broken, err := tr.ProcessActivity(a)
	if err != nil {
		t.Fatalf("reprocessing: %v", err)
	}
	if len(broken) != 0 {
		t.Errorf("reprocessing broke %d records: %v", len(broken), broken)
	}

	history, err := tr.History(testAthlete, store.SportRide, BucketHighestStress)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("history has %d rows after reprocess, want 1", len(history))
	}
}

func TestRecordSurvivesActivityDelete(t *testing.T) {
	tr, s := testTracker(t)

	a := addRide(t, s, 1, "2025-06-01", 42000, floatPtr(95), nil)
	if _, err := tr.ProcessActivity(a); err != nil {
		t.Fatalf("ProcessActivity: %v", err)
	}
	if err := s.DeleteActivity(1); err != nil {
		t.Fatalf("DeleteActivity: %v", err)
	}

	best, err := s.CurrentBest(testAthlete, store.SportRide, BucketHighestStress)
	if err != nil {
		t.Fatalf("CurrentBest after delete: %v", err)
	}
	if best.Value != 95 {
		t.Errorf("best = %.0f after source delete, want 95", best.Value)
	}
}
