// Package service wires the engines together: ingesting an activity end
// to end (metrics, storage, peaks, ledger, records) and serving read
// queries to the TUI and other callers.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"trainload/internal/analysis"
	"trainload/internal/curve"
	"trainload/internal/ledger"
	"trainload/internal/records"
	"trainload/internal/store"
)

// ActivityInput is one activity handed over by an ingestion source: the
// summary plus an optional per-second sample stream.
type ActivityInput struct {
	Activity store.Activity
	Samples  []store.SamplePoint
}

// IngestResult reports what processing one activity produced.
type IngestResult struct {
	ActivityID  int64
	Day         string
	StressScore *float64
	PeaksCached int
	NewRecords  []records.NewRecord
}

// IngestService runs the full processing pipeline for incoming
// activities: derive metrics, persist, cache peaks, fold the day into
// the ledger, and check peak records.
type IngestService struct {
	store   *store.Store
	ledger  *ledger.Engine
	records *records.Tracker
	th      analysis.Thresholds
	log     zerolog.Logger
}

// NewIngestService creates an ingest pipeline.
func NewIngestService(s *store.Store, l *ledger.Engine, r *records.Tracker, th analysis.Thresholds, logger zerolog.Logger) *IngestService {
	return &IngestService{
		store:   s,
		ledger:  l,
		records: r,
		th:      th,
		log:     logger,
	}
}

// ProcessActivity runs one activity through the whole pipeline.
// Reprocessing the same activity is safe: storage upserts, the ledger
// day is re-aggregated from scratch, and the record tracker re-checks
// bests before inserting.
func (s *IngestService) ProcessActivity(input ActivityInput) (*IngestResult, error) {
	a := input.Activity
	a.HasSamples = len(input.Samples) > 0

	analysis.Derive(&a, input.Samples, s.th)

	if err := s.store.UpsertActivity(&a); err != nil {
		return nil, fmt.Errorf("storing activity %d: %w", a.ID, err)
	}
	if a.HasSamples {
		if err := s.store.SaveSamples(a.ID, input.Samples); err != nil {
			return nil, fmt.Errorf("storing samples for %d: %w", a.ID, err)
		}
	}
	if err := s.store.UpdateDerivedMetrics(&a); err != nil {
		return nil, fmt.Errorf("storing metrics for %d: %w", a.ID, err)
	}

	peaks := computePeaks(&a, input.Samples)
	if len(peaks) > 0 {
		if err := s.store.SaveActivityPeaks(a.ID, peaks); err != nil {
			return nil, fmt.Errorf("storing peaks for %d: %w", a.ID, err)
		}
	}

	if err := s.ledger.UpdateDay(a.AthleteID, a.Day()); err != nil {
		return nil, fmt.Errorf("updating ledger for %s: %w", a.Day(), err)
	}

	broken, err := s.records.ProcessActivity(&a)
	if err != nil {
		return nil, fmt.Errorf("checking records for %d: %w", a.ID, err)
	}

	s.log.Info().
		Int64("activity", a.ID).
		Str("sport", a.Sport).
		Str("day", a.Day()).
		Int("samples", len(input.Samples)).
		Int("records", len(broken)).
		Msg("activity processed")

	return &IngestResult{
		ActivityID:  a.ID,
		Day:         a.Day(),
		StressScore: a.StressScore,
		PeaksCached: len(peaks),
		NewRecords:  broken,
	}, nil
}

// ProcessBatch runs a set of activities through the pipeline, oldest
// first is the caller's responsibility. Per-activity failures are
// collected rather than aborting the batch; ctx cancellation stops
// between activities.
func (s *IngestService) ProcessBatch(ctx context.Context, inputs []ActivityInput) ([]IngestResult, []error) {
	var results []IngestResult
	var errs []error

	for _, input := range inputs {
		select {
		case <-ctx.Done():
			errs = append(errs, ctx.Err())
			return results, errs
		default:
		}

		res, err := s.ProcessActivity(input)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		results = append(results, *res)
	}
	return results, errs
}

// DeleteActivity removes an activity and folds its day back into the
// ledger. Stored peak records keep pointing at their historical values;
// bests are only revised by an explicit recompute, never by a delete.
func (s *IngestService) DeleteActivity(id int64) error {
	a, err := s.store.GetActivity(id)
	if err != nil {
		return fmt.Errorf("loading activity %d: %w", id, err)
	}

	if err := s.store.DeleteActivity(id); err != nil {
		return fmt.Errorf("deleting activity %d: %w", id, err)
	}

	if err := s.ledger.UpdateDay(a.AthleteID, a.Day()); err != nil {
		return fmt.Errorf("updating ledger for %s: %w", a.Day(), err)
	}

	s.log.Info().Int64("activity", id).Str("day", a.Day()).Msg("activity deleted")
	return nil
}

// computePeaks extracts the standard sliding-window peaks for every
// metric the activity's sport curves over.
func computePeaks(a *store.Activity, samples []store.SamplePoint) []store.ActivityPeak {
	if len(samples) == 0 {
		return nil
	}

	var peaks []store.ActivityPeak
	for _, metric := range curve.MetricsFor(a.Sport) {
		series := seriesFor(metric, samples)
		for _, d := range curve.DurationsFor(metric) {
			if v := analysis.PeakForDuration(series, d); v > 0 {
				peaks = append(peaks, store.ActivityPeak{
					ActivityID:      a.ID,
					Metric:          metric,
					DurationSeconds: d,
					Value:           v,
				})
			}
		}
	}
	return peaks
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
