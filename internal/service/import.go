package service

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"trainload/internal/store"
)

// importFile is the on-disk JSON shape for one exported activity: the
// summary plus an optional per-second sample stream.
type importFile struct {
	Activity importActivity `json:"activity"`
	Samples  []importSample `json:"samples"`
}

type importActivity struct {
	ID           int64    `json:"id"`
	AthleteID    int64    `json:"athlete_id"`
	Name         string   `json:"name"`
	Sport        string   `json:"sport"`
	StartDate    string   `json:"start_date_local"`
	Distance     float64  `json:"distance_m"`
	MovingTime   int      `json:"moving_time_s"`
	ElapsedTime  int      `json:"elapsed_time_s"`
	AvgPower     *float64 `json:"avg_power"`
	AvgHeartRate *float64 `json:"avg_heartrate"`
	MaxHeartRate *float64 `json:"max_heartrate"`
	AvgSpeed     *float64 `json:"avg_speed"`
}

type importSample struct {
	Offset    int      `json:"t"`
	HeartRate *int     `json:"hr"`
	Power     *float64 `json:"watts"`
	Cadence   *int     `json:"cadence"`
	Speed     *float64 `json:"speed"`
	Altitude  *float64 `json:"altitude"`
}

// ReadActivityInput decodes one activity document and validates it at
// the boundary: id, athlete, timestamp, and a positive duration are
// required before anything touches the pipeline.
func ReadActivityInput(r io.Reader) (ActivityInput, error) {
	var doc importFile
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return ActivityInput{}, fmt.Errorf("decoding activity: %w", err)
	}

	a := doc.Activity
	if a.ID <= 0 {
		return ActivityInput{}, fmt.Errorf("activity id must be positive, got %d", a.ID)
	}
	if a.AthleteID <= 0 {
		return ActivityInput{}, fmt.Errorf("athlete id must be positive, got %d", a.AthleteID)
	}
	if a.MovingTime <= 0 {
		return ActivityInput{}, fmt.Errorf("activity %d: moving time must be positive, got %d", a.ID, a.MovingTime)
	}

	start, err := time.Parse(time.RFC3339, a.StartDate)
	if err != nil {
		return ActivityInput{}, fmt.Errorf("activity %d: parsing start date: %w", a.ID, err)
	}

	sport := a.Sport
	switch sport {
	case store.SportRide, store.SportRun, store.SportSwim:
	default:
		sport = store.SportOther
	}

	elapsed := a.ElapsedTime
	if elapsed < a.MovingTime {
		elapsed = a.MovingTime
	}

	samples := make([]store.SamplePoint, 0, len(doc.Samples))
	for _, s := range doc.Samples {
		if s.Offset < 0 {
			return ActivityInput{}, fmt.Errorf("activity %d: negative sample offset %d", a.ID, s.Offset)
		}
		samples = append(samples, store.SamplePoint{
			ActivityID: a.ID,
			TimeOffset: s.Offset,
			HeartRate:  s.HeartRate,
			Power:      s.Power,
			Cadence:    s.Cadence,
			Speed:      s.Speed,
			Altitude:   s.Altitude,
		})
	}

	return ActivityInput{
		Activity: store.Activity{
			ID:             a.ID,
			AthleteID:      a.AthleteID,
			Name:           a.Name,
			Sport:          sport,
			StartDate:      start,
			StartDateLocal: start,
			Distance:       a.Distance,
			MovingTime:     a.MovingTime,
			ElapsedTime:    elapsed,
			AvgPower:       a.AvgPower,
			AvgHeartRate:   a.AvgHeartRate,
			MaxHeartRate:   a.MaxHeartRate,
			AvgSpeed:       a.AvgSpeed,
		},
		Samples: samples,
	}, nil
}
