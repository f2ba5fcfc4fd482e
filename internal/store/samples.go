package store

import "fmt"

// SaveSamples stores the sample stream for an activity, replacing any
// existing stream. Samples are immutable once stored; a replace only
// happens on re-ingestion of the same activity.
func (s *Store) SaveSamples(activityID int64, points []SamplePoint) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM samples WHERE activity_id = ?`, activityID); err != nil {
		return fmt.Errorf("deleting existing samples: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO samples (
			activity_id, time_offset, heartrate, power, cadence, speed,
			altitude, latlng_lat, latlng_lng, gct_ms, vert_osc_cm, stride_len_m
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range points {
		_, err := stmt.Exec(
			activityID, p.TimeOffset, p.HeartRate, p.Power, p.Cadence, p.Speed,
			p.Altitude, p.Lat, p.Lng, p.GroundContact, p.VerticalOsc, p.StrideLength,
		)
		if err != nil {
			return fmt.Errorf("inserting sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// GetSamples retrieves the full sample stream for an activity, ordered by offset.
func (s *Store) GetSamples(activityID int64) ([]SamplePoint, error) {
	rows, err := s.db.Query(`
		SELECT activity_id, time_offset, heartrate, power, cadence, speed,
			altitude, latlng_lat, latlng_lng, gct_ms, vert_osc_cm, stride_len_m
		FROM samples
		WHERE activity_id = ?
		ORDER BY time_offset
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []SamplePoint
	for rows.Next() {
		var p SamplePoint
		err := rows.Scan(
			&p.ActivityID, &p.TimeOffset, &p.HeartRate, &p.Power, &p.Cadence, &p.Speed,
			&p.Altitude, &p.Lat, &p.Lng, &p.GroundContact, &p.VerticalOsc, &p.StrideLength,
		)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	return points, rows.Err()
}

// DeleteSamples removes all sample data for an activity.
func (s *Store) DeleteSamples(activityID int64) error {
	_, err := s.db.Exec(`DELETE FROM samples WHERE activity_id = ?`, activityID)
	return err
}

// SaveActivityPeaks stores the cached sliding-window peaks for an activity,
// replacing any previous set.
func (s *Store) SaveActivityPeaks(activityID int64, peaks []ActivityPeak) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM activity_peaks WHERE activity_id = ?`, activityID); err != nil {
		return fmt.Errorf("deleting existing peaks: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO activity_peaks (activity_id, metric, duration_seconds, value)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range peaks {
		if _, err := stmt.Exec(activityID, p.Metric, p.DurationSeconds, p.Value); err != nil {
			return fmt.Errorf("inserting peak: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// GetActivityPeaks retrieves the cached peaks for a single activity.
func (s *Store) GetActivityPeaks(activityID int64) ([]ActivityPeak, error) {
	rows, err := s.db.Query(`
		SELECT activity_id, metric, duration_seconds, value
		FROM activity_peaks
		WHERE activity_id = ?
		ORDER BY metric, duration_seconds
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var peaks []ActivityPeak
	for rows.Next() {
		var p ActivityPeak
		if err := rows.Scan(&p.ActivityID, &p.Metric, &p.DurationSeconds, &p.Value); err != nil {
			return nil, err
		}
		peaks = append(peaks, p)
	}

	return peaks, rows.Err()
}

// PeakWithSource is a cached peak joined with its source activity
type PeakWithSource struct {
	ActivityPeak
	AthleteID  int64
	Sport      string
	AchievedAt string // local day YYYY-MM-DD
}

// PeaksInWindow returns cached peaks for a sport/metric across all of an
// athlete's activities with local start day on or after sinceDay.
func (s *Store) PeaksInWindow(athleteID int64, sport, metric, sinceDay string) ([]PeakWithSource, error) {
	rows, err := s.db.Query(`
		SELECT p.activity_id, p.metric, p.duration_seconds, p.value,
			a.athlete_id, a.sport, substr(a.start_date_local, 1, 10)
		FROM activity_peaks p
		JOIN activities a ON p.activity_id = a.id
		WHERE a.athlete_id = ? AND a.sport = ? AND p.metric = ?
			AND substr(a.start_date_local, 1, 10) >= ?
		ORDER BY p.duration_seconds, p.value DESC
	`, athleteID, sport, metric, sinceDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var peaks []PeakWithSource
	for rows.Next() {
		var p PeakWithSource
		err := rows.Scan(
			&p.ActivityID, &p.Metric, &p.DurationSeconds, &p.Value,
			&p.AthleteID, &p.Sport, &p.AchievedAt,
		)
		if err != nil {
			return nil, err
		}
		peaks = append(peaks, p)
	}

	return peaks, rows.Err()
}
