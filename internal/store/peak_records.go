package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CurrentBest returns the authoritative best record for a bucket: the row
// with the maximum value. Returns ErrPeakRecordNotFound if none exists.
func (s *Store) CurrentBest(athleteID int64, sport, bucket string) (*PeakRecord, error) {
	row := s.db.QueryRow(peakRecordSelect+`
		WHERE athlete_id = ? AND sport = ? AND bucket = ?
		ORDER BY value DESC, achieved_at
		LIMIT 1
	`, athleteID, sport, bucket)

	pr, err := scanPeakRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPeakRecordNotFound
	}
	return pr, err
}

// InsertPeakRecord appends a new record row. Callers must have verified the
// strict-improvement rule against CurrentBest immediately before inserting.
func (s *Store) InsertPeakRecord(pr *PeakRecord) error {
	result, err := s.db.Exec(`
		INSERT INTO peak_records (
			athlete_id, sport, bucket, value, duration_seconds, distance_meters,
			activity_id, achieved_at, previous_best, improvement_pct
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		pr.AthleteID, pr.Sport, pr.Bucket, pr.Value, pr.DurationSeconds, pr.DistanceMeters,
		pr.ActivityID, pr.AchievedAt.Format(time.RFC3339), pr.PreviousBest, pr.ImprovementPct,
	)
	if err != nil {
		return err
	}
	pr.ID, err = result.LastInsertId()
	return err
}

// CurrentBests returns the best record per bucket for an athlete and sport.
func (s *Store) CurrentBests(athleteID int64, sport string) ([]PeakRecord, error) {
	rows, err := s.db.Query(peakRecordSelect+`
		WHERE athlete_id = ? AND sport = ?
			AND value = (
				SELECT max(value) FROM peak_records p2
				WHERE p2.athlete_id = peak_records.athlete_id
					AND p2.sport = peak_records.sport
					AND p2.bucket = peak_records.bucket
			)
		ORDER BY bucket
	`, athleteID, sport)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPeakRecords(rows)
}

// RecentRecords returns the most recently achieved record rows across all
// buckets, newest first.
func (s *Store) RecentRecords(athleteID int64, limit int) ([]PeakRecord, error) {
	rows, err := s.db.Query(peakRecordSelect+`
		WHERE athlete_id = ?
		ORDER BY achieved_at DESC
		LIMIT ?
	`, athleteID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPeakRecords(rows)
}

// RecordHistory returns the append-only history for one bucket, oldest first.
func (s *Store) RecordHistory(athleteID int64, sport, bucket string) ([]PeakRecord, error) {
	rows, err := s.db.Query(peakRecordSelect+`
		WHERE athlete_id = ? AND sport = ? AND bucket = ?
		ORDER BY achieved_at
	`, athleteID, sport, bucket)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanPeakRecords(rows)
}

const peakRecordSelect = `
	SELECT id, athlete_id, sport, bucket, value, duration_seconds,
		distance_meters, activity_id, achieved_at, previous_best, improvement_pct
	FROM peak_records`

func scanPeakRecord(row scanner) (*PeakRecord, error) {
	var pr PeakRecord
	var achievedAt string

	err := row.Scan(
		&pr.ID, &pr.AthleteID, &pr.Sport, &pr.Bucket, &pr.Value, &pr.DurationSeconds,
		&pr.DistanceMeters, &pr.ActivityID, &achievedAt, &pr.PreviousBest, &pr.ImprovementPct,
	)
	if err != nil {
		return nil, err
	}

	pr.AchievedAt, err = time.Parse(time.RFC3339, achievedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing achieved_at %q: %w", achievedAt, err)
	}
	return &pr, nil
}

func scanPeakRecords(rows *sql.Rows) ([]PeakRecord, error) {
	var records []PeakRecord
	for rows.Next() {
		pr, err := scanPeakRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *pr)
	}
	return records, rows.Err()
}
