package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// UpsertActivity inserts or updates an activity summary.
func (s *Store) UpsertActivity(a *Activity) error {
	_, err := s.db.Exec(`
		INSERT INTO activities (
			id, athlete_id, name, sport, start_date, start_date_local,
			distance, moving_time, elapsed_time,
			avg_power, avg_heartrate, max_heartrate, avg_speed, has_samples
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			name = excluded.name,
			sport = excluded.sport,
			start_date = excluded.start_date,
			start_date_local = excluded.start_date_local,
			distance = excluded.distance,
			moving_time = excluded.moving_time,
			elapsed_time = excluded.elapsed_time,
			avg_power = excluded.avg_power,
			avg_heartrate = excluded.avg_heartrate,
			max_heartrate = excluded.max_heartrate,
			avg_speed = excluded.avg_speed,
			has_samples = excluded.has_samples,
			updated_at = CURRENT_TIMESTAMP
	`,
		a.ID, a.AthleteID, a.Name, a.Sport,
		a.StartDate.Format(time.RFC3339), a.StartDateLocal.Format(time.RFC3339),
		a.Distance, a.MovingTime, a.ElapsedTime,
		a.AvgPower, a.AvgHeartRate, a.MaxHeartRate, a.AvgSpeed, boolToInt(a.HasSamples),
	)
	return err
}

// UpdateDerivedMetrics stores the metric-derivation outputs for an activity.
func (s *Store) UpdateDerivedMetrics(a *Activity) error {
	result, err := s.db.Exec(`
		UPDATE activities SET
			max_heartrate = ?,
			normalized_power = ?,
			intensity_factor = ?,
			stress_score = ?,
			efficiency_factor = ?,
			decoupling_pct = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`,
		a.MaxHeartRate, a.NormalizedPower, a.IntensityFactor, a.StressScore,
		a.EfficiencyFactor, a.DecouplingPct, a.ID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// GetActivity retrieves an activity by ID.
func (s *Store) GetActivity(id int64) (*Activity, error) {
	row := s.db.QueryRow(activitySelect+` WHERE id = ?`, id)
	a, err := scanActivity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrActivityNotFound
	}
	return a, err
}

// DeleteActivity removes an activity and, via cascade, its samples and peaks.
// The caller is responsible for recomputing the ledger day afterwards.
func (s *Store) DeleteActivity(id int64) error {
	result, err := s.db.Exec(`DELETE FROM activities WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrActivityNotFound
	}
	return nil
}

// ActivitiesForDay returns all of an athlete's activities whose local
// start date falls on the given YYYY-MM-DD day.
func (s *Store) ActivitiesForDay(athleteID int64, day string) ([]Activity, error) {
	rows, err := s.db.Query(activitySelect+`
		WHERE athlete_id = ? AND substr(start_date_local, 1, 10) = ?
		ORDER BY start_date_local
	`, athleteID, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ActivitiesInWindow returns an athlete's activities for a sport with local
// start date on or after the given day, newest first, bounded by limit.
func (s *Store) ActivitiesInWindow(athleteID int64, sport, sinceDay string, limit int) ([]Activity, error) {
	rows, err := s.db.Query(activitySelect+`
		WHERE athlete_id = ? AND sport = ? AND substr(start_date_local, 1, 10) >= ?
		ORDER BY start_date_local DESC
		LIMIT ?
	`, athleteID, sport, sinceDay, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// ActivitiesSince returns all of an athlete's activities with local start
// day on or after sinceDay, oldest first. Used for ledger backfill.
func (s *Store) ActivitiesSince(athleteID int64, sinceDay string) ([]Activity, error) {
	rows, err := s.db.Query(activitySelect+`
		WHERE athlete_id = ? AND substr(start_date_local, 1, 10) >= ?
		ORDER BY start_date_local
	`, athleteID, sinceDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanActivities(rows)
}

// EarliestActivityDay returns the local day of the athlete's first activity.
// Returns ErrActivityNotFound if none exist.
func (s *Store) EarliestActivityDay(athleteID int64) (string, error) {
	var day sql.NullString
	err := s.db.QueryRow(`
		SELECT substr(min(start_date_local), 1, 10)
		FROM activities
		WHERE athlete_id = ?
	`, athleteID).Scan(&day)
	if err != nil {
		return "", err
	}
	if !day.Valid || day.String == "" {
		return "", ErrActivityNotFound
	}
	return day.String, nil
}

// CountActivities returns the total number of activities for an athlete.
func (s *Store) CountActivities(athleteID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM activities WHERE athlete_id = ?`, athleteID).Scan(&count)
	return count, err
}

const activitySelect = `
	SELECT id, athlete_id, name, sport, start_date, start_date_local,
		distance, moving_time, elapsed_time,
		avg_power, avg_heartrate, max_heartrate, avg_speed,
		normalized_power, intensity_factor, stress_score,
		efficiency_factor, decoupling_pct, has_samples
	FROM activities`

// scanner is satisfied by both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...any) error
}

func scanActivity(row scanner) (*Activity, error) {
	var a Activity
	var startDate, startDateLocal string
	var hasSamples int

	err := row.Scan(
		&a.ID, &a.AthleteID, &a.Name, &a.Sport, &startDate, &startDateLocal,
		&a.Distance, &a.MovingTime, &a.ElapsedTime,
		&a.AvgPower, &a.AvgHeartRate, &a.MaxHeartRate, &a.AvgSpeed,
		&a.NormalizedPower, &a.IntensityFactor, &a.StressScore,
		&a.EfficiencyFactor, &a.DecouplingPct, &hasSamples,
	)
	if err != nil {
		return nil, err
	}

	a.StartDate, err = time.Parse(time.RFC3339, startDate)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	a.StartDateLocal, err = time.Parse(time.RFC3339, startDateLocal)
	if err != nil {
		return nil, fmt.Errorf("parsing start_date_local %q: %w", startDateLocal, err)
	}
	a.HasSamples = hasSamples == 1

	return &a, nil
}

func scanActivities(rows *sql.Rows) ([]Activity, error) {
	var activities []Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *a)
	}
	return activities, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
