package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// UpsertLedgerEntries writes a batch of ledger rows in one transaction.
// The ledger engine calls this in chunks during forward propagation so a
// long cascade never holds one giant transaction.
func (s *Store) UpsertLedgerEntries(entries []DailyLedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO daily_ledger (athlete_id, date, stress, ctl, atl, tsb)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(athlete_id, date) DO UPDATE SET
			stress = excluded.stress,
			ctl = excluded.ctl,
			atl = excluded.atl,
			tsb = excluded.tsb,
			computed_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.AthleteID, e.Date, e.Stress, e.CTL, e.ATL, e.TSB); err != nil {
			return fmt.Errorf("upserting ledger row %s: %w", e.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// GetLedgerEntry retrieves one ledger row. Returns ErrNoLedger if absent.
func (s *Store) GetLedgerEntry(athleteID int64, date string) (*DailyLedgerEntry, error) {
	var e DailyLedgerEntry
	err := s.db.QueryRow(`
		SELECT athlete_id, date, stress, ctl, atl, tsb
		FROM daily_ledger
		WHERE athlete_id = ? AND date = ?
	`, athleteID, date).Scan(&e.AthleteID, &e.Date, &e.Stress, &e.CTL, &e.ATL, &e.TSB)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoLedger
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetLedgerRange retrieves ledger rows for [from, to] inclusive, ascending.
func (s *Store) GetLedgerRange(athleteID int64, from, to string) ([]DailyLedgerEntry, error) {
	rows, err := s.db.Query(`
		SELECT athlete_id, date, stress, ctl, atl, tsb
		FROM daily_ledger
		WHERE athlete_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`, athleteID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DailyLedgerEntry
	for rows.Next() {
		var e DailyLedgerEntry
		if err := rows.Scan(&e.AthleteID, &e.Date, &e.Stress, &e.CTL, &e.ATL, &e.TSB); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// LatestLedgerEntry returns the most recent stored ledger row.
// Due to the no-gaps invariant this is always well-defined once any entry exists.
func (s *Store) LatestLedgerEntry(athleteID int64) (*DailyLedgerEntry, error) {
	var e DailyLedgerEntry
	err := s.db.QueryRow(`
		SELECT athlete_id, date, stress, ctl, atl, tsb
		FROM daily_ledger
		WHERE athlete_id = ?
		ORDER BY date DESC
		LIMIT 1
	`, athleteID).Scan(&e.AthleteID, &e.Date, &e.Stress, &e.CTL, &e.ATL, &e.TSB)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoLedger
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// EarliestLedgerDate returns the date of the first ledger row.
func (s *Store) EarliestLedgerDate(athleteID int64) (string, error) {
	var date sql.NullString
	err := s.db.QueryRow(`
		SELECT min(date) FROM daily_ledger WHERE athlete_id = ?
	`, athleteID).Scan(&date)
	if err != nil {
		return "", err
	}
	if !date.Valid || date.String == "" {
		return "", ErrNoLedger
	}
	return date.String, nil
}

// CountLedgerEntries returns the number of ledger rows for an athlete.
func (s *Store) CountLedgerEntries(athleteID int64) (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM daily_ledger WHERE athlete_id = ?`, athleteID).Scan(&count)
	return count, err
}

// ReplaceSportLoads replaces the per-sport breakdown for one ledger day.
func (s *Store) ReplaceSportLoads(athleteID int64, date string, loads []SportLoad) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM ledger_sports WHERE athlete_id = ? AND date = ?`, athleteID, date); err != nil {
		return fmt.Errorf("deleting sport loads: %w", err)
	}

	for _, l := range loads {
		_, err := tx.Exec(`
			INSERT INTO ledger_sports (athlete_id, date, sport, stress, duration_seconds)
			VALUES (?, ?, ?, ?, ?)
		`, athleteID, date, l.Sport, l.Stress, l.DurationSeconds)
		if err != nil {
			return fmt.Errorf("inserting sport load: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// GetSportLoads retrieves the per-sport breakdown for one ledger day.
func (s *Store) GetSportLoads(athleteID int64, date string) ([]SportLoad, error) {
	rows, err := s.db.Query(`
		SELECT sport, stress, duration_seconds
		FROM ledger_sports
		WHERE athlete_id = ? AND date = ?
		ORDER BY sport
	`, athleteID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []SportLoad
	for rows.Next() {
		var l SportLoad
		if err := rows.Scan(&l.Sport, &l.Stress, &l.DurationSeconds); err != nil {
			return nil, err
		}
		loads = append(loads, l)
	}

	return loads, rows.Err()
}
