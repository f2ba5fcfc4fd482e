package store

import "database/sql"

// migrate runs all database migrations
func migrate(db *sql.DB) error {
	migrations := []string{
		// Activities (summary data handed over by the ingestion pipeline)
		`CREATE TABLE IF NOT EXISTS activities (
			id INTEGER PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			name TEXT NOT NULL,
			sport TEXT NOT NULL,
			start_date TEXT NOT NULL,
			start_date_local TEXT NOT NULL,
			distance REAL NOT NULL,
			moving_time INTEGER NOT NULL,
			elapsed_time INTEGER NOT NULL,
			avg_power REAL,
			avg_heartrate REAL,
			max_heartrate REAL,
			avg_speed REAL,
			normalized_power REAL,
			intensity_factor REAL,
			stress_score REAL,
			efficiency_factor REAL,
			decoupling_pct REAL,
			has_samples INTEGER NOT NULL DEFAULT 0,
			created_at TEXT DEFAULT CURRENT_TIMESTAMP,
			updated_at TEXT DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_activities_athlete_day ON activities(athlete_id, start_date_local)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_sport ON activities(sport)`,

		// Samples (second-by-second data, owned by their activity)
		`CREATE TABLE IF NOT EXISTS samples (
			activity_id INTEGER NOT NULL,
			time_offset INTEGER NOT NULL,
			heartrate INTEGER,
			power REAL,
			cadence INTEGER,
			speed REAL,
			altitude REAL,
			latlng_lat REAL,
			latlng_lng REAL,
			gct_ms REAL,
			vert_osc_cm REAL,
			stride_len_m REAL,
			PRIMARY KEY (activity_id, time_offset),
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		// Per-activity sliding-window peaks (fast path for duration curves)
		`CREATE TABLE IF NOT EXISTS activity_peaks (
			activity_id INTEGER NOT NULL,
			metric TEXT NOT NULL,
			duration_seconds INTEGER NOT NULL,
			value REAL NOT NULL,
			PRIMARY KEY (activity_id, metric, duration_seconds),
			FOREIGN KEY (activity_id) REFERENCES activities(id) ON DELETE CASCADE
		)`,

		// Daily fitness/fatigue ledger, one row per athlete per calendar day
		`CREATE TABLE IF NOT EXISTS daily_ledger (
			athlete_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			stress REAL NOT NULL,
			ctl REAL NOT NULL,
			atl REAL NOT NULL,
			tsb REAL NOT NULL,
			computed_at TEXT DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (athlete_id, date)
		)`,

		// Per-sport breakdown of a ledger day
		`CREATE TABLE IF NOT EXISTS ledger_sports (
			athlete_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			sport TEXT NOT NULL,
			stress REAL NOT NULL,
			duration_seconds INTEGER NOT NULL,
			PRIMARY KEY (athlete_id, date, sport)
		)`,

		// All-time peak records, append-only history per bucket
		`CREATE TABLE IF NOT EXISTS peak_records (
			id INTEGER PRIMARY KEY,
			athlete_id INTEGER NOT NULL,
			sport TEXT NOT NULL,
			bucket TEXT NOT NULL,
			value REAL NOT NULL,
			duration_seconds INTEGER,
			distance_meters REAL,
			activity_id INTEGER NOT NULL,
			achieved_at TEXT NOT NULL,
			previous_best REAL,
			improvement_pct REAL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_peak_records_bucket ON peak_records(athlete_id, sport, bucket)`,
		`CREATE INDEX IF NOT EXISTS idx_peak_records_activity ON peak_records(activity_id)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}

	return nil
}
