package store

import "time"

// Sports tracked by the engine
const (
	SportRide  = "Ride"
	SportRun   = "Run"
	SportSwim  = "Swim"
	SportOther = "Other"
)

// Peak metrics stored per activity
const (
	MetricPower = "power"
	MetricPace  = "pace" // speed in m/s; higher is faster
	MetricHR    = "hr"
)

// Activity represents an activity summary handed over by ingestion.
// The derived fields (NormalizedPower..DecouplingPct) are written only by
// metric re-derivation, never edited directly.
type Activity struct {
	ID               int64     `db:"id"`
	AthleteID        int64     `db:"athlete_id"`
	Name             string    `db:"name"`
	Sport            string    `db:"sport"`
	StartDate        time.Time `db:"start_date"`
	StartDateLocal   time.Time `db:"start_date_local"`
	Distance         float64   `db:"distance"`    // meters
	MovingTime       int       `db:"moving_time"` // seconds
	ElapsedTime      int       `db:"elapsed_time"`
	AvgPower         *float64  `db:"avg_power"`
	AvgHeartRate     *float64  `db:"avg_heartrate"`
	MaxHeartRate     *float64  `db:"max_heartrate"`
	AvgSpeed         *float64  `db:"avg_speed"` // m/s
	NormalizedPower  *float64  `db:"normalized_power"`
	IntensityFactor  *float64  `db:"intensity_factor"`
	StressScore      *float64  `db:"stress_score"`
	EfficiencyFactor *float64  `db:"efficiency_factor"`
	DecouplingPct    *float64  `db:"decoupling_pct"`
	HasSamples       bool      `db:"has_samples"`
}

// Day returns the local calendar day the activity counts toward.
func (a *Activity) Day() string {
	return a.StartDateLocal.Format("2006-01-02")
}

// SamplePoint represents a single per-second sample of an activity stream
type SamplePoint struct {
	ActivityID    int64    `db:"activity_id"`
	TimeOffset    int      `db:"time_offset"` // seconds
	HeartRate     *int     `db:"heartrate"`   // bpm
	Power         *float64 `db:"power"`       // watts
	Cadence       *int     `db:"cadence"`
	Speed         *float64 `db:"speed"`    // m/s
	Altitude      *float64 `db:"altitude"` // meters
	Lat           *float64 `db:"latlng_lat"`
	Lng           *float64 `db:"latlng_lng"`
	GroundContact *float64 `db:"gct_ms"`       // ms
	VerticalOsc   *float64 `db:"vert_osc_cm"`  // cm
	StrideLength  *float64 `db:"stride_len_m"` // meters
}

// ActivityPeak is a cached best sliding-window average for one duration
type ActivityPeak struct {
	ActivityID      int64   `db:"activity_id"`
	Metric          string  `db:"metric"`
	DurationSeconds int     `db:"duration_seconds"`
	Value           float64 `db:"value"`
}

// DailyLedgerEntry is one row of the fitness/fatigue ledger.
// Invariants: TSB = CTL - ATL; rows exist for every day from the athlete's
// first activity through today with no gaps.
type DailyLedgerEntry struct {
	AthleteID int64   `db:"athlete_id"`
	Date      string  `db:"date"` // YYYY-MM-DD
	Stress    float64 `db:"stress"`
	CTL       float64 `db:"ctl"` // chronic load, 42-day constant
	ATL       float64 `db:"atl"` // acute load, 7-day constant
	TSB       float64 `db:"tsb"` // CTL - ATL
}

// SportLoad is the per-sport share of one ledger day
type SportLoad struct {
	Sport           string  `db:"sport"`
	Stress          float64 `db:"stress"`
	DurationSeconds int     `db:"duration_seconds"`
}

// PeakRecord is an all-time best for an (athlete, sport, bucket).
// History is append-only; the row with the maximum value is the current best.
type PeakRecord struct {
	ID              int64     `db:"id"`
	AthleteID       int64     `db:"athlete_id"`
	Sport           string    `db:"sport"`
	Bucket          string    `db:"bucket"`
	Value           float64   `db:"value"`
	DurationSeconds *int      `db:"duration_seconds"`
	DistanceMeters  *float64  `db:"distance_meters"`
	ActivityID      int64     `db:"activity_id"`
	AchievedAt      time.Time `db:"achieved_at"`
	PreviousBest    *float64  `db:"previous_best"`
	ImprovementPct  *float64  `db:"improvement_pct"`
}
