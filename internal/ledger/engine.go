// Package ledger owns the daily fitness/fatigue time series: one row per
// athlete per calendar day carrying total stress, chronic load (CTL),
// acute load (ATL) and their balance (TSB). Rows are fully derived from
// the recurrence below; any change to a day's stress cascades forward to
// today before the ledger is considered consistent again.
package ledger

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"trainload/internal/store"
)

// Exponential time constants of the load model, in days
const (
	LongRunDays  = 42
	ShortRunDays = 7
)

const (
	// MaxBackfillDays bounds Initialize's lookback. Activities older than
	// this are kept but never enter the ledger.
	MaxBackfillDays = 730

	// writeChunkSize is how many ledger rows go into one transaction
	// during a cascade.
	writeChunkSize = 90

	dayFormat = "2006-01-02"
)

// ErrNegativeStress is returned when an activity carries a negative stress
// score. That is a caller bug, not a degradable input.
var ErrNegativeStress = errors.New("negative stress score")

// Engine computes and persists the daily ledger. All writes for one
// athlete are serialized through a per-athlete lock, so two activities
// landing on the same day can never recompute from a stale prior read and
// overlapping cascades are prevented rather than tolerated. Different
// athletes proceed in parallel.
type Engine struct {
	store *store.Store
	log   zerolog.Logger
	now   func() time.Time

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New creates a ledger engine using the wall clock.
func New(s *store.Store, logger zerolog.Logger) *Engine {
	return NewWithClock(s, logger, time.Now)
}

// NewWithClock creates a ledger engine with an injected clock, which keeps
// the recurrence testable against a fixed "today".
func NewWithClock(s *store.Store, logger zerolog.Logger, now func() time.Time) *Engine {
	return &Engine{
		store: s,
		log:   logger,
		now:   now,
		locks: make(map[int64]*sync.Mutex),
	}
}

// athleteLock returns the serialization lock for one athlete.
func (e *Engine) athleteLock(athleteID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[athleteID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[athleteID] = l
	}
	return l
}

// advance applies one day of the recurrence in unrounded arithmetic.
func advance(prevCTL, prevATL, stress float64) (ctl, atl, tsb float64) {
	ctl = prevCTL + (stress-prevCTL)/LongRunDays
	atl = prevATL + (stress-prevATL)/ShortRunDays
	return ctl, atl, ctl - atl
}

// UpdateDay re-aggregates a calendar day's stress from its activities,
// recomputes that day's loads from the prior stored day, persists it, and
// cascades the recomputation forward through today.
func (e *Engine) UpdateDay(athleteID int64, day string) error {
	if _, err := time.Parse(dayFormat, day); err != nil {
		return fmt.Errorf("parsing day %q: %w", day, err)
	}

	lock := e.athleteLock(athleteID)
	lock.Lock()
	defer lock.Unlock()

	if err := e.updateDayLocked(athleteID, day); err != nil {
		return err
	}
	return e.propagateLocked(athleteID, nextDay(day))
}

func (e *Engine) updateDayLocked(athleteID int64, day string) error {
	activities, err := e.store.ActivitiesForDay(athleteID, day)
	if err != nil {
		return fmt.Errorf("loading activities for %s: %w", day, err)
	}

	stress, loads, err := aggregateDay(activities)
	if err != nil {
		return err
	}

	prevCTL, prevATL, err := e.priorLoads(athleteID, day)
	if err != nil {
		return err
	}

	ctl, atl, tsb := advance(prevCTL, prevATL, stress)
	entry := store.DailyLedgerEntry{
		AthleteID: athleteID,
		Date:      day,
		Stress:    stress,
		CTL:       ctl,
		ATL:       atl,
		TSB:       tsb,
	}

	if err := e.store.UpsertLedgerEntries([]store.DailyLedgerEntry{entry}); err != nil {
		return fmt.Errorf("writing ledger day %s: %w", day, err)
	}
	if err := e.store.ReplaceSportLoads(athleteID, day, loads); err != nil {
		return fmt.Errorf("writing sport loads for %s: %w", day, err)
	}

	e.log.Debug().
		Int64("athlete", athleteID).
		Str("day", day).
		Float64("stress", stress).
		Msg("ledger day updated")

	return nil
}

// PropagateForward recomputes loads for every day from fromDate through
// today. Each day reuses its already-stored stress total (only UpdateDay
// re-aggregates activities); days with no stored entry are created with
// zero stress, which is what keeps the ledger gap-free. Re-running from
// the same fromDate converges to the same rows, so a crashed cascade is
// resumed by running it again.
func (e *Engine) PropagateForward(athleteID int64, fromDate string) error {
	if _, err := time.Parse(dayFormat, fromDate); err != nil {
		return fmt.Errorf("parsing day %q: %w", fromDate, err)
	}

	lock := e.athleteLock(athleteID)
	lock.Lock()
	defer lock.Unlock()

	return e.propagateLocked(athleteID, fromDate)
}

func (e *Engine) propagateLocked(athleteID int64, fromDate string) error {
	today := e.today()
	if fromDate > today {
		return nil
	}

	// One read for the whole stretch; the walk itself is pure.
	existing, err := e.store.GetLedgerRange(athleteID, fromDate, today)
	if err != nil {
		return fmt.Errorf("loading ledger range: %w", err)
	}
	stressByDay := make(map[string]float64, len(existing))
	for _, entry := range existing {
		stressByDay[entry.Date] = entry.Stress
	}

	prevCTL, prevATL, err := e.priorLoads(athleteID, fromDate)
	if err != nil {
		return err
	}

	batch := make([]store.DailyLedgerEntry, 0, writeChunkSize)
	days := 0
	for day := fromDate; day <= today; day = nextDay(day) {
		stress := stressByDay[day] // zero for gap days
		ctl, atl, tsb := advance(prevCTL, prevATL, stress)
		batch = append(batch, store.DailyLedgerEntry{
			AthleteID: athleteID,
			Date:      day,
			Stress:    stress,
			CTL:       ctl,
			ATL:       atl,
			TSB:       tsb,
		})
		prevCTL, prevATL = ctl, atl
		days++

		if len(batch) >= writeChunkSize {
			if err := e.store.UpsertLedgerEntries(batch); err != nil {
				return fmt.Errorf("writing ledger chunk ending %s: %w", day, err)
			}
			batch = batch[:0]
		}
	}

	if err := e.store.UpsertLedgerEntries(batch); err != nil {
		return fmt.Errorf("writing final ledger chunk: %w", err)
	}

	e.log.Debug().
		Int64("athlete", athleteID).
		Str("from", fromDate).
		Int("days", days).
		Msg("ledger cascade complete")

	return nil
}

// Initialize backfills the ledger from the athlete's earliest activity
// through today, bounded to MaxBackfillDays of lookback. Older activities
// stay stored but do not contribute to the ledger (a documented cost
// bound, not data loss).
func (e *Engine) Initialize(athleteID int64) error {
	lock := e.athleteLock(athleteID)
	lock.Lock()
	defer lock.Unlock()

	earliest, err := e.store.EarliestActivityDay(athleteID)
	if errors.Is(err, store.ErrActivityNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("finding earliest activity: %w", err)
	}

	today := e.today()
	start := earliest
	if floor := addDays(today, -MaxBackfillDays); start < floor {
		start = floor
	}

	activities, err := e.store.ActivitiesSince(athleteID, start)
	if err != nil {
		return fmt.Errorf("loading activities since %s: %w", start, err)
	}

	byDay := make(map[string][]store.Activity)
	for _, a := range activities {
		byDay[a.Day()] = append(byDay[a.Day()], a)
	}

	var prevCTL, prevATL float64
	batch := make([]store.DailyLedgerEntry, 0, writeChunkSize)
	for day := start; day <= today; day = nextDay(day) {
		stress, loads, err := aggregateDay(byDay[day])
		if err != nil {
			return err
		}

		ctl, atl, tsb := advance(prevCTL, prevATL, stress)
		batch = append(batch, store.DailyLedgerEntry{
			AthleteID: athleteID,
			Date:      day,
			Stress:    stress,
			CTL:       ctl,
			ATL:       atl,
			TSB:       tsb,
		})
		prevCTL, prevATL = ctl, atl

		if len(loads) > 0 {
			if err := e.store.ReplaceSportLoads(athleteID, day, loads); err != nil {
				return fmt.Errorf("writing sport loads for %s: %w", day, err)
			}
		}

		if len(batch) >= writeChunkSize {
			if err := e.store.UpsertLedgerEntries(batch); err != nil {
				return fmt.Errorf("writing ledger chunk ending %s: %w", day, err)
			}
			batch = batch[:0]
		}
	}

	if err := e.store.UpsertLedgerEntries(batch); err != nil {
		return fmt.Errorf("writing final ledger chunk: %w", err)
	}

	e.log.Info().
		Int64("athlete", athleteID).
		Str("from", start).
		Str("to", today).
		Msg("ledger initialized")

	return nil
}

// CurrentMetrics returns the most recent stored ledger row. Thanks to the
// no-gaps invariant this decays day by day even without new training.
func (e *Engine) CurrentMetrics(athleteID int64) (*store.DailyLedgerEntry, error) {
	return e.store.LatestLedgerEntry(athleteID)
}

// RampRate returns the CTL change over the trailing 7 stored days -
// points per week, the number the forecast safety thresholds speak in.
func (e *Engine) RampRate(athleteID int64) (float64, error) {
	latest, err := e.store.LatestLedgerEntry(athleteID)
	if err != nil {
		return 0, err
	}

	weekAgo, err := e.store.GetLedgerEntry(athleteID, addDays(latest.Date, -ShortRunDays))
	if errors.Is(err, store.ErrNoLedger) {
		return latest.CTL, nil
	}
	if err != nil {
		return 0, err
	}
	return latest.CTL - weekAgo.CTL, nil
}

// LedgerRange exposes stored rows for a date range, ascending.
func (e *Engine) LedgerRange(athleteID int64, from, to string) ([]store.DailyLedgerEntry, error) {
	return e.store.GetLedgerRange(athleteID, from, to)
}

// priorLoads reads the day before the given one, treating a missing row
// as the zero state before the athlete's first entry.
func (e *Engine) priorLoads(athleteID int64, day string) (ctl, atl float64, err error) {
	prev, err := e.store.GetLedgerEntry(athleteID, addDays(day, -1))
	if errors.Is(err, store.ErrNoLedger) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("loading prior ledger day: %w", err)
	}
	return prev.CTL, prev.ATL, nil
}

// aggregateDay sums the scored stress of one day's activities and builds
// the per-sport breakdown. A negative stress score is rejected outright.
func aggregateDay(activities []store.Activity) (float64, []store.SportLoad, error) {
	var total float64
	bySport := make(map[string]*store.SportLoad)

	for _, a := range activities {
		if a.StressScore == nil {
			continue
		}
		if *a.StressScore < 0 {
			return 0, nil, fmt.Errorf("activity %d: %w", a.ID, ErrNegativeStress)
		}

		total += *a.StressScore
		l, ok := bySport[a.Sport]
		if !ok {
			l = &store.SportLoad{Sport: a.Sport}
			bySport[a.Sport] = l
		}
		l.Stress += *a.StressScore
		l.DurationSeconds += a.MovingTime
	}

	loads := make([]store.SportLoad, 0, len(bySport))
	for _, l := range bySport {
		loads = append(loads, *l)
	}
	return total, loads, nil
}

func (e *Engine) today() string {
	return e.now().Format(dayFormat)
}

func nextDay(day string) string {
	return addDays(day, 1)
}

func addDays(day string, n int) string {
	t, err := time.Parse(dayFormat, day)
	if err != nil {
		return day
	}
	return t.AddDate(0, 0, n).Format(dayFormat)
}

// FormDescription returns a human-readable description of a TSB value
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}
