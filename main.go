package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"trainload/internal/analysis"
	"trainload/internal/config"
	"trainload/internal/curve"
	"trainload/internal/ledger"
	"trainload/internal/records"
	"trainload/internal/service"
	"trainload/internal/store"
	"trainload/internal/tui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("Set your FTP, threshold heart rate, and pace thresholds there.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	logger, logFile, err := openLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	// Open database
	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Build the engines
	ledgerEngine := ledger.New(db, logger)
	recordTracker := records.New(db, logger)
	curveBuilder := curve.New(db, logger)
	querySvc := service.NewQueryService(db, ledgerEngine, curveBuilder, recordTracker)

	if len(args) > 0 && args[0] == "import" {
		return runImport(cfg, db, ledgerEngine, recordTracker, logger, args[1:])
	}

	// Bring the ledger up to today so decay days since the last activity
	// are filled in before the dashboard reads it.
	athleteID := cfg.Athlete.AthleteID
	if err := refreshLedger(ledgerEngine, db, athleteID); err != nil {
		return fmt.Errorf("refreshing ledger: %w", err)
	}

	// Launch TUI
	units := tui.NewUnits(cfg.Display)
	app := tui.NewApp(querySvc, athleteID, units)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

// runImport processes exported activity JSON files through the full
// ingest pipeline: one activity per file, oldest first is the caller's
// job. Broken peak records are announced as they land.
func runImport(cfg *config.Config, db *store.Store, ledgerEngine *ledger.Engine, recordTracker *records.Tracker, logger zerolog.Logger, files []string) error {
	if len(files) == 0 {
		return errors.New("usage: trainload import <activity.json>...")
	}

	th := analysis.Thresholds{
		FTPWatts:          cfg.Athlete.FTPWatts,
		LactateHR:         cfg.Athlete.ThresholdHR,
		ThresholdSpeed:    cfg.Athlete.ThresholdSpeed,
		CriticalSwimSpeed: cfg.Athlete.CriticalSwimSpeed,
		RestingHR:         cfg.Athlete.RestingHR,
		MaxHR:             cfg.Athlete.MaxHR,
	}
	ingest := service.NewIngestService(db, ledgerEngine, recordTracker, th, logger)

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		input, err := service.ReadActivityInput(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}

		res, err := ingest.ProcessActivity(input)
		if err != nil {
			return fmt.Errorf("processing %s: %w", path, err)
		}

		stress := "-"
		if res.StressScore != nil {
			stress = fmt.Sprintf("%.0f", *res.StressScore)
		}
		fmt.Printf("%s  activity %d (%s)  stress %s\n", res.Day, res.ActivityID, input.Activity.Sport, stress)
		for _, r := range res.NewRecords {
			fmt.Printf("  new best: %s %.1f\n", r.Bucket, r.Value)
		}
	}
	return nil
}

func refreshLedger(e *ledger.Engine, db *store.Store, athleteID int64) error {
	latest, err := db.LatestLedgerEntry(athleteID)
	if errors.Is(err, store.ErrNoLedger) {
		return e.Initialize(athleteID)
	}
	if err != nil {
		return err
	}
	return e.PropagateForward(athleteID, latest.Date)
}

// openLogger writes structured logs to a file under the config dir. The
// terminal belongs to the TUI, so nothing is logged to stdout.
func openLogger(cfg config.LoggingConfig) (zerolog.Logger, *os.File, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	f, err := os.OpenFile(filepath.Join(configDir, "trainload.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	logger := zerolog.New(f).Level(level).With().Timestamp().Logger()
	return logger, f, nil
}
