package analysis

// Thresholds holds an athlete's capability markers, supplied by the
// profile store. Zero values simply disable the formulas that need them.
type Thresholds struct {
	FTPWatts          float64 // functional threshold power
	LactateHR         float64 // lactate threshold heart rate, bpm
	ThresholdSpeed    float64 // threshold run speed, m/s
	CriticalSwimSpeed float64 // m/s
	RestingHR         float64
	MaxHR             float64
}

// DefaultThresholds returns sensible defaults if not configured
func DefaultThresholds() Thresholds {
	return Thresholds{
		FTPWatts:          200,
		LactateHR:         165,
		ThresholdSpeed:    3.33, // 5:00 min/km
		CriticalSwimSpeed: 1.25,
		RestingHR:         50,
		MaxHR:             185,
	}
}
