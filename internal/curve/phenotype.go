package curve

// Phenotype labels the shape of a power duration curve.
const (
	PhenotypeSprinter   = "sprinter"
	PhenotypePursuiter  = "pursuiter"
	PhenotypeTimeTrial  = "time-trialist"
	PhenotypeAllRounder = "all-rounder"
	PhenotypeIncomplete = "incomplete"
)

// Reference durations for the ratio analysis, in seconds
const (
	shortDuration = 30
	midDuration   = 300
	longDuration  = 1200
)

// Ratio thresholds. A sprinter's 30s peak towers over their 5min power;
// a time-trialist barely loses anything from 5min out to 20min.
const (
	sprintRatioThreshold  = 2.2
	pursuitRatioThreshold = 1.35
	ttRatioThreshold      = 0.88
)

// PhenotypeAnalysis carries the classification and the ratios behind it.
type PhenotypeAnalysis struct {
	Phenotype     string
	ShortMidRatio float64 // 30s peak / 5min peak
	MidLongRatio  float64 // 20min peak / 5min peak
}

// ClassifyPhenotype inspects a power curve's short:mid and long:mid peak
// ratios. Returns PhenotypeIncomplete when the curve lacks the reference
// durations.
func ClassifyPhenotype(c *Curve) PhenotypeAnalysis {
	short := valueAt(c, shortDuration)
	mid := valueAt(c, midDuration)
	long := valueAt(c, longDuration)

	if mid <= 0 || short <= 0 || long <= 0 {
		return PhenotypeAnalysis{Phenotype: PhenotypeIncomplete}
	}

	a := PhenotypeAnalysis{
		ShortMidRatio: short / mid,
		MidLongRatio:  long / mid,
	}

	switch {
	case a.ShortMidRatio >= sprintRatioThreshold:
		a.Phenotype = PhenotypeSprinter
	case a.MidLongRatio >= ttRatioThreshold:
		a.Phenotype = PhenotypeTimeTrial
	case a.ShortMidRatio >= pursuitRatioThreshold:
		a.Phenotype = PhenotypePursuiter
	default:
		a.Phenotype = PhenotypeAllRounder
	}
	return a
}

func valueAt(c *Curve, duration int) float64 {
	for _, p := range c.Points {
		if p.DurationSeconds == duration {
			return p.Value
		}
	}
	return 0
}
