package risk

// Level is the three-tier ordinal risk label derived from a score.
type Level string

const (
	LevelLow    Level = "LOW"
	LevelMedium Level = "MEDIUM"
	LevelHigh   Level = "HIGH"
)

// Thresholds mapping a score to a level. Fixed constants, not configurable
// per state or hospital.
const (
	highThreshold   = 0.65
	mediumThreshold = 0.35
)

// LevelForScore maps a probability in [0,1] to LOW/MEDIUM/HIGH. The level is
// always recomputable from the persisted score, so storage layers may derive
// it on read.
func LevelForScore(score float64) Level {
	switch {
	case score >= highThreshold:
		return LevelHigh
	case score >= mediumThreshold:
		return LevelMedium
	default:
		return LevelLow
	}
}
