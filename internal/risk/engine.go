package risk

import (
	"math"

	"github.com/rs/zerolog"
)

// Prediction is the outcome of a pre-birth or post-birth classification.
type Prediction struct {
	Score      float64
	Level      Level
	TopFactors []string
}

// Engine evaluates the three classifiers against a model registry.
type Engine struct {
	models *Registry
	log    zerolog.Logger
}

func NewEngine(models *Registry, log zerolog.Logger) *Engine {
	if models == nil {
		models = &Registry{OfftrackThreshold: 0.5}
	}
	return &Engine{models: models, log: log}
}

// modelScore runs the model path, returning ok=false when the heuristic must
// take over. A model failure never aborts the call; it is logged and the
// heuristic is used for that invocation only.
func (e *Engine) modelScore(m Model, name string, vec map[string]float64) (float64, bool) {
	if m == nil {
		return 0, false
	}
	p, err := m.PredictProbability(vec)
	if err != nil {
		e.log.Warn().Err(err).Str("classifier", name).Msg("model prediction failed, using heuristic")
		return 0, false
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		e.log.Warn().Float64("probability", p).Str("classifier", name).
			Msg("model returned out-of-range probability, using heuristic")
		return 0, false
	}
	return p, true
}

// PredictPrebirthRisk scores a pregnancy. Callers that mutate clinical
// inputs after creation must invoke it again.
func (e *Engine) PredictPrebirthRisk(src FeatureSource) Prediction {
	f := ExtractPrebirth(src)

	score, ok := e.modelScore(e.models.Prebirth, "prebirth", f.Vector())
	if !ok {
		score = PrebirthHeuristic(f)
	}

	// The level derives from the rounded score, so it is always recomputable
	// from the persisted value.
	score = round4(score)
	return Prediction{
		Score:      score,
		Level:      LevelForScore(score),
		TopFactors: prebirthFactors(f),
	}
}

// PredictPostbirthRisk scores a delivery outcome.
func (e *Engine) PredictPostbirthRisk(src FeatureSource) Prediction {
	f := ExtractPostbirth(src)

	score, ok := e.modelScore(e.models.Postbirth, "postbirth", f.Vector())
	if !ok {
		score = PostbirthHeuristic(f)
	}

	score = round4(score)
	return Prediction{
		Score:      score,
		Level:      LevelForScore(score),
		TopFactors: postbirthFactors(f),
	}
}

// DetectOfftrack reports whether a child has fallen behind the immunization
// schedule.
func (e *Engine) DetectOfftrack(src FeatureSource) bool {
	f := ExtractOfftrack(src)

	if p, ok := e.modelScore(e.models.Offtrack, "offtrack", f.Vector()); ok {
		return p >= e.models.OfftrackThreshold
	}
	return OfftrackHeuristic(f)
}

// PrebirthHeuristic is the deterministic fallback: additive, order
// independent increments over a 0.05 base, clamped to 0.99.
func PrebirthHeuristic(f PrebirthFeatures) float64 {
	p := 0.05
	if f.Age < 18 || f.Age > 35 {
		p += 0.20
	}
	if f.Anemia {
		p += 0.25
	}
	if f.Hypertension {
		p += 0.30
	}
	if f.Diabetes {
		p += 0.15
	}
	if f.HIVPositive {
		p += 0.20
	}
	if f.DangerSigns {
		p += 0.25
	}
	if f.PrevCesarean {
		p += 0.10
	}
	if f.MultipleGest {
		p += 0.15
	}
	if f.ANCCompleted < 2 {
		p += 0.20
	}
	if f.Gravida > 4 {
		p += 0.10
	}
	return math.Min(p, 0.99)
}

// PostbirthHeuristic is the deterministic post-birth fallback.
func PostbirthHeuristic(f PostbirthFeatures) float64 {
	p := 0.05
	if f.BirthWeight < 2500 {
		p += 0.35
	}
	if f.GestationalAge < 37 {
		p += 0.25
	}
	if f.NICU {
		p += 0.30
	}
	if f.Preterm {
		p += 0.20
	}
	if f.Stillbirth {
		p += 0.40
	}
	if f.Cesarean {
		p += 0.10
	}
	if f.MotherAge < 18 || f.MotherAge > 35 {
		p += 0.10
	}
	return math.Min(p, 0.99)
}

// OfftrackHeuristic flags a child completing under 60% of expected doses.
func OfftrackHeuristic(f OfftrackFeatures) bool {
	if f.Expected <= 0 {
		return false
	}
	return float64(f.Completed)/float64(f.Expected) < 0.6
}

// prebirthFactors mirrors the heuristic predicates so displayed factors are
// always consistent with the score that produced them.
func prebirthFactors(f PrebirthFeatures) []string {
	var factors []string
	if f.Age < 18 {
		factors = append(factors, "Teenage Pregnancy (<18 yrs)")
	}
	if f.Age > 35 {
		factors = append(factors, "Advanced Maternal Age (>35 yrs)")
	}
	if f.Anemia {
		factors = append(factors, "Anemia Detected")
	}
	if f.Hypertension {
		factors = append(factors, "High Blood Pressure")
	}
	if f.Diabetes {
		factors = append(factors, "Gestational Diabetes")
	}
	if f.HIVPositive {
		factors = append(factors, "HIV Positive")
	}
	if f.DangerSigns {
		factors = append(factors, "Danger Signs Reported")
	}
	if f.PrevCesarean {
		factors = append(factors, "Previous C-Section")
	}
	if f.MultipleGest {
		factors = append(factors, "Multiple Pregnancy")
	}
	if f.ANCCompleted < 2 {
		factors = append(factors, "Insufficient ANC Visits (<2)")
	}
	if f.Gravida > 4 {
		factors = append(factors, "Grand Multipara (>4 pregnancies)")
	}
	if len(factors) == 0 {
		factors = append(factors, "No Major Risk Factors")
	}
	return factors
}

func postbirthFactors(f PostbirthFeatures) []string {
	var factors []string
	if f.BirthWeight < 2500 {
		factors = append(factors, "Low Birth Weight (<2.5 kg)")
	}
	if f.GestationalAge < 37 {
		factors = append(factors, "Preterm Delivery (<37 weeks)")
	}
	if f.NICU {
		factors = append(factors, "NICU Admission Required")
	}
	if f.Preterm {
		factors = append(factors, "Preterm Birth")
	}
	if f.Stillbirth {
		factors = append(factors, "Stillbirth")
	}
	if f.Cesarean {
		factors = append(factors, "Caesarean Delivery (LSCS)")
	}
	if len(factors) == 0 {
		factors = append(factors, "No Major Post-Birth Risk Factors")
	}
	return factors
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
