// Package risk scores pregnancies, deliveries and children. Each classifier
// prefers a trained model artifact and falls back to a deterministic
// additive heuristic when no artifact is loaded or a model call fails.
package risk

import (
	"strconv"
	"strings"
)

// FeatureSource is a named bag of typed features. Both fully-formed entities
// (struct-backed adapters in the domain packages) and flat source rows
// (MapSource) satisfy it. A missing key is never an error; the extractor
// substitutes a documented default.
type FeatureSource interface {
	Feature(name string) (interface{}, bool)
}

// MapSource adapts a plain key-value mapping, such as a parsed source row.
type MapSource map[string]interface{}

func (m MapSource) Feature(name string) (interface{}, bool) {
	v, ok := m[name]
	return v, ok
}

// Defaults substituted for absent or null features.
const (
	DefaultMotherAge      = 25
	DefaultGravida        = 1
	DefaultPara           = 0
	DefaultANCExpected    = 4
	DefaultGestationalAge = 40
	DefaultBirthWeight    = 3000
	DefaultExpectedDoses  = 10
	DefaultBMICategory    = 1

	// SocioEconomicPlaceholder stands in until a real socio-economic signal
	// is wired through the source table.
	SocioEconomicPlaceholder = 0.5
)

func intFeature(src FeatureSource, name string, def int) int {
	v, ok := src.Feature(name)
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case int:
		return t
	case int32:
		return int(t)
	case int64:
		return int(t)
	case float64:
		return int(t)
	case float32:
		return int(t)
	case *int:
		if t == nil {
			return def
		}
		return *t
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return int(f)
		}
	}
	return def
}

func floatFeature(src FeatureSource, name string, def float64) float64 {
	v, ok := src.Feature(name)
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case *float64:
		if t == nil {
			return def
		}
		return *t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			return f
		}
	}
	return def
}

func boolFeature(src FeatureSource, name string) bool {
	v, ok := src.Feature(name)
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "yes" || s == "true" || s == "1" || s == "y"
	case int:
		return t != 0
	case float64:
		return t != 0
	}
	return false
}

func stringFeature(src FeatureSource, name string) string {
	v, ok := src.Feature(name)
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	}
	return ""
}

// BMICategory buckets a raw BMI value: 0 underweight (<18.5), 1 normal,
// 2 overweight (25-29.9), 3 obese (>=30). Absent or non-positive BMI maps
// to the normal bucket.
func BMICategory(bmi float64) int {
	if bmi <= 0 {
		return DefaultBMICategory
	}
	switch {
	case bmi < 18.5:
		return 0
	case bmi < 25:
		return 1
	case bmi < 30:
		return 2
	default:
		return 3
	}
}

// PrebirthFeatures is the fixed-shape input of the pre-birth classifier.
type PrebirthFeatures struct {
	Age           int
	Gravida       int
	Para          int
	ANCCompleted  int
	ANCExpected   int
	Anemia        bool
	Hypertension  bool
	Diabetes      bool
	HIVPositive   bool
	DangerSigns   bool
	PrevCesarean  bool
	MultipleGest  bool
	BMICategory   int
	SocioEconomic float64
}

// ExtractPrebirth normalizes a pregnancy entity or source row into the
// pre-birth feature set. Age resolves through the linked beneficiary when
// present, else a flat mother_age field.
func ExtractPrebirth(src FeatureSource) PrebirthFeatures {
	age := intFeature(src, "beneficiary_age", 0)
	if age == 0 {
		age = intFeature(src, "mother_age", DefaultMotherAge)
	}

	cond := strings.ToLower(stringFeature(src, "high_risk_conditions"))

	return PrebirthFeatures{
		Age:           age,
		Gravida:       intFeature(src, "gravida", DefaultGravida),
		Para:          intFeature(src, "para", DefaultPara),
		ANCCompleted:  intFeature(src, "anc_visits_completed", 0),
		ANCExpected:   intFeature(src, "anc_expected", DefaultANCExpected),
		Anemia:        boolFeature(src, "anemia") || strings.Contains(cond, "anemia"),
		Hypertension:  boolFeature(src, "high_bp") || strings.Contains(cond, "hypertension"),
		Diabetes:      boolFeature(src, "diabetes"),
		HIVPositive:   boolFeature(src, "hiv_positive"),
		DangerSigns:   boolFeature(src, "danger_signs"),
		PrevCesarean:  boolFeature(src, "previous_csection"),
		MultipleGest:  boolFeature(src, "multiple_pregnancy"),
		BMICategory:   BMICategory(floatFeature(src, "bmi", 0)),
		SocioEconomic: SocioEconomicPlaceholder,
	}
}

// Vector returns the named model-input schema for the pre-birth artifact.
func (f PrebirthFeatures) Vector() map[string]float64 {
	return map[string]float64{
		"mother_age":           float64(f.Age),
		"gravida":              float64(f.Gravida),
		"para":                 float64(f.Para),
		"anc_visits_completed": float64(f.ANCCompleted),
		"anc_expected":         float64(f.ANCExpected),
		"has_anemia":           boolTo01(f.Anemia),
		"has_hypertension":     boolTo01(f.Hypertension),
		"bmi_category":         float64(f.BMICategory),
		"socio_economic_score": f.SocioEconomic,
	}
}

// PostbirthFeatures is the fixed-shape input of the post-birth classifier.
type PostbirthFeatures struct {
	MotherAge      int
	Cesarean       bool
	GestationalAge int
	BirthWeight    int
	NICU           bool
	Preterm        bool
	Stillbirth     bool
	SocioEconomic  float64
}

// ExtractPostbirth normalizes a delivery entity or source row. A cesarean is
// recognized from any delivery_type naming LSCS / caesarean / c-section.
func ExtractPostbirth(src FeatureSource) PostbirthFeatures {
	age := intFeature(src, "beneficiary_age", 0)
	if age == 0 {
		age = intFeature(src, "mother_age", DefaultMotherAge)
	}

	mode := strings.ToUpper(stringFeature(src, "delivery_type"))
	cesarean := strings.Contains(mode, "LSCS") ||
		strings.Contains(mode, "CAESAREAN") ||
		strings.Contains(mode, "C-SECTION")

	return PostbirthFeatures{
		MotherAge:      age,
		Cesarean:       cesarean,
		GestationalAge: intFeature(src, "gestational_age_weeks", DefaultGestationalAge),
		BirthWeight:    intFeature(src, "birthweight_grams", DefaultBirthWeight),
		NICU:           boolFeature(src, "nicu_admission"),
		Preterm:        boolFeature(src, "preterm"),
		Stillbirth:     boolFeature(src, "stillbirth"),
		SocioEconomic:  SocioEconomicPlaceholder,
	}
}

// Vector returns the named model-input schema for the post-birth artifact.
func (f PostbirthFeatures) Vector() map[string]float64 {
	return map[string]float64{
		"mother_age":            float64(f.MotherAge),
		"delivery_type":         boolTo01(f.Cesarean),
		"gestational_age_weeks": float64(f.GestationalAge),
		"birthweight_grams":     float64(f.BirthWeight),
		"nicu_admission":        boolTo01(f.NICU),
		"socio_economic_score":  f.SocioEconomic,
	}
}

// OfftrackFeatures is the fixed-shape input of the off-track classifier.
type OfftrackFeatures struct {
	Completed     int
	Expected      int
	SocioEconomic float64
}

// ExtractOfftrack normalizes a child entity or source row. A zero or missing
// expected count defaults to the full schedule length proxy.
func ExtractOfftrack(src FeatureSource) OfftrackFeatures {
	expected := intFeature(src, "immunizations_expected", DefaultExpectedDoses)
	if expected == 0 {
		expected = DefaultExpectedDoses
	}
	return OfftrackFeatures{
		Completed:     intFeature(src, "immunizations_completed", 0),
		Expected:      expected,
		SocioEconomic: SocioEconomicPlaceholder,
	}
}

// Vector returns the named model-input schema for the off-track artifact.
func (f OfftrackFeatures) Vector() map[string]float64 {
	return map[string]float64{
		"immunizations_completed": float64(f.Completed),
		"immunizations_expected":  float64(f.Expected),
		"socio_economic_score":    f.SocioEconomic,
	}
}

func boolTo01(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
