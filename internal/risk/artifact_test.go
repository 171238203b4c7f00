package risk

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeArtifact(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadArtifact_Valid(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "m.json", `{
		"name": "prebirth",
		"features": ["mother_age", "has_anemia"],
		"weights": [0.01, 1.2],
		"intercept": -2.0
	}`)

	a, err := LoadArtifact(filepath.Join(dir, "m.json"))
	require.NoError(t, err)

	p, err := a.PredictProbability(map[string]float64{"mother_age": 25, "has_anemia": 1})
	require.NoError(t, err)
	assert.Greater(t, p, 0.0)
	assert.Less(t, p, 1.0)

	// More risk signal must raise the probability under a positive weight.
	p2, err := a.PredictProbability(map[string]float64{"mother_age": 25, "has_anemia": 0})
	require.NoError(t, err)
	assert.Greater(t, p, p2)
}

func TestLoadArtifact_WeightMismatch(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "m.json", `{"features": ["a", "b"], "weights": [0.1]}`)
	_, err := LoadArtifact(filepath.Join(dir, "m.json"))
	assert.Error(t, err)
}

func TestLoadArtifact_BadJSON(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "m.json", `{nope`)
	_, err := LoadArtifact(filepath.Join(dir, "m.json"))
	assert.Error(t, err)
}

func TestArtifact_MissingFeature(t *testing.T) {
	a := &Artifact{Name: "x", Features: []string{"a"}, Weights: []float64{1}}
	_, err := a.PredictProbability(map[string]float64{"b": 1})
	assert.Error(t, err)
}

func TestArtifact_DecisionThreshold(t *testing.T) {
	a := &Artifact{}
	assert.InDelta(t, 0.5, a.DecisionThreshold(), 1e-9)
	a.Threshold = 0.7
	assert.InDelta(t, 0.7, a.DecisionThreshold(), 1e-9)
}

func TestLoadRegistry_MissingArtifactsSelectHeuristics(t *testing.T) {
	reg := LoadRegistry(t.TempDir(), zerolog.Nop())
	assert.Nil(t, reg.Prebirth)
	assert.Nil(t, reg.Postbirth)
	assert.Nil(t, reg.Offtrack)

	// Engine over an empty registry must still score.
	pred := NewEngine(reg, zerolog.Nop()).PredictPrebirthRisk(MapSource{"mother_age": 25})
	assert.GreaterOrEqual(t, pred.Score, 0.0)
}

func TestLoadRegistry_CorruptArtifactIgnored(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, "prebirth_model.json", `not json`)
	writeArtifact(t, dir, "offtrack_model.json", `{
		"name": "offtrack",
		"features": ["immunizations_completed", "immunizations_expected", "socio_economic_score"],
		"weights": [-0.9, 0.4, 0.0],
		"intercept": 0.5,
		"threshold": 0.6
	}`)

	reg := LoadRegistry(dir, zerolog.Nop())
	assert.Nil(t, reg.Prebirth)
	require.NotNil(t, reg.Offtrack)
	assert.InDelta(t, 0.6, reg.OfftrackThreshold, 1e-9)
}
