package risk

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Model is the contract a trained classifier satisfies: a single
// positive-class probability prediction over a named feature vector.
// Artifacts loaded from disk implement it; tests may swap in fakes.
type Model interface {
	PredictProbability(features map[string]float64) (float64, error)
}

// Artifact is a serialized logistic-regression classifier. Weights are
// ordered to match Features; Threshold is the positive-class cutoff used by
// boolean classifiers (0.5 when omitted).
type Artifact struct {
	Name      string    `json:"name"`
	Features  []string  `json:"features"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Threshold float64   `json:"threshold,omitempty"`
}

// LoadArtifact reads and validates a model artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse model artifact %s: %w", path, err)
	}
	if len(a.Features) == 0 || len(a.Features) != len(a.Weights) {
		return nil, fmt.Errorf("model artifact %s: %d features but %d weights",
			path, len(a.Features), len(a.Weights))
	}
	return &a, nil
}

// PredictProbability computes the positive-class probability for the given
// named features. Every declared feature must be present.
func (a *Artifact) PredictProbability(features map[string]float64) (float64, error) {
	z := a.Intercept
	for i, name := range a.Features {
		v, ok := features[name]
		if !ok {
			return 0, fmt.Errorf("model %s: missing feature %q", a.Name, name)
		}
		z += a.Weights[i] * v
	}
	return 1 / (1 + math.Exp(-z)), nil
}

// DecisionThreshold returns the configured cutoff, defaulting to 0.5.
func (a *Artifact) DecisionThreshold() float64 {
	if a.Threshold > 0 {
		return a.Threshold
	}
	return 0.5
}

// Artifact filenames probed under the model directory.
const (
	prebirthArtifact  = "prebirth_model.json"
	postbirthArtifact = "postbirth_model.json"
	offtrackArtifact  = "offtrack_model.json"
)

// Registry owns the loaded classifier models. Models load once at process
// start and are read-only thereafter; an absent artifact selects the
// heuristic path, never an error.
type Registry struct {
	Prebirth  Model
	Postbirth Model
	Offtrack  Model

	// offtrackThreshold applies when the off-track model returns a
	// probability rather than a class.
	OfftrackThreshold float64
}

// LoadRegistry probes dir for the three model artifacts. Missing or corrupt
// artifacts are logged and left nil.
func LoadRegistry(dir string, log zerolog.Logger) *Registry {
	reg := &Registry{OfftrackThreshold: 0.5}

	load := func(file string) *Artifact {
		path := filepath.Join(dir, file)
		a, err := LoadArtifact(path)
		if err != nil {
			if os.IsNotExist(err) {
				log.Warn().Str("artifact", file).
					Msg("model artifact not found, heuristic fallback active")
			} else {
				log.Error().Err(err).Str("artifact", file).
					Msg("model artifact unusable, heuristic fallback active")
			}
			return nil
		}
		log.Info().Str("artifact", file).Msg("model artifact loaded")
		return a
	}

	if a := load(prebirthArtifact); a != nil {
		reg.Prebirth = a
	}
	if a := load(postbirthArtifact); a != nil {
		reg.Postbirth = a
	}
	if a := load(offtrackArtifact); a != nil {
		reg.Offtrack = a
		reg.OfftrackThreshold = a.DecisionThreshold()
	}
	return reg
}
