// Package surrogate defines the trained model artifact: the estimator
// standing in for the expensive FEA solve, together with everything needed
// to serve named predictions. The artifact is created by the trainer,
// persisted as a single gob file, loaded once at server startup and treated
// as read-only from then on; retraining replaces the whole file.
package surrogate

import (
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/blade"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/core/model"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/ensemble"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/linear"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/preprocessing"
)

// Supported estimator algorithms.
const (
	AlgorithmForest = "forest"
	AlgorithmLinear = "linear"
)

// Model is the serialized surrogate artifact.
type Model struct {
	// Algorithm selects which estimator field is populated.
	Algorithm string

	// FeatureNames and TargetNames pin the column order the estimator was
	// trained with.
	FeatureNames []string
	TargetNames  []string

	// Forest is set when Algorithm is AlgorithmForest.
	Forest *ensemble.ForestRegressor
	// Scaler and Linear are set when Algorithm is AlgorithmLinear.
	Scaler *preprocessing.StandardScaler
	Linear *linear.Regression

	// Bands holds the plausible magnitude band of each target, recorded
	// from the training partition.
	Bands map[string]blade.Range
}

// Predict validates f and runs inference, returning the named responses.
func (m *Model) Predict(f blade.FeatureVector) (blade.TargetVector, error) {
	if err := f.Validate(); err != nil {
		return blade.TargetVector{}, err
	}

	row := f.Values()
	var preds []float64

	switch m.Algorithm {
	case AlgorithmForest:
		if m.Forest == nil {
			return blade.TargetVector{}, errors.NewModelError("Model.Predict", "forest artifact has no forest estimator", nil)
		}
		out, err := m.Forest.PredictRow(row)
		if err != nil {
			return blade.TargetVector{}, err
		}
		preds = out
	case AlgorithmLinear:
		if m.Linear == nil || m.Scaler == nil {
			return blade.TargetVector{}, errors.NewModelError("Model.Predict", "linear artifact is missing estimator or scaler", nil)
		}
		X := mat.NewDense(1, len(row), row)
		scaled, err := m.Scaler.Transform(X)
		if err != nil {
			return blade.TargetVector{}, err
		}
		out, err := m.Linear.Predict(scaled)
		if err != nil {
			return blade.TargetVector{}, err
		}
		preds = mat.Row(nil, 0, out)
	default:
		return blade.TargetVector{}, errors.NewModelError("Model.Predict", "unknown algorithm "+m.Algorithm, nil)
	}

	return blade.TargetsFromValues(preds)
}

// Save writes the artifact to path, overwriting any previous artifact.
func Save(m *Model, path string) error {
	if err := model.SaveModel(m, path); err != nil {
		return errors.NewArtifactError(path, err)
	}
	return nil
}

// Load reads the artifact from path. A missing or undecodable file yields an
// ArtifactError; callers at startup treat it as fatal.
func Load(path string) (*Model, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, errors.NewArtifactError(path, err)
	}

	var m Model
	if err := model.LoadModel(&m, path); err != nil {
		return nil, errors.NewArtifactError(path, err)
	}

	if m.Algorithm != AlgorithmForest && m.Algorithm != AlgorithmLinear {
		return nil, errors.NewArtifactError(path, errors.Newf("unknown algorithm %q", m.Algorithm))
	}
	return &m, nil
}
