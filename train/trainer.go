// Package train fits the blade surrogate: it splits a dataset, trains the
// selected estimator, evaluates R² on both partitions and persists the
// artifact together with a metrics sidecar file.
package train

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/blade"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/ensemble"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/linear"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/metrics"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/preprocessing"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/surrogate"
)

// bandMargin widens the recorded per-target plausibility bands beyond the
// observed training range, so near-boundary queries stay in band.
const bandMargin = 0.25

// Config controls a training run.
type Config struct {
	// Algorithm is surrogate.AlgorithmForest or surrogate.AlgorithmLinear.
	Algorithm string
	// NEstimators is the forest size; ignored by the linear estimator.
	NEstimators int
	// MaxDepth limits forest tree depth; 0 means unlimited.
	MaxDepth int
	// TestSize is the held-out fraction.
	TestSize float64
	// Seed drives both the split permutation and the forest bootstrap.
	Seed int64
}

// DefaultConfig mirrors the reference training script.
func DefaultConfig() Config {
	return Config{
		Algorithm:   surrogate.AlgorithmForest,
		NEstimators: 100,
		TestSize:    0.2,
		Seed:        42,
	}
}

// Result reports the outcome of a training run. The field names match the
// metrics sidecar JSON.
type Result struct {
	TrainR2         float64            `json:"train_r2"`
	TestR2          float64            `json:"test_r2"`
	NTrain          int                `json:"n_train"`
	NTest           int                `json:"n_test"`
	PerTargetTestR2 map[string]float64 `json:"per_target_test_r2"`
}

// Fit splits ds, trains the configured estimator and returns the artifact
// and evaluation result. The dataset must carry the full blade schema.
func Fit(ds *blade.Dataset, cfg Config) (*surrogate.Model, *Result, error) {
	if ds.NumSamples() == 0 {
		return nil, nil, errors.NewValueError("train.Fit", "empty dataset")
	}
	if _, c := ds.X.Dims(); c != len(blade.FeatureNames) {
		return nil, nil, errors.NewDimensionError("train.Fit", len(blade.FeatureNames), c, 1)
	}
	if _, c := ds.Y.Dims(); c != len(blade.TargetNames) {
		return nil, nil, errors.NewDimensionError("train.Fit", len(blade.TargetNames), c, 1)
	}

	XTrain, XTest, yTrain, yTest, err := TrainTestSplit(ds.X, ds.Y, cfg.TestSize, cfg.Seed)
	if err != nil {
		return nil, nil, err
	}

	m := &surrogate.Model{
		Algorithm:    cfg.Algorithm,
		FeatureNames: blade.FeatureNames,
		TargetNames:  blade.TargetNames,
		Bands:        targetBands(yTrain),
	}

	var trainPred, testPred mat.Matrix
	switch cfg.Algorithm {
	case surrogate.AlgorithmForest:
		forest := ensemble.NewForestRegressor(
			ensemble.WithNEstimators(cfg.NEstimators),
			ensemble.WithMaxDepth(cfg.MaxDepth),
			ensemble.WithRandomState(cfg.Seed),
		)
		if err := forest.Fit(XTrain, yTrain); err != nil {
			return nil, nil, err
		}
		m.Forest = forest
		if trainPred, err = forest.Predict(XTrain); err != nil {
			return nil, nil, err
		}
		if testPred, err = forest.Predict(XTest); err != nil {
			return nil, nil, err
		}

	case surrogate.AlgorithmLinear:
		scaler := preprocessing.NewStandardScaler()
		XTrainScaled, err := scaler.FitTransform(XTrain)
		if err != nil {
			return nil, nil, err
		}
		XTestScaled, err := scaler.Transform(XTest)
		if err != nil {
			return nil, nil, err
		}
		reg := linear.NewRegression()
		if err := reg.Fit(XTrainScaled, yTrain); err != nil {
			return nil, nil, err
		}
		m.Scaler = scaler
		m.Linear = reg
		if trainPred, err = reg.Predict(XTrainScaled); err != nil {
			return nil, nil, err
		}
		if testPred, err = reg.Predict(XTestScaled); err != nil {
			return nil, nil, err
		}

	default:
		return nil, nil, errors.NewValidationError("algorithm", "must be forest or linear", cfg.Algorithm)
	}

	trainR2, err := metrics.R2ScoreMatrix(yTrain, trainPred)
	if err != nil {
		return nil, nil, err
	}
	testR2, err := metrics.R2ScoreMatrix(yTest, testPred)
	if err != nil {
		return nil, nil, err
	}
	perTarget, err := metrics.R2ScorePerTarget(yTest, testPred)
	if err != nil {
		return nil, nil, err
	}

	res := &Result{
		TrainR2:         trainR2,
		TestR2:          testR2,
		NTrain:          rowCount(XTrain),
		NTest:           rowCount(XTest),
		PerTargetTestR2: make(map[string]float64, len(blade.TargetNames)),
	}
	for j, name := range blade.TargetNames {
		res.PerTargetTestR2[name] = perTarget[j]
	}

	return m, res, nil
}

// Run executes the file-to-file training pipeline: load the CSV dataset,
// fit, persist the artifact and write the metrics sidecar.
func Run(dataPath, modelPath string, cfg Config, logger zerolog.Logger) (*Result, error) {
	ds, err := blade.ReadCSV(dataPath)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("data", dataPath).Int("rows", ds.NumSamples()).Msg("dataset loaded")

	start := time.Now()
	m, res, err := Fit(ds, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info().
		Str("algorithm", cfg.Algorithm).
		Dur("elapsed", time.Since(start)).
		Float64("train_r2", res.TrainR2).
		Float64("test_r2", res.TestR2).
		Msg("training finished")

	if dir := filepath.Dir(modelPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "failed to create model directory %q", dir)
		}
	}
	if err := surrogate.Save(m, modelPath); err != nil {
		return nil, err
	}
	if err := writeMetrics(modelPath, res); err != nil {
		return nil, err
	}
	logger.Info().Str("model", modelPath).Msg("artifact saved")

	return res, nil
}

// writeMetrics stores the evaluation result next to the artifact, replacing
// the artifact extension with .metrics.json.
func writeMetrics(modelPath string, res *Result) error {
	path := strings.TrimSuffix(modelPath, filepath.Ext(modelPath)) + ".metrics.json"
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal metrics")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write metrics file %q", path)
	}
	return nil
}

// targetBands records the observed range of each training target, widened by
// bandMargin of the span on both sides.
func targetBands(y mat.Matrix) map[string]blade.Range {
	rows, _ := y.Dims()
	bands := make(map[string]blade.Range, len(blade.TargetNames))
	for j, name := range blade.TargetNames {
		min, max := y.At(0, j), y.At(0, j)
		for i := 1; i < rows; i++ {
			v := y.At(i, j)
			if v < min {
				min = v
			}
			if v > max {
				max = v
			}
		}
		span := max - min
		bands[name] = blade.Range{Min: min - bandMargin*span, Max: max + bandMargin*span}
	}
	return bands
}

func rowCount(m mat.Matrix) int {
	r, _ := m.Dims()
	return r
}
