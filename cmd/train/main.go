// Command train fits the blade surrogate on a CSV dataset, saves the model
// artifact plus a metrics sidecar, and optionally renders diagnostic plots.
package main

import (
	"flag"

	"gonum.org/v1/gonum/mat"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/blade"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/log"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/surrogate"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/train"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/viz"
)

func main() {
	var (
		data        = flag.String("data", "data/wind_turbine_blade_data.csv", "path to the CSV dataset")
		out         = flag.String("out", "models/blade_surrogate.gob", "output model artifact path")
		algorithm   = flag.String("algorithm", surrogate.AlgorithmForest, "estimator: forest or linear")
		nEstimators = flag.Int("n-estimators", 100, "number of forest trees")
		maxDepth    = flag.Int("max-depth", 0, "maximum tree depth, 0 for unlimited")
		testSize    = flag.Float64("test-size", 0.2, "held-out test fraction")
		seed        = flag.Int64("seed", 42, "random seed for split and bootstrap")
		plots       = flag.String("plots", "", "directory for diagnostic plots (disabled when empty)")
		logLevel    = flag.String("log-level", "info", "log level (debug|info|warn|error)")
	)
	flag.Parse()

	logger := log.NewConsole("train", *logLevel)

	cfg := train.Config{
		Algorithm:   *algorithm,
		NEstimators: *nEstimators,
		MaxDepth:    *maxDepth,
		TestSize:    *testSize,
		Seed:        *seed,
	}

	res, err := train.Run(*data, *out, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("training failed")
	}
	for name, r2 := range res.PerTargetTestR2 {
		logger.Info().Str("target", name).Float64("test_r2", r2).Msg("per-target fit")
	}

	if *plots != "" {
		if err := renderPlots(*data, *out, *plots); err != nil {
			logger.Warn().Err(err).Msg("plot rendering failed")
		} else {
			logger.Info().Str("dir", *plots).Msg("diagnostic plots written")
		}
	}
}

// renderPlots reloads the dataset and the saved artifact, predicts every row
// and draws the diagnostic plots. This also exercises the artifact exactly
// as the server will load it.
func renderPlots(dataPath, modelPath, dir string) error {
	ds, err := blade.ReadCSV(dataPath)
	if err != nil {
		return err
	}
	m, err := surrogate.Load(modelPath)
	if err != nil {
		return err
	}

	n := ds.NumSamples()
	preds := mat.NewDense(n, len(blade.TargetNames), nil)
	for i := 0; i < n; i++ {
		f, _ := ds.Row(i)
		t, err := m.Predict(f)
		if err != nil {
			return err
		}
		preds.SetRow(i, t.Values())
	}

	if err := viz.PredictedVsActual(ds.Y, preds, dir); err != nil {
		return err
	}
	return viz.FeatureHistograms(ds.X, dir)
}
