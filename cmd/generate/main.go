// Command generate produces a synthetic wind turbine blade dataset and
// writes it as CSV.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/blade"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/log"
)

func main() {
	var (
		n        = flag.Int("n", 150, "number of samples to generate")
		seed     = flag.Uint64("seed", 42, "random seed")
		out      = flag.String("out", "data/wind_turbine_blade_data.csv", "output CSV path")
		noise    = flag.Float64("noise", blade.DefaultNoiseLevel, "noise std as a fraction of each target baseline")
		logLevel = flag.String("log-level", "info", "log level (debug|info|warn|error)")
	)
	flag.Parse()

	logger := log.NewConsole("generate", *logLevel)

	ds, err := blade.GenerateWithConfig(*n, *seed, blade.GeneratorConfig{NoiseLevel: *noise})
	if err != nil {
		logger.Fatal().Err(err).Msg("generation failed")
	}

	if dir := filepath.Dir(*out); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal().Err(err).Str("dir", dir).Msg("failed to create output directory")
		}
	}
	if err := blade.WriteCSV(ds, *out); err != nil {
		logger.Fatal().Err(err).Msg("failed to write dataset")
	}

	logger.Info().Str("out", *out).Int("rows", ds.NumSamples()).Uint64("seed", *seed).Msg("synthetic dataset generated")
}
