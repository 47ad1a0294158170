package blade

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
)

// DefaultNoiseLevel is the standard deviation of the additive response noise
// expressed as a fraction of each target's baseline value. The noise model is
// an illustrative approximation, not physical law; treat it as configuration.
const DefaultNoiseLevel = 0.01

// GeneratorConfig controls the synthetic dataset generator.
type GeneratorConfig struct {
	// NoiseLevel scales the per-target Gaussian noise. Zero disables noise.
	NoiseLevel float64
}

// Response evaluates the closed-form scaling laws at f: each target is the
// baseline response scaled by power-law ratios to the baseline operating
// point. These stand in for a full FEA solve.
func Response(f FeatureVector) TargetVector {
	b := BaselineFeatures
	t := BaselineTargets

	var out TargetVector
	out.Deformation = t.Deformation *
		(b.YoungsModulus / f.YoungsModulus) *
		(f.Length / b.Length) * (f.Length / b.Length) *
		(f.Pressure / b.Pressure)
	out.Stress = t.Stress *
		(f.Pressure / b.Pressure) *
		(b.Thickness / f.Thickness)
	out.Strain = t.Strain *
		(out.Stress / t.Stress) *
		(b.YoungsModulus / f.YoungsModulus)
	out.FactorOfSafety = t.FactorOfSafety * (t.Stress / out.Stress)
	out.FatigueLife = t.FatigueLife * (t.Stress / out.Stress) * (t.Stress / out.Stress)
	out.Damage = t.Damage * (t.FatigueLife / out.FatigueLife)
	return out
}

// Generate produces a synthetic dataset of n rows with the default noise
// level. Deterministic for a fixed seed.
func Generate(n int, seed uint64) (*Dataset, error) {
	return GenerateWithConfig(n, seed, GeneratorConfig{NoiseLevel: DefaultNoiseLevel})
}

// GenerateWithConfig produces a synthetic dataset of n rows: features are
// sampled independently and uniformly within SamplingRanges, targets are the
// closed-form responses plus additive Gaussian noise scaled per target.
// All draws come from a single seeded source, so output is byte-identical
// across runs with the same arguments.
func GenerateWithConfig(n int, seed uint64, cfg GeneratorConfig) (*Dataset, error) {
	if n <= 0 {
		return nil, errors.NewValidationError("n", "sample count must be positive", n)
	}
	if cfg.NoiseLevel < 0 {
		return nil, errors.NewValidationError("noise_level", "must not be negative", cfg.NoiseLevel)
	}

	src := rand.NewSource(seed)

	// Features are drawn column by column, matching the layout of the
	// original dataset files.
	X := mat.NewDense(n, len(FeatureNames), nil)
	for j, name := range FeatureNames {
		u := distuv.Uniform{Min: SamplingRanges[name].Min, Max: SamplingRanges[name].Max, Src: src}
		for i := 0; i < n; i++ {
			X.Set(i, j, u.Rand())
		}
	}

	Y := mat.NewDense(n, len(TargetNames), nil)
	for i := 0; i < n; i++ {
		f, err := FeaturesFromValues(mat.Row(nil, i, X))
		if err != nil {
			return nil, err
		}
		Y.SetRow(i, Response(f).Values())
	}

	if cfg.NoiseLevel > 0 {
		baseline := BaselineTargets.Values()
		for j := range TargetNames {
			noise := distuv.Normal{Mu: 0, Sigma: cfg.NoiseLevel * baseline[j], Src: src}
			for i := 0; i < n; i++ {
				Y.Set(i, j, Y.At(i, j)+noise.Rand())
			}
		}
	}

	return &Dataset{X: X, Y: Y}, nil
}
