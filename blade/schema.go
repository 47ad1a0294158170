// Package blade defines the data model for the wind turbine blade surrogate:
// the engineering input parameters, the predicted structural responses, and
// the synthetic dataset generator that ties them together through closed-form
// physics approximations.
package blade

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
)

// FeatureVector holds the seven engineering input parameters of a prediction.
type FeatureVector struct {
	YoungsModulus float64 `json:"youngs_modulus"` // GPa
	Density       float64 `json:"density"`        // kg/m^3
	PoissonsRatio float64 `json:"poissons_ratio"`
	Thickness     float64 `json:"thickness"` // mm
	Length        float64 `json:"length"`    // m
	Pressure      float64 `json:"pressure"`  // Pa
	Frequency     float64 `json:"frequency"` // Hz
}

// TargetVector holds the six predicted structural and fatigue responses.
type TargetVector struct {
	Deformation    float64 `json:"deformation"` // mm
	Stress         float64 `json:"stress"`      // MPa
	Strain         float64 `json:"strain"`
	FactorOfSafety float64 `json:"factor_of_safety"`
	FatigueLife    float64 `json:"fatigue_life"` // cycles
	Damage         float64 `json:"damage"`
}

// FeatureNames is the canonical feature column order used by the dataset,
// the estimators and the serving boundary.
var FeatureNames = []string{
	"youngs_modulus",
	"density",
	"poissons_ratio",
	"thickness",
	"length",
	"pressure",
	"frequency",
}

// TargetNames is the canonical target column order.
var TargetNames = []string{
	"deformation",
	"stress",
	"strain",
	"factor_of_safety",
	"fatigue_life",
	"damage",
}

// Range is a closed numeric interval.
type Range struct {
	Min float64
	Max float64
}

// Bounds are the admissible input ranges enforced at the serving boundary.
// They are intentionally loose: the surrogate extrapolates poorly outside the
// sampled ranges but should not refuse mildly out-of-distribution queries.
var Bounds = map[string]Range{
	"youngs_modulus": {1, 1e4},
	"density":        {1, 1e5},
	"poissons_ratio": {0, 1},
	"thickness":      {0.001, 1e3},
	"length":         {0.001, 1e4},
	"pressure":       {0, 1e7},
	"frequency":      {0, 1e6},
}

// SamplingRanges are the uniform sampling intervals used by the synthetic
// generator, one per feature in FeatureNames order.
var SamplingRanges = map[string]Range{
	"youngs_modulus": {50, 90},
	"density":        {2500, 3000},
	"poissons_ratio": {0.30, 0.35},
	"thickness":      {3, 7},
	"length":         {0.8, 1.2},
	"pressure":       {80000, 120000},
	"frequency":      {200, 400},
}

// BaselineFeatures is the calibration operating point of the closed-form
// response laws.
var BaselineFeatures = FeatureVector{
	YoungsModulus: 70,
	Density:       2700,
	PoissonsRatio: 0.33,
	Thickness:     5,
	Length:        1,
	Pressure:      101325,
	Frequency:     300,
}

// BaselineTargets are the responses at BaselineFeatures.
var BaselineTargets = TargetVector{
	Deformation:    0.046712,
	Stress:         1.385,
	Strain:         7.73732e-6,
	FactorOfSafety: 15,
	FatigueLife:    1e6,
	Damage:         1000,
}

// Values returns the feature values in FeatureNames order.
func (f FeatureVector) Values() []float64 {
	return []float64{
		f.YoungsModulus,
		f.Density,
		f.PoissonsRatio,
		f.Thickness,
		f.Length,
		f.Pressure,
		f.Frequency,
	}
}

// Validate checks every feature against its admissible bound. NaN never
// satisfies a bound.
func (f FeatureVector) Validate() error {
	vals := f.Values()
	for i, name := range FeatureNames {
		b := Bounds[name]
		if math.IsNaN(vals[i]) || vals[i] < b.Min || vals[i] > b.Max {
			return errors.NewValidationError(name, "value out of range", vals[i])
		}
	}
	return nil
}

// FeaturesFromValues builds a FeatureVector from values in FeatureNames
// order.
func FeaturesFromValues(vals []float64) (FeatureVector, error) {
	if len(vals) != len(FeatureNames) {
		return FeatureVector{}, errors.NewDimensionError("FeaturesFromValues", len(FeatureNames), len(vals), 1)
	}
	return FeatureVector{
		YoungsModulus: vals[0],
		Density:       vals[1],
		PoissonsRatio: vals[2],
		Thickness:     vals[3],
		Length:        vals[4],
		Pressure:      vals[5],
		Frequency:     vals[6],
	}, nil
}

// Values returns the target values in TargetNames order.
func (t TargetVector) Values() []float64 {
	return []float64{
		t.Deformation,
		t.Stress,
		t.Strain,
		t.FactorOfSafety,
		t.FatigueLife,
		t.Damage,
	}
}

// TargetsFromValues builds a TargetVector from values in TargetNames order.
func TargetsFromValues(vals []float64) (TargetVector, error) {
	if len(vals) != len(TargetNames) {
		return TargetVector{}, errors.NewDimensionError("TargetsFromValues", len(TargetNames), len(vals), 1)
	}
	return TargetVector{
		Deformation:    vals[0],
		Stress:         vals[1],
		Strain:         vals[2],
		FactorOfSafety: vals[3],
		FatigueLife:    vals[4],
		Damage:         vals[5],
	}, nil
}

// Dataset is an ordered collection of feature/target rows. X is n×7 and Y is
// n×6 in FeatureNames/TargetNames column order. A dataset is generated or
// loaded once and treated as immutable thereafter.
type Dataset struct {
	X *mat.Dense
	Y *mat.Dense
}

// NumSamples returns the number of rows.
func (d *Dataset) NumSamples() int {
	if d == nil || d.X == nil {
		return 0
	}
	r, _ := d.X.Dims()
	return r
}

// Row returns the i-th feature/target pair.
func (d *Dataset) Row(i int) (FeatureVector, TargetVector) {
	f, _ := FeaturesFromValues(mat.Row(nil, i, d.X))
	t, _ := TargetsFromValues(mat.Row(nil, i, d.Y))
	return f, t
}
