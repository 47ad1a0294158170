// Package ensemble implements a multi-output random forest regressor: a
// bagged ensemble of CART regression trees whose leaves hold per-target
// means.
package ensemble

import (
	"bytes"
	"encoding/gob"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/core/model"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/core/parallel"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/metrics"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
)

// ForestRegressor is a random forest for multi-output regression.
type ForestRegressor struct {
	model.BaseEstimator

	// Hyperparameters.
	NEstimators     int
	MaxDepth        int // 0 means unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int // 0 means all features at every split
	Bootstrap       bool
	RandomState     int64

	// Fitted state.
	Trees     []*Node
	NFeatures int
	NTargets  int
}

// ForestOption configures a ForestRegressor.
type ForestOption func(*ForestRegressor)

// WithNEstimators sets the number of trees.
func WithNEstimators(n int) ForestOption {
	return func(f *ForestRegressor) { f.NEstimators = n }
}

// WithMaxDepth limits tree depth; 0 means unlimited.
func WithMaxDepth(d int) ForestOption {
	return func(f *ForestRegressor) { f.MaxDepth = d }
}

// WithMinSamplesSplit sets the minimum node size eligible for splitting.
func WithMinSamplesSplit(n int) ForestOption {
	return func(f *ForestRegressor) { f.MinSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples required in each child.
func WithMinSamplesLeaf(n int) ForestOption {
	return func(f *ForestRegressor) { f.MinSamplesLeaf = n }
}

// WithMaxFeatures sets the number of features sampled per split; 0 uses all.
func WithMaxFeatures(n int) ForestOption {
	return func(f *ForestRegressor) { f.MaxFeatures = n }
}

// WithBootstrap toggles bootstrap resampling per tree.
func WithBootstrap(b bool) ForestOption {
	return func(f *ForestRegressor) { f.Bootstrap = b }
}

// WithRandomState seeds the per-tree random sources, making training fully
// reproducible.
func WithRandomState(seed int64) ForestOption {
	return func(f *ForestRegressor) { f.RandomState = seed }
}

// NewForestRegressor creates an unfitted forest with defaults matching the
// reference surrogate: 100 bootstrapped trees, unlimited depth, all features
// considered at every split.
func NewForestRegressor(opts ...ForestOption) *ForestRegressor {
	f := &ForestRegressor{
		NEstimators:     100,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		RandomState:     42,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fit grows the forest on X (nSamples × nFeatures) and y (nSamples ×
// nTargets). Trees are built in parallel; each tree draws from its own
// source seeded by RandomState plus the tree index, so the result does not
// depend on goroutine scheduling.
func (f *ForestRegressor) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, nTargets := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("ForestRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != nSamples {
		return errors.NewDimensionError("ForestRegressor.Fit", nSamples, yRows, 0)
	}
	if f.NEstimators <= 0 {
		return errors.NewValidationError("n_estimators", "must be positive", f.NEstimators)
	}

	f.NFeatures = nFeatures
	f.NTargets = nTargets

	// Row-slice views avoid repeated mat.At calls in the split search.
	rowsX := make([][]float64, nSamples)
	rowsY := make([][]float64, nSamples)
	for i := 0; i < nSamples; i++ {
		rowsX[i] = mat.Row(nil, i, X)
		rowsY[i] = mat.Row(nil, i, y)
	}

	cfg := treeConfig{
		maxDepth:        f.MaxDepth,
		minSamplesSplit: f.MinSamplesSplit,
		minSamplesLeaf:  f.MinSamplesLeaf,
		maxFeatures:     f.MaxFeatures,
	}

	f.Trees = make([]*Node, f.NEstimators)
	parallel.Parallelize(f.NEstimators, func(start, end int) {
		for k := start; k < end; k++ {
			rnd := rand.New(rand.NewSource(f.RandomState + int64(k)))

			idx := make([]int, nSamples)
			for i := range idx {
				if f.Bootstrap {
					idx[i] = rnd.Intn(nSamples)
				} else {
					idx[i] = i
				}
			}

			f.Trees[k] = buildNode(rowsX, rowsY, idx, 0, cfg, rnd)
		}
	})

	f.SetFitted()
	return nil
}

// Predict returns the (nSamples × NTargets) matrix of forest means.
func (f *ForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("ForestRegressor", "Predict")
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != f.NFeatures {
		return nil, errors.NewDimensionError("ForestRegressor.Predict", f.NFeatures, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, f.NTargets, nil)
	const parallelThreshold = 256
	parallel.ParallelizeWithThreshold(nSamples, parallelThreshold, func(start, end int) {
		row := make([]float64, nFeatures)
		for i := start; i < end; i++ {
			mat.Row(row, i, X)
			predictions.SetRow(i, f.predictRow(row))
		}
	})

	return predictions, nil
}

// PredictRow predicts the targets for a single feature row.
func (f *ForestRegressor) PredictRow(x []float64) ([]float64, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("ForestRegressor", "PredictRow")
	}
	if len(x) != f.NFeatures {
		return nil, errors.NewDimensionError("ForestRegressor.PredictRow", f.NFeatures, len(x), 1)
	}
	return f.predictRow(x), nil
}

func (f *ForestRegressor) predictRow(x []float64) []float64 {
	out := make([]float64, f.NTargets)
	for _, tree := range f.Trees {
		leaf := predictNode(tree, x)
		for t := 0; t < f.NTargets; t++ {
			out[t] += leaf[t]
		}
	}
	for t := 0; t < f.NTargets; t++ {
		out[t] /= float64(len(f.Trees))
	}
	return out
}

// Score returns the uniform-average R² over all targets.
func (f *ForestRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !f.IsFitted() {
		return 0, errors.NewNotFittedError("ForestRegressor", "Score")
	}
	yPred, err := f.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}

type forestState struct {
	NEstimators     int
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	MaxFeatures     int
	Bootstrap       bool
	RandomState     int64
	Trees           []*Node
	NFeatures       int
	NTargets        int
}

// GobEncode serializes the hyperparameters and the fitted trees.
func (f *ForestRegressor) GobEncode() ([]byte, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("ForestRegressor", "GobEncode")
	}
	st := forestState{
		NEstimators:     f.NEstimators,
		MaxDepth:        f.MaxDepth,
		MinSamplesSplit: f.MinSamplesSplit,
		MinSamplesLeaf:  f.MinSamplesLeaf,
		MaxFeatures:     f.MaxFeatures,
		Bootstrap:       f.Bootstrap,
		RandomState:     f.RandomState,
		Trees:           f.Trees,
		NFeatures:       f.NFeatures,
		NTargets:        f.NTargets,
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(st)
	return buf.Bytes(), err
}

// GobDecode restores the forest and marks it fitted.
func (f *ForestRegressor) GobDecode(data []byte) error {
	var st forestState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return err
	}
	f.NEstimators = st.NEstimators
	f.MaxDepth = st.MaxDepth
	f.MinSamplesSplit = st.MinSamplesSplit
	f.MinSamplesLeaf = st.MinSamplesLeaf
	f.MaxFeatures = st.MaxFeatures
	f.Bootstrap = st.Bootstrap
	f.RandomState = st.RandomState
	f.Trees = st.Trees
	f.NFeatures = st.NFeatures
	f.NTargets = st.NTargets
	f.SetFitted()
	return nil
}
