package ensemble

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	coremodel "github.com/thesoulseizure/WindTurbineBladeOptimization/core/model"
)

// makeRegressionData builds a smooth two-feature, two-target problem.
func makeRegressionData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 2, nil)
	y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		x1 := float64(i) / float64(n)
		x2 := float64(i%7) / 7.0
		X.Set(i, 0, x1)
		X.Set(i, 1, x2)
		y.Set(i, 0, 3*x1+x2*x2)
		y.Set(i, 1, math.Sin(4*x1)+0.5*x2)
	}
	return X, y
}

func TestForestFitPredict(t *testing.T) {
	X, y := makeRegressionData(200)

	forest := NewForestRegressor(WithNEstimators(25), WithRandomState(1))
	require.NoError(t, forest.Fit(X, y))
	require.True(t, forest.IsFitted())

	r2, err := forest.Score(X, y)
	require.NoError(t, err)
	assert.Greater(t, r2, 0.95, "forest should fit smooth training data closely")

	pred, err := forest.Predict(X)
	require.NoError(t, err)
	rows, cols := pred.Dims()
	assert.Equal(t, 200, rows)
	assert.Equal(t, 2, cols)
}

func TestForestDeterministicForSeed(t *testing.T) {
	X, y := makeRegressionData(120)

	a := NewForestRegressor(WithNEstimators(10), WithRandomState(7))
	require.NoError(t, a.Fit(X, y))
	b := NewForestRegressor(WithNEstimators(10), WithRandomState(7))
	require.NoError(t, b.Fit(X, y))

	predA, err := a.Predict(X)
	require.NoError(t, err)
	predB, err := b.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(predA, predB), "same seed must reproduce identical forests")
}

func TestForestPredictRow(t *testing.T) {
	X, y := makeRegressionData(100)

	forest := NewForestRegressor(WithNEstimators(10), WithRandomState(3))
	require.NoError(t, forest.Fit(X, y))

	row := []float64{0.5, 0.5}
	single, err := forest.PredictRow(row)
	require.NoError(t, err)
	require.Len(t, single, 2)

	batch, err := forest.Predict(mat.NewDense(1, 2, row))
	require.NoError(t, err)
	assert.Equal(t, batch.At(0, 0), single[0])
	assert.Equal(t, batch.At(0, 1), single[1])
}

func TestForestNotFitted(t *testing.T) {
	forest := NewForestRegressor()
	_, err := forest.Predict(mat.NewDense(1, 2, []float64{0, 0}))
	assert.Error(t, err)
	_, err = forest.PredictRow([]float64{0, 0})
	assert.Error(t, err)
}

func TestForestDimensionMismatch(t *testing.T) {
	X, y := makeRegressionData(50)
	forest := NewForestRegressor(WithNEstimators(5), WithRandomState(1))
	require.NoError(t, forest.Fit(X, y))

	_, err := forest.Predict(mat.NewDense(1, 3, []float64{0, 0, 0}))
	assert.Error(t, err)

	yBad := mat.NewDense(10, 2, nil)
	assert.Error(t, forest.Fit(X, yBad), "row count mismatch must be rejected")
}

func TestForestInvalidEstimators(t *testing.T) {
	X, y := makeRegressionData(20)
	forest := NewForestRegressor(WithNEstimators(0))
	assert.Error(t, forest.Fit(X, y))
}

func TestForestGobRoundTrip(t *testing.T) {
	X, y := makeRegressionData(80)

	forest := NewForestRegressor(WithNEstimators(8), WithRandomState(11))
	require.NoError(t, forest.Fit(X, y))

	var buf bytes.Buffer
	require.NoError(t, coremodel.SaveModelToWriter(forest, &buf))

	restored := NewForestRegressor()
	require.NoError(t, coremodel.LoadModelFromReader(restored, &buf))
	require.True(t, restored.IsFitted())

	origPred, err := forest.Predict(X)
	require.NoError(t, err)
	restPred, err := restored.Predict(X)
	require.NoError(t, err)
	assert.True(t, mat.Equal(origPred, restPred), "restored forest must predict identically")
}

func TestForestMaxDepthLimitsTree(t *testing.T) {
	X, y := makeRegressionData(100)

	shallow := NewForestRegressor(WithNEstimators(5), WithMaxDepth(1), WithRandomState(2))
	require.NoError(t, shallow.Fit(X, y))
	for _, tree := range shallow.Trees {
		assert.LessOrEqual(t, depth(tree), 1)
	}
}

func depth(n *Node) int {
	if n == nil || n.Leaf {
		return 0
	}
	l, r := depth(n.Left), depth(n.Right)
	if l > r {
		return l + 1
	}
	return r + 1
}
