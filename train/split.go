package train

import (
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
)

// TrainTestSplit shuffles the rows of X and y with a seeded permutation and
// partitions them into train and test sets. testSize is the test fraction in
// (0, 1); both partitions are guaranteed at least one row.
func TrainTestSplit(X, y mat.Matrix, testSize float64, seed int64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	n, nFeatures := X.Dims()
	yRows, nTargets := y.Dims()

	if n != yRows {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplit", n, yRows, 0)
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	nTest := int(float64(n) * testSize)
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= n {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "leaves no training rows", testSize)
	}
	nTrain := n - nTest

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	XTest = mat.NewDense(nTest, nFeatures, nil)
	yTest = mat.NewDense(nTest, nTargets, nil)
	XTrain = mat.NewDense(nTrain, nFeatures, nil)
	yTrain = mat.NewDense(nTrain, nTargets, nil)

	for i, src := range perm {
		if i < nTest {
			XTest.SetRow(i, mat.Row(nil, src, X))
			yTest.SetRow(i, mat.Row(nil, src, y))
		} else {
			XTrain.SetRow(i-nTest, mat.Row(nil, src, X))
			yTrain.SetRow(i-nTest, mat.Row(nil, src, y))
		}
	}

	return XTrain, XTest, yTrain, yTest, nil
}
