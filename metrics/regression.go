// Package metrics implements regression goodness-of-fit measures.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
)

// MSE computes the mean squared error between yTrue and yPred.
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("MSE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE computes the root mean squared error.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE computes the mean absolute error.
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("MAE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("MAE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score computes the coefficient of determination R² = 1 - RSS/TSS for a
// single target. Fails when yTrue has no variance.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, errors.NewValueError("R2Score", "empty vector")
	}
	if yPred.Len() != n {
		return 0, errors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		yTrueVal := yTrue.AtVec(i)
		yPredVal := yPred.AtVec(i)
		tss += (yTrueVal - yMean) * (yTrueVal - yMean)
		rss += (yTrueVal - yPredVal) * (yTrueVal - yPredVal)
	}

	if tss == 0 {
		return 0, errors.Newf("R2Score: total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

// R2ScoreMatrix computes the uniform average of the per-target R² scores for
// multi-output predictions.
func R2ScoreMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError("R2ScoreMatrix", "empty matrix")
	}
	if rTrue != rPred || cTrue != cPred {
		return 0, errors.NewDimensionError("R2ScoreMatrix", rTrue, rPred, 0)
	}

	var total float64
	trueCol := mat.NewVecDense(rTrue, nil)
	predCol := mat.NewVecDense(rTrue, nil)
	for j := 0; j < cTrue; j++ {
		for i := 0; i < rTrue; i++ {
			trueCol.SetVec(i, yTrue.At(i, j))
			predCol.SetVec(i, yPred.At(i, j))
		}
		r2, err := R2Score(trueCol, predCol)
		if err != nil {
			return 0, errors.Wrapf(err, "target %d", j)
		}
		total += r2
	}
	return total / float64(cTrue), nil
}

// R2ScorePerTarget computes the R² score of each target column separately.
func R2ScorePerTarget(yTrue, yPred mat.Matrix) ([]float64, error) {
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue == 0 || cTrue == 0 {
		return nil, errors.NewValueError("R2ScorePerTarget", "empty matrix")
	}
	if rTrue != rPred || cTrue != cPred {
		return nil, errors.NewDimensionError("R2ScorePerTarget", rTrue, rPred, 0)
	}

	scores := make([]float64, cTrue)
	trueCol := mat.NewVecDense(rTrue, nil)
	predCol := mat.NewVecDense(rTrue, nil)
	for j := 0; j < cTrue; j++ {
		for i := 0; i < rTrue; i++ {
			trueCol.SetVec(i, yTrue.At(i, j))
			predCol.SetVec(i, yPred.At(i, j))
		}
		r2, err := R2Score(trueCol, predCol)
		if err != nil {
			return nil, errors.Wrapf(err, "target %d", j)
		}
		scores[j] = r2
	}
	return scores, nil
}
