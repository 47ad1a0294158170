// Package linear implements multi-output linear regression fitted by the
// normal equations.
package linear

import (
	"bytes"
	"encoding/gob"

	"gonum.org/v1/gonum/mat"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/core/model"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/core/parallel"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/metrics"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
)

// Regression is a least-squares linear model mapping n features to m targets.
// Fit solves the normal equations w = (XᵀX)⁻¹ Xᵀy once for all targets.
type Regression struct {
	model.BaseEstimator

	// Coef is the (NFeatures × NTargets) coefficient matrix.
	Coef *mat.Dense
	// Intercept holds one intercept per target.
	Intercept []float64
	// NFeatures is the number of features seen during Fit.
	NFeatures int
	// NTargets is the number of targets seen during Fit.
	NTargets int

	fitIntercept bool
}

// Option configures a Regression.
type Option func(*Regression)

// WithFitIntercept controls whether an intercept term is estimated.
func WithFitIntercept(fit bool) Option {
	return func(r *Regression) { r.fitIntercept = fit }
}

// NewRegression creates an unfitted Regression with an intercept term.
func NewRegression(opts ...Option) *Regression {
	r := &Regression{fitIntercept: true}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fit estimates the coefficients from X (nSamples × nFeatures) and
// y (nSamples × nTargets).
func (r *Regression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, nTargets := y.Dims()

	if nSamples == 0 || nFeatures == 0 {
		return errors.NewModelError("Regression.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != nSamples {
		return errors.NewDimensionError("Regression.Fit", nSamples, yRows, 0)
	}

	r.NFeatures = nFeatures
	r.NTargets = nTargets

	var design mat.Matrix = X
	if r.fitIntercept {
		withIntercept := mat.NewDense(nSamples, nFeatures+1, nil)
		const parallelThreshold = 1000
		parallel.ParallelizeWithThreshold(nSamples, parallelThreshold, func(start, end int) {
			for i := start; i < end; i++ {
				withIntercept.Set(i, 0, 1.0)
				for j := 0; j < nFeatures; j++ {
					withIntercept.Set(i, j+1, X.At(i, j))
				}
			}
		})
		design = withIntercept
	}

	coef, err := solveNormalEquations(design, y)
	if err != nil {
		return err
	}

	if r.fitIntercept {
		r.Intercept = make([]float64, nTargets)
		for t := 0; t < nTargets; t++ {
			r.Intercept[t] = coef.At(0, t)
		}
		r.Coef = mat.NewDense(nFeatures, nTargets, nil)
		for j := 0; j < nFeatures; j++ {
			for t := 0; t < nTargets; t++ {
				r.Coef.Set(j, t, coef.At(j+1, t))
			}
		}
	} else {
		r.Intercept = make([]float64, nTargets)
		r.Coef = mat.DenseCopyOf(coef)
	}

	r.SetFitted()
	return nil
}

// solveNormalEquations computes (XᵀX)⁻¹ Xᵀy, retrying with a small ridge
// term on the diagonal when XᵀX is singular.
func solveNormalEquations(X, y mat.Matrix) (*mat.Dense, error) {
	_, cols := X.Dims()
	_, yCols := y.Dims()

	var xt mat.Dense
	xt.CloneFrom(X.T())

	var xtx mat.Dense
	xtx.Mul(&xt, X)

	var xtxInv mat.Dense
	if err := xtxInv.Inverse(&xtx); err != nil {
		for i := 0; i < cols; i++ {
			xtx.Set(i, i, xtx.At(i, i)+1e-10)
		}
		if err := xtxInv.Inverse(&xtx); err != nil {
			return nil, errors.NewModelError("Regression.Fit", "singular design matrix", errors.ErrSingularMatrix)
		}
	}

	var xty mat.Dense
	xty.Mul(&xt, y)

	coef := mat.NewDense(cols, yCols, nil)
	coef.Mul(&xtxInv, &xty)
	return coef, nil
}

// Predict returns the (nSamples × NTargets) prediction matrix for X.
func (r *Regression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("Regression", "Predict")
	}

	nSamples, nFeatures := X.Dims()
	if nFeatures != r.NFeatures {
		return nil, errors.NewDimensionError("Regression.Predict", r.NFeatures, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, r.NTargets, nil)
	const parallelThreshold = 1000
	parallel.ParallelizeWithThreshold(nSamples, parallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			for t := 0; t < r.NTargets; t++ {
				pred := r.Intercept[t]
				for j := 0; j < nFeatures; j++ {
					pred += X.At(i, j) * r.Coef.At(j, t)
				}
				predictions.Set(i, t, pred)
			}
		}
	})

	return predictions, nil
}

// Score returns the uniform-average R² over all targets.
func (r *Regression) Score(X, y mat.Matrix) (float64, error) {
	if !r.IsFitted() {
		return 0, errors.NewNotFittedError("Regression", "Score")
	}
	yPred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}

type regressionState struct {
	Coef         []float64
	Intercept    []float64
	NFeatures    int
	NTargets     int
	FitIntercept bool
}

// GobEncode serializes the fitted coefficients.
func (r *Regression) GobEncode() ([]byte, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("Regression", "GobEncode")
	}
	st := regressionState{
		Coef:         make([]float64, 0, r.NFeatures*r.NTargets),
		Intercept:    r.Intercept,
		NFeatures:    r.NFeatures,
		NTargets:     r.NTargets,
		FitIntercept: r.fitIntercept,
	}
	for j := 0; j < r.NFeatures; j++ {
		for t := 0; t < r.NTargets; t++ {
			st.Coef = append(st.Coef, r.Coef.At(j, t))
		}
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(st)
	return buf.Bytes(), err
}

// GobDecode restores the fitted coefficients and marks the model fitted.
func (r *Regression) GobDecode(data []byte) error {
	var st regressionState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return err
	}
	r.Coef = mat.NewDense(st.NFeatures, st.NTargets, st.Coef)
	r.Intercept = st.Intercept
	r.NFeatures = st.NFeatures
	r.NTargets = st.NTargets
	r.fitIntercept = st.FitIntercept
	r.SetFitted()
	return nil
}
