// Package preprocessing implements feature scaling for the linear pipeline.
package preprocessing

import (
	"bytes"
	"encoding/gob"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/core/model"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/errors"
)

// StandardScaler transforms features to zero mean and unit variance. The
// blade features span eight orders of magnitude (Poisson ratio vs pressure),
// so the linear estimator is always fitted on scaled inputs.
type StandardScaler struct {
	model.BaseEstimator

	// Mean holds the per-feature mean computed by Fit.
	Mean []float64
	// Scale holds the per-feature standard deviation computed by Fit.
	Scale []float64
	// NFeatures is the number of features seen during Fit.
	NFeatures int
}

// NewStandardScaler creates an unfitted StandardScaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit computes the per-feature mean and standard deviation of X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("StandardScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += X.At(i, j)
		}
		s.Mean[j] = sum / float64(r)
	}

	for j := 0; j < c; j++ {
		sumSquares := 0.0
		for i := 0; i < r; i++ {
			diff := X.At(i, j) - s.Mean[j]
			sumSquares += diff * diff
		}
		s.Scale[j] = math.Sqrt(sumSquares / float64(r))
		// Constant columns scale by 1 to avoid division by zero.
		if s.Scale[j] < 1e-8 {
			s.Scale[j] = 1.0
		}
	}

	s.SetFitted()
	return nil
}

// Transform standardizes X using the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (*mat.Dense, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}
	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return out, nil
}

// FitTransform fits the scaler on X and returns the standardized matrix.
func (s *StandardScaler) FitTransform(X mat.Matrix) (*mat.Dense, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

type scalerState struct {
	Mean      []float64
	Scale     []float64
	NFeatures int
}

// GobEncode serializes the fitted statistics.
func (s *StandardScaler) GobEncode() ([]byte, error) {
	if !s.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "GobEncode")
	}
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(scalerState{Mean: s.Mean, Scale: s.Scale, NFeatures: s.NFeatures})
	return buf.Bytes(), err
}

// GobDecode restores the fitted statistics and marks the scaler fitted.
func (s *StandardScaler) GobDecode(data []byte) error {
	var st scalerState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return err
	}
	s.Mean = st.Mean
	s.Scale = st.Scale
	s.NFeatures = st.NFeatures
	s.SetFitted()
	return nil
}
