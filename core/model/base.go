// Package model provides the estimator base type and artifact persistence
// helpers shared by the regression estimators.
package model

// EstimatorState tracks whether an estimator has been fitted.
type EstimatorState int

const (
	// NotFitted is the initial state of every estimator.
	NotFitted EstimatorState = iota
	// Fitted is set once Fit has completed successfully.
	Fitted
)

// BaseEstimator is embedded by every estimator to carry its fit state.
type BaseEstimator struct {
	state EstimatorState
}

// IsFitted reports whether Fit has completed.
func (e *BaseEstimator) IsFitted() bool {
	return e.state == Fitted
}

// SetFitted marks the estimator as fitted. Estimators restoring themselves
// from a serialized artifact call this from their decode path, since the fit
// state itself is not part of the wire format.
func (e *BaseEstimator) SetFitted() {
	e.state = Fitted
}

// Reset returns the estimator to the unfitted state.
func (e *BaseEstimator) Reset() {
	e.state = NotFitted
}
