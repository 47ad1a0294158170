// Package errors provides structured error handling for the blade surrogate
// pipeline. Error types carry enough context to be logged as structured
// fields and mapped to the right boundary behavior: validation errors are
// recoverable and user-facing, artifact errors abort startup, model and value
// errors abort the offline step that raised them.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// NotFittedError is returned when Predict, Transform or Score is called on an
// estimator before Fit.
type NotFittedError struct {
	EstimatorName string
	Method        string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("blade: %s: estimator is not fitted yet; call Fit() before %s()", e.EstimatorName, e.Method)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("estimator", e.EstimatorName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(estimator, method string) error {
	err := &NotFittedError{EstimatorName: estimator, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports an input whose shape does not match expectations.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("blade: %s: dimension mismatch on axis %d (%s): expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError reports a bad or missing user-supplied parameter. These are
// recovered locally and surfaced as a message without stack detail.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("blade: validation failed for '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace attached.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is out of the acceptable domain.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("blade: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError is a general estimator failure during fitting or inference.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("blade: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("blade: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace attached.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// ArtifactError reports a missing or corrupt model artifact. The server
// treats these as fatal at startup: the process cannot serve without a model.
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("blade: model artifact %q: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}

// MarshalZerologObject adds the structured error fields to a zerolog event.
func (e *ArtifactError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("path", e.Path).
		AnErr("cause", e.Err).
		Str("type", "ArtifactError")
}

// NewArtifactError creates an ArtifactError with a stack trace attached.
func NewArtifactError(path string, err error) error {
	artErr := &ArtifactError{Path: path, Err: err}
	return errors.WithStack(artErr)
}

// SchemaError reports a dataset file whose header is missing a required
// column.
type SchemaError struct {
	Path   string
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("blade: dataset %q: missing required column %q", e.Path, e.Column)
}

// NewSchemaError creates a SchemaError with a stack trace attached.
func NewSchemaError(path, column string) error {
	err := &SchemaError{Path: path, Column: column}
	return errors.WithStack(err)
}

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap annotates err with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf annotates err with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

var (
	// ErrEmptyData indicates that an empty matrix or dataset was supplied.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix indicates that a design matrix was not invertible.
	ErrSingularMatrix = New("singular matrix")
)
