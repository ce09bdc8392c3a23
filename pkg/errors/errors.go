// Package errors provides the error taxonomy and the warning channel shared by
// every nameml package. All constructors attach a stack trace through
// cockroachdb/errors, and the structured types implement
// zerolog.LogObjectMarshaler so they can be logged as objects.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Warnings
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("nameml-warning: %v\n", w)
	}
	// set by pkg/log to avoid an import cycle
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the fallback handler used by Warn when no
// zerolog sink has been installed.
//
//	errors.SetWarningHandler(func(w error) {
//	    // drop warnings
//	})
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs the structured warning sink. Passing nil
// restores the fallback handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn emits a non-fatal warning.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// UndefinedMetricWarning is raised when a metric cannot be computed, for
// example accuracy over an empty test split or precision for a label that
// was never predicted.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64 // value returned in its place
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates an UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// ModelDriftWarning is raised when a drift detector watching served
// predictions signals drift.
type ModelDriftWarning struct {
	DriftScore float64
	Threshold  float64
	Detector   string // "DDM", "ADWIN"
	Action     string // "alert", "retrain"
	Timestamp  int64  // unix seconds
}

func (w *ModelDriftWarning) Error() string {
	return fmt.Sprintf("Model drift detected by %s: score=%.4f (threshold=%.4f). Recommended action: %s",
		w.Detector, w.DriftScore, w.Threshold, w.Action)
}

// MarshalZerologObject adds the warning fields to a zerolog event.
func (w *ModelDriftWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("detector", w.Detector).
		Float64("drift_score", w.DriftScore).
		Float64("threshold", w.Threshold).
		Str("action", w.Action).
		Int64("timestamp", w.Timestamp).
		Str("type", "ModelDriftWarning")
}

// NewModelDriftWarning creates a ModelDriftWarning. Timestamp is left for
// the caller to fill in.
func NewModelDriftWarning(detector string, score, threshold float64, action string) *ModelDriftWarning {
	return &ModelDriftWarning{
		Detector:   detector,
		DriftScore: score,
		Threshold:  threshold,
		Action:     action,
	}
}

// ===========================================================================
//
//	Structured errors
//
// ===========================================================================

// NotFittedError is returned when Predict or Evaluate is called on a model
// that has not been trained. At the service level this is the
// "model not trained" condition.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("nameml: %s: this model is not trained yet. Call Train() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// IsNotFitted reports whether err carries a NotFittedError.
func IsNotFitted(err error) bool {
	var nf *NotFittedError
	return errors.As(err, &nf)
}

// InvalidConfigurationError is returned for a training request whose
// configuration cannot be honoured, such as an unknown model type.
type InvalidConfigurationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("nameml: invalid configuration for '%s' (%q): %s", e.Field, e.Value, e.Reason)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *InvalidConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("field", e.Field).
		Str("value", e.Value).
		Str("reason", e.Reason).
		Str("type", "InvalidConfigurationError")
}

// NewInvalidConfigurationError creates an InvalidConfigurationError with a stack trace.
func NewInvalidConfigurationError(field, value, reason string) error {
	return errors.WithStack(&InvalidConfigurationError{Field: field, Value: value, Reason: reason})
}

// ValidationError reports a parameter that failed validation.
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("nameml: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds the error fields to a zerolog event.
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError creates a ValidationError with a stack trace.
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError reports an argument with an inappropriate value.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("nameml: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ModelError is a general failure inside a training or prediction step.
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nameml: %s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("nameml: %s: %s", e.Op, e.Kind)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// NewModelError creates a ModelError with a stack trace.
func NewModelError(op, kind string, err error) error {
	modelErr := &ModelError{Op: op, Kind: kind, Err: err}
	return errors.WithStack(modelErr)
}

// NumericalInstabilityError reports NaN or Inf values produced during training.
type NumericalInstabilityError struct {
	Operation string    // e.g. "forward_pass", "weight_update"
	Values    []float64 // offending values, truncated
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("nameml: numerical instability detected in %s at iteration %d. Values: [%s]",
		e.Operation, e.Iteration, valStr)
}

// NewNumericalInstabilityError creates a NumericalInstabilityError with a stack trace.
func NewNumericalInstabilityError(operation string, values []float64, iteration int) error {
	err := &NumericalInstabilityError{
		Operation: operation,
		Values:    values,
		Iteration: iteration,
	}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
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

// New creates an error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack attaches a stack trace to err.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Sentinels
//
// ===========================================================================

var (
	// ErrEmptyData means no usable records were left after cleaning.
	ErrEmptyData = New("empty data")

	// ErrInsufficientData means the training partition of a split is empty.
	ErrInsufficientData = New("insufficient data")
)
