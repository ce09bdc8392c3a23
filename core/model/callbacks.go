package model

import (
	"math"
	"time"

	"github.com/YuminosukeSato/nameml/pkg/log"
)

// CallbackEnv is passed to callbacks after each boosting round or epoch.
type CallbackEnv struct {
	Estimator    string
	Iteration    int
	BeginTime    time.Time
	EndTime      time.Time
	EvalResults  map[string]float64
	StopTraining bool
}

// Callback observes training progress and may request an early stop by
// setting env.StopTraining. A returned error aborts training.
type Callback func(env *CallbackEnv) error

// LogEvaluation logs EvalResults every period iterations at debug level.
func LogEvaluation(logger log.Logger, period int) Callback {
	if period <= 0 {
		period = 1
	}
	return func(env *CallbackEnv) error {
		if env.Iteration%period != 0 {
			return nil
		}
		fields := []any{log.ModelNameKey, env.Estimator, log.IterationKey, env.Iteration}
		for name, value := range env.EvalResults {
			fields = append(fields, name, value)
		}
		logger.Debug("Training progress", fields...)
		return nil
	}
}

// RecordEvaluation appends every evaluation result to history.
func RecordEvaluation(history map[string][]float64) Callback {
	return func(env *CallbackEnv) error {
		for name, value := range env.EvalResults {
			history[name] = append(history[name], value)
		}
		return nil
	}
}

// EarlyStopping stops training when metric has not improved for rounds
// consecutive iterations.
func EarlyStopping(rounds int, metric string, minimize bool) Callback {
	best := math.Inf(1)
	if !minimize {
		best = math.Inf(-1)
	}
	noImprove := 0

	return func(env *CallbackEnv) error {
		value, ok := env.EvalResults[metric]
		if !ok {
			return nil
		}
		improved := value < best
		if !minimize {
			improved = value > best
		}
		if improved {
			best = value
			noImprove = 0
			return nil
		}
		noImprove++
		if noImprove >= rounds {
			env.StopTraining = true
		}
		return nil
	}
}

// TimeLimit stops training once maxDuration has elapsed since the first
// iteration began.
func TimeLimit(maxDuration time.Duration) Callback {
	var start time.Time
	return func(env *CallbackEnv) error {
		if start.IsZero() {
			start = env.BeginTime
			if start.IsZero() {
				start = time.Now()
			}
		}
		if time.Since(start) > maxDuration {
			env.StopTraining = true
		}
		return nil
	}
}

// CallbackList runs callbacks in order and remembers a stop request.
type CallbackList struct {
	callbacks []Callback
	env       *CallbackEnv
}

// NewCallbackList creates a list for the named estimator.
func NewCallbackList(estimator string, callbacks ...Callback) *CallbackList {
	return &CallbackList{
		callbacks: callbacks,
		env:       &CallbackEnv{Estimator: estimator, EvalResults: map[string]float64{}},
	}
}

// BeforeIteration records the iteration start time.
func (cl *CallbackList) BeforeIteration(iteration int) {
	cl.env.Iteration = iteration
	cl.env.BeginTime = time.Now()
}

// AfterIteration runs every callback with evalResults.
func (cl *CallbackList) AfterIteration(iteration int, evalResults map[string]float64) error {
	cl.env.Iteration = iteration
	cl.env.EndTime = time.Now()
	cl.env.EvalResults = evalResults

	for _, cb := range cl.callbacks {
		if err := cb(cl.env); err != nil {
			return err
		}
	}
	return nil
}

// ShouldStop reports whether a callback requested a stop.
func (cl *CallbackList) ShouldStop() bool {
	return cl.env.StopTraining
}
