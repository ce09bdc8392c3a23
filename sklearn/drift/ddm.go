// Package drift watches a deployed name model for concept drift. DDM
// tracks the error rate of predictions that later receive feedback, and
// ADWIN tracks the stream of served confidences.
package drift

import (
	"math"
	"sync"
)

// DDM is the Drift Detection Method of Gama et al. (2004). It models the
// error rate as a binomial proportion p with standard deviation s and
// flags a warning when p+s exceeds pmin + warningLevel*smin and drift when
// it exceeds pmin + outControlLevel*smin. The detector restarts after a
// drift.
type DDM struct {
	minNumInstances int
	warningLevel    float64
	outControlLevel float64

	numInstances int
	numErrors    int
	errorRate    float64
	stdDev       float64

	// (p, s) at the lowest p+s seen since the last restart
	minErrorRate float64
	minStdDev    float64

	warningDetected bool
	driftDetected   bool

	mu sync.RWMutex
}

// DDMResult is the outcome of one DDM update.
type DDMResult struct {
	WarningDetected bool
	DriftDetected   bool
	ErrorRate       float64
	// Level is (p+s)/(pmin+smin); 1 means at the best level seen.
	Level float64
}

// DDMOption configures a DDM.
type DDMOption func(*DDM)

// WithDDMMinNumInstances sets how many outcomes are needed before the
// detector starts testing.
func WithDDMMinNumInstances(n int) DDMOption {
	return func(ddm *DDM) {
		ddm.minNumInstances = n
	}
}

// WithDDMWarningLevel sets the warning multiplier (default 2).
func WithDDMWarningLevel(level float64) DDMOption {
	return func(ddm *DDM) {
		ddm.warningLevel = level
	}
}

// WithDDMOutControlLevel sets the drift multiplier (default 3).
func WithDDMOutControlLevel(level float64) DDMOption {
	return func(ddm *DDM) {
		ddm.outControlLevel = level
	}
}

// NewDDM creates a detector that starts testing after 30 outcomes.
func NewDDM(options ...DDMOption) *DDM {
	ddm := &DDM{
		minNumInstances: 30,
		warningLevel:    2.0,
		outControlLevel: 3.0,
	}
	for _, opt := range options {
		opt(ddm)
	}
	ddm.restart()
	return ddm
}

// Update records whether a prediction was correct.
func (ddm *DDM) Update(correct bool) DDMResult {
	ddm.mu.Lock()
	defer ddm.mu.Unlock()

	ddm.numInstances++
	if !correct {
		ddm.numErrors++
	}
	if ddm.numInstances < ddm.minNumInstances {
		return DDMResult{}
	}

	n := float64(ddm.numInstances)
	ddm.errorRate = float64(ddm.numErrors) / n
	ddm.stdDev = math.Sqrt(ddm.errorRate * (1 - ddm.errorRate) / n)
	result := DDMResult{ErrorRate: ddm.errorRate, Level: 1}

	current := ddm.errorRate + ddm.stdDev
	if current < ddm.minErrorRate+ddm.minStdDev {
		ddm.minErrorRate = ddm.errorRate
		ddm.minStdDev = ddm.stdDev
	}
	if best := ddm.minErrorRate + ddm.minStdDev; best > 0 {
		result.Level = current / best
	}

	ddm.warningDetected = current > ddm.minErrorRate+ddm.warningLevel*ddm.minStdDev
	ddm.driftDetected = current > ddm.minErrorRate+ddm.outControlLevel*ddm.minStdDev
	result.WarningDetected = ddm.warningDetected
	result.DriftDetected = ddm.driftDetected
	if ddm.driftDetected {
		ddm.restart()
	}
	return result
}

// Reset clears all statistics.
func (ddm *DDM) Reset() {
	ddm.mu.Lock()
	defer ddm.mu.Unlock()
	ddm.restart()
}

func (ddm *DDM) restart() {
	ddm.numInstances = 0
	ddm.numErrors = 0
	ddm.errorRate = 0
	ddm.stdDev = 0
	ddm.minErrorRate = math.Inf(1)
	ddm.minStdDev = math.Inf(1)
	ddm.warningDetected = false
	ddm.driftDetected = false
}

// OutControlLevel returns the drift multiplier.
func (ddm *DDM) OutControlLevel() float64 {
	return ddm.outControlLevel
}

// DDMStatistics is a snapshot of the detector state.
type DDMStatistics struct {
	NumInstances    int     `json:"numInstances"`
	NumErrors       int     `json:"numErrors"`
	ErrorRate       float64 `json:"errorRate"`
	StdDev          float64 `json:"stdDev"`
	WarningDetected bool    `json:"warningDetected"`
	DriftDetected   bool    `json:"driftDetected"`
}

// GetStatistics returns the current statistics.
func (ddm *DDM) GetStatistics() DDMStatistics {
	ddm.mu.RLock()
	defer ddm.mu.RUnlock()
	return DDMStatistics{
		NumInstances:    ddm.numInstances,
		NumErrors:       ddm.numErrors,
		ErrorRate:       ddm.errorRate,
		StdDev:          ddm.stdDev,
		WarningDetected: ddm.warningDetected,
		DriftDetected:   ddm.driftDetected,
	}
}
