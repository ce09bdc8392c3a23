package drift

import (
	"strings"
	"sync"
	"time"

	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
)

// Status summarizes the feedback detector after one outcome.
type Status struct {
	Observations    int     `json:"observations"`
	ErrorRate       float64 `json:"errorRate"`
	WarningDetected bool    `json:"warningDetected"`
	DriftDetected   bool    `json:"driftDetected"`
}

// Monitor pairs a DDM over feedback outcomes with an ADWIN over served
// confidences. Detected drift is raised through errors.Warn as a
// ModelDriftWarning. It is safe for concurrent use.
type Monitor struct {
	mu     sync.Mutex
	ddm    *DDM
	adwin  *ADWIN
	logger log.Logger
	now    func() time.Time
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithDetectors replaces the default detectors.
func WithDetectors(ddm *DDM, adwin *ADWIN) MonitorOption {
	return func(m *Monitor) {
		m.ddm = ddm
		m.adwin = adwin
	}
}

// WithMonitorLogger sets the logger.
func WithMonitorLogger(logger log.Logger) MonitorOption {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// WithMonitorClock sets the clock used for warning timestamps.
func WithMonitorClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) {
		m.now = now
	}
}

// NewMonitor creates a Monitor with default detectors.
func NewMonitor(opts ...MonitorOption) *Monitor {
	m := &Monitor{now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	if m.ddm == nil {
		m.ddm = NewDDM()
	}
	if m.adwin == nil {
		m.adwin = NewADWIN()
	}
	if m.logger == nil {
		m.logger = log.GetLoggerWithName("drift.monitor")
	}
	return m
}

// RecordOutcome feeds whether predicted matched actual (case-insensitive,
// surrounding space ignored) into the DDM.
func (m *Monitor) RecordOutcome(predicted, actual string) Status {
	correct := strings.EqualFold(strings.TrimSpace(predicted), strings.TrimSpace(actual))
	m.mu.Lock()
	defer m.mu.Unlock()
	before := m.ddm.GetStatistics().NumInstances
	res := m.ddm.Update(correct)

	status := Status{
		Observations:    before + 1,
		ErrorRate:       res.ErrorRate,
		WarningDetected: res.WarningDetected,
		DriftDetected:   res.DriftDetected,
	}
	switch {
	case res.DriftDetected:
		m.warn("DDM", res.Level, m.ddm.OutControlLevel(), "retrain")
	case res.WarningDetected:
		m.logger.Info("Feedback error rate rising",
			log.DriftDetectorKey, "DDM",
			log.DriftStatisticsKey, res.ErrorRate,
		)
	}
	return status
}

// ObserveConfidence feeds one served confidence into the ADWIN and reports
// whether the confidence stream shifted.
func (m *Monitor) ObserveConfidence(confidence float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.adwin.Update(errors.ClipValue(confidence, 0, 1)) {
		return false
	}
	diff, bound := m.adwin.LastCut()
	m.warn("ADWIN", diff, bound, "alert")
	return true
}

// Statistics returns the feedback detector statistics.
func (m *Monitor) Statistics() DDMStatistics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ddm.GetStatistics()
}

// Reset clears both detectors, typically after a new model is installed.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ddm.Reset()
	m.adwin.Reset()
}

func (m *Monitor) warn(detector string, score, threshold float64, action string) {
	w := errors.NewModelDriftWarning(detector, score, threshold, action)
	w.Timestamp = m.now().Unix()
	errors.Warn(w)
}
