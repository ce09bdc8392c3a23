package drift

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// ADWIN keeps a window of recent values in [0, 1] and drops its older part
// whenever the means of an older and a newer sub-window differ by more than
// the Hoeffding-style bound of Bifet and Gavalda (2007):
//
//	eps = sqrt(ln(4n/delta) / (2m)),  m = 1 / (1/n0 + 1/n1)
type ADWIN struct {
	delta      float64
	maxWidth   int
	minSubSize int

	window []float64
	// last detected cut
	lastDiff  float64
	lastBound float64

	mu sync.RWMutex
}

// ADWINOption configures an ADWIN.
type ADWINOption func(*ADWIN)

// WithADWINDelta sets the confidence parameter. Smaller values make the
// detector less sensitive.
func WithADWINDelta(delta float64) ADWINOption {
	return func(a *ADWIN) {
		a.delta = delta
	}
}

// WithADWINMaxWidth caps the window length; the oldest values are evicted.
func WithADWINMaxWidth(n int) ADWINOption {
	return func(a *ADWIN) {
		a.maxWidth = n
	}
}

// WithADWINMinSubwindow sets the smallest sub-window that is tested.
func WithADWINMinSubwindow(n int) ADWINOption {
	return func(a *ADWIN) {
		a.minSubSize = n
	}
}

// NewADWIN creates a detector with delta 0.002 and a window of at most
// 1000 values.
func NewADWIN(options ...ADWINOption) *ADWIN {
	a := &ADWIN{
		delta:      0.002,
		maxWidth:   1000,
		minSubSize: 5,
	}
	for _, opt := range options {
		opt(a)
	}
	return a
}

// Update adds value and reports whether the window was cut.
func (a *ADWIN) Update(value float64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.window = append(a.window, value)
	if len(a.window) > a.maxWidth {
		a.window = a.window[len(a.window)-a.maxWidth:]
	}
	n := len(a.window)
	if n < 2*a.minSubSize {
		return false
	}

	total := floats.Sum(a.window)
	logTerm := math.Log(4 * float64(n) / a.delta)
	head := 0.0
	for k := 1; k < n; k++ {
		head += a.window[k-1]
		if k < a.minSubSize || n-k < a.minSubSize {
			continue
		}
		n0, n1 := float64(k), float64(n-k)
		diff := math.Abs(head/n0 - (total-head)/n1)
		m := 1 / (1/n0 + 1/n1)
		eps := math.Sqrt(logTerm / (2 * m))
		if diff > eps {
			a.window = append([]float64(nil), a.window[k:]...)
			a.lastDiff, a.lastBound = diff, eps
			return true
		}
	}
	return false
}

// LastCut returns the mean difference and bound of the most recent cut.
func (a *ADWIN) LastCut() (diff, bound float64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lastDiff, a.lastBound
}

// Mean returns the mean of the current window.
func (a *ADWIN) Mean() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.window) == 0 {
		return 0
	}
	return floats.Sum(a.window) / float64(len(a.window))
}

// Width returns the current window length.
func (a *ADWIN) Width() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.window)
}

// Reset empties the window.
func (a *ADWIN) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.window = nil
	a.lastDiff, a.lastBound = 0, 0
}
