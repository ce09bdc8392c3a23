// Package model holds the pieces shared by every estimator: fitted-state
// tracking, the label vocabulary, ranked predictions and training callbacks.
package model

import (
	"sync"

	"github.com/YuminosukeSato/nameml/pkg/errors"
)

// StateManager tracks whether an estimator has been fitted, in a
// thread-safe manner. Estimators embed it by pointer.
type StateManager struct {
	mu     sync.RWMutex
	fitted bool

	// Dimensions seen during the last fit.
	nSamples int
	nLabels  int
}

// NewStateManager creates an unfitted StateManager.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the estimator has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the estimator as fitted and records the training shape.
func (s *StateManager) SetFitted(nSamples, nLabels int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
	s.nSamples = nSamples
	s.nLabels = nLabels
}

// Reset returns the estimator to the unfitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nSamples = 0
	s.nLabels = 0
}

// Dimensions returns the number of samples and distinct labels seen in the
// last fit.
func (s *StateManager) Dimensions() (nSamples, nLabels int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nSamples, s.nLabels
}

// RequireFitted returns a NotFittedError naming modelName and method when
// the estimator has not been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}
