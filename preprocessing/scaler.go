package preprocessing

import (
	"fmt"
	"math"

	"github.com/YuminosukeSato/nameml/core/model"
	"github.com/YuminosukeSato/nameml/pkg/errors"
)

// AgeScaler min-max scales the age feature to [0, 1] using the minimum and
// maximum of the batch it was fitted on. A constant batch maps to 0.5.
type AgeScaler struct {
	state *model.StateManager

	// DataMin is the smallest age seen during Fit.
	DataMin float64

	// DataMax is the largest age seen during Fit.
	DataMax float64
}

// NewAgeScaler creates an unfitted AgeScaler.
func NewAgeScaler() *AgeScaler {
	return &AgeScaler{state: model.NewStateManager()}
}

// Fit records the minimum and maximum of ages.
func (s *AgeScaler) Fit(ages []float64) error {
	if len(ages) == 0 {
		return errors.NewModelError("AgeScaler.Fit", "empty data", errors.ErrEmptyData)
	}

	lo, hi := ages[0], ages[0]
	for _, a := range ages[1:] {
		lo = math.Min(lo, a)
		hi = math.Max(hi, a)
	}
	s.DataMin, s.DataMax = lo, hi
	s.state.SetFitted(len(ages), 0)
	return nil
}

// Transform scales one age. Values are not clipped, so ages seen during
// Fit land in [0, 1].
func (s *AgeScaler) Transform(age float64) (float64, error) {
	if err := s.state.RequireFitted("AgeScaler", "Transform"); err != nil {
		return 0, err
	}
	if s.DataMax == s.DataMin {
		return 0.5, nil
	}
	return (age - s.DataMin) / (s.DataMax - s.DataMin), nil
}

// TransformClipped scales one age and clips the result to [0, 1], for ages
// outside the fitted range.
func (s *AgeScaler) TransformClipped(age float64) (float64, error) {
	v, err := s.Transform(age)
	if err != nil {
		return 0, err
	}
	return errors.ClipValue(v, 0, 1), nil
}

// FitTransform fits on ages and returns them scaled.
func (s *AgeScaler) FitTransform(ages []float64) ([]float64, error) {
	if err := s.Fit(ages); err != nil {
		return nil, err
	}
	out := make([]float64, len(ages))
	for i, a := range ages {
		out[i], _ = s.Transform(a)
	}
	return out, nil
}

// IsFitted reports whether Fit has been called.
func (s *AgeScaler) IsFitted() bool {
	return s.state.IsFitted()
}

// String returns a short description of the scaler.
func (s *AgeScaler) String() string {
	if !s.IsFitted() {
		return "AgeScaler()"
	}
	return fmt.Sprintf("AgeScaler(min=%.0f, max=%.0f)", s.DataMin, s.DataMax)
}
