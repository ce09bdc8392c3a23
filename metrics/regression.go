package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/nameml/pkg/errors"
)

// MSE computes the mean squared error.
func MSE(yTrue, yPred []float64) (float64, error) {
	if err := checkPaired("MSE", len(yTrue), len(yPred)); err != nil {
		return 0, err
	}
	diff := make([]float64, len(yTrue))
	floats.SubTo(diff, yTrue, yPred)
	return floats.Dot(diff, diff) / float64(len(diff)), nil
}

func checkPaired(op string, nTrue, nPred int) error {
	if nTrue == 0 {
		return errors.NewValueError(op, "empty vector")
	}
	if nTrue != nPred {
		return errors.NewValueError(op, "yTrue and yPred must have the same length")
	}
	return nil
}
