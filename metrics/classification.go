// Package metrics scores name predictions: accuracy, confusion matrices,
// macro-averaged precision/recall/F1 and group fairness spreads.
package metrics

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/nameml/core/model"
	"github.com/YuminosukeSato/nameml/pkg/errors"
)

// Option configures a metric call.
type Option func(*settings)

type settings struct {
	warn func(error)
}

// WithWarnFunc sends UndefinedMetricWarnings to fn instead of errors.Warn.
func WithWarnFunc(fn func(error)) Option {
	return func(s *settings) {
		s.warn = fn
	}
}

func newSettings(opts []Option) settings {
	s := settings{warn: errors.Warn}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Accuracy returns the fraction of positions where yPred equals yTrue.
func Accuracy(yTrue, yPred []string, opts ...Option) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, errors.NewValueError("Accuracy", "yTrue and yPred must have the same length")
	}
	if len(yTrue) == 0 {
		newSettings(opts).warn(errors.NewUndefinedMetricWarning("accuracy", "no samples", 0))
		return 0, nil
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// Labels returns every label of yTrue then yPred in first-seen order.
func Labels(yTrue, yPred []string) []string {
	v := model.NewVocabulary(yTrue)
	for _, l := range yPred {
		v.Add(l)
	}
	return v.Labels()
}

// ConfusionMatrix counts (true, predicted) pairs. Row i is the true label
// labels[i] and column j the predicted label labels[j]; pairs involving a
// label outside labels are skipped.
func ConfusionMatrix(yTrue, yPred, labels []string) (*mat.Dense, error) {
	if len(yTrue) != len(yPred) {
		return nil, errors.NewValueError("ConfusionMatrix", "yTrue and yPred must have the same length")
	}
	if len(labels) == 0 {
		return nil, errors.NewValueError("ConfusionMatrix", "no labels")
	}
	vocab := model.NewVocabulary(labels)
	cm := mat.NewDense(len(labels), len(labels), nil)
	for i := range yTrue {
		r, okR := vocab.Index(yTrue[i])
		c, okC := vocab.Index(yPred[i])
		if !okR || !okC {
			continue
		}
		cm.Set(r, c, cm.At(r, c)+1)
	}
	return cm, nil
}

// IntRows converts a count matrix to nested int slices for JSON output.
func IntRows(m mat.Matrix) [][]int {
	r, c := m.Dims()
	out := make([][]int, r)
	for i := range out {
		out[i] = make([]int, c)
		for j := range out[i] {
			out[i][j] = int(m.At(i, j))
		}
	}
	return out
}

// ClassificationScores are macro averages over a label set.
type ClassificationScores struct {
	Precision float64
	Recall    float64
	F1        float64
}

// MacroScores computes precision, recall and F1 per label from the
// confusion matrix and averages them with equal weight. A label that was
// never predicted (or never true) scores 0 for the undefined ratio, and a
// single UndefinedMetricWarning reports how many labels were affected.
func MacroScores(yTrue, yPred, labels []string, opts ...Option) (ClassificationScores, error) {
	cm, err := ConfusionMatrix(yTrue, yPred, labels)
	if err != nil {
		return ClassificationScores{}, err
	}
	n := len(labels)
	precision := make([]float64, n)
	recall := make([]float64, n)
	f1 := make([]float64, n)
	undefinedP, undefinedR := 0, 0

	for i := 0; i < n; i++ {
		tp := cm.At(i, i)
		predicted := floats.Sum(mat.Col(nil, i, cm))
		actual := floats.Sum(mat.Row(nil, i, cm))

		if predicted > 0 {
			precision[i] = tp / predicted
		} else {
			undefinedP++
		}
		if actual > 0 {
			recall[i] = tp / actual
		} else {
			undefinedR++
		}
		if s := precision[i] + recall[i]; s > 0 {
			f1[i] = 2 * precision[i] * recall[i] / s
		}
	}

	if undefinedP > 0 || undefinedR > 0 {
		newSettings(opts).warn(errors.NewUndefinedMetricWarning("precision/recall",
			fmt.Sprintf("%d labels without predictions, %d labels without true samples", undefinedP, undefinedR), 0))
	}

	return ClassificationScores{
		Precision: floats.Sum(precision) / float64(n),
		Recall:    floats.Sum(recall) / float64(n),
		F1:        floats.Sum(f1) / float64(n),
	}, nil
}
