package model

import (
	"sort"

	"github.com/YuminosukeSato/nameml/pkg/errors"
)

// TopK is the number of ranked names returned by every estimator.
const TopK = 3

// NamePrediction is one ranked candidate name.
type NamePrediction struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Rank       int     `json:"rank"`
}

// Rank orders names by descending confidence and returns at most k ranked
// predictions. Ties keep the order in which names appear in the input, so
// callers control tie-breaking by passing names in first-seen order.
func Rank(names []string, confidences []float64, k int) []NamePrediction {
	n := len(names)
	if len(confidences) < n {
		n = len(confidences)
	}
	preds := make([]NamePrediction, n)
	for i := 0; i < n; i++ {
		preds[i] = NamePrediction{Name: names[i], Confidence: confidences[i]}
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Confidence > preds[j].Confidence
	})
	if k >= 0 && len(preds) > k {
		preds = preds[:k]
	}
	for i := range preds {
		preds[i].Rank = i + 1
	}
	return preds
}

// Distribution is a full probability distribution over a vocabulary, in
// vocabulary order.
type Distribution struct {
	Labels []string
	Probs  []float64
}

// Top returns the k most probable labels as ranked predictions.
func (d Distribution) Top(k int) []NamePrediction {
	return Rank(d.Labels, d.Probs, k)
}

// TopOneAccuracy returns the fraction of X whose rank-1 prediction equals
// the matching label in y. An empty X scores 0 and raises an
// UndefinedMetricWarning.
func TopOneAccuracy[F any](X []F, y []string, predict func(F) ([]NamePrediction, error)) (float64, error) {
	if len(X) != len(y) {
		return 0, errors.NewValueError("TopOneAccuracy", "X and y must have the same number of samples")
	}
	if len(X) == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("accuracy", "empty evaluation set", 0))
		return 0, nil
	}
	correct := 0
	for i, x := range X {
		preds, err := predict(x)
		if err != nil {
			return 0, err
		}
		if len(preds) > 0 && preds[0].Name == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X)), nil
}
