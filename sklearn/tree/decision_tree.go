// Package tree implements the randomized binary trees used by the
// ensembles: a classification tree over name labels and a shallow
// regression tree fitted to boosting residuals.
//
// Both trees pick the split feature uniformly at random and split every
// feature at a fixed threshold of 0.5, which separates the one-hot flags
// and halves the normalized age range. No impurity criterion is evaluated.
package tree

import (
	"math/rand/v2"

	"github.com/YuminosukeSato/nameml/core/model"
	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

// DefaultThreshold is the split threshold. Values <= threshold go left.
const DefaultThreshold = 0.5

// UnknownLabel is predicted by leaves grown from an empty partition.
const UnknownLabel = "unknown"

type classNode struct {
	leaf    bool
	label   string
	feature int
	left    *classNode
	right   *classNode
}

// DecisionTreeClassifier predicts a single name for a feature vector.
type DecisionTreeClassifier struct {
	state *model.StateManager

	maxDepth       int
	threshold      float64
	parentFallback bool
	rng            *rand.Rand

	root    *classNode
	depth   int
	nLeaves int
	labels  []string
}

// Option configures a DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// WithMaxDepth sets the maximum depth. A depth of 0 yields a single leaf.
func WithMaxDepth(depth int) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.maxDepth = depth
	}
}

// WithRand sets the random source used for feature selection.
func WithRand(rng *rand.Rand) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.rng = rng
	}
}

// WithRandomState seeds a private random source.
func WithRandomState(seed uint64) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.rng = rand.New(rand.NewPCG(seed, seed))
	}
}

// WithThreshold overrides the split threshold.
func WithThreshold(threshold float64) Option {
	return func(dt *DecisionTreeClassifier) {
		dt.threshold = threshold
	}
}

// WithParentMajorityFallback labels empty partitions with the parent's
// majority label instead of UnknownLabel.
func WithParentMajorityFallback() Option {
	return func(dt *DecisionTreeClassifier) {
		dt.parentFallback = true
	}
}

// NewDecisionTreeClassifier creates a tree with max depth 7 unless
// overridden.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		state:     model.NewStateManager(),
		maxDepth:  7,
		threshold: DefaultThreshold,
	}
	for _, opt := range opts {
		opt(dt)
	}
	if dt.rng == nil {
		dt.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return dt
}

// Fit grows the tree. Each path consumes the features it splits on, so a
// feature is used at most once between the root and any leaf.
func (dt *DecisionTreeClassifier) Fit(X []preprocessing.FeatureVector, y []string) error {
	if len(X) == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(X) != len(y) {
		return errors.NewValueError("DecisionTreeClassifier.Fit",
			"X and y must have the same number of samples")
	}
	if dt.maxDepth < 0 {
		return errors.NewValidationError("maxDepth", "must be non-negative", dt.maxDepth)
	}

	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	features := make([]int, preprocessing.NumFeatures)
	for i := range features {
		features[i] = i
	}

	dt.depth, dt.nLeaves = 0, 0
	dt.root = dt.build(X, y, idx, features, 0, majority(y, idx))
	dt.labels = model.NewVocabulary(y).Labels()
	dt.state.SetFitted(len(X), len(dt.labels))
	return nil
}

func (dt *DecisionTreeClassifier) build(X []preprocessing.FeatureVector, y []string, idx, features []int, depth int, parentLabel string) *classNode {
	if depth > dt.depth {
		dt.depth = depth
	}
	if len(idx) == 0 {
		if dt.parentFallback {
			return dt.leaf(parentLabel)
		}
		return dt.leaf(UnknownLabel)
	}
	label := majority(y, idx)
	if depth >= dt.maxDepth || len(features) == 0 || pure(y, idx) {
		return dt.leaf(label)
	}

	pick := dt.rng.IntN(len(features))
	feature := features[pick]
	remaining := make([]int, 0, len(features)-1)
	remaining = append(remaining, features[:pick]...)
	remaining = append(remaining, features[pick+1:]...)

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= dt.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &classNode{
		feature: feature,
		left:    dt.build(X, y, left, remaining, depth+1, label),
		right:   dt.build(X, y, right, remaining, depth+1, label),
	}
}

func (dt *DecisionTreeClassifier) leaf(label string) *classNode {
	dt.nLeaves++
	return &classNode{leaf: true, label: label}
}

// Predict walks the tree and returns the leaf label. Inputs routed into a
// partition that held no training samples get UnknownLabel unless
// WithParentMajorityFallback is set.
func (dt *DecisionTreeClassifier) Predict(fv preprocessing.FeatureVector) (string, error) {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", "Predict"); err != nil {
		return "", err
	}
	n := dt.root
	for !n.leaf {
		if fv[n.feature] <= dt.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.label, nil
}

// GetDepth returns the depth of the fitted tree.
func (dt *DecisionTreeClassifier) GetDepth() int { return dt.depth }

// GetNLeaves returns the number of leaves of the fitted tree.
func (dt *DecisionTreeClassifier) GetNLeaves() int { return dt.nLeaves }

// Labels returns the training labels in first-seen order.
func (dt *DecisionTreeClassifier) Labels() []string {
	return append([]string(nil), dt.labels...)
}

// IsFitted reports whether Fit has completed.
func (dt *DecisionTreeClassifier) IsFitted() bool { return dt.state.IsFitted() }

// GetParams returns the hyperparameters.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":       dt.maxDepth,
		"threshold":       dt.threshold,
		"parent_fallback": dt.parentFallback,
	}
}

// majority returns the most frequent label among idx. Ties go to the label
// seen first.
func majority(y []string, idx []int) string {
	counts := make(map[string]int)
	best, bestCount := "", 0
	for _, i := range idx {
		counts[y[i]]++
	}
	for _, i := range idx {
		if c := counts[y[i]]; c > bestCount {
			best, bestCount = y[i], c
		}
	}
	return best
}

func pure(y []string, idx []int) bool {
	for _, i := range idx[1:] {
		if y[i] != y[idx[0]] {
			return false
		}
	}
	return true
}
