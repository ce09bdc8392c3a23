package tree

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/nameml/core/model"
	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

type regNode struct {
	leaf    bool
	value   float64
	feature int
	left    *regNode
	right   *regNode
}

// RegressionTree fits real-valued targets, typically boosting residuals.
// Unlike DecisionTreeClassifier it may reuse a feature on the same path.
type RegressionTree struct {
	state *model.StateManager

	maxDepth       int
	minSamplesLeaf int
	threshold      float64
	rng            *rand.Rand

	root    *regNode
	nLeaves int
}

// RegressorOption configures a RegressionTree.
type RegressorOption func(*RegressionTree)

// WithRegressorMaxDepth sets the maximum depth.
func WithRegressorMaxDepth(depth int) RegressorOption {
	return func(rt *RegressionTree) {
		rt.maxDepth = depth
	}
}

// WithMinSamplesLeaf makes any partition of at most n samples a leaf.
func WithMinSamplesLeaf(n int) RegressorOption {
	return func(rt *RegressionTree) {
		rt.minSamplesLeaf = n
	}
}

// WithRegressorRand sets the random source used for feature selection.
func WithRegressorRand(rng *rand.Rand) RegressorOption {
	return func(rt *RegressionTree) {
		rt.rng = rng
	}
}

// NewRegressionTree creates a tree with depth 3 and leaves of at most 5
// samples unless overridden.
func NewRegressionTree(opts ...RegressorOption) *RegressionTree {
	rt := &RegressionTree{
		state:          model.NewStateManager(),
		maxDepth:       3,
		minSamplesLeaf: 5,
		threshold:      DefaultThreshold,
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.rng == nil {
		rt.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rt
}

// Fit grows the tree on targets y.
func (rt *RegressionTree) Fit(X []preprocessing.FeatureVector, y []float64) error {
	if len(X) == 0 {
		return errors.NewModelError("RegressionTree.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(X) != len(y) {
		return errors.NewValueError("RegressionTree.Fit",
			"X and y must have the same number of samples")
	}

	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	rt.nLeaves = 0
	rt.root = rt.build(X, y, idx, 0)
	rt.state.SetFitted(len(X), 0)
	return nil
}

func (rt *RegressionTree) build(X []preprocessing.FeatureVector, y []float64, idx []int, depth int) *regNode {
	if depth >= rt.maxDepth || len(idx) <= rt.minSamplesLeaf {
		return rt.leaf(y, idx)
	}

	feature := rt.rng.IntN(preprocessing.NumFeatures)
	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= rt.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return rt.leaf(y, idx)
	}

	return &regNode{
		feature: feature,
		left:    rt.build(X, y, left, depth+1),
		right:   rt.build(X, y, right, depth+1),
	}
}

func (rt *RegressionTree) leaf(y []float64, idx []int) *regNode {
	rt.nLeaves++
	vals := make([]float64, len(idx))
	for k, i := range idx {
		vals[k] = y[i]
	}
	mean := 0.0
	if len(vals) > 0 {
		mean = floats.Sum(vals) / float64(len(vals))
	}
	return &regNode{leaf: true, value: mean}
}

// Predict returns the mean target of the leaf reached by fv.
func (rt *RegressionTree) Predict(fv preprocessing.FeatureVector) (float64, error) {
	if err := rt.state.RequireFitted("RegressionTree", "Predict"); err != nil {
		return 0, err
	}
	n := rt.root
	for !n.leaf {
		if fv[n.feature] <= rt.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value, nil
}

// GetNLeaves returns the number of leaves of the fitted tree.
func (rt *RegressionTree) GetNLeaves() int { return rt.nLeaves }
