// Package ensemble implements the bagged and boosted name classifiers.
package ensemble

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/YuminosukeSato/nameml/core/model"
	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/preprocessing"
	"github.com/YuminosukeSato/nameml/sklearn/tree"
)

// RandomForestClassifier is a bag of randomized decision trees. Each tree
// is grown on a bootstrap sample and casts one vote per prediction.
type RandomForestClassifier struct {
	state *model.StateManager

	numTrees int
	maxDepth int
	rng      *rand.Rand
	logger   log.Logger

	trees []*tree.DecisionTreeClassifier
	vocab *model.Vocabulary
}

// ForestOption configures a RandomForestClassifier.
type ForestOption func(*RandomForestClassifier)

// WithNumTrees sets the number of trees.
func WithNumTrees(n int) ForestOption {
	return func(f *RandomForestClassifier) {
		f.numTrees = n
	}
}

// WithForestMaxDepth sets the maximum depth of every tree.
func WithForestMaxDepth(depth int) ForestOption {
	return func(f *RandomForestClassifier) {
		f.maxDepth = depth
	}
}

// WithForestRand sets the random source for bootstrap sampling and feature
// selection.
func WithForestRand(rng *rand.Rand) ForestOption {
	return func(f *RandomForestClassifier) {
		f.rng = rng
	}
}

// WithForestLogger sets the logger.
func WithForestLogger(logger log.Logger) ForestOption {
	return func(f *RandomForestClassifier) {
		f.logger = logger
	}
}

// NewRandomForestClassifier creates a forest of 10 trees of depth 5 unless
// overridden.
func NewRandomForestClassifier(opts ...ForestOption) *RandomForestClassifier {
	f := &RandomForestClassifier{
		state:    model.NewStateManager(),
		numTrees: 10,
		maxDepth: 5,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.rng == nil {
		f.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if f.logger == nil {
		f.logger = log.GetLoggerWithName("ensemble.random_forest")
	}
	f.logger = f.logger.With(log.ModelNameKey, "RandomForestClassifier")
	return f
}

// Fit grows numTrees trees, each on n draws with replacement from X. The
// context is checked between trees.
func (f *RandomForestClassifier) Fit(ctx context.Context, X []preprocessing.FeatureVector, y []string) error {
	if len(X) == 0 {
		return errors.NewModelError("RandomForestClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(X) != len(y) {
		return errors.NewValueError("RandomForestClassifier.Fit", "X and y must have the same number of samples")
	}
	if f.numTrees < 1 {
		return errors.NewValidationError("numTrees", "must be at least 1", f.numTrees)
	}

	start := time.Now()
	f.logger.Debug("Training started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(X),
		log.NumTreesKey, f.numTrees,
		log.MaxDepthKey, f.maxDepth,
	)

	n := len(X)
	trees := make([]*tree.DecisionTreeClassifier, 0, f.numTrees)
	bx := make([]preprocessing.FeatureVector, n)
	by := make([]string, n)
	for t := 0; t < f.numTrees; t++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "random forest training stopped after %d trees", t)
		}
		for i := 0; i < n; i++ {
			j := f.rng.IntN(n)
			bx[i], by[i] = X[j], y[j]
		}
		dt := tree.NewDecisionTreeClassifier(tree.WithMaxDepth(f.maxDepth), tree.WithRand(f.rng))
		if err := dt.Fit(bx, by); err != nil {
			return errors.Wrapf(err, "tree %d", t)
		}
		trees = append(trees, dt)
		f.logger.Debug("Tree fitted",
			log.EstimatorIDKey, fmt.Sprintf("tree-%d", t),
			"depth", dt.GetDepth(),
			"leaves", dt.GetNLeaves(),
		)
	}

	f.trees = trees
	f.vocab = model.NewVocabulary(y)
	f.state.SetFitted(n, f.vocab.Len())
	f.logger.Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Votes returns the vote share of every label that received at least one
// vote, in order of first vote.
func (f *RandomForestClassifier) Votes(fv preprocessing.FeatureVector) (model.Distribution, error) {
	if err := f.state.RequireFitted("RandomForestClassifier", "Predict"); err != nil {
		return model.Distribution{}, err
	}
	order := model.NewVocabulary(nil)
	var counts []float64
	for _, dt := range f.trees {
		label, err := dt.Predict(fv)
		if err != nil {
			return model.Distribution{}, err
		}
		i := order.Add(label)
		if i == len(counts) {
			counts = append(counts, 0)
		}
		counts[i]++
	}
	for i := range counts {
		counts[i] /= float64(len(f.trees))
	}
	return model.Distribution{Labels: order.Labels(), Probs: counts}, nil
}

// Predict returns the top 3 names by vote share.
func (f *RandomForestClassifier) Predict(fv preprocessing.FeatureVector) ([]model.NamePrediction, error) {
	d, err := f.Votes(fv)
	if err != nil {
		return nil, err
	}
	return d.Top(model.TopK), nil
}

// Evaluate returns the top-1 accuracy on X, y.
func (f *RandomForestClassifier) Evaluate(X []preprocessing.FeatureVector, y []string) (float64, error) {
	if err := f.state.RequireFitted("RandomForestClassifier", "Evaluate"); err != nil {
		return 0, err
	}
	return model.TopOneAccuracy(X, y, f.Predict)
}

// Labels returns the training vocabulary in first-seen order.
func (f *RandomForestClassifier) Labels() []string {
	if f.vocab == nil {
		return nil
	}
	return f.vocab.Labels()
}

// Name returns the estimator name.
func (f *RandomForestClassifier) Name() string { return "RandomForestClassifier" }

// GetParams returns the hyperparameters.
func (f *RandomForestClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"num_trees": f.numTrees,
		"max_depth": f.maxDepth,
	}
}
