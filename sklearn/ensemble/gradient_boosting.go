package ensemble

import (
	"context"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/nameml/core/model"
	"github.com/YuminosukeSato/nameml/metrics"
	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/preprocessing"
	"github.com/YuminosukeSato/nameml/sklearn/tree"
)

// GradientBoostingClassifier boosts shallow regression trees on a single
// real-valued score.
//
// Labels are encoded as integers in first-seen order. Each round fits a
// tree to encoded - sigmoid(score) and adds learningRate times its output
// to the running score. At prediction time the summed score is squashed to
// p in (0, 1), and label i scores 1/(1+|i - p*numLabels|) before the scores
// are normalized to a distribution. This is a one-dimensional
// approximation of multi-class boosting; it does not fit per-class scores.
type GradientBoostingClassifier struct {
	state *model.StateManager

	numTrees       int
	learningRate   float64
	maxDepth       int
	minSamplesLeaf int
	rng            *rand.Rand
	logger         log.Logger
	callbacks      []model.Callback

	trees []*tree.RegressionTree
	vocab *model.Vocabulary
}

// BoostingOption configures a GradientBoostingClassifier.
type BoostingOption func(*GradientBoostingClassifier)

// WithBoostingRounds sets the number of boosting rounds (trees).
func WithBoostingRounds(n int) BoostingOption {
	return func(g *GradientBoostingClassifier) {
		g.numTrees = n
	}
}

// WithLearningRate sets the shrinkage applied to every tree.
func WithLearningRate(lr float64) BoostingOption {
	return func(g *GradientBoostingClassifier) {
		g.learningRate = lr
	}
}

// WithBoostingRand sets the random source for feature selection.
func WithBoostingRand(rng *rand.Rand) BoostingOption {
	return func(g *GradientBoostingClassifier) {
		g.rng = rng
	}
}

// WithBoostingLogger sets the logger.
func WithBoostingLogger(logger log.Logger) BoostingOption {
	return func(g *GradientBoostingClassifier) {
		g.logger = logger
	}
}

// ResidualMSEKey names the per-round residual MSE in callback EvalResults.
const ResidualMSEKey = "residual_mse"

// WithBoostingCallbacks registers callbacks run after every round. They
// receive ResidualMSEKey in EvalResults.
func WithBoostingCallbacks(cbs ...model.Callback) BoostingOption {
	return func(g *GradientBoostingClassifier) {
		g.callbacks = append(g.callbacks, cbs...)
	}
}

// NewGradientBoostingClassifier creates a booster of 10 rounds with
// learning rate 0.1 unless overridden. Trees have depth 3 and leaves of at
// most 5 samples.
func NewGradientBoostingClassifier(opts ...BoostingOption) *GradientBoostingClassifier {
	g := &GradientBoostingClassifier{
		state:          model.NewStateManager(),
		numTrees:       10,
		learningRate:   0.1,
		maxDepth:       3,
		minSamplesLeaf: 5,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if g.logger == nil {
		g.logger = log.GetLoggerWithName("ensemble.gradient_boosting")
	}
	g.logger = g.logger.With(log.ModelNameKey, "GradientBoostingClassifier")
	return g
}

// Fit runs the boosting rounds. The context is checked between rounds and
// a callback may stop training early.
func (g *GradientBoostingClassifier) Fit(ctx context.Context, X []preprocessing.FeatureVector, y []string) error {
	if len(X) == 0 {
		return errors.NewModelError("GradientBoostingClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(X) != len(y) {
		return errors.NewValueError("GradientBoostingClassifier.Fit", "X and y must have the same number of samples")
	}
	if g.numTrees < 1 {
		return errors.NewValidationError("numTrees", "must be at least 1", g.numTrees)
	}
	if !(g.learningRate > 0) {
		return errors.NewValidationError("learningRate", "must be positive", g.learningRate)
	}

	start := time.Now()
	vocab := model.NewVocabulary(y)
	n := len(X)
	encoded := make([]float64, n)
	for i, label := range y {
		idx, _ := vocab.Index(label)
		encoded[i] = float64(idx)
	}

	scores := make([]float64, n)
	fitted := make([]float64, n)
	residuals := make([]float64, n)
	trees := make([]*tree.RegressionTree, 0, g.numTrees)
	cl := model.NewCallbackList("GradientBoostingClassifier", g.callbacks...)

	for round := 0; round < g.numTrees; round++ {
		if err := ctx.Err(); err != nil {
			return errors.Wrapf(err, "gradient boosting stopped after %d rounds", round)
		}
		cl.BeforeIteration(round)

		for i := range residuals {
			fitted[i] = errors.Sigmoid(scores[i])
			residuals[i] = encoded[i] - fitted[i]
		}
		rt := tree.NewRegressionTree(
			tree.WithRegressorMaxDepth(g.maxDepth),
			tree.WithMinSamplesLeaf(g.minSamplesLeaf),
			tree.WithRegressorRand(g.rng),
		)
		if err := rt.Fit(X, residuals); err != nil {
			return errors.Wrapf(err, "round %d", round)
		}
		for i := range scores {
			v, err := rt.Predict(X[i])
			if err != nil {
				return err
			}
			scores[i] += g.learningRate * v
		}
		trees = append(trees, rt)

		mse, err := metrics.MSE(encoded, fitted)
		if err != nil {
			return err
		}
		if err := errors.CheckScalar(ResidualMSEKey, mse, round); err != nil {
			return err
		}
		if err := cl.AfterIteration(round, map[string]float64{ResidualMSEKey: mse}); err != nil {
			return err
		}
		if cl.ShouldStop() {
			g.logger.Info("Boosting stopped by callback",
				log.IterationKey, round,
				log.LossKey, mse,
			)
			break
		}
	}

	g.trees = trees
	g.vocab = vocab
	g.state.SetFitted(n, vocab.Len())
	g.logger.Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, n,
		log.NumTreesKey, len(trees),
		log.LearningRateKey, g.learningRate,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// RawScore returns the summed, shrunk tree outputs for fv.
func (g *GradientBoostingClassifier) RawScore(fv preprocessing.FeatureVector) (float64, error) {
	if err := g.state.RequireFitted("GradientBoostingClassifier", "Predict"); err != nil {
		return 0, err
	}
	raw := 0.0
	for _, rt := range g.trees {
		v, err := rt.Predict(fv)
		if err != nil {
			return 0, err
		}
		raw += g.learningRate * v
	}
	return raw, nil
}

// PredictProba returns a distribution over every training label, in
// vocabulary order. It sums to 1.
func (g *GradientBoostingClassifier) PredictProba(fv preprocessing.FeatureVector) (model.Distribution, error) {
	raw, err := g.RawScore(fv)
	if err != nil {
		return model.Distribution{}, err
	}
	p := errors.Sigmoid(raw)
	numLabels := float64(g.vocab.Len())

	probs := make([]float64, g.vocab.Len())
	for i := range probs {
		probs[i] = 1 / (1 + math.Abs(float64(i)-p*numLabels))
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return model.Distribution{Labels: g.vocab.Labels(), Probs: probs}, nil
}

// Predict returns the top 3 names.
func (g *GradientBoostingClassifier) Predict(fv preprocessing.FeatureVector) ([]model.NamePrediction, error) {
	d, err := g.PredictProba(fv)
	if err != nil {
		return nil, err
	}
	return d.Top(model.TopK), nil
}

// Evaluate returns the top-1 accuracy on X, y.
func (g *GradientBoostingClassifier) Evaluate(X []preprocessing.FeatureVector, y []string) (float64, error) {
	if err := g.state.RequireFitted("GradientBoostingClassifier", "Evaluate"); err != nil {
		return 0, err
	}
	return model.TopOneAccuracy(X, y, g.Predict)
}

// Labels returns the training vocabulary in first-seen order.
func (g *GradientBoostingClassifier) Labels() []string {
	if g.vocab == nil {
		return nil
	}
	return g.vocab.Labels()
}

// NumRounds returns the number of fitted trees, which is below the
// configured count when a callback stopped training early.
func (g *GradientBoostingClassifier) NumRounds() int { return len(g.trees) }

// Name returns the estimator name.
func (g *GradientBoostingClassifier) Name() string { return "GradientBoostingClassifier" }

// GetParams returns the hyperparameters.
func (g *GradientBoostingClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"num_trees":     g.numTrees,
		"learning_rate": g.learningRate,
		"max_depth":     g.maxDepth,
	}
}
