package predictor

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/YuminosukeSato/nameml/core/model"
	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/preprocessing"
	"github.com/YuminosukeSato/nameml/sklearn/ensemble"
	"github.com/YuminosukeSato/nameml/sklearn/neural_network"
	"github.com/YuminosukeSato/nameml/sklearn/tree"
)

// Classifier is the contract the service needs from an estimator.
type Classifier interface {
	Fit(ctx context.Context, X []preprocessing.FeatureVector, y []string) error
	Predict(fv preprocessing.FeatureVector) ([]model.NamePrediction, error)
	Evaluate(X []preprocessing.FeatureVector, y []string) (float64, error)
	Labels() []string
	Name() string
	GetParams() map[string]interface{}
}

var (
	_ Classifier = (*ensemble.RandomForestClassifier)(nil)
	_ Classifier = (*ensemble.GradientBoostingClassifier)(nil)
	_ Classifier = (*neural_network.MLPClassifier)(nil)
	_ Classifier = (*singleTree)(nil)
)

// Defaults per kind.
const (
	forestTrees    = 20
	forestDepth    = 7
	boostingRounds = 15
	boostingLR     = 0.1
	treeDepth      = 7

	sequenceHidden = 20
	sequenceEpochs = 300
)

// displayNames are reported as PredictionResult.Metadata.ModelUsed.
var displayNames = map[string]string{
	"RandomForestClassifier":     "Random Forest",
	"GradientBoostingClassifier": "Gradient Boosting",
	"MLPClassifier":              "Neural Network",
	"DecisionTreeClassifier":     "Decision Tree",
}

// buildEnv carries what every estimator kind is built with.
type buildEnv struct {
	rng    *rand.Rand
	logger log.Logger
	// history receives the per-iteration loss of iterative estimators.
	history map[string][]float64
	// timeLimit caps iterative training unless the timeLimitMs
	// hyperparameter overrides it. Zero means no cap.
	timeLimit time.Duration
}

// trainingCallbacks returns the callbacks of an iterative estimator whose
// per-iteration loss is reported under lossKey.
func trainingCallbacks(h hyperparams, env buildEnv, lossKey string, logPeriod int) ([]model.Callback, error) {
	cbs := []model.Callback{
		model.LogEvaluation(env.logger, logPeriod),
		model.RecordEvaluation(env.history),
	}
	rounds, err := h.nonNegativeInt(ParamEarlyStoppingRounds, 0)
	if err != nil {
		return nil, err
	}
	if rounds > 0 {
		cbs = append(cbs, model.EarlyStopping(rounds, lossKey, true))
	}
	limitMs, err := h.nonNegativeInt(ParamTimeLimitMs, int(env.timeLimit.Milliseconds()))
	if err != nil {
		return nil, err
	}
	if limitMs > 0 {
		cbs = append(cbs, model.TimeLimit(time.Duration(limitMs)*time.Millisecond))
	}
	return cbs, nil
}

// buildEstimator returns an unfitted estimator for t. fallbackFrom is set
// when t is a sequence model served by the network.
func buildEstimator(t ModelType, h hyperparams, env buildEnv) (est Classifier, fallbackFrom ModelType, err error) {
	rng, logger := env.rng, env.logger
	switch t {
	case ModelRandomForest:
		numTrees, err := h.positiveInt(ParamNumTrees, forestTrees)
		if err != nil {
			return nil, "", err
		}
		maxDepth, err := h.integer(ParamMaxDepth, forestDepth)
		if err != nil {
			return nil, "", err
		}
		return ensemble.NewRandomForestClassifier(
			ensemble.WithNumTrees(numTrees),
			ensemble.WithForestMaxDepth(maxDepth),
			ensemble.WithForestRand(rng),
			ensemble.WithForestLogger(logger),
		), "", nil

	case ModelGradientBoosting:
		rounds, err := h.positiveInt(ParamNumTrees, boostingRounds)
		if err != nil {
			return nil, "", err
		}
		lr, err := h.positiveFloat(ParamLearningRate, boostingLR)
		if err != nil {
			return nil, "", err
		}
		cbs, err := trainingCallbacks(h, env, ensemble.ResidualMSEKey, 5)
		if err != nil {
			return nil, "", err
		}
		return ensemble.NewGradientBoostingClassifier(
			ensemble.WithBoostingRounds(rounds),
			ensemble.WithLearningRate(lr),
			ensemble.WithBoostingRand(rng),
			ensemble.WithBoostingLogger(logger),
			ensemble.WithBoostingCallbacks(cbs...),
		), "", nil

	case ModelDecisionTree:
		maxDepth, err := h.integer(ParamMaxDepth, treeDepth)
		if err != nil {
			return nil, "", err
		}
		return &singleTree{tree.NewDecisionTreeClassifier(tree.WithMaxDepth(maxDepth), tree.WithRand(rng))}, "", nil

	case ModelNeuralNetwork, ModelLSTM, ModelTransformer:
		hidden, epochs := neural_network.DefaultHiddenUnits, neural_network.DefaultEpochs
		if t != ModelNeuralNetwork {
			hidden, epochs = sequenceHidden, sequenceEpochs
			fallbackFrom = t
			logger.Warn("Sequence models are not implemented, training a neural network instead",
				log.FallbackFromKey, string(t),
				log.HiddenUnitsKey, hidden,
				log.EpochKey, epochs,
			)
		}
		if hidden, err = h.positiveInt(ParamNeuronsPerLayer, hidden); err != nil {
			return nil, "", err
		}
		if epochs, err = h.positiveInt(ParamEpochs, epochs); err != nil {
			return nil, "", err
		}
		lr, err := h.positiveFloat(ParamLearningRate, neural_network.DefaultLearningRate)
		if err != nil {
			return nil, "", err
		}
		layers, err := h.integer(ParamHiddenLayers, 1)
		if err != nil {
			return nil, "", err
		}
		if layers > 1 {
			logger.Warn("Only one hidden layer is supported", ParamHiddenLayers, layers)
		}
		cbs, err := trainingCallbacks(h, env, neural_network.CrossEntropyKey, 50)
		if err != nil {
			return nil, "", err
		}
		return neural_network.NewMLPClassifier(
			neural_network.WithHiddenUnits(hidden),
			neural_network.WithEpochs(epochs),
			neural_network.WithLearningRate(lr),
			neural_network.WithRand(rng),
			neural_network.WithLogger(logger),
			neural_network.WithCallbacks(cbs...),
		), fallbackFrom, nil
	}
	_, err = ParseModelType(string(t))
	return nil, "", err
}

// singleTree ranks the label of one decision tree with confidence 1.
type singleTree struct {
	*tree.DecisionTreeClassifier
}

func (s *singleTree) Fit(ctx context.Context, X []preprocessing.FeatureVector, y []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.DecisionTreeClassifier.Fit(X, y)
}

func (s *singleTree) Predict(fv preprocessing.FeatureVector) ([]model.NamePrediction, error) {
	label, err := s.DecisionTreeClassifier.Predict(fv)
	if err != nil {
		return nil, err
	}
	return []model.NamePrediction{{Name: label, Confidence: 1, Rank: 1}}, nil
}

func (s *singleTree) Evaluate(X []preprocessing.FeatureVector, y []string) (float64, error) {
	if !s.IsFitted() {
		return 0, errors.NewNotFittedError("DecisionTreeClassifier", "Evaluate")
	}
	return model.TopOneAccuracy(X, y, s.Predict)
}

func (s *singleTree) Name() string { return "DecisionTreeClassifier" }
