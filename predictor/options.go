package predictor

import (
	"strings"
	"time"

	"github.com/YuminosukeSato/nameml/dataset"
	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

// ModelType names an estimator kind accepted by Train.
type ModelType string

const (
	ModelRandomForest     ModelType = "randomForest"
	ModelGradientBoosting ModelType = "gradientBoosting"
	ModelNeuralNetwork    ModelType = "neuralNetwork"
	ModelDecisionTree     ModelType = "decisionTree"

	// Sequence model names are accepted but trained as a wider, longer
	// running neural network.
	ModelLSTM        ModelType = "lstm"
	ModelTransformer ModelType = "transformer"
)

var modelTypes = []ModelType{
	ModelRandomForest, ModelGradientBoosting, ModelNeuralNetwork, ModelDecisionTree, ModelLSTM, ModelTransformer,
}

// ParseModelType validates a model type name.
func ParseModelType(s string) (ModelType, error) {
	for _, t := range modelTypes {
		if string(t) == s {
			return t, nil
		}
	}
	names := make([]string, len(modelTypes))
	for i, t := range modelTypes {
		names[i] = string(t)
	}
	return "", errors.NewInvalidConfigurationError("modelType", s, "must be one of "+strings.Join(names, ", "))
}

// MetricsMode selects how the quality metrics beyond accuracy are produced.
type MetricsMode string

const (
	// MetricsComputed derives precision, recall, F1, the confusion matrix
	// and bias from the test split.
	MetricsComputed MetricsMode = "computed"

	// MetricsPlaceholder draws them from fixed random ranges and marks
	// the result Synthetic.
	MetricsPlaceholder MetricsMode = "placeholder"
)

// ParseMetricsMode parses "computed" or "placeholder". Empty means computed.
func ParseMetricsMode(s string) (MetricsMode, error) {
	switch MetricsMode(strings.ToLower(s)) {
	case "", MetricsComputed:
		return MetricsComputed, nil
	case MetricsPlaceholder:
		return MetricsPlaceholder, nil
	}
	return "", errors.NewValidationError("metricsMode", "must be computed or placeholder", s)
}

// FeatureEngineering flags are recorded in the training log. Every
// transformation is always applied.
type FeatureEngineering struct {
	OneHotEncoding       bool `json:"oneHotEncoding"`
	AgeBinning           bool `json:"ageBinning"`
	GeographicClustering bool `json:"geographicClustering"`
	CulturalMarkers      bool `json:"culturalMarkers"`
}

// TrainingOptions describes one Train call.
type TrainingOptions struct {
	ModelType          ModelType          `json:"modelType"`
	TrainTestSplit     float64            `json:"trainTestSplit"`
	FeatureEngineering FeatureEngineering `json:"featureEngineering"`
	// Hyperparameters accepts numTrees, maxDepth, learningRate,
	// hiddenLayers, neuronsPerLayer, epochs, earlyStoppingRounds and
	// timeLimitMs as numbers or numeric strings. Keys that do not apply to
	// ModelType are ignored.
	Hyperparameters map[string]any `json:"hyperparameters"`
	// InferenceScaling overrides the service default when set.
	InferenceScaling preprocessing.InferenceScaling `json:"inferenceScaling,omitempty"`
}

// DefaultTrainTestSplit is used when TrainingOptions.TrainTestSplit is 0.
const DefaultTrainTestSplit = 0.8

// DatasetSource supplies the training examples for a model type.
type DatasetSource func(ModelType) []preprocessing.LabeledExample

// DefaultDatasetSource trains forests on the extended dataset and every
// other kind on the base sample.
func DefaultDatasetSource(t ModelType) []preprocessing.LabeledExample {
	if t == ModelRandomForest {
		return dataset.Extended()
	}
	return dataset.Sample()
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(logger log.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithSeed makes training and placeholder metrics reproducible. 0 seeds
// from the runtime source.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithDatasetSource replaces the built-in datasets.
func WithDatasetSource(src DatasetSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithInferenceScaling sets the default age scaling for predictions.
func WithInferenceScaling(scaling preprocessing.InferenceScaling) Option {
	return func(s *Service) {
		s.scaling = scaling
	}
}

// WithMetricsMode sets how training metrics are produced.
func WithMetricsMode(mode MetricsMode) Option {
	return func(s *Service) {
		s.metricsMode = mode
	}
}

// WithClock sets the time source for timings and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithTrainTimeLimit caps the iterations of boosting and network training.
// Training stops gracefully once d has passed and keeps the model trained so
// far. The timeLimitMs hyperparameter overrides it per call. Zero disables
// the cap.
func WithTrainTimeLimit(d time.Duration) Option {
	return func(s *Service) {
		s.timeLimit = d
	}
}

// WithParallelThreshold sets the test-set size from which predictions are
// scored concurrently.
func WithParallelThreshold(n int) Option {
	return func(s *Service) {
		s.parallelThreshold = n
	}
}
