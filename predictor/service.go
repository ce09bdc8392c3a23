// Package predictor is the training and prediction service. It owns at
// most one trained model at a time and exposes Train, Predict, Evaluate and
// dataset statistics to the HTTP and CLI front ends.
package predictor

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/nameml/core/model"
	"github.com/YuminosukeSato/nameml/dataset"
	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/preprocessing"
	"github.com/YuminosukeSato/nameml/sklearn/drift"
)

// NamePrediction is one ranked candidate name.
type NamePrediction = model.NamePrediction

// PredictionMetadata describes how a prediction was produced.
type PredictionMetadata struct {
	ProcessingTimeMs float64 `json:"processingTime"`
	ModelUsed        string  `json:"modelUsed"`
	ModelID          string  `json:"modelId"`
	Confidence       float64 `json:"confidence"`
	DataQuality      float64 `json:"dataQuality"`
}

// PredictionResult is the answer to one Predict call.
type PredictionResult struct {
	Names    []NamePrediction   `json:"names"`
	Metadata PredictionMetadata `json:"metadata"`
}

// ModelInfo describes the installed model.
type ModelInfo struct {
	ModelID   string                 `json:"modelId"`
	ModelType ModelType              `json:"modelType"`
	Estimator string                 `json:"estimator"`
	Params    map[string]interface{} `json:"params"`
	Labels    []string               `json:"labels"`
	TrainedAt time.Time              `json:"trainedAt"`
	Metrics   ModelMetrics           `json:"metrics"`
}

type installedModel struct {
	id        string
	modelType ModelType
	estimator Classifier
	pipeline  *preprocessing.Pipeline
	metrics   ModelMetrics
	trainedAt time.Time
}

// Service trains and serves name models. It is safe for concurrent use:
// Train calls are serialized and Predict always sees either the previous
// or the new model, never a partially trained one.
type Service struct {
	mu      sync.RWMutex
	current *installedModel

	trainMu sync.Mutex

	rngMu sync.Mutex
	rng   *rand.Rand
	seed  uint64

	logger            log.Logger
	source            DatasetSource
	scaling           preprocessing.InferenceScaling
	metricsMode       MetricsMode
	now               func() time.Time
	monitor           *drift.Monitor
	parallelThreshold int
	timeLimit         time.Duration
}

// New creates a Service with no model installed.
func New(opts ...Option) *Service {
	s := &Service{
		source:            DefaultDatasetSource,
		scaling:           preprocessing.ScalingFixed,
		metricsMode:       MetricsComputed,
		now:               time.Now,
		parallelThreshold: 64,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("predictor")
	}
	if s.seed != 0 {
		s.rng = rand.New(rand.NewPCG(s.seed, s.seed^0x9e3779b97f4a7c15))
	} else {
		s.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s.monitor = drift.NewMonitor(
		drift.WithMonitorLogger(s.logger),
		drift.WithMonitorClock(s.now),
	)
	return s
}

func (s *Service) withRand(fn func(rng *rand.Rand)) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	fn(s.rng)
}

// childRand derives an independent source for one training run so that the
// run does not hold the shared lock.
func (s *Service) childRand() *rand.Rand {
	var a, b uint64
	s.withRand(func(rng *rand.Rand) { a, b = rng.Uint64(), rng.Uint64() })
	return rand.New(rand.NewPCG(a, b))
}

// Train fits a new model and installs it. On error the previous model, if
// any, stays installed. A panic inside an estimator is returned as a
// PanicError.
func (s *Service) Train(ctx context.Context, opts TrainingOptions) (*ModelMetrics, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	var m *ModelMetrics
	err := errors.SafeExecute("predictor.Train", func() error {
		var err error
		m, err = s.train(ctx, opts)
		return err
	})
	if err != nil {
		s.logger.Error("Training failed", log.ErrAttrKey, err, log.ModelTypeKey, string(opts.ModelType))
		return nil, err
	}
	return m, nil
}

func (s *Service) train(ctx context.Context, opts TrainingOptions) (*ModelMetrics, error) {
	start := s.now()

	modelType, err := ParseModelType(string(opts.ModelType))
	if err != nil {
		return nil, err
	}
	ratio := opts.TrainTestSplit
	if ratio == 0 {
		ratio = DefaultTrainTestSplit
	}
	if !(ratio > 0 && ratio < 1) {
		return nil, errors.NewValidationError("trainTestSplit", "must be in (0, 1)", opts.TrainTestSplit)
	}
	scaling := s.scaling
	if opts.InferenceScaling != "" {
		if scaling, err = preprocessing.ParseInferenceScaling(string(opts.InferenceScaling)); err != nil {
			return nil, err
		}
	}

	logger := s.logger.With(log.ModelTypeKey, string(modelType))
	logger.Info("Training started",
		log.OperationKey, log.OperationFit,
		log.FeatureFlagsKey, opts.FeatureEngineering,
		log.HyperParamsKey, opts.Hyperparameters,
		log.ScalingKey, string(scaling),
	)

	pipeline := preprocessing.NewPipeline(scaling)
	samples, err := pipeline.FitTransform(s.source(modelType))
	if err != nil {
		return nil, err
	}
	rng := s.childRand()
	split, err := preprocessing.SplitTrainTest(samples, ratio, rng)
	if err != nil {
		return nil, err
	}
	if len(split.Train) == 0 {
		return nil, errors.NewModelError("predictor.Train", "empty training split", errors.ErrInsufficientData)
	}

	history := make(map[string][]float64)
	est, fallbackFrom, err := buildEstimator(modelType, hyperparams(opts.Hyperparameters), buildEnv{
		rng:       rng,
		logger:    logger,
		history:   history,
		timeLimit: s.timeLimit,
	})
	if err != nil {
		return nil, err
	}
	X, y := preprocessing.XY(split.Train)
	if err := est.Fit(ctx, X, y); err != nil {
		return nil, err
	}
	if len(history) == 0 {
		history = nil
	}

	m := ModelMetrics{
		ModelID:      uuid.NewString(),
		ModelType:    modelType,
		Estimator:    est.Name(),
		FallbackFrom: fallbackFrom,
		TrainSize:    len(split.Train),
		TestSize:     len(split.Test),
		LossHistory:  history,
	}
	if m.TrainAccuracy, err = s.trainAccuracy(ctx, est, pipeline, split.Train); err != nil {
		return nil, err
	}
	if err := s.scoreTestSet(ctx, est, split.Test, &m); err != nil {
		return nil, err
	}
	trainedAt := s.now()
	m.TrainingTimeMs = millis(trainedAt.Sub(start))

	s.mu.Lock()
	s.current = &installedModel{
		id:        m.ModelID,
		modelType: modelType,
		estimator: est,
		pipeline:  pipeline,
		metrics:   m,
		trainedAt: trainedAt,
	}
	s.mu.Unlock()
	s.monitor.Reset()

	logger.Info("Model installed",
		log.ModelIDKey, m.ModelID,
		log.AccuracyKey, m.Accuracy,
		log.TrainAccuracyKey, m.TrainAccuracy,
		log.F1ScoreKey, m.F1Score,
		log.TrainSamplesKey, m.TrainSize,
		log.TestSamplesKey, m.TestSize,
		log.DurationMsKey, m.TrainingTimeMs,
	)
	out := m
	return &out, nil
}

func (s *Service) installed() *installedModel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Predict ranks up to three names for record with the installed model.
func (s *Service) Predict(ctx context.Context, record preprocessing.DemographicRecord) (*PredictionResult, error) {
	start := s.now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cur := s.installed()
	if cur == nil {
		return nil, errors.NewNotFittedError("Service", "Predict")
	}
	if err := record.Validate(); err != nil {
		s.logger.Debug("Record outside known vocabularies", log.ErrAttrKey, err)
	}

	fv, err := cur.pipeline.Transform(record)
	if err != nil {
		return nil, err
	}
	names, err := cur.estimator.Predict(fv)
	if err != nil {
		return nil, err
	}

	confidence := aggregateConfidence(names)
	s.monitor.ObserveConfidence(confidence)

	return &PredictionResult{
		Names: names,
		Metadata: PredictionMetadata{
			ProcessingTimeMs: millis(s.now().Sub(start)),
			ModelUsed:        displayNames[cur.estimator.Name()],
			ModelID:          cur.id,
			Confidence:       confidence,
			DataQuality:      s.dataQuality(record),
		},
	}, nil
}

// Evaluate returns the top-1 accuracy of the installed model on examples,
// encoded with the model's inference scaling. Incomplete examples are
// dropped first.
func (s *Service) Evaluate(ctx context.Context, examples []preprocessing.LabeledExample) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cur := s.installed()
	if cur == nil {
		return 0, errors.NewNotFittedError("Service", "Evaluate")
	}
	samples, err := cur.pipeline.TransformExamples(examples)
	if err != nil {
		return 0, err
	}
	if len(samples) == 0 {
		return 0, errors.NewModelError("predictor.Evaluate", "no usable records", errors.ErrEmptyData)
	}
	X, y := preprocessing.XY(samples)
	acc, err := cur.estimator.Evaluate(X, y)
	if err != nil {
		return 0, err
	}
	s.logger.Debug("Evaluated",
		log.OperationKey, log.OperationEvaluate,
		log.SamplesKey, len(samples),
		log.AccuracyKey, acc,
	)
	return acc, nil
}

// DatasetStats summarizes the dataset the forest trains on.
func (s *Service) DatasetStats() dataset.Stats {
	return dataset.ComputeStats(s.source(ModelRandomForest))
}

// RecordFeedback reports whether a served prediction turned out right.
// Drift in the error rate raises a ModelDriftWarning.
func (s *Service) RecordFeedback(predicted, actual string) (drift.Status, error) {
	if s.installed() == nil {
		return drift.Status{}, errors.NewNotFittedError("Service", "RecordFeedback")
	}
	return s.monitor.RecordOutcome(predicted, actual), nil
}

// Model returns the installed model, if any.
func (s *Service) Model() (ModelInfo, bool) {
	cur := s.installed()
	if cur == nil {
		return ModelInfo{}, false
	}
	return ModelInfo{
		ModelID:   cur.id,
		ModelType: cur.modelType,
		Estimator: cur.estimator.Name(),
		Params:    cur.estimator.GetParams(),
		Labels:    cur.estimator.Labels(),
		TrainedAt: cur.trainedAt,
		Metrics:   cur.metrics,
	}, true
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
