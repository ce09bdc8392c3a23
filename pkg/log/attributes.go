package log

// Standard attribute keys. They follow a dotted hierarchy ("model.name",
// "data.samples") so log pipelines can filter on prefixes.

// Model and operation context.
const (
	// ModelNameKey is the estimator type, e.g. "RandomForestClassifier".
	ModelNameKey = "model.name"

	// ModelTypeKey is the requested model kind, e.g. "randomForest", "lstm".
	ModelTypeKey = "model.type"

	// ModelIDKey is the UUID assigned to an installed model.
	ModelIDKey = "model.id"

	// EstimatorIDKey identifies one member of an ensemble, e.g. "tree-3".
	EstimatorIDKey = "estimator.id"

	// OperationKey is the operation being performed; see the Operation* values.
	OperationKey = "ml.operation"

	// ComponentKey is the emitting component, e.g. "predictor.service".
	ComponentKey = "ml.component"

	// PhaseKey is the lifecycle phase; see the Phase* values.
	PhaseKey = "ml.phase"
)

// Data shape.
const (
	SamplesKey      = "data.samples"
	FeaturesKey     = "data.features"
	LabelsKey       = "data.labels"
	TrainSamplesKey = "data.train_samples"
	TestSamplesKey  = "data.test_samples"
	DroppedKey      = "data.dropped"
)

// Performance and metrics.
const (
	DurationMsKey    = "perf.duration_ms"
	AccuracyKey      = "metrics.accuracy"
	TrainAccuracyKey = "metrics.train_accuracy"
	LossKey          = "metrics.loss"
	F1ScoreKey       = "metrics.f1_score"
	IterationKey     = "training.iteration"
	EpochKey         = "training.epoch"
)

// Prediction context.
const (
	PredsKey       = "preds.count"
	ConfidenceKey  = "preds.confidence"
	DataQualityKey = "preds.data_quality"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	ErrorTypeKey  = "error.type"
	StacktraceKey = "error.stacktrace"
)

// Hyperparameters and configuration.
const (
	HyperParamsKey     = "model.hyperparams"
	LearningRateKey    = "hyperparams.learning_rate"
	MaxDepthKey        = "hyperparams.max_depth"
	NumTreesKey        = "hyperparams.num_trees"
	HiddenUnitsKey     = "hyperparams.hidden_units"
	RandomSeedKey      = "config.random_seed"
	ScalingKey         = "config.inference_scaling"
	MetricsModeKey     = "config.metrics_mode"
	FallbackFromKey    = "config.fallback_from"
	FeatureFlagsKey    = "config.feature_engineering"
	HTTPMethodKey      = "http.method"
	HTTPPathKey        = "http.path"
	HTTPStatusKey      = "http.status"
	HTTPRemoteAddrKey  = "http.remote_addr"
	DriftDetectorKey   = "drift.detector"
	DriftStatisticsKey = "drift.statistics"
)

// Standard values.
const (
	OperationFit      = "fit"
	OperationPredict  = "predict"
	OperationScore    = "score"
	OperationEvaluate = "evaluate"

	PhaseTraining      = "training"
	PhaseTesting       = "testing"
	PhaseInference     = "inference"
	PhasePreprocessing = "preprocessing"

	ErrorNotFitted     = "NOT_FITTED"
	ErrorEmptyData     = "EMPTY_DATA"
	ErrorInvalidInput  = "INVALID_INPUT"
	ErrorInvalidConfig = "INVALID_CONFIGURATION"
)
