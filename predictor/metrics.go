package predictor

import (
	"context"
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/nameml/core/parallel"
	"github.com/YuminosukeSato/nameml/metrics"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

// ModelMetrics reports how the freshly trained model scored on the test
// split.
type ModelMetrics struct {
	ModelID      string    `json:"modelId"`
	ModelType    ModelType `json:"modelType"`
	Estimator    string    `json:"estimator"`
	FallbackFrom ModelType `json:"fallbackFrom,omitempty"`

	Accuracy        float64             `json:"accuracy"`
	Precision       float64             `json:"precision"`
	Recall          float64             `json:"recall"`
	F1Score         float64             `json:"f1Score"`
	ConfusionMatrix [][]int             `json:"confusionMatrix"`
	ConfusionLabels []string            `json:"confusionLabels,omitempty"`
	BiasMetrics     metrics.BiasMetrics `json:"biasMetrics"`
	// Synthetic is set when everything except Accuracy was drawn from
	// placeholder ranges.
	Synthetic bool `json:"synthetic"`

	// TrainAccuracy is the rank-1 accuracy on the training records,
	// encoded the way Predict encodes them.
	TrainAccuracy float64 `json:"trainAccuracy"`
	// LossHistory holds the per-iteration training loss of boosting and
	// network models, keyed by loss name.
	LossHistory map[string][]float64 `json:"lossHistory,omitempty"`

	TrainSize      int     `json:"trainSize"`
	TestSize       int     `json:"testSize"`
	TrainingTimeMs float64 `json:"trainingTimeMs"`
}

// predictTopNames returns the rank-1 name for every sample.
func (s *Service) predictTopNames(ctx context.Context, est Classifier, samples []preprocessing.Sample) ([]string, error) {
	names := make([]string, len(samples))
	err := parallel.ParallelizeWithThreshold(ctx, len(samples), s.parallelThreshold, func(ctx context.Context, start, end int) error {
		for i := start; i < end; i++ {
			preds, err := est.Predict(samples[i].Features)
			if err != nil {
				return err
			}
			if len(preds) > 0 {
				names[i] = preds[0].Name
			}
		}
		return nil
	})
	return names, err
}

// trainAccuracy re-encodes the training records with the inference scaling
// and returns the fraction whose rank-1 name is their own label.
func (s *Service) trainAccuracy(ctx context.Context, est Classifier, pipeline *preprocessing.Pipeline, train []preprocessing.Sample) (float64, error) {
	encoded := make([]preprocessing.Sample, len(train))
	yTrue := make([]string, len(train))
	for i, smp := range train {
		fv, err := pipeline.Transform(smp.Record)
		if err != nil {
			return 0, err
		}
		encoded[i] = preprocessing.Sample{Features: fv, Label: smp.Label, Record: smp.Record}
		yTrue[i] = smp.Label
	}
	yPred, err := s.predictTopNames(ctx, est, encoded)
	if err != nil {
		return 0, err
	}
	return metrics.Accuracy(yTrue, yPred, s.metricOpts()...)
}

func (s *Service) metricOpts() []metrics.Option {
	return []metrics.Option{metrics.WithWarnFunc(log.WarnTo(s.logger))}
}

// scoreTestSet fills the quality fields of m from the test split.
func (s *Service) scoreTestSet(ctx context.Context, est Classifier, test []preprocessing.Sample, m *ModelMetrics) error {
	yPred, err := s.predictTopNames(ctx, est, test)
	if err != nil {
		return err
	}
	yTrue := make([]string, len(test))
	records := make([]preprocessing.DemographicRecord, len(test))
	correct := make([]bool, len(test))
	for i, smp := range test {
		yTrue[i] = smp.Label
		records[i] = smp.Record
		correct[i] = yPred[i] == smp.Label
	}

	if m.Accuracy, err = metrics.Accuracy(yTrue, yPred, s.metricOpts()...); err != nil {
		return err
	}

	if s.metricsMode == MetricsPlaceholder {
		s.withRand(func(rng *rand.Rand) { placeholderScores(rng, m) })
		return nil
	}

	if len(test) == 0 {
		m.ConfusionMatrix = [][]int{}
		return nil
	}
	labels := metrics.Labels(yTrue, yPred)
	scores, err := metrics.MacroScores(yTrue, yPred, labels, s.metricOpts()...)
	if err != nil {
		return err
	}
	cm, err := metrics.ConfusionMatrix(yTrue, yPred, labels)
	if err != nil {
		return err
	}
	bias, err := metrics.ComputeBias(records, correct)
	if err != nil {
		return err
	}
	m.Precision, m.Recall, m.F1Score = scores.Precision, scores.Recall, scores.F1
	m.ConfusionMatrix = metrics.IntRows(cm)
	m.ConfusionLabels = labels
	m.BiasMetrics = bias
	return nil
}

// placeholderScores draws the quality metrics from fixed ranges, for
// clients that expect the legacy response shape.
func placeholderScores(rng *rand.Rand, m *ModelMetrics) {
	m.Precision = 0.75 + rng.Float64()*0.2
	m.Recall = 0.7 + rng.Float64()*0.25
	m.F1Score = 0.72 + rng.Float64()*0.23
	m.ConfusionMatrix = [][]int{
		{int(math.Floor(rng.Float64() * 50)), int(math.Floor(rng.Float64() * 10))},
		{int(math.Floor(rng.Float64() * 15)), int(math.Floor(rng.Float64() * 45))},
	}
	m.ConfusionLabels = nil
	m.BiasMetrics = metrics.BiasMetrics{
		GenderBias:    rng.Float64() * 0.3,
		AgeBias:       rng.Float64() * 0.25,
		LocationBias:  rng.Float64() * 0.2,
		EducationBias: rng.Float64() * 0.15,
		EthnicityBias: rng.Float64() * 0.35,
	}
	m.Synthetic = true
}

// aggregateConfidence weights the top three confidences 3:2:1 over 6.
func aggregateConfidence(names []NamePrediction) float64 {
	total := 0.0
	for i, p := range names {
		if i >= 3 {
			break
		}
		total += p.Confidence * float64(3-i) / 6
	}
	return total
}

// dataQuality scores how much of the record the encoder understood.
func (s *Service) dataQuality(r preprocessing.DemographicRecord) float64 {
	if s.metricsMode == MetricsPlaceholder {
		var q float64
		s.withRand(func(rng *rand.Rand) { q = 0.7 + rng.Float64()*0.3 })
		return q
	}
	return 0.7 + 0.3*float64(r.KnownFields())/5
}
