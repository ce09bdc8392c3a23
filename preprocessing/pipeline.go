package preprocessing

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
)

// InferenceScaling selects how the age feature is scaled for a single
// record at prediction time.
type InferenceScaling string

const (
	// ScalingFixed divides age by 100. Training uses batch min-max, so the
	// two scales differ; this is the historical behaviour and the default.
	ScalingFixed InferenceScaling = "fixed"

	// ScalingBatch reuses the min and max of the training batch, clipped
	// to [0, 1].
	ScalingBatch InferenceScaling = "batch"
)

// ParseInferenceScaling parses "fixed" or "batch". Empty means fixed.
func ParseInferenceScaling(s string) (InferenceScaling, error) {
	switch InferenceScaling(strings.ToLower(s)) {
	case "", ScalingFixed:
		return ScalingFixed, nil
	case ScalingBatch:
		return ScalingBatch, nil
	}
	return "", errors.NewValidationError("inferenceScaling", "must be fixed or batch", s)
}

// Sample is an encoded, labelled record. The source record is kept so that
// evaluation can group results by demographic attribute.
type Sample struct {
	Features FeatureVector
	Label    string
	Record   DemographicRecord
}

// Split is a train/test partition.
type Split struct {
	Train []Sample
	Test  []Sample
}

// CleanData drops examples missing any demographic field or the name.
// Nothing is imputed.
func CleanData(examples []LabeledExample) []LabeledExample {
	out := make([]LabeledExample, 0, len(examples))
	for _, ex := range examples {
		if ex.Demographic.Complete() && strings.TrimSpace(ex.Name) != "" {
			out = append(out, ex)
		}
	}
	return out
}

// Pipeline is the fitted feature pipeline: it remembers the age range of
// the training batch and the inference scaling mode.
type Pipeline struct {
	Scaling InferenceScaling
	scaler  *AgeScaler
	logger  log.Logger
}

// NewPipeline creates an unfitted pipeline.
func NewPipeline(scaling InferenceScaling) *Pipeline {
	if scaling == "" {
		scaling = ScalingFixed
	}
	return &Pipeline{
		Scaling: scaling,
		scaler:  NewAgeScaler(),
		logger:  log.GetLoggerWithName("preprocessing.pipeline"),
	}
}

// FitTransform cleans, encodes and age-normalizes examples. It returns
// ErrEmptyData when nothing survives cleaning.
func (p *Pipeline) FitTransform(examples []LabeledExample) ([]Sample, error) {
	cleaned := CleanData(examples)
	if dropped := len(examples) - len(cleaned); dropped > 0 {
		p.logger.Debug("Dropped incomplete records",
			log.PhaseKey, log.PhasePreprocessing,
			log.DroppedKey, dropped,
		)
	}
	if len(cleaned) == 0 {
		return nil, errors.NewModelError("Pipeline.FitTransform", "no usable records", errors.ErrEmptyData)
	}

	samples := make([]Sample, len(cleaned))
	ages := make([]float64, len(cleaned))
	for i, ex := range cleaned {
		samples[i] = Sample{
			Features: EngineerFeatures(ex.Demographic),
			Label:    ex.Name,
			Record:   ex.Demographic,
		}
		ages[i] = samples[i].Features[FeatureAge]
	}

	scaled, err := p.scaler.FitTransform(ages)
	if err != nil {
		return nil, err
	}
	for i := range samples {
		samples[i].Features[FeatureAge] = scaled[i]
	}

	p.logger.Debug("Preprocessed records",
		log.PhaseKey, log.PhasePreprocessing,
		log.SamplesKey, len(samples),
		log.FeaturesKey, NumFeatures,
	)
	return samples, nil
}

// Transform encodes a single record for prediction using the configured
// inference scaling.
func (p *Pipeline) Transform(r DemographicRecord) (FeatureVector, error) {
	fv := EngineerFeatures(r)
	switch p.Scaling {
	case ScalingBatch:
		age, err := p.scaler.TransformClipped(float64(r.Age))
		if err != nil {
			return fv, err
		}
		fv[FeatureAge] = age
	default:
		fv[FeatureAge] = float64(r.Age) / 100
	}
	return fv, nil
}

// TransformExamples encodes labelled examples for scoring with the
// inference scaling. Incomplete examples are dropped.
func (p *Pipeline) TransformExamples(examples []LabeledExample) ([]Sample, error) {
	cleaned := CleanData(examples)
	out := make([]Sample, 0, len(cleaned))
	for _, ex := range cleaned {
		fv, err := p.Transform(ex.Demographic)
		if err != nil {
			return nil, err
		}
		out = append(out, Sample{Features: fv, Label: ex.Name, Record: ex.Demographic})
	}
	return out, nil
}

// SplitTrainTest shuffles samples with rng and cuts them at
// floor(n*ratio). Every sample lands in exactly one partition.
func SplitTrainTest(samples []Sample, ratio float64, rng *rand.Rand) (Split, error) {
	if !(ratio > 0 && ratio < 1) {
		return Split{}, errors.NewValidationError("trainTestSplit", "must be in (0, 1)", ratio)
	}

	perm := rng.Perm(len(samples))
	shuffled := make([]Sample, len(samples))
	for i, j := range perm {
		shuffled[i] = samples[j]
	}

	cut := int(math.Floor(float64(len(samples)) * ratio))
	return Split{Train: shuffled[:cut], Test: shuffled[cut:]}, nil
}

// XY unpacks samples into feature vectors and labels.
func XY(samples []Sample) ([]FeatureVector, []string) {
	X := make([]FeatureVector, len(samples))
	y := make([]string, len(samples))
	for i, s := range samples {
		X[i] = s.Features
		y[i] = s.Label
	}
	return X, y
}
