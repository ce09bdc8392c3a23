package ensemble

import (
	"context"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/YuminosukeSato/nameml/core/model"
	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

func encode(t *testing.T, examples []preprocessing.LabeledExample) ([]preprocessing.FeatureVector, []string) {
	t.Helper()
	samples, err := preprocessing.NewPipeline(preprocessing.ScalingFixed).FitTransform(examples)
	require.NoError(t, err)
	return preprocessing.XY(samples)
}

func ex(age int, g preprocessing.Gender, loc string, edu preprocessing.EducationLevel, eth, name string) preprocessing.LabeledExample {
	return preprocessing.LabeledExample{
		Demographic: preprocessing.DemographicRecord{Age: age, Gender: g, Location: loc, EducationLevel: edu, Ethnicity: eth},
		Name:        name,
	}
}

// dominantData is 90% one demographic labelled Alex.
func dominantData() []preprocessing.LabeledExample {
	var data []preprocessing.LabeledExample
	for i := 0; i < 18; i++ {
		data = append(data, ex(30, preprocessing.GenderMale, preprocessing.RegionWest, preprocessing.EducationBachelors, preprocessing.EthnicityAsian, "Alex"))
	}
	data = append(data,
		ex(70, preprocessing.GenderFemale, preprocessing.RegionSouth, preprocessing.EducationHighSchool, preprocessing.EthnicityWhite, "Betty"),
		ex(45, preprocessing.GenderNonBinary, preprocessing.RegionNortheast, preprocessing.EducationDoctorate, preprocessing.EthnicityBlack, "Jordan"),
	)
	return data
}

func mixedData() []preprocessing.LabeledExample {
	return []preprocessing.LabeledExample{
		ex(25, preprocessing.GenderMale, preprocessing.RegionNortheast, preprocessing.EducationBachelors, preprocessing.EthnicityWhite, "Michael"),
		ex(32, preprocessing.GenderFemale, preprocessing.RegionMidwest, preprocessing.EducationMasters, preprocessing.EthnicityBlack, "Michelle"),
		ex(45, preprocessing.GenderMale, preprocessing.RegionSouth, preprocessing.EducationHighSchool, preprocessing.EthnicityHispanic, "Robert"),
		ex(67, preprocessing.GenderFemale, preprocessing.RegionWest, preprocessing.EducationDoctorate, preprocessing.EthnicityAsian, "Elizabeth"),
		ex(29, preprocessing.GenderNonBinary, preprocessing.RegionNortheast, preprocessing.EducationBachelors, preprocessing.EthnicityMiddleEastern, "Taylor"),
		ex(52, preprocessing.GenderFemale, preprocessing.RegionMidwest, preprocessing.EducationBachelors, preprocessing.EthnicityWhite, "Karen"),
		ex(38, preprocessing.GenderMale, preprocessing.RegionSouth, preprocessing.EducationSomeCollege, preprocessing.EthnicityBlack, "James"),
		ex(41, preprocessing.GenderFemale, preprocessing.RegionWest, preprocessing.EducationMasters, preprocessing.EthnicityAsian, "Jennifer"),
	}
}

func quietLogger() log.Logger {
	l, _ := log.NewTestLogger(log.LevelError)
	return l
}

func assertRanked(t *testing.T, preds []model.NamePrediction) {
	t.Helper()
	require.NotEmpty(t, preds)
	assert.LessOrEqual(t, len(preds), model.TopK)
	for i, p := range preds {
		assert.Equal(t, i+1, p.Rank)
		assert.GreaterOrEqual(t, p.Confidence, 0.0)
		assert.LessOrEqual(t, p.Confidence, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, preds[i-1].Confidence, p.Confidence)
		}
	}
}

func TestRandomForest_DominantLabel(t *testing.T) {
	X, y := encode(t, dominantData())

	rf := NewRandomForestClassifier(
		WithNumTrees(20),
		WithForestMaxDepth(5),
		WithForestRand(rand.New(rand.NewPCG(42, 42))),
		WithForestLogger(quietLogger()),
	)
	require.NoError(t, rf.Fit(context.Background(), X, y))

	preds, err := rf.Predict(X[0])
	require.NoError(t, err)
	assertRanked(t, preds)
	assert.Equal(t, "Alex", preds[0].Name)
	assert.GreaterOrEqual(t, preds[0].Confidence, 0.5)

	votes, err := rf.Votes(X[0])
	require.NoError(t, err)
	assert.InDelta(t, 1.0, floats.Sum(votes.Probs), 1e-9)
	assert.Equal(t, []string{"Alex", "Betty", "Jordan"}, rf.Labels())
}

func TestRandomForest_Evaluate(t *testing.T) {
	X, _ := encode(t, mixedData())
	y := make([]string, len(X))
	for i := range y {
		y[i] = "Sam"
	}

	rf := NewRandomForestClassifier(WithNumTrees(5), WithForestRand(rand.New(rand.NewPCG(1, 1))), WithForestLogger(quietLogger()))
	require.NoError(t, rf.Fit(context.Background(), X, y))

	acc, err := rf.Evaluate(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	wrong := make([]string, len(X))
	for i := range wrong {
		wrong[i] = "Nobody"
	}
	acc, err = rf.Evaluate(X, wrong)
	require.NoError(t, err)
	assert.Equal(t, 0.0, acc)
}

func TestRandomForest_Errors(t *testing.T) {
	rf := NewRandomForestClassifier(WithForestLogger(quietLogger()))

	_, err := rf.Predict(preprocessing.FeatureVector{})
	assert.True(t, errors.IsNotFitted(err))
	_, err = rf.Evaluate(nil, nil)
	assert.True(t, errors.IsNotFitted(err))

	assert.True(t, errors.Is(rf.Fit(context.Background(), nil, nil), errors.ErrEmptyData))

	X, y := encode(t, mixedData())
	assert.Error(t, NewRandomForestClassifier(WithNumTrees(0), WithForestLogger(quietLogger())).Fit(context.Background(), X, y))
}

func TestRandomForest_Cancelled(t *testing.T) {
	X, y := encode(t, mixedData())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rf := NewRandomForestClassifier(WithForestLogger(quietLogger()))
	err := rf.Fit(ctx, X, y)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, rf.state.IsFitted())
}

func TestGradientBoosting_ProbaSumsToOne(t *testing.T) {
	X, y := encode(t, mixedData())

	gb := NewGradientBoostingClassifier(
		WithBoostingRounds(15),
		WithLearningRate(0.1),
		WithBoostingRand(rand.New(rand.NewPCG(7, 7))),
		WithBoostingLogger(quietLogger()),
	)
	require.NoError(t, gb.Fit(context.Background(), X, y))
	assert.Equal(t, 15, gb.NumRounds())

	for _, x := range X {
		d, err := gb.PredictProba(x)
		require.NoError(t, err)
		assert.Len(t, d.Probs, len(mixedData()))
		assert.InDelta(t, 1.0, floats.Sum(d.Probs), 1e-6)

		preds, err := gb.Predict(x)
		require.NoError(t, err)
		assertRanked(t, preds)
		assert.Len(t, preds, model.TopK)
	}
}

func TestGradientBoosting_ConfidenceFollowsDistance(t *testing.T) {
	X, y := encode(t, mixedData())
	gb := NewGradientBoostingClassifier(WithBoostingRand(rand.New(rand.NewPCG(3, 3))), WithBoostingLogger(quietLogger()))
	require.NoError(t, gb.Fit(context.Background(), X, y))

	raw, err := gb.RawScore(X[0])
	require.NoError(t, err)
	p := errors.Sigmoid(raw)
	target := p * float64(len(y))

	d, err := gb.PredictProba(X[0])
	require.NoError(t, err)
	best := 0
	for i := range d.Probs {
		if d.Probs[i] > d.Probs[best] {
			best = i
		}
	}
	for i := range d.Probs {
		assert.LessOrEqual(t, absDiff(float64(best), target), absDiff(float64(i), target)+1e-12)
	}
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestGradientBoosting_Evaluate(t *testing.T) {
	X, _ := encode(t, mixedData())
	y := make([]string, len(X))
	for i := range y {
		y[i] = "Sam"
	}

	gb := NewGradientBoostingClassifier(WithBoostingRand(rand.New(rand.NewPCG(1, 2))), WithBoostingLogger(quietLogger()))
	require.NoError(t, gb.Fit(context.Background(), X, y))

	acc, err := gb.Evaluate(X, y)
	require.NoError(t, err)
	assert.Equal(t, 1.0, acc)

	preds, err := gb.Predict(X[0])
	require.NoError(t, err)
	require.Len(t, preds, 1)
	assert.InDelta(t, 1.0, preds[0].Confidence, 1e-12)

	acc, err = gb.Evaluate(X, make([]string, len(X)))
	require.NoError(t, err)
	assert.Equal(t, 0.0, acc)
}

func TestGradientBoosting_CallbackStopsEarly(t *testing.T) {
	X, y := encode(t, mixedData())
	history := map[string][]float64{}
	stopAfterThird := func(env *model.CallbackEnv) error {
		if env.Iteration == 2 {
			env.StopTraining = true
		}
		return nil
	}

	gb := NewGradientBoostingClassifier(
		WithBoostingRounds(10),
		WithBoostingRand(rand.New(rand.NewPCG(9, 9))),
		WithBoostingLogger(quietLogger()),
		WithBoostingCallbacks(model.RecordEvaluation(history), stopAfterThird),
	)
	require.NoError(t, gb.Fit(context.Background(), X, y))

	assert.Equal(t, 3, gb.NumRounds())
	assert.Len(t, history["residual_mse"], 3)
}

func TestGradientBoosting_Errors(t *testing.T) {
	gb := NewGradientBoostingClassifier(WithBoostingLogger(quietLogger()))
	_, err := gb.Predict(preprocessing.FeatureVector{})
	assert.True(t, errors.IsNotFitted(err))
	_, err = gb.PredictProba(preprocessing.FeatureVector{})
	assert.True(t, errors.IsNotFitted(err))

	X, y := encode(t, mixedData())
	assert.Error(t, NewGradientBoostingClassifier(WithLearningRate(0), WithBoostingLogger(quietLogger())).Fit(context.Background(), X, y))
	assert.True(t, errors.Is(gb.Fit(context.Background(), nil, nil), errors.ErrEmptyData))
}
