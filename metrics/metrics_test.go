package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

// captureWarnings routes errors.Warn into a TestLogger for the duration of
// the test.
func captureWarnings(t *testing.T) *log.TestLogger {
	t.Helper()
	prev := log.GetProvider()
	provider, _ := log.NewTestLoggerProvider(log.LevelDebug)
	log.SetProvider(provider)
	t.Cleanup(func() { log.SetProvider(prev) })
	return provider.Logger()
}

func TestAccuracy(t *testing.T) {
	tests := []struct {
		name  string
		yTrue []string
		yPred []string
		want  float64
	}{
		{"all right", []string{"Ann", "Bob"}, []string{"Ann", "Bob"}, 1.0},
		{"all wrong", []string{"Ann", "Bob"}, []string{"Bob", "Ann"}, 0.0},
		{"half", []string{"Ann", "Bob", "Cid", "Dee"}, []string{"Ann", "Bob", "Ann", "Ann"}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Accuracy(tt.yTrue, tt.yPred)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}

	_, err := Accuracy([]string{"Ann"}, nil)
	assert.Error(t, err)
}

func TestAccuracy_EmptyWarns(t *testing.T) {
	logger := captureWarnings(t)
	got, err := Accuracy(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
	assert.True(t, logger.ContainsMessage("ill-defined"))
}

func TestConfusionMatrix(t *testing.T) {
	yTrue := []string{"Ann", "Ann", "Bob", "Cid"}
	yPred := []string{"Ann", "Bob", "Bob", "Zed"}
	labels := Labels(yTrue, yPred)
	assert.Equal(t, []string{"Ann", "Bob", "Cid", "Zed"}, labels)

	cm, err := ConfusionMatrix(yTrue, yPred, labels)
	require.NoError(t, err)
	assert.Equal(t, [][]int{
		{1, 1, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 0, 1},
		{0, 0, 0, 0},
	}, IntRows(cm))

	cm, err = ConfusionMatrix(yTrue, yPred, []string{"Ann", "Bob"})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 1}, {0, 1}}, IntRows(cm), "pairs outside the label set are skipped")

	_, err = ConfusionMatrix(yTrue, yPred, nil)
	assert.Error(t, err)
}

func TestMacroScores(t *testing.T) {
	captureWarnings(t)

	yTrue := []string{"Ann", "Ann", "Bob", "Bob"}
	perfect, err := MacroScores(yTrue, yTrue, Labels(yTrue, yTrue))
	require.NoError(t, err)
	assert.Equal(t, ClassificationScores{Precision: 1, Recall: 1, F1: 1}, perfect)

	// Ann: P=1, R=0.5, F1=2/3. Bob: P=2/3, R=1, F1=0.8.
	yPred := []string{"Ann", "Bob", "Bob", "Bob"}
	got, err := MacroScores(yTrue, yPred, Labels(yTrue, yPred))
	require.NoError(t, err)
	assert.InDelta(t, (1+2.0/3)/2, got.Precision, 1e-12)
	assert.InDelta(t, 0.75, got.Recall, 1e-12)
	assert.InDelta(t, (2.0/3+0.8)/2, got.F1, 1e-12)
}

func TestMacroScores_UndefinedLabelsWarn(t *testing.T) {
	logger := captureWarnings(t)

	yTrue := []string{"Ann", "Bob"}
	yPred := []string{"Zed", "Zed"}
	got, err := MacroScores(yTrue, yPred, Labels(yTrue, yPred))
	require.NoError(t, err)
	assert.Equal(t, ClassificationScores{}, got)
	assert.True(t, logger.ContainsMessage("precision/recall"))
}

func TestWithWarnFunc(t *testing.T) {
	global := captureWarnings(t)
	var got []error
	sink := WithWarnFunc(func(w error) { got = append(got, w) })

	_, err := Accuracy(nil, nil, sink)
	require.NoError(t, err)
	_, err = MacroScores([]string{"Ann"}, []string{"Bob"}, []string{"Ann", "Bob"}, sink)
	require.NoError(t, err)

	require.Len(t, got, 2)
	var w *errors.UndefinedMetricWarning
	require.True(t, errors.As(got[1], &w))
	assert.Equal(t, "precision/recall", w.Metric)
	assert.False(t, global.ContainsMessage("ill-defined"))
}

func TestRegressionMetrics(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4}
	yPred := []float64{1, 3, 3, 2}

	mse, err := MSE(yTrue, yPred)
	require.NoError(t, err)
	assert.InDelta(t, 1.25, mse, 1e-12)

	_, err = MSE(nil, nil)
	assert.Error(t, err)
	_, err = MSE(yTrue, yPred[:2])
	assert.Error(t, err)
}

func TestGroupAccuracySpread(t *testing.T) {
	groups := []string{"a", "a", "b", "b", "c"}
	correct := []bool{true, true, true, false, false}

	labels, acc, err := GroupAccuracy(groups, correct)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, labels)
	assert.Equal(t, []float64{1, 0.5, 0}, acc)

	spread, err := GroupAccuracySpread(groups, correct)
	require.NoError(t, err)
	assert.Equal(t, 1.0, spread)

	spread, err = GroupAccuracySpread([]string{"a", "a"}, []bool{true, false})
	require.NoError(t, err)
	assert.Equal(t, 0.0, spread)

	_, err = GroupAccuracySpread(groups, correct[:1])
	assert.Error(t, err)
}

func TestComputeBias(t *testing.T) {
	records := []preprocessing.DemographicRecord{
		{Age: 25, Gender: preprocessing.GenderMale, Location: preprocessing.RegionSouth, EducationLevel: preprocessing.EducationBachelors, Ethnicity: preprocessing.EthnicityWhite},
		{Age: 27, Gender: preprocessing.GenderFemale, Location: preprocessing.RegionSouth, EducationLevel: preprocessing.EducationBachelors, Ethnicity: preprocessing.EthnicityWhite},
		{Age: 70, Gender: preprocessing.GenderFemale, Location: preprocessing.RegionSouth, EducationLevel: preprocessing.EducationMasters, Ethnicity: preprocessing.EthnicityWhite},
	}
	correct := []bool{true, true, false}

	b, err := ComputeBias(records, correct)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, b.GenderBias, 1e-12)
	assert.InDelta(t, 1.0, b.AgeBias, 1e-12)
	assert.Equal(t, 0.0, b.LocationBias)
	assert.InDelta(t, 1.0, b.EducationBias, 1e-12)
	assert.Equal(t, 0.0, b.EthnicityBias)

	_, err = ComputeBias(records, nil)
	assert.Error(t, err)
}
