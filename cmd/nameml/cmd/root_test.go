package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/pkg/log"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{
		"NAMEML_PORT", "NAMEML_LOG_FORMAT", "NAMEML_SEED",
		"NAMEML_INFERENCE_SCALING", "NAMEML_METRICS_MODE", "NAMEML_TRAIN_TIMEOUT", "NAMEML_TRAIN_TIME_LIMIT", "GIN_MODE",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("NAMEML_LOG_LEVEL", "error")
	prev := log.GetProvider()
	t.Cleanup(func() { log.SetProvider(prev) })

	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := root.Execute()
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	out, err := run(t, "stats")
	require.NoError(t, err)

	var stats struct {
		TotalRecords int `json:"totalRecords"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, 20, stats.TotalRecords)
}

func TestTrainCommand(t *testing.T) {
	out, err := run(t, "train", "--model", "gradientBoosting", "-p", "numTrees=5", "-p", "learningRate=0.2")
	require.NoError(t, err)

	var m struct {
		ModelID   string `json:"modelId"`
		Estimator string `json:"estimator"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &m))
	assert.NotEmpty(t, m.ModelID)
	assert.Equal(t, "GradientBoostingClassifier", m.Estimator)
}

func TestTrainCommandRejectsUnknownModel(t *testing.T) {
	_, err := run(t, "train", "--model", "svm")
	require.Error(t, err)
	var cfgErr *errors.InvalidConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestPredictCommand(t *testing.T) {
	out, err := run(t, "predict",
		"--model", "decisionTree",
		"--age", "28", "--gender", "female", "--location", "Northeast",
		"--education", "bachelors", "--ethnicity", "Hispanic",
	)
	require.NoError(t, err)

	var res struct {
		Names []struct {
			Name string `json:"name"`
			Rank int    `json:"rank"`
		} `json:"names"`
		Metadata struct {
			ModelUsed string `json:"modelUsed"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.NotEmpty(t, res.Names)
	assert.Equal(t, 1, res.Names[0].Rank)
	assert.Equal(t, "Decision Tree", res.Metadata.ModelUsed)
}

func TestPredictCommandRequiresDemographics(t *testing.T) {
	_, err := run(t, "predict", "--age", "30")
	require.Error(t, err)
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("NAMEML_METRICS_MODE", "random")
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"stats", "--env-file", filepath.Join(t.TempDir(), "none.env")})
	err := root.Execute()
	var valErr *errors.ValidationError
	assert.True(t, errors.As(err, &valErr))
}
