package tree

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/nameml/pkg/errors"
	"github.com/YuminosukeSato/nameml/preprocessing"
)

func fv(flags ...int) preprocessing.FeatureVector {
	var v preprocessing.FeatureVector
	for _, f := range flags {
		v[f] = 1
	}
	return v
}

// distinctVectors returns vectors that differ in at least one flag.
func distinctVectors() ([]preprocessing.FeatureVector, []string) {
	X := []preprocessing.FeatureVector{
		fv(preprocessing.FeatureGenderMale, preprocessing.FeatureRegionNortheast, preprocessing.FeatureEthnicityWhite),
		fv(preprocessing.FeatureGenderFemale, preprocessing.FeatureRegionMidwest, preprocessing.FeatureEthnicityBlack),
		fv(preprocessing.FeatureGenderMale, preprocessing.FeatureRegionSouth, preprocessing.FeatureEthnicityHispanic),
		fv(preprocessing.FeatureGenderFemale, preprocessing.FeatureRegionWest, preprocessing.FeatureEthnicityAsian),
		fv(preprocessing.FeatureGenderNonBinary, preprocessing.FeatureRegionNortheast, preprocessing.FeatureEthnicityMiddleEastern),
	}
	y := []string{"Michael", "Michelle", "Robert", "Elizabeth", "Taylor"}
	return X, y
}

func TestDecisionTreeClassifier_MemorizesDistinctVectors(t *testing.T) {
	X, y := distinctVectors()

	for seed := uint64(0); seed < 5; seed++ {
		dt := NewDecisionTreeClassifier(
			WithMaxDepth(preprocessing.NumFeatures),
			WithRandomState(seed),
		)
		require.NoError(t, dt.Fit(X, y))

		for i := range X {
			got, err := dt.Predict(X[i])
			require.NoError(t, err)
			assert.Equal(t, y[i], got, "seed %d sample %d", seed, i)
		}
		assert.LessOrEqual(t, dt.GetDepth(), preprocessing.NumFeatures)
	}
}

func TestDecisionTreeClassifier_PureData(t *testing.T) {
	X, _ := distinctVectors()
	y := []string{"Sam", "Sam", "Sam", "Sam", "Sam"}

	dt := NewDecisionTreeClassifier(WithRandomState(7))
	require.NoError(t, dt.Fit(X, y))

	assert.Equal(t, 1, dt.GetNLeaves())
	got, err := dt.Predict(fv(preprocessing.FeatureGenderOther))
	require.NoError(t, err)
	assert.Equal(t, "Sam", got)
}

func TestDecisionTreeClassifier_ZeroDepthMajority(t *testing.T) {
	X, _ := distinctVectors()
	tests := []struct {
		name string
		y    []string
		want string
	}{
		{"clear majority", []string{"Ann", "Bob", "Bob", "Cid", "Bob"}, "Bob"},
		{"tie goes to first seen", []string{"Cid", "Ann", "Ann", "Cid", "Dee"}, "Cid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt := NewDecisionTreeClassifier(WithMaxDepth(0), WithRandomState(1))
			require.NoError(t, dt.Fit(X, tt.y))
			got, err := dt.Predict(X[0])
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, 0, dt.GetDepth())
		})
	}
}

func TestDecisionTreeClassifier_MaxDepth(t *testing.T) {
	X, y := distinctVectors()
	for _, depth := range []int{1, 2, 3} {
		dt := NewDecisionTreeClassifier(WithMaxDepth(depth), WithRand(rand.New(rand.NewPCG(3, 4))))
		require.NoError(t, dt.Fit(X, y))
		assert.LessOrEqual(t, dt.GetDepth(), depth)
	}
}

func TestDecisionTreeClassifier_FeatureUsedOncePerPath(t *testing.T) {
	X, y := distinctVectors()
	dt := NewDecisionTreeClassifier(WithMaxDepth(preprocessing.NumFeatures), WithRandomState(11))
	require.NoError(t, dt.Fit(X, y))

	var walk func(n *classNode, seen map[int]bool)
	walk = func(n *classNode, seen map[int]bool) {
		if n.leaf {
			return
		}
		assert.False(t, seen[n.feature], "feature %d reused on a path", n.feature)
		seen[n.feature] = true
		walk(n.left, seen)
		walk(n.right, seen)
		delete(seen, n.feature)
	}
	walk(dt.root, map[int]bool{})
}

func TestDecisionTreeClassifier_Errors(t *testing.T) {
	dt := NewDecisionTreeClassifier()

	_, err := dt.Predict(preprocessing.FeatureVector{})
	assert.True(t, errors.IsNotFitted(err))

	err = dt.Fit(nil, nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))

	X, y := distinctVectors()
	assert.Error(t, dt.Fit(X, y[:2]))
	assert.Error(t, NewDecisionTreeClassifier(WithMaxDepth(-1)).Fit(X, y))
}

func TestDecisionTreeClassifier_EmptyPartition(t *testing.T) {
	X := make([]preprocessing.FeatureVector, 4)
	y := []string{"A", "A", "B", "A"}
	ones := fv()
	for i := range ones {
		ones[i] = 1
	}

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{"unknown leaf", nil, UnknownLabel},
		{"parent majority", []Option{WithParentMajorityFallback()}, "A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]Option{WithMaxDepth(3), WithRandomState(9)}, tt.opts...)
			dt := NewDecisionTreeClassifier(opts...)
			require.NoError(t, dt.Fit(X, y))

			// Every root split sends the all-zero training set left.
			got, err := dt.Predict(ones)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			got, err = dt.Predict(X[0])
			require.NoError(t, err)
			assert.Equal(t, "A", got)
			assert.Equal(t, []string{"A", "B"}, dt.Labels())
		})
	}
}

func TestDecisionTreeClassifier_GetParams(t *testing.T) {
	params := NewDecisionTreeClassifier(WithMaxDepth(5)).GetParams()
	assert.Equal(t, 5, params["max_depth"])
	assert.Equal(t, DefaultThreshold, params["threshold"])
	assert.Equal(t, false, params["parent_fallback"])
}

func TestRegressionTree_ConstantTarget(t *testing.T) {
	X, _ := distinctVectors()
	X = append(X, X...)
	y := make([]float64, len(X))
	for i := range y {
		y[i] = 0.25
	}

	rt := NewRegressionTree(WithRegressorRand(rand.New(rand.NewPCG(5, 6))))
	require.NoError(t, rt.Fit(X, y))

	for _, x := range X {
		got, err := rt.Predict(x)
		require.NoError(t, err)
		assert.InDelta(t, 0.25, got, 1e-12)
	}
}

func TestRegressionTree_SmallPartitionIsLeafMean(t *testing.T) {
	X, _ := distinctVectors()
	y := []float64{1, 2, 3, 4, 5}

	rt := NewRegressionTree(WithRegressorRand(rand.New(rand.NewPCG(1, 1))))
	require.NoError(t, rt.Fit(X, y))

	assert.Equal(t, 1, rt.GetNLeaves())
	got, err := rt.Predict(X[0])
	require.NoError(t, err)
	assert.InDelta(t, 3.0, got, 1e-12)
}

func TestRegressionTree_SplitsLargerPartitions(t *testing.T) {
	var X []preprocessing.FeatureVector
	var y []float64
	for i := 0; i < 12; i++ {
		var v preprocessing.FeatureVector
		for f := range v {
			if (i+f)%2 == 0 {
				v[f] = 1
			}
		}
		X = append(X, v)
		y = append(y, float64(i%2))
	}

	rt := NewRegressionTree(WithRegressorMaxDepth(3), WithMinSamplesLeaf(5), WithRegressorRand(rand.New(rand.NewPCG(2, 2))))
	require.NoError(t, rt.Fit(X, y))
	assert.Greater(t, rt.GetNLeaves(), 1)
	assert.LessOrEqual(t, rt.GetNLeaves(), 8)

	for i, x := range X {
		got, err := rt.Predict(x)
		require.NoError(t, err)
		assert.InDelta(t, y[i], got, 1e-12, "every feature separates the two groups")
	}
}

func TestRegressionTree_NotFitted(t *testing.T) {
	_, err := NewRegressionTree().Predict(preprocessing.FeatureVector{})
	assert.True(t, errors.IsNotFitted(err))
	assert.Error(t, NewRegressionTree().Fit(nil, nil))
}
